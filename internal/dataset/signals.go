package dataset

import (
	"encoding/json"
	"strings"

	"sales-assistant/internal/models"
)

// ParseSignals decodes a data-points cell. It accepts a JSON object, a list whose first element is an
// object, or either written as a Python literal. Anything else yields an empty bundle.
func ParseSignals(raw string) models.SignalBundle {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == models.NotFound {
		return models.SignalBundle{}
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		converted, ok := pythonLiteralToJSON(raw)
		if !ok {
			return models.SignalBundle{}
		}
		if err := json.Unmarshal([]byte(converted), &decoded); err != nil {
			return models.SignalBundle{}
		}
	}

	return bundleFrom(decoded)
}

func bundleFrom(decoded interface{}) models.SignalBundle {
	var obj map[string]interface{}
	switch v := decoded.(type) {
	case map[string]interface{}:
		obj = v
	case []interface{}:
		if len(v) > 0 {
			obj, _ = v[0].(map[string]interface{})
		}
	}

	bundle := make(models.SignalBundle, len(obj))
	for k, v := range obj {
		bundle[k] = models.SignalFromAny(v)
	}
	return bundle
}

// pythonLiteralToJSON rewrites single-quoted strings, True/False/None and Python float spellings
// so the text parses as JSON.
func pythonLiteralToJSON(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			end, ok := writeQuoted(&b, s, i, c)
			if !ok {
				return "", false
			}
			i = end
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			i = writeNumber(&b, s, i) - 1
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			switch s[i:j] {
			case "True":
				b.WriteString("true")
			case "False":
				b.WriteString("false")
			case "None", "nan", "NaN", "inf", "Infinity":
				b.WriteString("null")
			default:
				return "", false
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

// writeQuoted copies the string literal starting at s[start] as a JSON string and returns the closing index.
func writeQuoted(b *strings.Builder, s string, start int, quote byte) (int, bool) {
	b.WriteByte('"')
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			next := s[i+1]
			switch {
			case next == '\'':
				b.WriteByte('\'')
			case next == 'x' && i+3 < len(s) && isHex(s[i+2]) && isHex(s[i+3]):
				b.WriteString(`\u00`)
				b.WriteString(s[i+2 : i+4])
				i += 2
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
		case c == quote:
			b.WriteByte('"')
			return i, true
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return 0, false
}

// writeNumber copies the numeric literal at s[start] and returns the index just past it.
// Exponents are kept; a bare leading or trailing dot gets a zero so JSON accepts it.
func writeNumber(b *strings.Builder, s string, start int) int {
	i := start
	if s[i] == '.' {
		b.WriteByte('0')
	}
	for i < len(s) && (isDigit(s[i]) || s[i] == '.' || s[i] == '_') {
		if s[i] != '_' {
			b.WriteByte(s[i])
		}
		i++
	}
	if s[i-1] == '.' {
		b.WriteByte('0')
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			b.WriteString(s[i:j])
			for j < len(s) && isDigit(s[j]) {
				b.WriteByte(s[j])
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
