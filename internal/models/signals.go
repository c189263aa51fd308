// internal/models/signals.go
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Signal names as they appear in the BuzzBoard data points column.
const (
	SignalGooglePlaces = "Google Places"
	SignalSEM          = "SEM"
	SignalReviews      = "Reviews (local and social)"
	SignalFBPosts      = "FB latest_posts"
	SignalInstagram    = "Instagram"
	SignalTwitter      = "Twitter"
)

type SignalKind int

const (
	SignalAbsent SignalKind = iota
	SignalText
	SignalNumber
	SignalBool
)

// SignalValue is a tagged variant: text, number, boolean or absent.
type SignalValue struct {
	Kind   SignalKind
	Text   string
	Number float64
	Bool   bool
}

func AbsentSignal() SignalValue { return SignalValue{} }
func TextSignal(s string) SignalValue { return SignalValue{Kind: SignalText, Text: s} }
func NumberSignal(n float64) SignalValue { return SignalValue{Kind: SignalNumber, Number: n} }
func BoolSignal(b bool) SignalValue { return SignalValue{Kind: SignalBool, Bool: b} }
func (v SignalValue) IsAbsent() bool { return v.Kind == SignalAbsent }

// IsYes reports a positive boolean-like value: "Yes"/"True", true, or a positive number.
func (v SignalValue) IsYes() bool {
	switch v.Kind {
	case SignalText:
		t := strings.TrimSpace(v.Text)
		return strings.EqualFold(t, "yes") || strings.EqualFold(t, "true")
	case SignalBool:
		return v.Bool
	case SignalNumber:
		return v.Number > 0
	default:
		return false
	}
}

// AsNumber returns the numeric value. Only number-typed signals qualify, so "12" as text does not count.
func (v SignalValue) AsNumber() (float64, bool) {
	if v.Kind == SignalNumber {
		return v.Number, true
	}
	return 0, false
}

func (v SignalValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case SignalText:
		return json.Marshal(v.Text)
	case SignalNumber:
		return json.Marshal(v.Number)
	case SignalBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

func (v *SignalValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = SignalFromAny(raw)
	return nil
}

// SignalFromAny converts a decoded JSON scalar. Composite values are kept as their JSON text.
func SignalFromAny(raw interface{}) SignalValue {
	switch t := raw.(type) {
	case nil:
		return AbsentSignal()
	case string:
		return TextSignal(t)
	case bool:
		return BoolSignal(t)
	case float64:
		return NumberSignal(t)
	case int:
		return NumberSignal(float64(t))
	case int64:
		return NumberSignal(float64(t))
	case json.Number:
		if f, err := strconv.ParseFloat(string(t), 64); err == nil {
			return NumberSignal(f)
		}
		return TextSignal(string(t))
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return AbsentSignal()
		}
		return TextSignal(string(b))
	}
}

// SignalBundle maps signal names to values. Missing keys read as absent.
type SignalBundle map[string]SignalValue

func (b SignalBundle) Get(name string) SignalValue {
	if b == nil {
		return AbsentSignal()
	}
	return b[name]
}

// Presence is the single presence test every scoring rule uses.
func Presence(b SignalBundle, name string) bool {
	return b.Get(name).IsYes()
}

// ReviewCount returns the numeric review count, or 0 when missing or non-numeric.
func ReviewCount(b SignalBundle) float64 {
	n, _ := b.Get(SignalReviews).AsNumber()
	return n
}
