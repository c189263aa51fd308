package dataset

import (
	"strings"

	"sales-assistant/internal/models"
)

var columnMapping = []struct{ from, to string }{
	{"User Name", "Sales Rep Name"},
	{"Business Name", models.FieldBusinessName},
	{"Address", "Prospect Address"},
	{"Category - Primary", models.FieldPrimaryCategory},
	{"Category - Secondary", models.FieldSecondaryCategory},
	{"All Signals/SMB Data Points", models.FieldSignals},
	{"Products", models.FieldProductsSold},
}

var forwardFilled = []string{models.FieldCustomer, models.FieldProductsSold}

// CleanHeader trims and replaces newlines and non-breaking spaces with plain spaces.
func CleanHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, "\n", " ")
	h = strings.ReplaceAll(h, "\u00a0", " ")
	return h
}

// Normalize turns a raw table into records. It returns the records and the final column order.
func Normalize(headers []string, rows [][]string) ([]models.Record, []string) {
	columns := make([]string, 0, len(headers)+len(columnMapping))
	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		h = CleanHeader(h)
		if h == "" || strings.HasPrefix(h, "Unnamed") {
			continue
		}
		if _, dup := positions[h]; dup {
			continue
		}
		positions[h] = i
		columns = append(columns, h)
	}

	aliases := map[string]string{}
	for _, m := range columnMapping {
		if _, ok := positions[m.from]; !ok {
			continue
		}
		if _, exists := positions[m.to]; exists {
			continue
		}
		aliases[m.to] = m.from
		columns = append(columns, m.to)
	}

	has := func(col string) bool {
		if _, ok := positions[col]; ok {
			return true
		}
		_, ok := aliases[col]
		return ok
	}

	lastSeen := map[string]string{}
	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(columns))
		for _, col := range columns {
			src := col
			if from, ok := aliases[col]; ok {
				src = from
			}
			if idx := positions[src]; idx < len(row) {
				fields[col] = strings.TrimSpace(row[idx])
			} else {
				fields[col] = ""
			}
		}

		for _, col := range forwardFilled {
			if !has(col) {
				continue
			}
			if fields[col] == "" {
				fields[col] = lastSeen[col]
			} else {
				lastSeen[col] = fields[col]
			}
		}

		if has(models.FieldUID) && fields[models.FieldUID] == "" {
			continue
		}
		name := fields[models.FieldBusinessName]
		if name == "" || name == "SMB" {
			continue
		}

		signals := ParseSignals(fields[models.FieldSignals])
		for col, v := range fields {
			if v == "" {
				fields[col] = models.NotFound
			}
		}

		records = append(records, models.Record{Fields: fields, Signals: signals})
	}

	return records, columns
}
