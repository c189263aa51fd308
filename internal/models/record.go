// internal/models/record.go
package models

import "strings"

// Canonical column names after loader normalization.
const (
	FieldBusinessName      = "Prospect Business Name"
	FieldPrimaryCategory   = "Primary Category"
	FieldSecondaryCategory = "Secondary Category"
	FieldCity              = "City"
	FieldState             = "State"
	FieldSignals           = "BuzzBoard Data"
	FieldCustomer          = "Customer"
	FieldProductsSold      = "Products Sold"
	FieldUID               = "UID"

	NotFound = "Not Found"
)

// Record is one prospect row. Fields holds every cleaned column; Signals is the parsed data-points bundle.
type Record struct {
	Fields  map[string]string `json:"fields"`
	Signals SignalBundle      `json:"signals"`
}

func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

func (r Record) Name() string { return r.Fields[FieldBusinessName] }
func (r Record) PrimaryCategory() string { return r.Fields[FieldPrimaryCategory] }
func (r Record) City() string { return r.Fields[FieldCity] }
func (r Record) State() string { return r.Fields[FieldState] }

// Location renders "City, State".
func (r Record) Location() string {
	return r.City() + ", " + r.State()
}

// HasName reports whether the record carries a usable business name.
func (r Record) HasName() bool {
	name := strings.TrimSpace(r.Name())
	return name != "" && name != NotFound
}
