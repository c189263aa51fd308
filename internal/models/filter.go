// internal/models/filter.go
package models

import "fmt"

type FilterOperator string

const (
	OpContains    FilterOperator = "contains"
	OpNotContains FilterOperator = "not_contains"
	OpEquals      FilterOperator = "equals"
	OpNotEquals   FilterOperator = "not_equals"
)

func (o FilterOperator) Valid() bool {
	switch o {
	case OpContains, OpNotContains, OpEquals, OpNotEquals:
		return true
	}
	return false
}

type FilterCondition struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

func (c FilterCondition) String() string {
	return fmt.Sprintf("%s %s %q", c.Field, c.Operator, c.Value)
}

// FilterSet is applied conjunctively, in order.
type FilterSet struct {
	Filters []FilterCondition `json:"filters"`
}

// FilterSetSchema is the JSON schema the classifier output must satisfy.
const FilterSetSchema = `{
  "type": "object",
  "required": ["filters"],
  "properties": {
    "filters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["field", "operator", "value"],
        "properties": {
          "field": {"type": "string", "minLength": 1},
          "operator": {"type": "string", "enum": ["contains", "not_contains", "equals", "not_equals"]},
          "value": {"type": "string"}
        }
      }
    }
  }
}`
