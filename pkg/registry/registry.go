// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"sales-assistant/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists every registered task type in file order.
func (r *ActivityRegistry) TaskTypes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}

// ValidateInput checks variables against the input schema of taskType.
// Unknown task types and activities without a schema pass.
func (r *ActivityRegistry) ValidateInput(taskType string, variables map[string]interface{}) error {
	activity, ok := r.Find(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		return nil
	}

	result, err := validation.ValidateInput(variables, activity.InputSchema)
	if err != nil {
		return fmt.Errorf("validate %s input: %w", taskType, err)
	}
	if !result.Valid {
		return fmt.Errorf("invalid %s input: %s", taskType, result.Error())
	}
	return nil
}
