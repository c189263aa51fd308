package registry

// ActivityRegistry is the task registry loaded from configs/task-registry.json.
// Fields the workers never read are dropped on decode.
type ActivityRegistry struct {
	Version    string     `json:"version"`
	Activities []Activity `json:"activities"`
}

// Activity binds one job type to the JSON schema its variables must satisfy.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
}
