// internal/workers/insights/analyze-prospect/models.go
package analyzeprospect

import "sales-assistant/internal/models"

// Input names the business directly or carries a free-text query to resolve it from.
type Input struct {
	BusinessName string `json:"businessName,omitempty"`
	Query        string `json:"query,omitempty"`
}

type Output struct {
	BusinessName string                 `json:"businessName"`
	Found        bool                   `json:"found"`
	Report       *models.ProspectReport `json:"report,omitempty"`
	Status       *models.StatusMarker   `json:"status,omitempty"`
	Partial      bool                   `json:"partial,omitempty"`
}

func (o *Output) Payload() models.Payload {
	var p models.Payload
	if o.Found {
		p = models.ReportPayload(o.Report)
	} else {
		p = models.StatusPayload(o.Status)
	}
	p.Partial = o.Partial
	return p
}
