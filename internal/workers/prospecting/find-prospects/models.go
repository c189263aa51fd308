// internal/workers/prospecting/find-prospects/models.go
package findprospects

import "sales-assistant/internal/models"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Candidates []models.ScoredCandidate `json:"candidates,omitempty"`
	Excluded   []models.ScoredCandidate `json:"excluded,omitempty"`
	Status     *models.StatusMarker     `json:"status,omitempty"`
	Filters    []models.FilterCondition `json:"filters,omitempty"`
	Summary    string                   `json:"summary,omitempty"`
	Partial    bool                     `json:"partial,omitempty"`
}

// Payload wraps the output in the turn envelope.
func (o *Output) Payload() models.Payload {
	var p models.Payload
	if o.Status != nil {
		p = models.StatusPayload(o.Status)
	} else {
		p = models.CandidatesPayload(o.Candidates)
	}
	p.Summary = o.Summary
	p.Partial = o.Partial
	return p
}
