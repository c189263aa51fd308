// internal/workers/communication/draft-outreach/models.go
package draftoutreach

import "sales-assistant/internal/models"

type Input struct {
	Query        string         `json:"query,omitempty"`
	BusinessName string         `json:"businessName,omitempty"`
	UserSegment  models.Segment `json:"userSegment,omitempty"`
}

type Output struct {
	BusinessName string                     `json:"businessName"`
	Found        bool                       `json:"found"`
	Brief        *models.CommunicationBrief `json:"brief,omitempty"`
	Status       *models.StatusMarker       `json:"status,omitempty"`
	Partial      bool                       `json:"partial,omitempty"`
}

func (o *Output) Payload() models.Payload {
	var p models.Payload
	if o.Found {
		p = models.BriefPayload(o.Brief)
	} else {
		p = models.StatusPayload(o.Status)
	}
	p.Partial = o.Partial
	return p
}
