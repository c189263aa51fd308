// internal/workers/routing/route-request/models.go
package routerequest

import "sales-assistant/internal/models"

type Input struct {
	Message string   `json:"message"`
	History []string `json:"history,omitempty"`
}

type Output struct {
	UserSegment models.Segment `json:"userSegment"`
	Route       models.Route   `json:"route"`
	Raw         string         `json:"raw,omitempty"`
}

func (o *Output) Decision() models.RouteDecision {
	return models.RouteDecision{UserSegment: o.UserSegment, Route: o.Route}
}
