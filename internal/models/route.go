// internal/models/route.go
package models

type Segment string

const (
	SegmentSalesRep  Segment = "SalesRep"
	SegmentDemandGen Segment = "DemandGen"
	SegmentUnknown   Segment = "Unknown"
)

type Route string

const (
	RouteProspecting   Route = "prospecting"
	RouteInsights      Route = "insights"
	RouteCommunication Route = "communication"
	RouteTerminate     Route = "end"
)

type RouteDecision struct {
	UserSegment Segment `json:"user_segment"`
	Route       Route   `json:"route"`
}
