// internal/models/payload.go
package models

import (
	"encoding/json"

	apperrors "sales-assistant/internal/common/errors"
)

type PayloadKind string

const (
	PayloadCandidates PayloadKind = "candidates"
	PayloadReport     PayloadKind = "report"
	PayloadBrief      PayloadKind = "brief"
	PayloadStatus     PayloadKind = "status"
	PayloadTerminated PayloadKind = "terminated"
)

// User-visible status texts.
const (
	StatusFailedToProcess  = "Failed to process query"
	StatusNoProspects      = "No prospects found matching criteria"
	StatusNoExactMatches   = "No exact matches found"
	StatusProspectNotFound = "Prospect not found"
	StatusSessionEnded     = "Session ended"
	StatusBudgetExceeded   = "Partial result: processing budget exhausted"
	StatusRoutingFailed    = "Could not classify the request"
	StatusUnexpected       = "Something went wrong while processing the request"
	StatusFilteredOutSEM   = "Filtered out - No Google Ads activity found"
	SuggestionCategories   = "Try these available categories"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatusMarker is the in-envelope status for expected failures and guidance.
type StatusMarker struct {
	Status              string          `json:"Status"`
	Suggestion          string          `json:"Suggestion,omitempty"`
	AvailableCategories []CategoryCount `json:"Available Categories,omitempty"`
	ErrorCode           string          `json:"errorCode,omitempty"`
	Details             string          `json:"details,omitempty"`
}

// Payload is the single envelope every turn returns. Exactly one body field is set for its Kind.
type Payload struct {
	Kind       PayloadKind         `json:"kind"`
	Candidates []ScoredCandidate   `json:"candidates,omitempty"`
	Report     *ProspectReport     `json:"report,omitempty"`
	Brief      *CommunicationBrief `json:"brief,omitempty"`
	Status     *StatusMarker       `json:"status,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Partial    bool                `json:"partial,omitempty"`
}

func CandidatesPayload(c []ScoredCandidate) Payload {
	return Payload{Kind: PayloadCandidates, Candidates: c}
}

func ReportPayload(r *ProspectReport) Payload {
	return Payload{Kind: PayloadReport, Report: r}
}

func BriefPayload(b *CommunicationBrief) Payload {
	return Payload{Kind: PayloadBrief, Brief: b}
}

func StatusPayload(s *StatusMarker) Payload {
	return Payload{Kind: PayloadStatus, Status: s}
}

func TerminatedPayload() Payload {
	return Payload{Kind: PayloadTerminated, Status: &StatusMarker{Status: StatusSessionEnded}}
}

// StatusFromError maps an error onto the status marker shown to the user.
func StatusFromError(err error) *StatusMarker {
	stdErr := apperrors.AsStandardError(err)
	if stdErr == nil {
		return nil
	}

	marker := &StatusMarker{ErrorCode: string(stdErr.Code), Details: stdErr.Details}
	switch apperrors.GetErrorCategory(stdErr.Code) {
	case "AI":
		marker.Status = StatusFailedToProcess
		if stdErr.Code == apperrors.ErrCodeRoutingFailed {
			marker.Status = StatusRoutingFailed
		}
	case "BUDGET":
		marker.Status = StatusBudgetExceeded
	case "DATASET":
		switch stdErr.Code {
		case apperrors.ErrCodeProspectNotFound:
			marker.Status = StatusProspectNotFound
		case apperrors.ErrCodeNoMatch:
			marker.Status = StatusNoProspects
		default:
			marker.Status = StatusUnexpected
		}
	default:
		marker.Status = StatusUnexpected
	}
	return marker
}

// String renders the payload as compact JSON for logs and the conversation log.
func (p Payload) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		return string(p.Kind)
	}
	return string(b)
}
