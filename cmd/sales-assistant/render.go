package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sales-assistant/internal/models"
	"sales-assistant/internal/workflow"
)

const rule = "────────────────────────────────────────"

// renderTurn writes a human-readable view of one turn.
func renderTurn(w io.Writer, res workflow.TurnResult) {
	p := res.Payload
	fmt.Fprintf(w, "\n[%s | %s]\n%s\n", res.Route, res.UserSegment, rule)

	switch p.Kind {
	case models.PayloadCandidates:
		renderCandidates(w, p.Candidates)
	case models.PayloadReport:
		renderJSON(w, p.Report)
	case models.PayloadBrief:
		renderBrief(w, p.Brief)
	case models.PayloadTerminated:
		fmt.Fprintln(w, "Session ended. Goodbye!")
	default:
		renderStatus(w, p.Status)
	}

	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}
	if p.Partial {
		fmt.Fprintln(w, "\n(partial result: processing budget exhausted)")
	}
	fmt.Fprintln(w, rule)
}

func renderCandidates(w io.Writer, candidates []models.ScoredCandidate) {
	for i, c := range candidates {
		sem := "None"
		if c.SEMActive {
			sem = "Active"
		}
		fmt.Fprintf(w, "%d. %s (%s, %s)\n", i+1, c.BusinessName, c.PrimaryCategory, c.Location)
		fmt.Fprintf(w, "   Local presence %d/6, SEM %s, relevance %d [%s]\n", c.LocalPresenceScore, sem, c.Relevance, c.Tier)
		if len(c.Gaps) > 0 {
			fmt.Fprintf(w, "   Gaps: %s\n", strings.Join(c.Gaps, "; "))
		}
		if len(c.Opportunities) > 0 {
			fmt.Fprintf(w, "   Opportunities: %s\n", strings.Join(c.Opportunities, "; "))
		}
	}
}

func renderBrief(w io.Writer, b *models.CommunicationBrief) {
	if b == nil {
		return
	}
	fmt.Fprintf(w, "Outreach brief for %s (%s, %s)\n", b.BusinessName, b.PrimaryCategory, b.Location)
	fmt.Fprintf(w, "Audience:   %s\n", b.Segment)
	fmt.Fprintf(w, "Channels:   %s\n", strings.Join(b.Channels, ", "))
	fmt.Fprintf(w, "Timing:     %s\n", b.OptimalTiming)
	fmt.Fprintf(w, "Urgency:    %s\n", b.Urgency)
	fmt.Fprintf(w, "Follow-up:  %s\n", b.FollowUp)
	fmt.Fprintf(w, "Strategy:   %s\n", b.EngagementStrategy)
	if len(b.KeyWeaknesses) > 0 {
		fmt.Fprintln(w, "Talking points:")
		for _, s := range b.KeyWeaknesses {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(b.Opportunities) > 0 {
		fmt.Fprintln(w, "Offer:")
		for _, s := range b.Opportunities {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintf(w, "\n%s\n", b.Signature)
}

func renderStatus(w io.Writer, s *models.StatusMarker) {
	if s == nil {
		fmt.Fprintln(w, "No result returned. Please try a different query.")
		return
	}
	fmt.Fprintf(w, "Status: %s\n", s.Status)
	if s.Suggestion != "" {
		fmt.Fprintf(w, "%s:\n", s.Suggestion)
		for _, c := range s.AvailableCategories {
			fmt.Fprintf(w, "  - %s (%d)\n", c.Category, c.Count)
		}
	}
}

func renderJSON(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", v)
		return
	}
	fmt.Fprintln(w, string(b))
}
