// internal/models/candidate.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type MatchTier string

const (
	TierStrict  MatchTier = "Strict"
	TierRelaxed MatchTier = "Relaxed"
)

// ScoredCandidate is the per-query analysis of one record.
// FilteredOut candidates carry only the name, a Status and a zero relevance.
type ScoredCandidate struct {
	BusinessName       string
	PrimaryCategory    string
	Location           string
	LocalPresenceScore int
	SEMActive          bool
	Gaps               []string
	Opportunities      []string
	Tier               MatchTier
	Relevance          int
	FilteredOut        bool
	Status             string
}

type candidateView struct {
	BusinessName    string `json:"Prospect Business Name"`
	PrimaryCategory string `json:"Primary Category"`
	Location        string `json:"Location"`
	LocalPresence   string `json:"Local Presence Score"`
	SEMActivity     string `json:"SEM Activity"`
	KeyGaps         string `json:"Key Gaps"`
	Opportunities   string `json:"Opportunities"`
	MatchType       string `json:"Match Type"`
	Relevance       int    `json:"relevance_score"`
}

type filteredOutView struct {
	BusinessName string `json:"Prospect Business Name"`
	Status       string `json:"Status"`
	Relevance    int    `json:"relevance_score"`
}

func (c ScoredCandidate) MarshalJSON() ([]byte, error) {
	if c.FilteredOut {
		return json.Marshal(filteredOutView{
			BusinessName: c.BusinessName,
			Status:       c.Status,
			Relevance:    c.Relevance,
		})
	}

	sem := "None"
	if c.SEMActive {
		sem = "Active"
	}
	gaps := "Strong Digital Presence"
	if len(c.Gaps) > 0 {
		gaps = strings.Join(c.Gaps, "; ")
	}
	opps := "Maintain Current Strategy"
	if len(c.Opportunities) > 0 {
		opps = strings.Join(c.Opportunities, "; ")
	}

	return json.Marshal(candidateView{
		BusinessName:    c.BusinessName,
		PrimaryCategory: c.PrimaryCategory,
		Location:        c.Location,
		LocalPresence:   fmt.Sprintf("%d/6", c.LocalPresenceScore),
		SEMActivity:     sem,
		KeyGaps:         gaps,
		Opportunities:   opps,
		MatchType:       string(c.Tier),
		Relevance:       c.Relevance,
	})
}
