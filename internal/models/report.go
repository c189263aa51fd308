// internal/models/report.go
package models

import (
	"encoding/json"
	"fmt"
)

// DigitalMetrics holds the detail analyzer's sub-scores. DScore is their mean.
type DigitalMetrics struct {
	SEOScore    int
	SocialScore int
	DScore      float64
}

func (m DigitalMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DScore string `json:"D-Score"`
		SEO    string `json:"SEO Score"`
		Social string `json:"Social Media Score"`
	}{
		DScore: fmt.Sprintf("%.1f/10", m.DScore),
		SEO:    fmt.Sprintf("%d/10", m.SEOScore),
		Social: fmt.Sprintf("%d/10", m.SocialScore),
	})
}

type SWOT struct {
	Strengths     []string `json:"Strengths"`
	Weaknesses    []string `json:"Weaknesses"`
	Opportunities []string `json:"Opportunities"`
	Threats       []string `json:"Threats"`
}

// Timing is an outreach window plus urgency tier.
type Timing struct {
	Days     string
	Hours    string
	Reason   string
	Urgency  string
	FollowUp string
}

// OptimalTiming renders "{days}, {time} - {reason}".
func (t Timing) OptimalTiming() string {
	return fmt.Sprintf("%s, %s - %s", t.Days, t.Hours, t.Reason)
}

func (t Timing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OptimalTiming string `json:"optimal_timing"`
		Urgency       string `json:"urgency"`
		FollowUp      string `json:"follow_up_schedule"`
	}{t.OptimalTiming(), t.Urgency, t.FollowUp})
}

type ProspectReport struct {
	BusinessName       string         `json:"Prospect Business Name"`
	PrimaryCategory    string         `json:"Primary Category"`
	Location           string         `json:"Location"`
	Metrics            DigitalMetrics `json:"BuzzBoard Metrics"`
	SWOT               SWOT           `json:"SWOT Analysis"`
	MarketTrends       []string       `json:"Market Trends"`
	CompetitorAnalysis []string       `json:"Competitor Analysis"`
	Timing             Timing         `json:"Communication Timing"`
	EngagementStrategy string         `json:"Engagement Strategy"`
}

// CommunicationBrief is the structured input for outreach drafting.
type CommunicationBrief struct {
	BusinessName       string   `json:"businessName"`
	PrimaryCategory    string   `json:"primaryCategory"`
	Location           string   `json:"location"`
	Segment            Segment  `json:"segment"`
	Channels           []string `json:"channels"`
	OptimalTiming      string   `json:"optimalTiming"`
	Urgency            string   `json:"urgency"`
	FollowUp           string   `json:"followUp"`
	EngagementStrategy string   `json:"engagementStrategy"`
	KeyWeaknesses      []string `json:"keyWeaknesses"`
	Opportunities      []string `json:"opportunities"`
	Signature          string   `json:"signature"`
}
