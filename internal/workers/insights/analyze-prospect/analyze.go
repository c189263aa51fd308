// internal/workers/insights/analyze-prospect/analyze.go
package analyzeprospect

import (
	"fmt"
	"strings"

	apperrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
)

const (
	minPeersForTrends = 2

	strengthPlaces  = "Strong local presence with Google Places listing"
	strengthSEM     = "Active in paid search advertising"
	strengthSocial  = "Maintains active social media presence"
	strengthLimited = "Limited digital presence"

	weaknessPlaces = "Missing Google Places listing - invisible in local searches"
	weaknessSEM    = "No paid search presence - missing potential leads"
	weaknessSocial = "Inactive social media - poor customer engagement"

	opportunityTransformation = "Complete digital transformation opportunity"
	opportunityPlaces         = "Establish Google My Business for local visibility"
	opportunitySEM            = "Launch targeted Google Ads campaigns"
	opportunitySocial         = "Re-engage customers with a regular social posting schedule"

	threatCompetitors = "Competitors with stronger digital presence"
)

// Analyze builds the full report for name. A miss returns PROSPECT_NOT_FOUND.
func Analyze(store *dataset.Store, name string) (*models.ProspectReport, error) {
	record, ok := store.FindByName(name)
	if !ok {
		return nil, apperrors.NewProspectNotFoundError(name)
	}

	swot := BuildSWOT(record.Signals)
	trends, competitors := MarketTrends(record, store.PeerGroup(record.PrimaryCategory(), record.State()))

	return &models.ProspectReport{
		BusinessName:       record.Name(),
		PrimaryCategory:    record.PrimaryCategory(),
		Location:           record.Location(),
		Metrics:            Metrics(record.Signals),
		SWOT:               swot,
		MarketTrends:       trends,
		CompetitorAnalysis: competitors,
		Timing:             OptimalTiming(record.PrimaryCategory(), len(swot.Weaknesses)),
		EngagementStrategy: EngagementStrategy(swot),
	}, nil
}

// SEOScore is in [0,10].
func SEOScore(b models.SignalBundle) int {
	score := 0
	if models.Presence(b, models.SignalGooglePlaces) {
		score += 4
	}
	if models.Presence(b, models.SignalSEM) {
		score += 3
	}
	if models.ReviewCount(b) > 20 {
		score += 3
	}
	return min(score, 10)
}

// SocialScore is in [0,10].
func SocialScore(b models.SignalBundle) int {
	score := 0
	if models.Presence(b, models.SignalFBPosts) {
		score += 5
	}
	if models.Presence(b, models.SignalInstagram) {
		score += 3
	}
	if models.Presence(b, models.SignalTwitter) {
		score += 2
	}
	return min(score, 10)
}

func Metrics(b models.SignalBundle) models.DigitalMetrics {
	seo, social := SEOScore(b), SocialScore(b)
	return models.DigitalMetrics{
		SEOScore:    seo,
		SocialScore: social,
		DScore:      float64(seo+social) / 2,
	}
}

// BuildSWOT never returns an empty strengths, opportunities or threats section.
func BuildSWOT(b models.SignalBundle) models.SWOT {
	places := models.Presence(b, models.SignalGooglePlaces)
	sem := models.Presence(b, models.SignalSEM)
	social := models.Presence(b, models.SignalFBPosts)

	swot := models.SWOT{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{threatCompetitors},
	}

	if places {
		swot.Strengths = append(swot.Strengths, strengthPlaces)
	} else {
		swot.Weaknesses = append(swot.Weaknesses, weaknessPlaces)
	}
	if sem {
		swot.Strengths = append(swot.Strengths, strengthSEM)
	} else {
		swot.Weaknesses = append(swot.Weaknesses, weaknessSEM)
	}
	if social {
		swot.Strengths = append(swot.Strengths, strengthSocial)
	} else {
		swot.Weaknesses = append(swot.Weaknesses, weaknessSocial)
	}

	if len(swot.Strengths) == 0 {
		swot.Opportunities = append(swot.Opportunities, opportunityTransformation)
	}
	if !places {
		swot.Opportunities = append(swot.Opportunities, opportunityPlaces)
	}
	if !sem {
		swot.Opportunities = append(swot.Opportunities, opportunitySEM)
	}
	if !social {
		swot.Opportunities = append(swot.Opportunities, opportunitySocial)
	}
	if len(swot.Opportunities) == 0 {
		swot.Opportunities = append(swot.Opportunities, opportunityTransformation)
	}

	if len(swot.Strengths) == 0 {
		swot.Strengths = append(swot.Strengths, strengthLimited)
	}
	return swot
}

// MarketTrends compares adoption of the core signals across the peer group.
// peers includes the record itself.
func MarketTrends(record models.Record, peers []models.Record) (trends, competitors []string) {
	total := len(peers)
	if total < minPeersForTrends {
		return []string{"Insufficient data - limited market data available"},
			[]string{"Insufficient data - market analysis needs more peers"}
	}

	var places, sem, social int
	for _, p := range peers {
		if models.Presence(p.Signals, models.SignalGooglePlaces) {
			places++
		}
		if models.Presence(p.Signals, models.SignalSEM) {
			sem++
		}
		if models.Presence(p.Signals, models.SignalFBPosts) {
			social++
		}
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	placesPct, semPct, socialPct := pct(places), pct(sem), pct(social)

	if placesPct > 70 {
		trends = append(trends, fmt.Sprintf("High Google Places adoption (%.0f%%) in %s", placesPct, record.PrimaryCategory()))
	}
	if semPct > 50 {
		trends = append(trends, fmt.Sprintf("Growing SEM usage (%.0f%%) in local market", semPct))
	}
	if socialPct < 30 {
		trends = append(trends, fmt.Sprintf("Low social media presence (%.0f%%) - opportunity area", socialPct))
	}
	if len(trends) == 0 {
		trends = []string{"Market shows standard digital adoption"}
	}

	competitors = []string{fmt.Sprintf("%d similar businesses in %s", total-1, record.State())}
	if placesPct > 80 {
		competitors = append(competitors, "Most competitors have strong local SEO presence")
	}
	if semPct > 60 {
		competitors = append(competitors, "Majority using paid search - competitive landscape")
	}
	return trends, competitors
}

var (
	techWords  = []string{"computer", "tech", "software"}
	tradeWords = []string{"contractor", "plumbing", "electrical"}
)

// OptimalTiming picks a send window from the category and an urgency tier from the weakness count.
func OptimalTiming(category string, weaknesses int) models.Timing {
	var t models.Timing
	switch c := strings.ToLower(category); {
	case isTechCategory(c):
		t.Days, t.Hours, t.Reason = "Tuesday-Thursday", "10am-2pm EST", "B2B tech businesses most responsive mid-week"
	case containsAny(c, tradeWords):
		t.Days, t.Hours, t.Reason = "Monday-Wednesday", "8am-11am EST", "Service businesses check emails early morning"
	default:
		t.Days, t.Hours, t.Reason = "Tuesday-Thursday", "10am-3pm EST", "Standard business hours"
	}

	switch {
	case weaknesses >= 3:
		t.Urgency, t.FollowUp = "Send immediately", "Follow up in 3-5 days"
	case weaknesses >= 2:
		t.Urgency, t.FollowUp = "Send within 24 hours", "Follow up in 1 week"
	default:
		t.Urgency, t.FollowUp = "Send within 2-3 days", "Follow up in 2 weeks"
	}
	return t
}

// isTechCategory matches tech stems anywhere and "IT" only as a whole word.
func isTechCategory(category string) bool {
	if containsAny(category, techWords) {
		return true
	}
	for _, w := range strings.FieldsFunc(category, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ',' || r == '&'
	}) {
		if w == "it" {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// EngagementStrategy picks the opening angle from the weaknesses.
func EngagementStrategy(swot models.SWOT) string {
	weak := strings.Join(swot.Weaknesses, " ")
	switch {
	case len(swot.Weaknesses) >= 3:
		return "Lead with comprehensive digital marketing audit. Focus on immediate wins like Google My Business setup."
	case strings.Contains(weak, "Google Places"):
		return "Start conversation around local SEO and Google My Business optimization."
	case strings.Contains(weak, "SEM") || strings.Contains(strings.ToLower(weak), "paid search"):
		return "Position paid search solutions to capture competitor traffic."
	default:
		return "Focus on optimization and advanced digital marketing strategies."
	}
}
