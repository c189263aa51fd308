// internal/workers/prospecting/find-prospects/score.go
package findprospects

import (
	"strings"

	"sales-assistant/internal/models"
)

var (
	lowPresencePhrases = []string{"low local presence", "weak local presence"}
	highSEMPhrases     = []string{"high google ads", "high sem", "google ads spend", "high ads spend"}
)

// Intent holds the quantitative asks the extractor is told to ignore.
type Intent struct {
	LowLocalPresence bool
	HighSEM          bool
}

func ParseIntent(query string) Intent {
	q := strings.ToLower(query)
	return Intent{
		LowLocalPresence: containsAny(q, lowPresencePhrases),
		HighSEM:          containsAny(q, highSEMPhrases),
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// LocalPresenceScore is in [0,6].
func LocalPresenceScore(b models.SignalBundle) int {
	score := 0
	if models.Presence(b, models.SignalGooglePlaces) {
		score += 3
	}
	if models.ReviewCount(b) > 10 {
		score += 2
	}
	if models.Presence(b, models.SignalFBPosts) {
		score++
	}
	return score
}

func SEMScore(b models.SignalBundle) int {
	if models.Presence(b, models.SignalSEM) {
		return 3
	}
	return 0
}

// Score analyzes one record against the query intent. In strict mode a record failing the
// low-presence ask keeps its analysis with zero relevance, while one failing the high-SEM ask
// is returned as a filtered-out marker.
func Score(r models.Record, intent Intent, relaxed bool) models.ScoredCandidate {
	local := LocalPresenceScore(r.Signals)
	sem := SEMScore(r.Signals)

	tier := models.TierStrict
	if relaxed {
		tier = models.TierRelaxed
	}
	c := models.ScoredCandidate{
		BusinessName:       r.Name(),
		PrimaryCategory:    r.PrimaryCategory(),
		Location:           r.Location(),
		LocalPresenceScore: local,
		SEMActive:          sem > 0,
		Tier:               tier,
	}

	relevance := 1
	excluded := false

	if intent.LowLocalPresence {
		if local <= 2 {
			relevance += 3
			c.Gaps = append(c.Gaps, "Weak Local Presence")
			c.Opportunities = append(c.Opportunities, "Improve Google My Business & Local SEO")
		} else if !relaxed {
			excluded = true
		}
	}

	if intent.HighSEM {
		if sem >= 3 {
			relevance += 3
			c.Opportunities = append(c.Opportunities, "Optimize Current SEM Campaigns")
		} else if !relaxed {
			return models.ScoredCandidate{
				BusinessName: r.Name(),
				Tier:         tier,
				FilteredOut:  true,
				Status:       models.StatusFilteredOutSEM,
			}
		}
	}

	if !models.Presence(r.Signals, models.SignalGooglePlaces) {
		c.Gaps = append(c.Gaps, "No Google Places Listing")
		c.Opportunities = appendUnique(c.Opportunities, "Claim Google Places Listing")
	}
	if sem == 0 {
		c.Gaps = append(c.Gaps, "No Paid Search Activity")
		c.Opportunities = appendUnique(c.Opportunities, "Launch Google Ads Campaigns")
	}
	if !models.Presence(r.Signals, models.SignalFBPosts) {
		c.Gaps = append(c.Gaps, "Inactive Social Media")
		c.Opportunities = appendUnique(c.Opportunities, "Activate Social Media Posting")
	}

	if relaxed {
		relevance += len(c.Gaps)
	}
	if excluded {
		relevance = 0
	}
	c.Relevance = relevance
	return c
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
