// internal/workers/routing/route-request/decision.go
package routerequest

import (
	"fmt"
	"strings"
	"unicode"

	"sales-assistant/internal/models"
)

const noHistory = "No previous context"

// routeRules are checked in order; the first keyword contained in the route token wins.
var routeRules = []struct {
	keyword string
	route   models.Route
}{
	{"prospecting", models.RouteProspecting},
	{"insights", models.RouteInsights},
	{"communication", models.RouteCommunication},
}

// ParseDecision reads a "SEGMENT|ROUTE" classifier answer. Without a pipe the whole
// answer is the route token and the segment is Unknown.
func ParseDecision(raw string) models.RouteDecision {
	segment := models.SegmentUnknown
	token := raw
	if parts := strings.SplitN(raw, "|", 2); len(parts) == 2 {
		segment = ParseSegment(parts[0])
		token = parts[1]
	}

	return models.RouteDecision{
		UserSegment: segment,
		Route:       ParseRoute(token),
	}
}

func ParseRoute(token string) models.Route {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, rule := range routeRules {
		if strings.Contains(token, rule.keyword) {
			return rule.route
		}
	}
	return models.RouteTerminate
}

// ParseSegment accepts "SALESREP", "Sales Rep", "sales_rep" and the like.
func ParseSegment(s string) models.Segment {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, s)

	switch {
	case strings.Contains(letters, "SALESREP"):
		return models.SegmentSalesRep
	case strings.Contains(letters, "DEMANDGEN"):
		return models.SegmentDemandGen
	default:
		return models.SegmentUnknown
	}
}

// BuildPrompt fills the router template with the message and the recent history.
func BuildPrompt(template, message string, history []string) string {
	if template == "" {
		template = DefaultPrompt
	}
	return strings.NewReplacer(
		"{history}", formatHistory(history),
		"{message}", message,
	).Replace(template)
}

func formatHistory(history []string) string {
	if len(history) == 0 {
		return noHistory
	}
	quoted := make([]string, len(history))
	for i, q := range history {
		quoted[i] = fmt.Sprintf("%q", q)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
