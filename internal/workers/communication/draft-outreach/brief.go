// internal/workers/communication/draft-outreach/brief.go
package draftoutreach

import (
	"strings"

	"sales-assistant/internal/models"
)

var (
	salesRepChannels  = []string{"Personal outreach email", "Cold call script", "LinkedIn message"}
	demandGenChannels = []string{"Email campaign template", "Nurture sequence", "Broad messaging"}
)

// Channels returns the outreach formats for a user segment. Unknown users get campaign formats.
func Channels(segment models.Segment) []string {
	src := demandGenChannels
	if segment == models.SegmentSalesRep {
		src = salesRepChannels
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Signature renders the sign-off block appended to every drafted message.
func Signature(signOff, sender string) string {
	signOff = strings.TrimSpace(signOff)
	sender = strings.TrimSpace(sender)
	switch {
	case signOff == "":
		return sender
	case sender == "":
		return signOff
	default:
		return signOff + ",\n" + sender
	}
}

// BuildBrief turns an analysis report into the structured input for drafting.
func BuildBrief(report *models.ProspectReport, segment models.Segment, signature string) *models.CommunicationBrief {
	if segment == "" {
		segment = models.SegmentUnknown
	}
	return &models.CommunicationBrief{
		BusinessName:       report.BusinessName,
		PrimaryCategory:    report.PrimaryCategory,
		Location:           report.Location,
		Segment:            segment,
		Channels:           Channels(segment),
		OptimalTiming:      report.Timing.OptimalTiming(),
		Urgency:            report.Timing.Urgency,
		FollowUp:           report.Timing.FollowUp,
		EngagementStrategy: report.EngagementStrategy,
		KeyWeaknesses:      append([]string(nil), report.SWOT.Weaknesses...),
		Opportunities:      append([]string(nil), report.SWOT.Opportunities...),
		Signature:          signature,
	}
}
