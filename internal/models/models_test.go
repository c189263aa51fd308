package models

import (
	"encoding/json"
	"fmt"
	"testing"

	apperrors "sales-assistant/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresence(t *testing.T) {
	bundle := SignalBundle{
		SignalGooglePlaces: TextSignal("Yes"),
		SignalSEM:          TextSignal("No"),
		SignalFBPosts:      BoolSignal(true),
		SignalReviews:      NumberSignal(14),
		SignalInstagram:    TextSignal(" yes "),
	}

	tests := []struct {
		signal string
		want   bool
	}{
		{SignalGooglePlaces, true},
		{SignalSEM, false},
		{SignalFBPosts, true},
		{SignalInstagram, true},
		{SignalTwitter, false},
	}
	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			assert.Equal(t, tt.want, Presence(bundle, tt.signal))
		})
	}

	assert.False(t, Presence(nil, SignalGooglePlaces))
	assert.Equal(t, 14.0, ReviewCount(bundle))
	assert.Zero(t, ReviewCount(SignalBundle{SignalReviews: TextSignal("40")}))
}

func TestSignalValue_JSON(t *testing.T) {
	var bundle SignalBundle
	require.NoError(t, json.Unmarshal([]byte(`{"Google Places":"Yes","Reviews (local and social)":12,"SEM":null,"Twitter":false}`), &bundle))

	assert.True(t, Presence(bundle, SignalGooglePlaces))
	assert.Equal(t, 12.0, ReviewCount(bundle))
	assert.True(t, bundle.Get(SignalSEM).IsAbsent())
	assert.False(t, Presence(bundle, SignalTwitter))

	out, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Google Places":"Yes","Reviews (local and social)":12,"SEM":null,"Twitter":false}`, string(out))
}

func TestScoredCandidate_MarshalJSON(t *testing.T) {
	c := ScoredCandidate{
		BusinessName:       "Lone Star PCs",
		PrimaryCategory:    "Computer Contractors",
		Location:           "Austin, TX",
		LocalPresenceScore: 1,
		Gaps:               []string{"No Google Places Listing", "No Paid Search Activity"},
		Tier:               TierStrict,
		Relevance:          4,
	}
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Prospect Business Name": "Lone Star PCs",
		"Primary Category": "Computer Contractors",
		"Location": "Austin, TX",
		"Local Presence Score": "1/6",
		"SEM Activity": "None",
		"Key Gaps": "No Google Places Listing; No Paid Search Activity",
		"Opportunities": "Maintain Current Strategy",
		"Match Type": "Strict",
		"relevance_score": 4
	}`, string(out))

	filtered := ScoredCandidate{BusinessName: "Quiet Co", FilteredOut: true, Status: StatusFilteredOutSEM}
	out, err = json.Marshal(filtered)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Prospect Business Name":"Quiet Co","Status":"Filtered out - No Google Ads activity found","relevance_score":0}`, string(out))
}

func TestReport_MarshalJSON(t *testing.T) {
	r := ProspectReport{
		BusinessName: "Acme",
		Metrics:      DigitalMetrics{SEOScore: 7, SocialScore: 8, DScore: 7.5},
		Timing: Timing{
			Days: "Tuesday-Thursday", Hours: "10am-2pm EST", Reason: "B2B tech businesses most responsive mid-week",
			Urgency: "Send within 24 hours", FollowUp: "Follow up in 1 week",
		},
	}
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	metrics := decoded["BuzzBoard Metrics"].(map[string]interface{})
	assert.Equal(t, "7.5/10", metrics["D-Score"])
	assert.Equal(t, "7/10", metrics["SEO Score"])
	timing := decoded["Communication Timing"].(map[string]interface{})
	assert.Equal(t, "Tuesday-Thursday, 10am-2pm EST - B2B tech businesses most responsive mid-week", timing["optimal_timing"])
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", apperrors.NewProspectNotFoundError("Acme Corp"), StatusProspectNotFound},
		{"no match", apperrors.NewNoMatchError("empty"), StatusNoProspects},
		{"classifier", apperrors.NewClassifierTimeoutError("extract"), StatusFailedToProcess},
		{"routing", apperrors.NewRoutingFailedError(fmt.Errorf("boom")), StatusRoutingFailed},
		{"budget", apperrors.NewBudgetExceededError("cap"), StatusBudgetExceeded},
		{"plain", fmt.Errorf("unexpected"), StatusUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err).Status)
		})
	}
	assert.Nil(t, StatusFromError(nil))
}
