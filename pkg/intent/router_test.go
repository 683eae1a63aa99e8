package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MinConfidence:      0.55,
		ClarifyEpsilon:     0.10,
		ContinuationMargin: 0.15,
		RecentActivityMax:  2 * time.Minute,
	}
}

func TestRouteLowestTierDominates(t *testing.T) {
	router := NewRouter(testConfig())

	// A weak cancel at P0 beats a near-certain update at P1, even below
	// the clarification threshold.
	decision := router.Route([]CandidateIntent{
		{Name: "update_progress", Confidence: 0.99, Tier: P1},
		{Name: "cancel", Confidence: 0.40, Tier: P0},
	}, Context{State: "idle"})

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "cancel", decision.Intent.Name)
	assert.False(t, decision.NeedsClarification)
}

func TestRouteCriticalTierNeverClarifies(t *testing.T) {
	router := NewRouter(testConfig())

	// A lone cancel well below MinConfidence still wins outright.
	decision := router.Route([]CandidateIntent{
		{Name: "cancel", Confidence: 0.30, Tier: P0},
	}, Context{State: "collecting_data"})

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "cancel", decision.Intent.Name)
	assert.False(t, decision.NeedsClarification)
}

func TestRouteBestInTierWins(t *testing.T) {
	router := NewRouter(testConfig())

	decision := router.Route([]CandidateIntent{
		{Name: "start_task", Confidence: 0.62, Tier: P2},
		{Name: "create_incident", Confidence: 0.91, Tier: P2},
	}, Context{State: "idle"})

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "create_incident", decision.Intent.Name)
}

func TestRouteLowConfidenceAsksClarification(t *testing.T) {
	router := NewRouter(testConfig())

	decision := router.Route([]CandidateIntent{
		{Name: "add_comment", Confidence: 0.40, Tier: P2},
	}, Context{State: "idle"})

	assert.True(t, decision.NeedsClarification)
	assert.Nil(t, decision.Intent)
}

func TestRouteNearTieAsksClarification(t *testing.T) {
	router := NewRouter(testConfig())

	decision := router.Route([]CandidateIntent{
		{Name: "add_comment", Confidence: 0.62, Tier: P2},
		{Name: "create_incident", Confidence: 0.58, Tier: P2},
	}, Context{State: "idle"})

	assert.True(t, decision.NeedsClarification)
}

func TestRouteNearTieAcrossTiersDoesNotClarify(t *testing.T) {
	router := NewRouter(testConfig())

	// The runner-up sits in a higher-numbered tier; only the winning tier's
	// pool counts toward the epsilon check.
	decision := router.Route([]CandidateIntent{
		{Name: "cancel", Confidence: 0.62, Tier: P0},
		{Name: "small_talk", Confidence: 0.60, Tier: P4},
	}, Context{State: "idle"})

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "cancel", decision.Intent.Name)
}

func TestRouteContinuationBias(t *testing.T) {
	router := NewRouter(testConfig())

	fsmCtx := Context{
		State:               "collecting_data",
		ExpectingResponse:   true,
		Age:                 30 * time.Second,
		ContinuationIntents: []string{"provide_data", "confirm"},
	}

	// provide_data trails start_task within the margin; mid-flow the
	// continuation wins.
	decision := router.Route([]CandidateIntent{
		{Name: "start_task", Confidence: 0.70, Tier: P1},
		{Name: "provide_data", Confidence: 0.60, Tier: P1},
	}, fsmCtx)

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "provide_data", decision.Intent.Name)
	assert.Equal(t, "continuation bias", decision.Reason)
}

func TestRouteContinuationBiasBeatsClarification(t *testing.T) {
	router := NewRouter(testConfig())

	fsmCtx := Context{
		State:               "collecting_data",
		ExpectingResponse:   true,
		Age:                 30 * time.Second,
		ContinuationIntents: []string{"provide_data"},
	}

	// A near-tie that would normally clarify resolves to the continuation.
	decision := router.Route([]CandidateIntent{
		{Name: "add_comment", Confidence: 0.58, Tier: P1},
		{Name: "provide_data", Confidence: 0.55, Tier: P1},
	}, fsmCtx)

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "provide_data", decision.Intent.Name)
	assert.False(t, decision.NeedsClarification)
}

func TestRouteNoContinuationBiasWhenStale(t *testing.T) {
	router := NewRouter(testConfig())

	fsmCtx := Context{
		State:               "collecting_data",
		ExpectingResponse:   true,
		Age:                 10 * time.Minute, // past RecentActivityMax
		ContinuationIntents: []string{"provide_data"},
	}

	decision := router.Route([]CandidateIntent{
		{Name: "start_task", Confidence: 0.80, Tier: P1},
		{Name: "provide_data", Confidence: 0.65, Tier: P1},
	}, fsmCtx)

	require.NotNil(t, decision.Intent)
	assert.Equal(t, "start_task", decision.Intent.Name)
}

func TestRouteEmptyCandidates(t *testing.T) {
	router := NewRouter(testConfig())
	decision := router.Route(nil, Context{State: "idle"})
	assert.True(t, decision.NeedsClarification)
}

func TestAssignTiers(t *testing.T) {
	tiers := map[string]int{
		"cancel":     0,
		"small_talk": 4,
	}

	out := AssignTiers([]CandidateIntent{
		{Name: "cancel", Confidence: 0.9},
		{Name: "small_talk", Confidence: 0.8},
		{Name: "something_new", Confidence: 0.7},
	}, tiers)

	assert.Equal(t, P0, out[0].Tier)
	assert.Equal(t, P4, out[1].Tier)
	assert.Equal(t, DefaultTier, out[2].Tier)
}

func TestAssignTiersIgnoresOutOfRange(t *testing.T) {
	out := AssignTiers([]CandidateIntent{
		{Name: "weird", Confidence: 0.9},
	}, map[string]int{"weird": 9})

	assert.Equal(t, DefaultTier, out[0].Tier)
}
