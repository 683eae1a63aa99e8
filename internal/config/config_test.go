package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 0.80, cfg.Routing.FastPathThreshold)
	assert.Equal(t, 0.55, cfg.Routing.MinConfidence)
	assert.Equal(t, 0.10, cfg.Routing.ClarifyEpsilon)
	assert.Equal(t, 0.15, cfg.Routing.ContinuationMargin)
	assert.Equal(t, 2*time.Minute, cfg.Routing.RecentActivityMax)

	assert.Equal(t, 4*time.Hour, cfg.Session.InactivityThreshold)
	assert.True(t, cfg.Session.OvernightBoundary)
	assert.Equal(t, 12, cfg.Session.TurnWindowSize)

	assert.Equal(t, 5*time.Minute, cfg.Clarification.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Recovery.Threshold)

	assert.Equal(t, 0, cfg.Routing.PriorityTiers["cancel"])
	assert.Equal(t, 1, cfg.Routing.PriorityTiers["provide_data"])
	assert.Equal(t, 4, cfg.Routing.PriorityTiers["small_talk"])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROUTING_MIN_CONFIDENCE", "0.7")
	t.Setenv("SESSION_INACTIVITY_THRESHOLD", "90m")
	t.Setenv("SESSION_OVERNIGHT_BOUNDARY", "false")

	cfg := Load()
	assert.Equal(t, 0.7, cfg.Routing.MinConfidence)
	assert.Equal(t, 90*time.Minute, cfg.Session.InactivityThreshold)
	assert.False(t, cfg.Session.OvernightBoundary)
}

func TestTierMapParsing(t *testing.T) {
	t.Setenv("ROUTING_PRIORITY_TIERS", "cancel=0, escalate=1,broken,alsobad=x")

	cfg := Load()
	assert.Equal(t, 0, cfg.Routing.PriorityTiers["cancel"])
	assert.Equal(t, 1, cfg.Routing.PriorityTiers["escalate"])
	_, exists := cfg.Routing.PriorityTiers["broken"]
	assert.False(t, exists)
}

func TestTierMapFallbackOnGarbage(t *testing.T) {
	t.Setenv("ROUTING_PRIORITY_TIERS", "nonsense")

	cfg := Load()
	// Unparseable values fall back to the defaults.
	assert.Equal(t, 0, cfg.Routing.PriorityTiers["cancel"])
	assert.Equal(t, 4, cfg.Routing.PriorityTiers["small_talk"])
}
