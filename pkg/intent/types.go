package intent

import "time"

// Priority tier for an intent. P0 strictly dominates P1..P4 regardless of
// confidence: a "cancel" at 0.4 beats an "update_progress" at 0.99.
type Priority int

const (
	P0 Priority = iota
	P1
	P2
	P3
	P4
)

// CandidateIntent is one classifier hypothesis for the current message.
// Ephemeral: produced per request, never persisted.
type CandidateIntent struct {
	Name       string
	Confidence float64
	Tier       Priority
	Parameters map[string]interface{}
}

// Context is the FSM-side input to routing.
type Context struct {
	State             string
	ExpectingResponse bool
	Age               time.Duration
	// ContinuationIntents are the intent names that continue the active
	// flow, taken from the session's available_next_actions.
	ContinuationIntents []string
}

func (c Context) isContinuation(name string) bool {
	for _, n := range c.ContinuationIntents {
		if n == name {
			return true
		}
	}
	return false
}

// Config carries the routing thresholds. Tuned empirically; always supplied
// from configuration.
type Config struct {
	MinConfidence      float64
	ClarifyEpsilon     float64
	ContinuationMargin float64
	RecentActivityMax  time.Duration
}

// Decision is the routing outcome. Intent is nil iff NeedsClarification.
type Decision struct {
	Intent             *CandidateIntent
	NeedsClarification bool
	Reason             string
}
