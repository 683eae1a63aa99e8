package entity

import (
	"time"

	"github.com/google/uuid"
)

// TransitionLogEntry is the append-only audit row for every transition
// attempt, successful or rejected.
type TransitionLogEntry struct {
	Id            uuid.UUID
	SessionId     uuid.UUID
	FromState     string
	ToState       string
	Trigger       string
	CorrelationId uuid.UUID
	Success       bool
	Error         *string
	CreatedAt     time.Time
}
