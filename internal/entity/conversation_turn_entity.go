package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one message of the recent-history window handed to the
// classifier as context. Persisted per session, cached in memory.
type ConversationTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Text      string
	CreatedAt time.Time
}
