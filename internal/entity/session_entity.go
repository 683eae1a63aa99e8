package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionMetadata is the structured per-session conversation context.
// Known fields are explicit; Extra is the extension slot for handler-specific
// values so that new fields never silently default absent.
type SessionMetadata struct {
	ExpectingResponse    bool              `json:"expecting_response"`
	LastAction           string            `json:"last_action,omitempty"`
	AvailableNextActions []string          `json:"available_next_actions,omitempty"`
	Extra                map[string]string `json:"extra,omitempty"`
}

// HasNextAction reports whether action is currently offered to the user.
func (m SessionMetadata) HasNextAction(action string) bool {
	for _, a := range m.AvailableNextActions {
		if a == action {
			return true
		}
	}
	return false
}

type Session struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	FsmState       string
	TaskRef        string
	ProjectRef     string
	Metadata       SessionMetadata
	ClosureReason  *string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      *time.Time
}
