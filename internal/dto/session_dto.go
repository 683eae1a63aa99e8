package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShowSessionResponse struct {
	Id                   uuid.UUID `json:"id"`
	UserId               uuid.UUID `json:"user_id"`
	FsmState             string    `json:"fsm_state"`
	ExpectingResponse    bool      `json:"expecting_response"`
	LastAction           string    `json:"last_action,omitempty"`
	AvailableNextActions []string  `json:"available_next_actions,omitempty"`
	ClosureReason        *string   `json:"closure_reason,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	LastActivityAt       time.Time `json:"last_activity_at"`
}

type EndSessionRequest struct {
	Reason string `json:"reason"`
}

type TransitionLogResponse struct {
	Id            uuid.UUID `json:"id"`
	FromState     string    `json:"from_state"`
	ToState       string    `json:"to_state,omitempty"`
	Trigger       string    `json:"trigger"`
	CorrelationId uuid.UUID `json:"correlation_id"`
	Success       bool      `json:"success"`
	Error         *string   `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
