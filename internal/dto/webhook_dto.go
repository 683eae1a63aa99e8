package dto

import (
	"github.com/google/uuid"
)

type WebhookMessageRequest struct {
	UserId    uuid.UUID `json:"user_id" validate:"required"`
	MessageId string    `json:"message_id" validate:"required"`
	Text      string    `json:"text" validate:"required"`
}

type WebhookMessageResponse struct {
	SessionId     uuid.UUID `json:"session_id"`
	Reply         string    `json:"reply"`
	Intent        string    `json:"intent,omitempty"`
	State         string    `json:"state,omitempty"`
	Clarification bool      `json:"clarification"`
	Duplicate     bool      `json:"duplicate"`
}
