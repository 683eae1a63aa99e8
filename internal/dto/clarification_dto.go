package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShowClarificationResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Prompt    string    `json:"prompt"`
	Options   []string  `json:"options"`
	Status    string    `json:"status"`
	Answer    *string   `json:"answer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AnswerClarificationRequest struct {
	Id     uuid.UUID
	Answer string `json:"answer" validate:"required"`
}
