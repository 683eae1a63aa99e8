package entity

import (
	"time"

	"github.com/google/uuid"
)

type ClarificationRequest struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId uuid.UUID
	Prompt    string
	Options   []string
	Status    string
	Answer    *string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c *ClarificationRequest) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
