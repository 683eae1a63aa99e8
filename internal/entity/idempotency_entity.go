package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord caches the outcome of a processed inbound message so a
// gateway redelivery short-circuits instead of re-running side effects.
type IdempotencyRecord struct {
	UserId       uuid.UUID
	MessageId    string
	CachedResult []byte
	RecordedAt   time.Time
	ExpiresAt    time.Time
}

func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
