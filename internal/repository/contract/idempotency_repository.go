package contract

import (
	"context"
	"time"

	"biz-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type IdempotencyRepository interface {
	// Find returns (nil, nil) when no record exists for the key.
	Find(ctx context.Context, userID uuid.UUID, messageID string) (*entity.IdempotencyRecord, error)

	// Insert stores the record. A duplicate-key failure means another
	// delivery won the race and is not an error.
	Insert(ctx context.Context, record *entity.IdempotencyRecord) error

	// DeleteExpired purges records past their TTL.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
