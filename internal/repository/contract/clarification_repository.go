package contract

import (
	"context"
	"time"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ClarificationRepository interface {
	Create(ctx context.Context, request *entity.ClarificationRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ClarificationRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ClarificationRequest, error)

	// UpdateStatusIf moves a request from one status to another, optionally
	// recording the answer. Returns false when the row was not in fromStatus.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, answer *string) (bool, error)

	// CancelPendingByUser supersedes any pending request for the user.
	// Returns the number of rows cancelled.
	CancelPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// ExpireBatch marks pending requests past their TTL as expired.
	ExpireBatch(ctx context.Context, now time.Time) (int64, error)
}
