package contract

import (
	"context"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/repository/specification"
)

// TransitionLogRepository is append-only. There is deliberately no update or
// delete operation; audit rows are immutable within the retention window.
type TransitionLogRepository interface {
	Append(ctx context.Context, entry *entity.TransitionLogEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TransitionLogEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
