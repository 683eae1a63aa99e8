package contract

import (
	"context"
	"time"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// Create inserts a new session row. Returns apperror.Conflict when the
	// partial unique index rejects a second active session for the user.
	Create(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// CompareAndTransition writes fsm_state, metadata, closure_reason and
	// last_activity_at in one conditional UPDATE guarded by fromState.
	// Returns false when the persisted state no longer matches fromState.
	CompareAndTransition(ctx context.Context, id uuid.UUID, fromState, toState string, meta entity.SessionMetadata, closureReason *string, now time.Time) (bool, error)

	// Touch bumps last_activity_at without changing state.
	Touch(ctx context.Context, id uuid.UUID, now time.Time) error
}
