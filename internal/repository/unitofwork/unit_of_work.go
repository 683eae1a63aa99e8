package unitofwork

import (
	"context"

	"biz-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ClarificationRepository() contract.ClarificationRepository
	IdempotencyRepository() contract.IdempotencyRepository
	TransitionLogRepository() contract.TransitionLogRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
}
