package clarify

import (
	"context"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/specification"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// Manager owns the clarification lifecycle: short-lived disambiguation
// requests with at most one pending per user.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger
	ttl        time.Duration
}

func NewManager(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger, ttl time.Duration) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
		ttl:        ttl,
	}
}

// Create stores a pending request, superseding any existing pending one for
// the user. Superseding is logged and audited, never silent.
func (m *Manager) Create(ctx context.Context, userID, sessionID uuid.UUID, prompt string, options []string) (*entity.ClarificationRequest, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Upstream(err, "begin clarification tx")
	}
	defer uow.Rollback()

	superseded, err := uow.ClarificationRepository().CancelPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request := &entity.ClarificationRequest{
		Id:        uuid.New(),
		UserId:    userID,
		SessionId: sessionID,
		Prompt:    prompt,
		Options:   options,
		Status:    constant.ClarificationPending,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := uow.ClarificationRepository().Create(ctx, request); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Upstream(err, "commit clarification")
	}

	if superseded > 0 {
		m.log.Info("clarify", "superseded pending clarification", map[string]interface{}{
			"user_id": userID.String(),
			"count":   superseded,
		})
	}
	m.publish(ctx, events.NewClarificationCreated(request.Id, userID, sessionID, superseded))

	return request, nil
}

// GetPending returns the user's pending request, lazily expiring it when the
// TTL has elapsed.
func (m *Manager) GetPending(ctx context.Context, userID uuid.UUID) (*entity.ClarificationRequest, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.ClarificationRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.PendingOnly{},
	)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, nil
	}

	if request.IsExpired(time.Now()) {
		// Conditional update: a concurrent sweep marking the same row first
		// is fine either way.
		if _, err := uow.ClarificationRepository().UpdateStatusIf(ctx, request.Id, constant.ClarificationPending, constant.ClarificationExpired, nil); err != nil {
			return nil, err
		}
		m.publish(ctx, events.NewClarificationClosed(request.Id, constant.ClarificationExpired))
		return nil, nil
	}

	return request, nil
}

// Answer records the user's choice exactly once.
func (m *Manager) Answer(ctx context.Context, id uuid.UUID, answer string) (*entity.ClarificationRequest, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.ClarificationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NotFound("clarification %s", id)
	}

	switch request.Status {
	case constant.ClarificationExpired:
		return nil, apperror.Expired("clarification %s", id)
	case constant.ClarificationAnswered, constant.ClarificationCancelled:
		return nil, apperror.Conflict("clarification %s already %s", id, request.Status)
	}

	if request.IsExpired(time.Now()) {
		if _, err := uow.ClarificationRepository().UpdateStatusIf(ctx, id, constant.ClarificationPending, constant.ClarificationExpired, nil); err != nil {
			return nil, err
		}
		m.publish(ctx, events.NewClarificationClosed(id, constant.ClarificationExpired))
		return nil, apperror.Expired("clarification %s", id)
	}

	ok, err := uow.ClarificationRepository().UpdateStatusIf(ctx, id, constant.ClarificationPending, constant.ClarificationAnswered, &answer)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to another answer, sweep or supersede.
		return nil, apperror.Conflict("clarification %s no longer pending", id)
	}

	request.Status = constant.ClarificationAnswered
	request.Answer = &answer
	m.publish(ctx, events.NewClarificationClosed(id, constant.ClarificationAnswered))

	return request, nil
}

// SweepExpired expires pending requests past their TTL. Idempotent and safe
// to run concurrently with itself and with GetPending.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	expired, err := uow.ClarificationRepository().ExpireBatch(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		m.log.Info("clarify", "expired clarifications", map[string]interface{}{"count": expired})
	}
	return expired, nil
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.log.Warn("clarify", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}
