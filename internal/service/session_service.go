package service

import (
	"context"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/specification"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/events"
	"biz-assistant-be/pkg/fsm"

	"github.com/google/uuid"
)

// ISessionService is the session store: atomic get-or-create and
// termination. All state mutations beyond creation go through the FSM
// engine.
type ISessionService interface {
	// GetOrCreate returns the user's active session, creating one when none
	// exists or the existing one has aged out. Concurrent calls for the
	// same user converge on the same session id.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error)

	// End marks a session terminal. Ending an already-terminal session is a
	// no-op, not an error.
	End(ctx context.Context, sessionID uuid.UUID, reason string) error

	Get(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Session, error)
	TransitionHistory(ctx context.Context, sessionID uuid.UUID) ([]*entity.TransitionLogEntry, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *fsm.Engine
	publisher  events.Publisher
	log        logger.ILogger
	cfg        config.SessionConfig
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	engine *fsm.Engine,
	publisher events.Publisher,
	log logger.ILogger,
	cfg config.SessionConfig,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		engine:     engine,
		publisher:  publisher,
		log:        log,
		cfg:        cfg,
	}
}

func (s *sessionService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	existing, err := uow.SessionRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if s.reusable(existing, now) {
			if err := uow.SessionRepository().Touch(ctx, existing.Id, now); err != nil {
				return nil, false, err
			}
			existing.LastActivityAt = now
			return existing, false, nil
		}

		// Stale active row: retire it before creating a fresh one. A
		// conflict means a concurrent call already retired it.
		_, terr := s.engine.Transition(ctx, existing.Id, fsm.TriggerForceAbandon,
			fsm.MetadataPatch{},
			fsm.WithClosureReason(constant.ClosureInactivityExpired),
		)
		if terr != nil && !apperror.IsConflict(terr) && !apperror.IsValidation(terr) {
			return nil, false, terr
		}
	}

	session := &entity.Session{
		Id:             uuid.New(),
		UserId:         userID,
		FsmState:       constant.StateIdle,
		Metadata:       entity.SessionMetadata{},
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		if apperror.IsConflict(err) {
			// Lost the uniqueness race: re-fetch the winner, never retry
			// the insert.
			winner, ferr := uow.SessionRepository().FindOne(ctx,
				specification.ByUserID{UserID: userID},
				specification.ActiveOnly{},
			)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner == nil {
				return nil, false, err
			}
			s.log.Debug("session", "converged on concurrently created session", map[string]interface{}{
				"user_id":    userID.String(),
				"session_id": winner.Id.String(),
			})
			return winner, false, nil
		}
		return nil, false, err
	}

	s.publish(ctx, events.NewSessionCreated(session.Id, userID))
	s.log.Info("session", "session created", map[string]interface{}{
		"user_id":    userID.String(),
		"session_id": session.Id.String(),
	})
	return session, true, nil
}

// reusable applies the inactivity and overnight-boundary policy.
func (s *sessionService) reusable(session *entity.Session, now time.Time) bool {
	if now.Sub(session.LastActivityAt) >= s.cfg.InactivityThreshold {
		return false
	}
	if s.cfg.OvernightBoundary && !sameCalendarDay(session.LastActivityAt, now) {
		return false
	}
	return true
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *sessionService) End(ctx context.Context, sessionID uuid.UUID, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NotFound("session %s", sessionID)
	}
	if fsm.IsTerminal(fsm.State(session.FsmState)) {
		return nil
	}

	_, err = s.engine.Transition(ctx, sessionID, fsm.TriggerForceAbandon,
		fsm.MetadataPatch{},
		fsm.WithClosureReason(reason),
	)
	if err != nil && (apperror.IsConflict(err) || apperror.IsValidation(err)) {
		// Raced with another terminator; terminal either way.
		return nil
	}
	return err
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("session %s", sessionID)
	}
	return session, nil
}

func (s *sessionService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if limit <= 0 {
		limit = 20
	}
	return uow.SessionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (s *sessionService) TransitionHistory(ctx context.Context, sessionID uuid.UUID) ([]*entity.TransitionLogEntry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.TransitionLogRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}

func (s *sessionService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("session", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}
