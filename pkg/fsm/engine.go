package fsm

import (
	"context"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/specification"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// MetadataPatch carries the metadata fields a transition wants to change.
// Nil fields keep the current value. The patch is applied and persisted in
// the same UPDATE as the state change; it never becomes a follow-up write.
type MetadataPatch struct {
	ExpectingResponse    *bool
	LastAction           *string
	AvailableNextActions []string
	Extra                map[string]string
}

func (p MetadataPatch) applyTo(meta entity.SessionMetadata) entity.SessionMetadata {
	if p.ExpectingResponse != nil {
		meta.ExpectingResponse = *p.ExpectingResponse
	}
	if p.LastAction != nil {
		meta.LastAction = *p.LastAction
	}
	if p.AvailableNextActions != nil {
		meta.AvailableNextActions = p.AvailableNextActions
	}
	if p.Extra != nil {
		if meta.Extra == nil {
			meta.Extra = make(map[string]string, len(p.Extra))
		}
		for k, v := range p.Extra {
			meta.Extra[k] = v
		}
	}
	return meta
}

// SideEffect runs after a committed transition. Failures are logged, never
// rolled back.
type SideEffect func(ctx context.Context) error

type transitionOptions struct {
	closureReason *string
	correlationID uuid.UUID
	sideEffect    SideEffect
}

type TransitionOption func(*transitionOptions)

func WithClosureReason(reason string) TransitionOption {
	return func(o *transitionOptions) {
		o.closureReason = &reason
	}
}

func WithCorrelationID(id uuid.UUID) TransitionOption {
	return func(o *transitionOptions) {
		o.correlationID = id
	}
}

func WithSideEffect(fn SideEffect) TransitionOption {
	return func(o *transitionOptions) {
		o.sideEffect = fn
	}
}

// Result reports a committed transition for observability.
type Result struct {
	SessionId     uuid.UUID
	From          State
	To            State
	Trigger       Trigger
	CorrelationId uuid.UUID
}

// Engine owns every write to a session's fsm_state. No other component
// touches session rows directly.
type Engine struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger
}

func NewEngine(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) *Engine {
	return &Engine{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
	}
}

// Transition re-validates the trigger against the current persisted state,
// writes the new state plus metadata patch atomically, and appends the audit
// entry in the same transaction. A stale caller loses with a conflict and
// must re-read; the engine never retries on their behalf.
func (e *Engine) Transition(ctx context.Context, sessionID uuid.UUID, trigger Trigger, patch MetadataPatch, opts ...TransitionOption) (*Result, error) {
	options := transitionOptions{correlationID: uuid.New()}
	for _, opt := range opts {
		opt(&options)
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Upstream(err, "begin transition tx")
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("session %s", sessionID)
	}

	from := State(session.FsmState)
	to, verr := Validate(from, trigger)
	if verr != nil {
		// Rejections are audited too; the failure row commits even though
		// the session row is untouched.
		e.appendLog(ctx, uow, sessionID, from, "", trigger, options.correlationID, verr)
		if cerr := uow.Commit(); cerr != nil {
			e.log.Warn("fsm", "failed to commit rejection audit entry", map[string]interface{}{"error": cerr.Error()})
		}
		e.publish(ctx, events.NewSessionTransition(sessionID, options.correlationID, string(from), "", string(trigger), false, verr.Error()))
		return nil, verr
	}

	newMeta := patch.applyTo(session.Metadata)
	ok, err := uow.SessionRepository().CompareAndTransition(ctx, sessionID, string(from), string(to), newMeta, options.closureReason, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// The row moved between our read and the conditional update.
		conflict := apperror.Conflict("session %s left state %s during transition", sessionID, from)
		e.appendLog(ctx, uow, sessionID, from, to, trigger, options.correlationID, conflict)
		if cerr := uow.Commit(); cerr != nil {
			e.log.Warn("fsm", "failed to commit conflict audit entry", map[string]interface{}{"error": cerr.Error()})
		}
		e.publish(ctx, events.NewSessionTransition(sessionID, options.correlationID, string(from), string(to), string(trigger), false, conflict.Error()))
		return nil, conflict
	}

	e.appendLog(ctx, uow, sessionID, from, to, trigger, options.correlationID, nil)
	if err := uow.Commit(); err != nil {
		return nil, apperror.Upstream(err, "commit transition")
	}

	result := &Result{
		SessionId:     sessionID,
		From:          from,
		To:            to,
		Trigger:       trigger,
		CorrelationId: options.correlationID,
	}

	e.publish(ctx, events.NewSessionTransition(sessionID, options.correlationID, string(from), string(to), string(trigger), true, ""))

	if options.sideEffect != nil {
		if err := options.sideEffect(ctx); err != nil {
			e.log.Warn("fsm", "transition side effect failed", map[string]interface{}{
				"session_id":     sessionID.String(),
				"correlation_id": options.correlationID.String(),
				"error":          err.Error(),
			})
		}
	}

	e.log.Info("fsm", "session transitioned", map[string]interface{}{
		"session_id": sessionID.String(),
		"from":       string(from),
		"to":         string(to),
		"trigger":    string(trigger),
	})

	return result, nil
}

func (e *Engine) appendLog(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID, from, to State, trigger Trigger, correlationID uuid.UUID, failure error) {
	entry := &entity.TransitionLogEntry{
		Id:            uuid.New(),
		SessionId:     sessionID,
		FromState:     string(from),
		ToState:       string(to),
		Trigger:       string(trigger),
		CorrelationId: correlationID,
		Success:       failure == nil,
		CreatedAt:     time.Now(),
	}
	if failure != nil {
		msg := failure.Error()
		entry.Error = &msg
	}
	if err := uow.TransitionLogRepository().Append(ctx, entry); err != nil {
		e.log.Error("fsm", "failed to append transition log", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
	}
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.Warn("fsm", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}
