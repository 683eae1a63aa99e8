package recovery

import (
	"context"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/specification"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/clarify"
	"biz-assistant-be/pkg/events"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/idempotency"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Manager fixes what an unclean shutdown leaves behind: non-terminal
// sessions nobody is driving anymore, expired clarifications, stale
// idempotency rows.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *fsm.Engine
	clarifier  *clarify.Manager
	guard      *idempotency.Guard
	publisher  events.Publisher
	log        logger.ILogger
	threshold  time.Duration
}

func NewManager(
	uowFactory unitofwork.RepositoryFactory,
	engine *fsm.Engine,
	clarifier *clarify.Manager,
	guard *idempotency.Guard,
	publisher events.Publisher,
	log logger.ILogger,
	threshold time.Duration,
) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		engine:     engine,
		clarifier:  clarifier,
		guard:      guard,
		publisher:  publisher,
		log:        log,
		threshold:  threshold,
	}
}

// RecoverOnStartup abandons orphaned sessions and runs the TTL sweeps. Safe
// to run from several starting instances at once: a row another instance
// already abandoned shows up as a conflict or terminal-state rejection and
// counts as handled.
func (m *Manager) RecoverOnStartup(ctx context.Context) (int, error) {
	abandoned, err := m.sweepOrphans(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := m.clarifier.SweepExpired(ctx); err != nil {
		m.log.Warn("recovery", "clarification sweep failed", map[string]interface{}{"error": err.Error()})
	}
	if _, err := m.guard.Sweep(ctx); err != nil {
		m.log.Warn("recovery", "idempotency sweep failed", map[string]interface{}{"error": err.Error()})
	}

	m.log.Info("recovery", "startup recovery complete", map[string]interface{}{
		"abandoned": abandoned,
	})
	return abandoned, nil
}

func (m *Manager) sweepOrphans(ctx context.Context) (int, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	cutoff := time.Now().Add(-m.threshold)

	orphans, err := uow.SessionRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.LastActivityBefore{Cutoff: cutoff},
	)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, session := range orphans {
		_, err := m.engine.Transition(ctx, session.Id, fsm.TriggerForceAbandon,
			fsm.MetadataPatch{},
			fsm.WithClosureReason(constant.ClosureOrphanedOnRestart),
		)
		if err != nil {
			// Already terminal means another instance got there first.
			if apperror.IsConflict(err) || apperror.IsValidation(err) {
				continue
			}
			return abandoned, err
		}
		abandoned++
		m.publishRecovered(ctx, session.Id)
	}
	return abandoned, nil
}

func (m *Manager) publishRecovered(ctx context.Context, sessionID uuid.UUID) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, events.NewSessionRecovered(sessionID, constant.ClosureOrphanedOnRestart)); err != nil {
		m.log.Warn("recovery", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}

// Schedule registers the recurring sweeps on the given cron runner.
func (m *Manager) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := m.sweepOrphans(ctx); err != nil {
			m.log.Warn("recovery", "orphan sweep failed", map[string]interface{}{"error": err.Error()})
		}
		if _, err := m.clarifier.SweepExpired(ctx); err != nil {
			m.log.Warn("recovery", "clarification sweep failed", map[string]interface{}{"error": err.Error()})
		}
		if _, err := m.guard.Sweep(ctx); err != nil {
			m.log.Warn("recovery", "idempotency sweep failed", map[string]interface{}{"error": err.Error()})
		}
	})
	return err
}
