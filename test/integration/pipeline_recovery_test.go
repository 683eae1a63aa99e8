package integration

import (
	"context"
	"testing"
	"time"

	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/model"
	"biz-assistant-be/internal/repository/memory"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/internal/service"
	"biz-assistant-be/pkg/clarify"
	"biz-assistant-be/pkg/classifier"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/gateway"
	"biz-assistant-be/pkg/idempotency"
	"biz-assistant-be/pkg/intent"
	"biz-assistant-be/pkg/pipeline"
	"biz-assistant-be/pkg/recovery"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClassifier returns fixed candidates and a fixed generated reply so
// pipeline behavior can be pinned down without a model.
type scriptedClassifier struct {
	candidates []intent.CandidateIntent
	reply      string
}

func (s *scriptedClassifier) Classify(ctx context.Context, message string, history []classifier.Message, fsmCtx classifier.FSMContext) ([]intent.CandidateIntent, error) {
	return s.candidates, nil
}

func (s *scriptedClassifier) Generate(ctx context.Context, message string, history []classifier.Message, fsmCtx classifier.FSMContext) (string, error) {
	return s.reply, nil
}

func TestMidConfidenceWinnerStillTransitions(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := testLogger()
	engine := fsm.NewEngine(uowFactory, nil, sysLogger)
	svc := service.NewSessionService(uowFactory, engine, nil, sysLogger, config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
	})
	guard := idempotency.NewGuard(uowFactory, nil, nil, sysLogger, time.Hour)
	clarifier := clarify.NewManager(uowFactory, nil, sysLogger, 5*time.Minute)

	cls := &scriptedClassifier{
		candidates: []intent.CandidateIntent{{Name: constant.IntentCancel, Confidence: 0.60}},
		reply:      "All stopped. Anything else?",
	}

	orchestrator := pipeline.NewOrchestrator(
		svc, guard, clarifier, cls, engine, pipeline.DefaultRegistry(),
		gateway.NoopSender{}, uowFactory,
		memory.NewTurnCache(time.Minute, 12), sysLogger,
		pipeline.Config{
			FastPathThreshold: 0.80,
			Tiers:             map[string]int{constant.IntentCancel: 0},
			TurnWindow:        12,
			RouterConfig: intent.Config{
				MinConfidence:      0.55,
				ClarifyEpsilon:     0.10,
				ContinuationMargin: 0.15,
				RecentActivityMax:  2 * time.Minute,
			},
		},
	)

	userID := uuid.New()
	session, _, err := svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	_, err = engine.Transition(context.Background(), session.Id, fsm.TriggerStartTaskFlow, fsm.MetadataPatch{})
	require.NoError(t, err)

	reply, err := orchestrator.Process(context.Background(), pipeline.InboundMessage{
		UserId:    userID,
		MessageId: uuid.NewString(),
		Text:      "actually stop everything",
	})
	require.NoError(t, err)

	// Below the fast-path bar the wording is generated, but the cancel
	// still lands on the session.
	assert.Equal(t, constant.StateIdle, reply.State)
	assert.Equal(t, cls.reply, reply.Text)

	got, err := svc.Get(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StateIdle, got.FsmState)

	entries, err := svc.TransitionHistory(context.Background(), session.Id)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, string(fsm.TriggerCancel), last.Trigger)
	assert.True(t, last.Success)
}

func TestRecoverOnStartupIdempotent(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := testLogger()
	engine := fsm.NewEngine(uowFactory, nil, sysLogger)
	svc := service.NewSessionService(uowFactory, engine, nil, sysLogger, config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
	})
	guard := idempotency.NewGuard(uowFactory, nil, nil, sysLogger, time.Hour)
	clarifier := clarify.NewManager(uowFactory, nil, sysLogger, 5*time.Minute)
	manager := recovery.NewManager(uowFactory, engine, clarifier, guard, nil, sysLogger, 30*time.Minute)

	session, _, err := svc.GetOrCreate(context.Background(), uuid.New())
	require.NoError(t, err)

	// Age the session past the orphan threshold.
	err = db.Model(&model.Session{}).
		Where("id = ?", session.Id).
		Update("last_activity_at", time.Now().Add(-2*time.Hour)).Error
	require.NoError(t, err)

	first, err := manager.RecoverOnStartup(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first, 1)

	got, err := svc.Get(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StateAbandoned, got.FsmState)
	require.NotNil(t, got.ClosureReason)
	assert.Equal(t, constant.ClosureOrphanedOnRestart, *got.ClosureReason)

	// Second run finds nothing left to abandon.
	second, err := manager.RecoverOnStartup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second)
}
