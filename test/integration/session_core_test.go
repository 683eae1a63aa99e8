package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/specification"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/internal/service"
	"biz-assistant-be/pkg/clarify"
	"biz-assistant-be/pkg/database"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/idempotency"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := database.Migrate(gormDB); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return gormDB
}

func testLogger() logger.ILogger {
	return logger.NewIsolatedLogger("logs/test.log")
}

func TestConcurrentGetOrCreateConverges(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := testLogger()
	engine := fsm.NewEngine(uowFactory, nil, sysLogger)
	svc := service.NewSessionService(uowFactory, engine, nil, sysLogger, config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
		OvernightBoundary:   false,
	})

	userID := uuid.New()
	const workers = 8

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, _, err := svc.GetOrCreate(context.Background(), userID)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = session.Id
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.Equal(t, ids[0], ids[i], "worker %d diverged", i)
	}

	// Exactly one active session for the user.
	uow := uowFactory.NewUnitOfWork(context.Background())
	count, err := uow.SessionRepository().Count(context.Background(),
		specification.ByUserID{UserID: userID},
		specification.ActiveOnly{},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEngineTransitionAndLog(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := testLogger()
	engine := fsm.NewEngine(uowFactory, nil, sysLogger)
	svc := service.NewSessionService(uowFactory, engine, nil, sysLogger, config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
	})

	session, created, err := svc.GetOrCreate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, constant.StateIdle, session.FsmState)

	result, err := engine.Transition(context.Background(), session.Id, fsm.TriggerStartTaskFlow, fsm.MetadataPatch{})
	require.NoError(t, err)
	assert.Equal(t, fsm.StateTaskSelection, result.To)

	// Invalid trigger is rejected, and the rejection itself is audited.
	_, err = engine.Transition(context.Background(), session.Id, fsm.TriggerConfirm, fsm.MetadataPatch{})
	require.Error(t, err)

	entries, err := svc.TransitionHistory(context.Background(), session.Id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Success)
	assert.False(t, entries[1].Success)
}

func TestEndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := testLogger()
	engine := fsm.NewEngine(uowFactory, nil, sysLogger)
	svc := service.NewSessionService(uowFactory, engine, nil, sysLogger, config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
	})

	session, _, err := svc.GetOrCreate(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.End(context.Background(), session.Id, constant.ClosureUserCancelled))
	// Second end is a no-op, not an error.
	require.NoError(t, svc.End(context.Background(), session.Id, constant.ClosureUserCancelled))

	got, err := svc.Get(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StateAbandoned, got.FsmState)
	require.NotNil(t, got.ClosureReason)
	assert.Equal(t, constant.ClosureUserCancelled, *got.ClosureReason)
}

func TestIdempotencyGuardRoundTrip(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	guard := idempotency.NewGuard(uowFactory, nil, nil, testLogger(), time.Hour)

	userID := uuid.New()
	messageID := uuid.NewString()

	hit, err := guard.Check(context.Background(), userID, messageID)
	require.NoError(t, err)
	assert.Nil(t, hit)

	require.NoError(t, guard.Record(context.Background(), userID, messageID, []byte(`{"text":"ok"}`)))
	// Duplicate record from a concurrent delivery is tolerated.
	require.NoError(t, guard.Record(context.Background(), userID, messageID, []byte(`{"text":"ok"}`)))

	hit, err = guard.Check(context.Background(), userID, messageID)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"text":"ok"}`), hit)
}

func TestClarificationAnsweredExactlyOnce(t *testing.T) {
	db := setupDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	manager := clarify.NewManager(uowFactory, nil, testLogger(), 5*time.Minute)

	userID := uuid.New()
	sessionID := uuid.New()

	first, err := manager.Create(context.Background(), userID, sessionID, "Which one?", []string{"add_comment", "create_incident"})
	require.NoError(t, err)

	// A second request supersedes the first.
	second, err := manager.Create(context.Background(), userID, sessionID, "Which one now?", []string{"confirm", "cancel"})
	require.NoError(t, err)

	pending, err := manager.GetPending(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, second.Id, pending.Id)

	// Answering the superseded request conflicts.
	_, err = manager.Answer(context.Background(), first.Id, "add_comment")
	require.Error(t, err)

	answered, err := manager.Answer(context.Background(), second.Id, "confirm")
	require.NoError(t, err)
	require.NotNil(t, answered.Answer)
	assert.Equal(t, "confirm", *answered.Answer)

	// Exactly once.
	_, err = manager.Answer(context.Background(), second.Id, "cancel")
	require.Error(t, err)
}
