package idempotency

import (
	"context"
	"fmt"
	"time"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard deduplicates inbound message deliveries. Postgres is authoritative;
// Redis is a best-effort read-through cache, so a cold or absent Redis only
// costs a query, never correctness.
type Guard struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	publisher  events.Publisher
	log        logger.ILogger
	ttl        time.Duration
}

func NewGuard(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client, publisher events.Publisher, log logger.ILogger, ttl time.Duration) *Guard {
	return &Guard{
		uowFactory: uowFactory,
		rdb:        rdb,
		publisher:  publisher,
		log:        log,
		ttl:        ttl,
	}
}

func cacheKey(userID uuid.UUID, messageID string) string {
	return fmt.Sprintf("idem:%s:%s", userID, messageID)
}

// Check returns the cached result of a previously processed message, or nil
// on first delivery. Expired rows count as misses.
func (g *Guard) Check(ctx context.Context, userID uuid.UUID, messageID string) ([]byte, error) {
	if g.rdb != nil {
		if cached, err := g.rdb.Get(ctx, cacheKey(userID, messageID)).Bytes(); err == nil {
			g.auditHit(ctx, userID, messageID)
			return cached, nil
		}
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.IdempotencyRepository().Find(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.IsExpired(time.Now()) {
		return nil, nil
	}

	g.backfill(ctx, userID, messageID, record)
	g.auditHit(ctx, userID, messageID)
	return record.CachedResult, nil
}

// Record stores the processing outcome. Called exactly once per message,
// immediately after the side-effecting work succeeds.
func (g *Guard) Record(ctx context.Context, userID uuid.UUID, messageID string, result []byte) error {
	now := time.Now()
	record := &entity.IdempotencyRecord{
		UserId:       userID,
		MessageId:    messageID,
		CachedResult: result,
		RecordedAt:   now,
		ExpiresAt:    now.Add(g.ttl),
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.IdempotencyRepository().Insert(ctx, record); err != nil {
		return err
	}

	if g.rdb != nil {
		if err := g.rdb.Set(ctx, cacheKey(userID, messageID), result, g.ttl).Err(); err != nil {
			g.log.Warn("idempotency", "redis set failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Sweep purges expired records. Redis entries expire on their own TTL.
func (g *Guard) Sweep(ctx context.Context) (int64, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	purged, err := uow.IdempotencyRepository().DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		g.log.Info("idempotency", "purged expired records", map[string]interface{}{"count": purged})
	}
	return purged, nil
}

func (g *Guard) backfill(ctx context.Context, userID uuid.UUID, messageID string, record *entity.IdempotencyRecord) {
	if g.rdb == nil {
		return
	}
	remaining := time.Until(record.ExpiresAt)
	if remaining <= 0 {
		return
	}
	if err := g.rdb.Set(ctx, cacheKey(userID, messageID), record.CachedResult, remaining).Err(); err != nil {
		g.log.Warn("idempotency", "redis backfill failed", map[string]interface{}{"error": err.Error()})
	}
}

func (g *Guard) auditHit(ctx context.Context, userID uuid.UUID, messageID string) {
	g.log.Info("idempotency", "duplicate delivery short-circuited", map[string]interface{}{
		"user_id":    userID.String(),
		"message_id": messageID,
	})
	if g.publisher == nil {
		return
	}
	if err := g.publisher.Publish(ctx, events.NewIdempotencyHit(userID, messageID)); err != nil {
		g.log.Warn("idempotency", "failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}
