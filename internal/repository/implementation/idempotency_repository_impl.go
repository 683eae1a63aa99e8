package implementation

import (
	"context"
	"errors"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/mapper"
	"biz-assistant-be/internal/model"
	"biz-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdempotencyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewIdempotencyRepository(db *gorm.DB) contract.IdempotencyRepository {
	return &IdempotencyRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *IdempotencyRepositoryImpl) Find(ctx context.Context, userID uuid.UUID, messageID string) (*entity.IdempotencyRecord, error) {
	var m model.IdempotencyRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Upstream(err, "find idempotency record")
	}
	return r.mapper.IdempotencyToEntity(&m), nil
}

func (r *IdempotencyRepositoryImpl) Insert(ctx context.Context, record *entity.IdempotencyRecord) error {
	m := r.mapper.IdempotencyToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Another delivery recorded first. Same key, same outcome.
			return nil
		}
		return apperror.Upstream(err, "insert idempotency record")
	}
	return nil
}

func (r *IdempotencyRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.IdempotencyRecord{})
	if res.Error != nil {
		return 0, apperror.Upstream(res.Error, "delete expired idempotency records")
	}
	return res.RowsAffected, nil
}
