package implementation

import (
	"context"
	"errors"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/mapper"
	"biz-assistant-be/internal/model"
	"biz-assistant-be/internal/repository/contract"
	"biz-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClarificationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClarificationMapper
}

func NewClarificationRepository(db *gorm.DB) contract.ClarificationRepository {
	return &ClarificationRepositoryImpl{
		db:     db,
		mapper: mapper.NewClarificationMapper(),
	}
}

func (r *ClarificationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ClarificationRepositoryImpl) Create(ctx context.Context, request *entity.ClarificationRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Upstream(err, "insert clarification")
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClarificationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ClarificationRequest, error) {
	var m model.ClarificationRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Upstream(err, "find clarification")
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClarificationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ClarificationRequest, error) {
	var models []*model.ClarificationRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.Upstream(err, "find clarifications")
	}
	entities := make([]*entity.ClarificationRequest, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ClarificationRepositoryImpl) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, answer *string) (bool, error) {
	updates := map[string]interface{}{"status": toStatus}
	if answer != nil {
		updates["answer"] = *answer
	}

	res := r.db.WithContext(ctx).
		Model(&model.ClarificationRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return false, apperror.Upstream(res.Error, "update clarification status")
	}
	return res.RowsAffected == 1, nil
}

func (r *ClarificationRepositoryImpl) CancelPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ClarificationRequest{}).
		Where("user_id = ? AND status = ?", userID, constant.ClarificationPending).
		Update("status", constant.ClarificationCancelled)
	if res.Error != nil {
		return 0, apperror.Upstream(res.Error, "cancel pending clarifications")
	}
	return res.RowsAffected, nil
}

func (r *ClarificationRepositoryImpl) ExpireBatch(ctx context.Context, now time.Time) (int64, error) {
	// Conditional on status=pending so concurrent sweeps and lazy expiry on
	// read never double-count the same row.
	res := r.db.WithContext(ctx).
		Model(&model.ClarificationRequest{}).
		Where("status = ? AND expires_at < ?", constant.ClarificationPending, now).
		Update("status", constant.ClarificationExpired)
	if res.Error != nil {
		return 0, apperror.Upstream(res.Error, "expire clarifications")
	}
	return res.RowsAffected, nil
}
