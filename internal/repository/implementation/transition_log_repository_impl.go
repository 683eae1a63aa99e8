package implementation

import (
	"context"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/mapper"
	"biz-assistant-be/internal/model"
	"biz-assistant-be/internal/repository/contract"
	"biz-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TransitionLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewTransitionLogRepository(db *gorm.DB) contract.TransitionLogRepository {
	return &TransitionLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *TransitionLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TransitionLogRepositoryImpl) Append(ctx context.Context, entry *entity.TransitionLogEntry) error {
	m := r.mapper.TransitionLogToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Upstream(err, "append transition log")
	}
	*entry = *r.mapper.TransitionLogToEntity(m)
	return nil
}

func (r *TransitionLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TransitionLogEntry, error) {
	var models []*model.TransitionLogEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.Upstream(err, "find transition log entries")
	}
	entities := make([]*entity.TransitionLogEntry, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TransitionLogToEntity(m)
	}
	return entities, nil
}

func (r *TransitionLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TransitionLogEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Upstream(err, "count transition log entries")
	}
	return count, nil
}
