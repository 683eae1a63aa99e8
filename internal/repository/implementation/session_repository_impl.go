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
	"biz-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The partial unique index rejected a second active row.
			return apperror.Conflict("active session already exists for user %s", session.UserId)
		}
		return apperror.Upstream(err, "insert session")
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Upstream(err, "find session")
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.Upstream(err, "find sessions")
	}
	entities := make([]*entity.Session, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Upstream(err, "count sessions")
	}
	return count, nil
}

func (r *SessionRepositoryImpl) CompareAndTransition(ctx context.Context, id uuid.UUID, fromState, toState string, meta entity.SessionMetadata, closureReason *string, now time.Time) (bool, error) {
	// State, metadata and activity timestamp land in one UPDATE. Splitting
	// them is exactly the lost-context failure mode this layer exists to
	// prevent.
	updates := map[string]interface{}{
		"fsm_state":        toState,
		"metadata":         r.mapper.MetadataToJSON(meta),
		"last_activity_at": now,
	}
	if closureReason != nil {
		updates["closure_reason"] = *closureReason
	}

	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND fsm_state = ?", id, fromState).
		Updates(updates)
	if res.Error != nil {
		return false, apperror.Upstream(res.Error, "transition session")
	}
	return res.RowsAffected == 1, nil
}

func (r *SessionRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("last_activity_at", now).Error
	if err != nil {
		return apperror.Upstream(err, "touch session")
	}
	return nil
}
