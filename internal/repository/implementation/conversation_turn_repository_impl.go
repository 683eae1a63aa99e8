package implementation

import (
	"context"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/mapper"
	"biz-assistant-be/internal/model"
	"biz-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewConversationTurnRepository(db *gorm.DB) contract.ConversationTurnRepository {
	return &ConversationTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *ConversationTurnRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Upstream(err, "insert conversation turn")
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *ConversationTurnRepositoryImpl) FindRecentBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperror.Upstream(err, "find recent turns")
	}

	// Reverse so callers get oldest first.
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[len(models)-1-i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}
