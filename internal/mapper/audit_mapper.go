package mapper

import (
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) TransitionLogToEntity(t *model.TransitionLogEntry) *entity.TransitionLogEntry {
	if t == nil {
		return nil
	}
	return &entity.TransitionLogEntry{
		Id:            t.Id,
		SessionId:     t.SessionId,
		FromState:     t.FromState,
		ToState:       t.ToState,
		Trigger:       t.Trigger,
		CorrelationId: t.CorrelationId,
		Success:       t.Success,
		Error:         t.Error,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *AuditMapper) TransitionLogToModel(t *entity.TransitionLogEntry) *model.TransitionLogEntry {
	if t == nil {
		return nil
	}
	return &model.TransitionLogEntry{
		Id:            t.Id,
		SessionId:     t.SessionId,
		FromState:     t.FromState,
		ToState:       t.ToState,
		Trigger:       t.Trigger,
		CorrelationId: t.CorrelationId,
		Success:       t.Success,
		Error:         t.Error,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *AuditMapper) IdempotencyToEntity(r *model.IdempotencyRecord) *entity.IdempotencyRecord {
	if r == nil {
		return nil
	}
	return &entity.IdempotencyRecord{
		UserId:       r.UserId,
		MessageId:    r.MessageId,
		CachedResult: []byte(r.CachedResult),
		RecordedAt:   r.RecordedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

func (m *AuditMapper) IdempotencyToModel(r *entity.IdempotencyRecord) *model.IdempotencyRecord {
	if r == nil {
		return nil
	}
	return &model.IdempotencyRecord{
		UserId:       r.UserId,
		MessageId:    r.MessageId,
		CachedResult: datatypes.JSON(r.CachedResult),
		RecordedAt:   r.RecordedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

func (m *AuditMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	return &entity.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}

func (m *AuditMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	return &model.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}
