package mapper

import (
	"encoding/json"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type ClarificationMapper struct{}

func NewClarificationMapper() *ClarificationMapper {
	return &ClarificationMapper{}
}

func (m *ClarificationMapper) ToEntity(c *model.ClarificationRequest) *entity.ClarificationRequest {
	if c == nil {
		return nil
	}

	var options []string
	if len(c.Options) > 0 {
		_ = json.Unmarshal(c.Options, &options)
	}

	return &entity.ClarificationRequest{
		Id:        c.Id,
		UserId:    c.UserId,
		SessionId: c.SessionId,
		Prompt:    c.Prompt,
		Options:   options,
		Status:    c.Status,
		Answer:    c.Answer,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

func (m *ClarificationMapper) ToModel(c *entity.ClarificationRequest) *model.ClarificationRequest {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(c.Options)
	if err != nil {
		raw = []byte("[]")
	}

	return &model.ClarificationRequest{
		Id:        c.Id,
		UserId:    c.UserId,
		SessionId: c.SessionId,
		Prompt:    c.Prompt,
		Options:   datatypes.JSON(raw),
		Status:    c.Status,
		Answer:    c.Answer,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}
