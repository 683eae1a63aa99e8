package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClarificationRequest struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null"`
	Prompt    string         `gorm:"type:text;not null"`
	Options   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Status    string         `gorm:"type:varchar(16);not null;index"`
	Answer    *string        `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	ExpiresAt time.Time      `gorm:"not null;index"`
}

func (ClarificationRequest) TableName() string {
	return "clarification_requests"
}
