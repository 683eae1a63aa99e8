package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IdempotencyRecord struct {
	UserId       uuid.UUID      `gorm:"type:uuid;primaryKey"`
	MessageId    string         `gorm:"type:varchar(128);primaryKey"`
	CachedResult datatypes.JSON `gorm:"type:jsonb"`
	RecordedAt   time.Time      `gorm:"autoCreateTime"`
	ExpiresAt    time.Time      `gorm:"not null;index"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
