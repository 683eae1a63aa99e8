package model

import (
	"time"

	"github.com/google/uuid"
)

type TransitionLogEntry struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     uuid.UUID `gorm:"type:uuid;not null;index"`
	FromState     string    `gorm:"type:varchar(32);not null"`
	ToState       string    `gorm:"type:varchar(32);not null"`
	Trigger       string    `gorm:"type:varchar(32);not null"`
	CorrelationId uuid.UUID `gorm:"type:uuid;not null;index"`
	Success       bool      `gorm:"not null"`
	Error         *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (TransitionLogEntry) TableName() string {
	return "transition_log"
}
