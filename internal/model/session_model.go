package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session persists one conversational session. The partial unique index is
// the storage-level guarantee behind "at most one active session per user":
// racing inserts lose with a uniqueness violation instead of creating twins.
type Session struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_sessions_one_active_per_user,where:fsm_state NOT IN ('completed','abandoned')"`
	FsmState       string         `gorm:"type:varchar(32);not null;index"`
	TaskRef        string         `gorm:"type:text"`
	ProjectRef     string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	ClosureReason  *string        `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	LastActivityAt time.Time      `gorm:"not null;index"`
	ExpiresAt      *time.Time
}

func (Session) TableName() string {
	return "sessions"
}
