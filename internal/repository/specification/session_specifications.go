package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveOnly keeps sessions that have not reached a terminal FSM state.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fsm_state NOT IN ('completed', 'abandoned')")
}

// InState filters sessions by exact FSM state.
type InState struct {
	State string
}

func (s InState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fsm_state = ?", s.State)
}

// LastActivityBefore selects sessions idle since the cutoff. Used by the
// recovery sweep to find orphans.
type LastActivityBefore struct {
	Cutoff time.Time
}

func (s LastActivityBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity_at < ?", s.Cutoff)
}

// BySessionID filters child rows (turns, clarifications, log entries).
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// PendingOnly keeps clarification requests still awaiting an answer.
type PendingOnly struct{}

func (s PendingOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = 'pending'")
}

// ExpiresBefore selects TTL rows already past their expiry.
type ExpiresBefore struct {
	Cutoff time.Time
}

func (s ExpiresBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at < ?", s.Cutoff)
}
