package database

import (
	"biz-assistant-be/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema, including the partial unique index
// that enforces one active session per user.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Session{},
		&model.ClarificationRequest{},
		&model.IdempotencyRecord{},
		&model.TransitionLogEntry{},
		&model.ConversationTurn{},
	)
}
