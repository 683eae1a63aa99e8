package contract

import (
	"context"

	"biz-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationTurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	// FindRecentBySession returns up to limit turns, oldest first.
	FindRecentBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error)
}
