package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type codes. These become NATS subjects under "audit.".
const (
	TypeSessionTransition    = "SESSION_TRANSITION"
	TypeSessionCreated       = "SESSION_CREATED"
	TypeSessionRecovered     = "SESSION_RECOVERED"
	TypeIdempotencyHit       = "IDEMPOTENCY_HIT"
	TypeClarificationCreated = "CLARIFICATION_CREATED"
	TypeClarificationClosed  = "CLARIFICATION_CLOSED"
)

func NewSessionTransition(sessionID, correlationID uuid.UUID, from, to, trigger string, success bool, errMsg string) Event {
	return BaseEvent{
		Type: TypeSessionTransition,
		Data: map[string]interface{}{
			"session_id":     sessionID.String(),
			"correlation_id": correlationID.String(),
			"from_state":     from,
			"to_state":       to,
			"trigger":        trigger,
			"success":        success,
			"error":          errMsg,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCreated(sessionID, userID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"user_id":    userID.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionRecovered(sessionID uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeSessionRecovered,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewIdempotencyHit(userID uuid.UUID, messageID string) Event {
	return BaseEvent{
		Type: TypeIdempotencyHit,
		Data: map[string]interface{}{
			"user_id":    userID.String(),
			"message_id": messageID,
		},
		OccurredAt: time.Now(),
	}
}

func NewClarificationCreated(id, userID, sessionID uuid.UUID, superseded int64) Event {
	return BaseEvent{
		Type: TypeClarificationCreated,
		Data: map[string]interface{}{
			"clarification_id": id.String(),
			"user_id":          userID.String(),
			"session_id":       sessionID.String(),
			"superseded":       superseded,
		},
		OccurredAt: time.Now(),
	}
}

func NewClarificationClosed(id uuid.UUID, status string) Event {
	return BaseEvent{
		Type: TypeClarificationClosed,
		Data: map[string]interface{}{
			"clarification_id": id.String(),
			"status":           status,
		},
		OccurredAt: time.Now(),
	}
}
