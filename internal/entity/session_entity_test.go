package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasNextAction(t *testing.T) {
	meta := SessionMetadata{AvailableNextActions: []string{"provide_data", "confirm"}}
	assert.True(t, meta.HasNextAction("confirm"))
	assert.False(t, meta.HasNextAction("cancel"))
	assert.False(t, SessionMetadata{}.HasNextAction("confirm"))
}

func TestClarificationIsExpired(t *testing.T) {
	now := time.Now()
	request := &ClarificationRequest{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, request.IsExpired(now))
	assert.True(t, request.IsExpired(now.Add(2*time.Minute)))
}

func TestIdempotencyRecordIsExpired(t *testing.T) {
	now := time.Now()
	record := &IdempotencyRecord{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, record.IsExpired(now))
	assert.True(t, record.IsExpired(now.Add(2*time.Hour)))
}
