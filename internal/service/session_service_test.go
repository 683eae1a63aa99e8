package service

import (
	"testing"
	"time"

	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestSessionReusePolicy(t *testing.T) {
	svc := &sessionService{cfg: config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
		OvernightBoundary:   true,
	}}

	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	fresh := &entity.Session{LastActivityAt: now.Add(-30 * time.Minute)}
	assert.True(t, svc.reusable(fresh, now))

	stale := &entity.Session{LastActivityAt: now.Add(-5 * time.Hour)}
	assert.False(t, svc.reusable(stale, now))

	exactlyAtThreshold := &entity.Session{LastActivityAt: now.Add(-4 * time.Hour)}
	assert.False(t, svc.reusable(exactlyAtThreshold, now))
}

func TestSessionOvernightBoundary(t *testing.T) {
	svc := &sessionService{cfg: config.SessionConfig{
		InactivityThreshold: 4 * time.Hour,
		OvernightBoundary:   true,
	}}

	// 23:30 yesterday to 01:00 today: within the inactivity window but
	// across midnight, so not reusable.
	now := time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC)
	lateNight := &entity.Session{LastActivityAt: time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)}
	assert.False(t, svc.reusable(lateNight, now))

	// Same scenario with the boundary disabled.
	svc.cfg.OvernightBoundary = false
	assert.True(t, svc.reusable(lateNight, now))
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, 6, 11, 0, 0, 1, 0, time.UTC)

	assert.True(t, sameCalendarDay(a, b))
	assert.False(t, sameCalendarDay(b, c))
}
