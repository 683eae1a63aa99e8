package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"biz-assistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnCacheWindowTrimsFromFront(t *testing.T) {
	c := NewTurnCache(time.Minute, 3)
	sessionID := uuid.NewString()

	for i := 0; i < 5; i++ {
		c.Append(sessionID, &entity.ConversationTurn{Text: fmt.Sprintf("turn-%d", i)})
	}

	turns, found := c.Get(sessionID)
	require.True(t, found)
	require.Len(t, turns, 3)
	assert.Equal(t, "turn-2", turns[0].Text)
	assert.Equal(t, "turn-4", turns[2].Text)
}

func TestTurnCacheConcurrentAppendKeepsEveryTurn(t *testing.T) {
	c := NewTurnCache(time.Minute, 64)
	sessionID := uuid.NewString()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Append(sessionID, &entity.ConversationTurn{Text: fmt.Sprintf("turn-%d", i)})
		}(i)
	}
	wg.Wait()

	turns, found := c.Get(sessionID)
	require.True(t, found)
	assert.Len(t, turns, writers)
}
