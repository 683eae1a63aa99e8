package memory

import (
	"sync"
	"time"

	"biz-assistant-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// TurnCache keeps the recent-turns window per session in memory so the
// classifier does not hit the database on every message. Entries ride the
// session inactivity window; the database remains the source of truth.
type TurnCache struct {
	cache   *cache.Cache
	maxSize int
	// mu serializes window rewrites. go-cache guards single operations,
	// not the get-modify-set in Append.
	mu sync.Mutex
}

func NewTurnCache(ttl time.Duration, maxSize int) *TurnCache {
	return &TurnCache{
		cache:   cache.New(ttl, 10*time.Minute),
		maxSize: maxSize,
	}
}

func (c *TurnCache) Get(sessionID string) ([]*entity.ConversationTurn, bool) {
	if x, found := c.cache.Get(sessionID); found {
		return x.([]*entity.ConversationTurn), true
	}
	return nil, false
}

func (c *TurnCache) Put(sessionID string, turns []*entity.ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(sessionID, turns)
}

func (c *TurnCache) put(sessionID string, turns []*entity.ConversationTurn) {
	if len(turns) > c.maxSize {
		turns = turns[len(turns)-c.maxSize:]
	}
	c.cache.Set(sessionID, turns, cache.DefaultExpiration)
}

// Append adds a turn to a cached window, trimming from the front.
func (c *TurnCache) Append(sessionID string, turn *entity.ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	turns, _ := c.Get(sessionID)
	c.put(sessionID, append(turns, turn))
}

func (c *TurnCache) Invalidate(sessionID string) {
	c.cache.Delete(sessionID)
}
