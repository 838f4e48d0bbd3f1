// Package presence holds the process-wide "who touched the card reader last"
// state. The reader daemon writes it; the work-record handlers only read it.
// A read racing a concurrent touch may observe the previous holder; that
// staleness is accepted.
package presence

import (
	"sync"
	"time"
)

// Cache is a single-slot identity cache with a TTL. After the TTL the touch
// is considered stale and CurrentIdentity reports nobody.
type Cache struct {
	mu      sync.Mutex
	idm     string
	touched time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

// Touch records the card UID the reader just saw.
func (c *Cache) Touch(idm string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idm = idm
	c.touched = c.now()
}

// CurrentIdentity returns the UID of the most recent touch, or "" when no
// card has been touched within the TTL.
func (c *Cache) CurrentIdentity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idm == "" || c.now().Sub(c.touched) > c.ttl {
		return ""
	}
	return c.idm
}

// Clear forgets the current touch.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idm = ""
}
