package cache

import (
	"log"
	"time"
)

// Cooldown is a Redis-backed rate limit marker. TryAcquire returns true when
// the key was free and is now held for ttl. A cache outage fails open so
// callers keep working, just without the rate limit.
type Cooldown struct{}

func NewCooldown() *Cooldown {
	return &Cooldown{}
}

func (c *Cooldown) TryAcquire(key string, ttl time.Duration) bool {
	ok, err := SetNX(key, "1", ttl)
	if err != nil {
		log.Printf("cooldown %s: cache unavailable, failing open: %v", key, err)
		return true
	}
	return ok
}
