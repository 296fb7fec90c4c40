// Package caching holds the in-process counters used to throttle repeated
// login and registration attempts.
package caching

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache wraps a go-cache store of expiring counters.
type Cache struct {
	memoryCache *cache.Cache
}

func NewCache() *Cache {
	return &Cache{}
}

func (s *Cache) Init() error {
	s.memoryCache = cache.New(time.Minute, 5*time.Minute)
	return nil
}

func (s *Cache) Flush() error {
	if s.memoryCache != nil {
		s.memoryCache.Flush()
	}
	return nil
}

// Hit counts one event for key in a fixed window starting at the first
// event and returns the count so far.
func (s *Cache) Hit(key string, window time.Duration) (int, error) {
	// Add fails when the window is already open, which is fine.
	_ = s.memoryCache.Add(key, 0, window)
	n, err := s.memoryCache.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and IncrementInt
		s.memoryCache.Set(key, 1, window)
		return 1, nil
	}
	return n, nil
}

// Reset forgets the events counted for key.
func (s *Cache) Reset(key string) {
	s.memoryCache.Delete(key)
}
