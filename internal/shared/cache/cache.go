package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SummaryCache memoises per-user aggregates (account, budget and goal
// summaries, the dashboard report). A nil *SummaryCache is valid and caches
// nothing.
//
// Each user has a version that InvalidateUser bumps. Callers read it before
// loading the data they are about to cache and hand it back to Set, so a
// value computed before a write never lands after that write's invalidation.
type SummaryCache struct {
	c *gocache.Cache

	mu       sync.Mutex
	versions map[int64]uint64
}

func New(ttl, cleanupInterval time.Duration) *SummaryCache {
	return &SummaryCache{
		c:        gocache.New(ttl, cleanupInterval),
		versions: make(map[int64]uint64),
	}
}

func userPrefix(userID int64) string {
	return "u:" + strconv.FormatInt(userID, 10) + ":"
}

func key(userID int64, name string) string {
	return userPrefix(userID) + name
}

func (s *SummaryCache) Get(userID int64, name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return s.c.Get(key(userID, name))
}

// Version returns the user's current cache version.
func (s *SummaryCache) Version(userID int64) uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[userID]
}

// Set stores value if the user's version still equals version. It reports
// whether the value was stored.
func (s *SummaryCache) Set(userID int64, version uint64, name string, value any) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[userID] != version {
		return false
	}
	s.c.SetDefault(key(userID, name), value)
	return true
}

// InvalidateUser drops every entry cached for the user and bumps the user's
// version.
func (s *SummaryCache) InvalidateUser(userID int64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[userID]++

	prefix := userPrefix(userID)
	for k := range s.c.Items() {
		if strings.HasPrefix(k, prefix) {
			s.c.Delete(k)
		}
	}
}

// Lookup is a typed Get. A cached value of another type counts as a miss.
func Lookup[T any](s *SummaryCache, userID int64, name string) (T, bool) {
	var zero T
	v, ok := s.Get(userID, name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
