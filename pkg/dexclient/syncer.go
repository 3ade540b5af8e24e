package dexclient

import (
	"context"
	"log"
	"time"
)

// DefaultSyncInterval is the periodic merge cadence.
const DefaultSyncInterval = 30 * time.Second

// Syncer keeps the local cache converged with the server. It merges on
// demand (start, sign-in, page visible) and on a fixed ticker. A failed
// fetch leaves the cache untouched so the client keeps working offline.
type Syncer struct {
	client   *Client
	cache    *Cache
	interval time.Duration
	kick     chan struct{}
}

func NewSyncer(client *Client, cache *Cache) *Syncer {
	return &Syncer{
		client:   client,
		cache:    cache,
		interval: DefaultSyncInterval,
		kick:     make(chan struct{}, 1),
	}
}

// SyncNow runs one merge cycle. If the server identity differs from the
// cached one, the cache is cleared before merging so state never crosses
// identities.
func (s *Syncer) SyncNow(ctx context.Context) error {
	serverUser, serverEntries, err := s.client.FetchCollection(ctx)
	if err != nil {
		return err
	}

	cachedUser, local := s.cache.Load()
	if cachedUser != serverUser {
		local = map[int]CacheEntry{}
	}

	merged := Merge(local, serverEntries, time.Now().UTC())
	return s.cache.Save(serverUser, merged)
}

// SignIn switches the client identity and clears the cache before the next
// merge repopulates it from the new user's server data.
func (s *Syncer) SignIn(encodedPrincipal string) {
	s.client.SetPrincipal(encodedPrincipal)
	if err := s.cache.Clear(); err != nil {
		log.Printf("Failed to clear local cache on sign-in: %v", err)
	}
	s.Kick()
}

// SignOut drops the identity and wipes the cache immediately.
func (s *Syncer) SignOut() {
	s.client.SetPrincipal("")
	if err := s.cache.Clear(); err != nil {
		log.Printf("Failed to clear local cache on sign-out: %v", err)
	}
}

// Kick requests an immediate merge from the Run loop, used when the page
// becomes visible again. Coalesces with any pending request.
func (s *Syncer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run merges once at start, then on every tick or Kick until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncAndLog(ctx)
		case <-s.kick:
			s.syncAndLog(ctx)
		}
	}
}

func (s *Syncer) syncAndLog(ctx context.Context) {
	if err := s.SyncNow(ctx); err != nil {
		// Offline or signed out; the cache keeps serving local state
		log.Printf("Collection sync skipped: %v", err)
	}
}
