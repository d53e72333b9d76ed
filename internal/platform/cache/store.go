package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/courtsidehq/sportsdata/internal/platform/resilience"
)

// Entry is a cached value with its expiry. A zero ExpiresAt never expires.
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// Backend is the storage behind a Store. Implementations must be safe for
// concurrent use; last-write-wins on a racing Set is acceptable because
// population is idempotent for a given key.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry)
	Delete(ctx context.Context, key string)
	Keys(ctx context.Context) []string
}

type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryBackend() Backend {
	return &memoryBackend{entries: make(map[string]Entry)}
}

func (b *memoryBackend) Get(_ context.Context, key string) (Entry, bool) {
	b.mu.RLock()
	e, ok := b.entries[key]
	b.mu.RUnlock()
	return e, ok
}

func (b *memoryBackend) Set(_ context.Context, key string, e Entry) {
	b.mu.Lock()
	b.entries[key] = e
	b.mu.Unlock()
}

func (b *memoryBackend) Delete(_ context.Context, key string) {
	b.mu.Lock()
	delete(b.entries, key)
	b.mu.Unlock()
}

func (b *memoryBackend) Keys(_ context.Context) []string {
	b.mu.RLock()
	out := make([]string, 0, len(b.entries))
	for key := range b.entries {
		out = append(out, key)
	}
	b.mu.RUnlock()
	return out
}

// Store is a TTL cache keyed by opaque strings (URL strings in practice).
// The backend is injectable so tests and embedders can supply their own
// storage; entries carry their own TTL so callers can mix lifetimes.
type Store struct {
	backend    Backend
	defaultTTL time.Duration
	flight     resilience.SingleFlight
	now        func() time.Time
}

func NewStore(defaultTTL time.Duration) *Store {
	return NewStoreWithBackend(NewMemoryBackend(), defaultTTL)
}

func NewStoreWithBackend(backend Backend, defaultTTL time.Duration) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Store{
		backend:    backend,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	e, ok := s.backend.Get(ctx, key)
	if !ok {
		return nil, false
	}
	if !e.ExpiresAt.IsZero() && !e.ExpiresAt.After(s.now()) {
		s.backend.Delete(ctx, key)
		return nil, false
	}

	return e.Value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetTTL(ctx, key, value, s.defaultTTL)
}

func (s *Store) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.backend.Set(ctx, key, Entry{Value: value, ExpiresAt: expiresAt})
}

func (s *Store) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	s.backend.Delete(ctx, key)
}

func (s *Store) DeletePrefix(ctx context.Context, prefix string) {
	if prefix == "" {
		return
	}
	for _, key := range s.backend.Keys(ctx) {
		if strings.HasPrefix(key, prefix) {
			s.backend.Delete(ctx, key)
		}
	}
}

// GetOrLoad returns the cached value for key or loads it once, collapsing
// concurrent loads for the same key into a single call.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.SetTTL(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
