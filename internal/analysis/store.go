package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/redis"
)

// ErrNotCached signals that no analysis is stored for the user.
var ErrNotCached = errors.New("analysis not cached")

// Store is the hot-path cache for computed analyses. Implementations
// must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error)
	Set(ctx context.Context, userID string, analysis *contracts.CreditAnalysis) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore keeps analyses in process memory. Used when Redis is
// disabled; entries live until overwritten or deleted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*contracts.CreditAnalysis
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*contracts.CreditAnalysis),
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.entries[userID]
	if !ok {
		return nil, ErrNotCached
	}

	// Copy so callers cannot mutate the stored value.
	return cloneAnalysis(analysis), nil
}

func (s *MemoryStore) Set(ctx context.Context, userID string, analysis *contracts.CreditAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = cloneAnalysis(analysis)
	return nil
}

// cloneAnalysis copies the struct including its list fields, so the store
// and its callers never share backing arrays.
func cloneAnalysis(analysis *contracts.CreditAnalysis) *contracts.CreditAnalysis {
	clone := *analysis
	clone.Strengths = append([]string(nil), analysis.Strengths...)
	clone.Weaknesses = append([]string(nil), analysis.Weaknesses...)
	clone.Recommendations = append([]string(nil), analysis.Recommendations...)
	return &clone
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}

// RedisStore caches analyses in Redis so restarts and horizontal scaling
// keep a warm cache.
type RedisStore struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero TTL keeps entries
// until the next recomputation overwrites them.
func NewRedisStore(cache *redis.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error) {
	var analysis contracts.CreditAnalysis
	found, err := s.cache.Get(ctx, redis.AnalysisKey(userID), &analysis)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotCached
	}
	return &analysis, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, analysis *contracts.CreditAnalysis) error {
	return s.cache.Set(ctx, redis.AnalysisKey(userID), analysis, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, redis.AnalysisKey(userID))
}
