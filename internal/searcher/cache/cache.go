package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Store is the key/value backend, normally *redis.Client.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache stores search results keyed by the parsed query, the status
// filter and the engine generation, so any index change makes old entries
// unreachable. Store failures are logged and fall through to computation.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	breaker *resilience.Breaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		breaker: resilience.NewBreaker("query-cache", resilience.BreakerConfig{FailureThreshold: 3, ResetTimeout: 10 * time.Second}),
		metrics: m,
		logger:  logger.WithComponent("query-cache"),
	}
}

// GetOrCompute returns the cached result for key or calls compute once per
// key across concurrent callers and stores what it returns. The boolean
// reports a cache hit.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, compute func() ([]document.Document, error)) ([]document.Document, bool, error) {
	if docs, ok := c.get(ctx, key); ok {
		return docs, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		docs, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]document.Document), false, nil
}

func (c *QueryCache) get(ctx context.Context, key string) ([]document.Document, bool) {
	var (
		data  []byte
		found bool
	)
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	if err == nil && found {
		var docs []document.Document
		if err := json.Unmarshal(data, &docs); err == nil {
			c.recordHit()
			return docs, true
		}
		c.logger.Error("cache entry corrupt", "key", key)
	}
	c.recordMiss()
	return nil, false
}

func (c *QueryCache) set(ctx context.Context, key string, docs []document.Document) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Invalidate deletes every cached result. Entries from an earlier process
// can collide with fresh generations, so callers clear the cache on start.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.DeleteByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key derives the cache key for a parsed query. Execution mode is not part
// of the key: both modes return the same documents.
func Key(q *parser.Query, status document.Status, generation uint64) string {
	raw := fmt.Sprintf("+%s|-%s|%s|%d",
		strings.Join(q.PlusWords, ","),
		strings.Join(q.MinusWords, ","),
		status,
		generation,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// Engine is what Searcher needs from the index.
type Engine interface {
	ParseQuery(rawQuery string) (*parser.Query, error)
	Generation() uint64
	FindTopDocuments(mode execution.Mode, rawQuery string, predicate document.Predicate) ([]document.Document, error)
}

// Searcher runs searches against an engine, going through the cache when
// one is configured and the filter is a plain status.
type Searcher struct {
	engine Engine
	cache  *QueryCache
}

// NewSearcher returns a Searcher; cache may be nil.
func NewSearcher(engine Engine, cache *QueryCache) *Searcher {
	return &Searcher{engine: engine, cache: cache}
}

// Search is FindTopDocuments with an optional cache in front. Arbitrary
// predicates bypass the cache; use SearchStatus for cacheable filters.
func (s *Searcher) Search(ctx context.Context, mode execution.Mode, rawQuery string, predicate document.Predicate) ([]document.Document, bool, error) {
	if predicate == nil {
		return s.SearchStatus(ctx, mode, rawQuery, document.StatusActual)
	}
	docs, err := s.engine.FindTopDocuments(mode, rawQuery, predicate)
	return docs, false, err
}

// SearchStatus returns the top documents with the given status.
func (s *Searcher) SearchStatus(ctx context.Context, mode execution.Mode, rawQuery string, status document.Status) ([]document.Document, bool, error) {
	var predicate document.Predicate
	if status != document.StatusActual {
		predicate = document.HasStatus(status)
	}
	if s.cache == nil {
		docs, err := s.engine.FindTopDocuments(mode, rawQuery, predicate)
		return docs, false, err
	}
	q, err := s.engine.ParseQuery(rawQuery)
	if err != nil {
		return nil, false, err
	}
	key := Key(q, status, s.engine.Generation())
	return s.cache.GetOrCompute(ctx, key, func() ([]document.Document, error) {
		return s.engine.FindTopDocuments(mode, rawQuery, predicate)
	})
}
