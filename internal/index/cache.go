package index

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"charnnections/internal/store"
)

const DefaultTTL = 5 * time.Minute

type EntityLister interface {
	ListAll(ctx context.Context) ([]store.Entity, error)
}

// Cache holds zero or one index with a freshness deadline. Readers get an
// immutable snapshot; a rebuild swaps the whole snapshot.
type Cache struct {
	entities EntityLister
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	current atomic.Pointer[snapshot]
	flight  singleflight.Group
}

type snapshot struct {
	index    *Index
	deadline time.Time
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCache(entities EntityLister, opts ...Option) *Cache {
	c := &Cache{
		entities: entities,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached index, rebuilding it synchronously when none exists
// or the deadline has passed. Concurrent stale callers share one rebuild. A
// caller whose context ends stops waiting with ctx.Err(); the shared rebuild
// keeps running and stores its snapshot for later callers. A failed rebuild
// stores nothing, so the next call retries.
func (c *Cache) Get(ctx context.Context) (*Index, error) {
	if idx := c.fresh(); idx != nil {
		return idx, nil
	}

	ch := c.flight.DoChan("index", func() (any, error) {
		if idx := c.fresh(); idx != nil {
			return idx, nil
		}
		return c.rebuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

func (c *Cache) fresh() *Index {
	s := c.current.Load()
	if s == nil || !c.now().Before(s.deadline) {
		return nil
	}
	return s.index
}

func (c *Cache) rebuild(ctx context.Context) (*Index, error) {
	start := time.Now()

	entities, err := c.entities.ListAll(ctx)
	if err != nil {
		buildTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("building attribute index: %w", err)
	}

	idx := Build(entities)
	c.current.Store(&snapshot{index: idx, deadline: c.now().Add(c.ttl)})

	elapsed := time.Since(start)
	stats := idx.Stats()
	buildTotal.WithLabelValues("ok").Inc()
	buildDuration.Observe(elapsed.Seconds())
	uniquePairs.Set(float64(stats.UniquePairs))
	eligiblePairs.Set(float64(stats.EligiblePairs))

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int("entities", stats.EntitiesScanned),
		zap.Int("with_attributes", stats.WithAttributes),
		zap.Int("without_attributes", stats.WithoutAttributes),
		zap.Int("attributes_seen", stats.AttributesSeen),
		zap.Int("unique_pairs", stats.UniquePairs),
		zap.Int("eligible_pairs", stats.EligiblePairs),
	}
	if stats.EligiblePairs < MinGroupSize {
		c.logger.Warn("attribute index too sparse for a puzzle", fields...)
	} else {
		c.logger.Info("attribute index built", fields...)
	}
	return idx, nil
}
