// Package curvecache memoizes parsed-and-built curves per feed source. It
// shields the pipeline from redundant network fetches and serves the last
// known-good curve when a refresh fails: availability over freshness, since
// the underlying feed updates at most daily.
package curvecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"RateSim/internal/domain/models"
	drepo "RateSim/internal/domain/repository"
	"RateSim/internal/services/curve"
	"RateSim/internal/services/feed"
	pkgcache "RateSim/pkg/cache"
	applogger "RateSim/pkg/logger"
)

var (
	// ErrUnknownSource is returned for source IDs with no registered feed.
	ErrUnknownSource = errors.New("curvecache: unknown source")
	// ErrNoFallback is returned when a fetch fails and no prior curve exists
	// to serve stale.
	ErrNoFallback = errors.New("curvecache: fetch failed and no fallback curve")
)

// State is the per-source lifecycle: Empty -> Fetching -> Fresh -> Stale ->
// Fetching -> ...
type State int

const (
	StateEmpty State = iota
	StateFetching
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "empty"
	}
}

// Snapshot is a built curve plus its provenance.
type Snapshot struct {
	SourceID  string
	AsOf      string
	FetchedAt time.Time
	Curve     curve.Curve
}

// Model converts the snapshot to its wire representation.
func (s Snapshot) Model() *models.CurveSnapshot {
	return &models.CurveSnapshot{
		SourceID:     s.SourceID,
		AsOf:         s.AsOf,
		FetchedAt:    s.FetchedAt,
		Observations: s.Curve.Observations(),
	}
}

// flight is one in-progress fetch. Waiters park on done and then read the
// resolved outcome, so every concurrent caller sees the identical curve or
// the identical failure.
type flight struct {
	done  chan struct{}
	snap  Snapshot
	stale bool
	err   error
}

type entry struct {
	mu       sync.Mutex
	state    State
	snap     Snapshot
	hasSnap  bool
	inflight *flight
}

// Option configures Cache.
type Option func(*Cache)

// WithMaxAge sets the freshness window.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// WithFetchTimeout sets the per-fetch deadline. A fetch exceeding it counts
// as a fetch failure and falls back to stale data.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// WithInterpolation sets the curve interpolation kind for built curves.
func WithInterpolation(kind curve.Interpolation) Option {
	return func(c *Cache) { c.interp = kind }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Cache) { c.l = l }
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithPersistence adds an L2 store for serialized snapshots so a restarted
// process still has a stale-fallback before its first successful fetch.
func WithPersistence(store pkgcache.Service, ttl time.Duration) Option {
	return func(c *Cache) {
		c.l2 = store
		c.l2TTL = ttl
	}
}

// Cache coalesces fetches per source and keeps one snapshot per source ID.
// Entries for distinct sources are independent; there is no global lock
// around fetching.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	sources map[string]drepo.FeedSource

	maxAge       time.Duration
	fetchTimeout time.Duration
	interp       curve.Interpolation

	l       *applogger.Logger
	metrics drepo.Metrics
	l2      pkgcache.Service
	l2TTL   time.Duration

	listenerMu sync.Mutex
	listeners  []func(Snapshot)
}

// New creates a cache over the given feed sources.
func New(sources []drepo.FeedSource, opts ...Option) *Cache {
	c := &Cache{
		entries:      make(map[string]*entry),
		sources:      make(map[string]drepo.FeedSource, len(sources)),
		maxAge:       time.Hour,
		fetchTimeout: 30 * time.Second,
		interp:       curve.InterpLinear,
	}
	for _, s := range sources {
		c.sources[s.ID()] = s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SourceIDs lists the registered sources.
func (c *Cache) SourceIDs() []string {
	ids := make([]string, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	return ids
}

// OnRefresh registers a callback invoked after every successful fetch.
func (c *Cache) OnRefresh(fn func(Snapshot)) {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenerMu.Unlock()
}

// State reports the lifecycle state for a source.
func (c *Cache) State(sourceID string) State {
	c.mu.Lock()
	ent, ok := c.entries[sourceID]
	c.mu.Unlock()
	if !ok {
		return StateEmpty
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.state
}

// GetOrFetch returns the source's curve snapshot, fetching through the
// parser/builder pipeline when the cached entry is missing or older than the
// freshness window. Concurrent callers during an in-flight fetch coalesce
// onto it rather than fetching again.
func (c *Cache) GetOrFetch(ctx context.Context, sourceID string) (Snapshot, error) {
	source, ok := c.sources[sourceID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownSource, sourceID)
	}
	ent := c.entry(sourceID)

	ent.mu.Lock()
	if ent.hasSnap && time.Since(ent.snap.FetchedAt) <= c.maxAge {
		snap := ent.snap
		ent.mu.Unlock()
		return snap, nil
	}
	if f := ent.inflight; f != nil {
		ent.mu.Unlock()
		return c.wait(ctx, f)
	}
	f := &flight{done: make(chan struct{})}
	ent.inflight = f
	ent.state = StateFetching
	ent.mu.Unlock()

	go c.fetch(source, ent, f)
	return c.wait(ctx, f)
}

func (c *Cache) wait(ctx context.Context, f *flight) (Snapshot, error) {
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-f.done:
	}
	if f.err != nil {
		return Snapshot{}, f.err
	}
	return f.snap, nil
}

func (c *Cache) entry(sourceID string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[sourceID]
	if !ok {
		ent = &entry{}
		c.entries[sourceID] = ent
	}
	return ent
}

// fetch runs the fetch/parse/build pipeline and resolves the flight. The
// fetch deadline is owned by the cache, detached from any single caller's
// context so one caller's cancellation does not fail the others.
func (c *Cache) fetch(source drepo.FeedSource, ent *entry, f *flight) {
	start := time.Now()
	fctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	snap, err := c.refresh(fctx, source)
	if c.metrics != nil {
		c.metrics.RecordLatency("feed_fetch", time.Since(start).Seconds())
	}

	ent.mu.Lock()
	ent.inflight = nil
	if err == nil {
		ent.snap = snap
		ent.hasSnap = true
		ent.state = StateFresh
		f.snap = snap
	} else if ent.hasSnap {
		// Serve the last known-good curve rather than failing the request.
		ent.state = StateStale
		f.snap = ent.snap
		f.stale = true
	} else if restored, ok := c.restore(source.ID()); ok {
		ent.snap = restored
		ent.hasSnap = true
		ent.state = StateStale
		f.snap = restored
		f.stale = true
	} else {
		ent.state = StateEmpty
		f.err = fmt.Errorf("%w: %w", ErrNoFallback, err)
	}
	ent.mu.Unlock()
	close(f.done)

	switch {
	case err == nil:
		if c.metrics != nil {
			c.metrics.RecordFetch(source.ID(), "ok")
		}
		c.notify(snap)
		c.persist(snap)
	case f.err == nil:
		if c.metrics != nil {
			c.metrics.RecordFetch(source.ID(), "stale")
		}
		if c.l != nil {
			c.l.Warn("curvecache serving stale",
				applogger.String("source", source.ID()),
				applogger.Error(err))
		}
	default:
		if c.metrics != nil {
			c.metrics.RecordFetch(source.ID(), "error")
			c.metrics.RecordError("fetch")
		}
		if c.l != nil {
			c.l.Error("curvecache fetch failed, no fallback",
				applogger.String("source", source.ID()),
				applogger.Error(err))
		}
	}
}

// refresh performs one fetch through the parser/builder pipeline.
func (c *Cache) refresh(ctx context.Context, source drepo.FeedSource) (Snapshot, error) {
	raw, err := source.Fetch(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch %s: %w", source.ID(), err)
	}
	asOf, obs, err := feed.Parse(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", source.ID(), err)
	}
	crv, err := curve.Build(obs, c.interp)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build %s: %w", source.ID(), err)
	}
	return Snapshot{
		SourceID:  source.ID(),
		AsOf:      asOf,
		FetchedAt: time.Now(),
		Curve:     crv,
	}, nil
}

func (c *Cache) notify(snap Snapshot) {
	c.listenerMu.Lock()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func (c *Cache) persist(snap Snapshot) {
	if c.l2 == nil {
		return
	}
	b, err := json.Marshal(snap.Model())
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.l2.Set(ctx, l2Key(snap.SourceID), string(b), c.l2TTL); err != nil && c.l != nil {
		c.l.Warn("curvecache persist error", applogger.Error(err))
	}
}

func (c *Cache) restore(sourceID string) (Snapshot, bool) {
	if c.l2 == nil {
		return Snapshot{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var raw string
	if err := c.l2.Get(ctx, l2Key(sourceID), &raw); err != nil {
		return Snapshot{}, false
	}
	var m models.CurveSnapshot
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Snapshot{}, false
	}
	crv, err := curve.Build(m.Observations, c.interp)
	if err != nil {
		return Snapshot{}, false
	}
	return Snapshot{SourceID: m.SourceID, AsOf: m.AsOf, FetchedAt: m.FetchedAt, Curve: crv}, true
}

func l2Key(sourceID string) string {
	return pkgcache.GenerateKey("curve_snapshot", sourceID)
}
