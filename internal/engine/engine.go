// Package engine owns the active track snapshot: it loads HURDAT2 data from a
// source, swaps snapshots atomically, and answers exposure queries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/source"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

// ErrSource marks a load that failed before parsing: the source could not be
// opened or read.
var ErrSource = errors.New("track source unavailable")

// Publisher receives every snapshot that replaces the active one.
type Publisher interface {
	PublishTracks(ctx context.Context, generation uint64, ds *domain.Dataset) error
}

type snapshot struct {
	dataset    *domain.Dataset
	generation uint64
}

type cacheKey struct {
	generation uint64
	lat, lon   float64
}

// Engine serves queries from an immutable snapshot. Loads are serialized;
// queries take no locks.
type Engine struct {
	source    source.Source
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	years    int
	policy   domain.RankPolicy
	interval time.Duration

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
	cache    *lru.Cache[cacheKey, domain.RankedResult]
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for the recency cutoff and reload timing.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithPublisher sends each new snapshot to p after it becomes active.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithRecencyYears sets the lookback window. Values below 1 are ignored.
func WithRecencyYears(years int) Option {
	return func(e *Engine) {
		if years > 0 {
			e.years = years
		}
	}
}

// WithPolicy sets the ranking policy.
func WithPolicy(p domain.RankPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithReloadInterval sets how often Run reloads the source. Zero disables
// periodic reloads.
func WithReloadInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithCacheSize enables an LRU cache of query results. Zero disables it.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[cacheKey, domain.RankedResult](size)
	}
}

// New creates an Engine with no snapshot. Call Load or Run before serving.
func New(src source.Source, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	e := &Engine{
		source:  src,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
		years:   domain.DefaultRecencyYears,
		policy:  domain.RankByDistance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches and parses the source, then swaps in the new snapshot. On any
// error the previous snapshot stays active. Source failures wrap ErrSource;
// malformed data returns a *domain.ParseError.
func (e *Engine) Load(ctx context.Context) (domain.LoadStats, error) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	start := e.clock.Now()
	ds, err := e.load(ctx)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			e.metrics.DatasetLoads.WithLabelValues("parse_error").Inc()
			e.logger.Error("track data rejected, keeping previous snapshot",
				"source", e.source.String(), "line", perr.Line, "field", perr.Field, "error", err)
		} else {
			e.metrics.DatasetLoads.WithLabelValues("source_error").Inc()
			e.logger.Error("track source failed, keeping previous snapshot",
				"source", e.source.String(), "error", err)
		}
		return domain.LoadStats{}, err
	}

	var generation uint64 = 1
	if prev := e.current.Load(); prev != nil {
		generation = prev.generation + 1
	}
	e.current.Store(&snapshot{dataset: ds, generation: generation})
	if e.cache != nil {
		e.cache.Purge()
	}

	stats := ds.Stats
	e.metrics.DatasetLoads.WithLabelValues("success").Inc()
	e.metrics.LoadDuration.Observe(e.clock.Since(start).Seconds())
	e.metrics.TracksRetained.Set(float64(stats.TracksRetained))
	e.metrics.ObservationsRetained.Set(float64(stats.ObservationsRetained))
	e.metrics.TracksDiscarded.Set(float64(stats.TracksDiscarded))
	e.metrics.ObservationsExpired.Set(float64(stats.ObservationsExpired))
	e.metrics.SnapshotGeneration.Set(float64(generation))

	e.logger.Info("track snapshot loaded",
		"source", e.source.String(),
		"generation", generation,
		"tracks", stats.TracksRetained,
		"observations", stats.ObservationsRetained,
		"discarded_tracks", stats.TracksDiscarded,
		"expired_observations", stats.ObservationsExpired,
		"cutoff", stats.Cutoff,
	)

	e.publish(ctx, generation, ds)
	return stats, nil
}

func (e *Engine) load(ctx context.Context) (*domain.Dataset, error) {
	rc, err := e.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	defer rc.Close()

	ds, err := domain.LoadDataset(rc, e.clock.Now(), e.years)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	return ds, nil
}

// publish failures are logged and counted; the snapshot is already active.
func (e *Engine) publish(ctx context.Context, generation uint64, ds *domain.Dataset) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishTracks(ctx, generation, ds); err != nil {
		e.metrics.PublishErrors.Inc()
		e.logger.Warn("track publication failed", "generation", generation, "error", err)
		return
	}
	e.metrics.TracksPublished.Add(float64(len(ds.Tracks)))
}

// Query ranks the storms whose influence circles contain (lat, lon). Before
// the first successful load it returns an empty result. Results may be shared
// with the cache and must not be modified.
func (e *Engine) Query(lat, lon float64) domain.RankedResult {
	start := e.clock.Now()
	defer func() { e.metrics.QueryDuration.Observe(e.clock.Since(start).Seconds()) }()

	snap := e.current.Load()
	if snap == nil {
		e.metrics.Queries.WithLabelValues("empty").Inc()
		return domain.RankedResult{Query: domain.QueryPoint{Lat: lat, Lon: lon}, Policy: e.policy}
	}

	key := cacheKey{generation: snap.generation, lat: lat, lon: lon}
	if e.cache != nil {
		if result, ok := e.cache.Get(key); ok {
			e.metrics.QueryCache.WithLabelValues("hit").Inc()
			e.countQuery(result)
			return result
		}
		e.metrics.QueryCache.WithLabelValues("miss").Inc()
	}

	result := domain.Query(snap.dataset, lat, lon, e.policy)
	if e.cache != nil {
		e.cache.Add(key, result)
	}
	e.countQuery(result)
	return result
}

func (e *Engine) countQuery(result domain.RankedResult) {
	outcome := "hit"
	if result.Empty() {
		outcome = "empty"
	}
	e.metrics.Queries.WithLabelValues(outcome).Inc()
}

// Dataset returns the active snapshot and its generation, or nil and 0 before
// the first successful load.
func (e *Engine) Dataset() (*domain.Dataset, uint64) {
	snap := e.current.Load()
	if snap == nil {
		return nil, 0
	}
	return snap.dataset, snap.generation
}

// Policy returns the ranking policy used by Query.
func (e *Engine) Policy() domain.RankPolicy { return e.policy }

// CheckReadiness returns nil once a snapshot is active.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.current.Load() == nil {
		return errors.New("no track snapshot loaded yet")
	}
	return nil
}
