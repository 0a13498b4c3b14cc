// Package engine owns the serving state of the retrieval service: an
// immutable Snapshot (catalog, inverted index, TF-IDF vectors) behind an
// atomic pointer. Queries read whichever snapshot is current; a rebuild
// constructs a new one and swaps it in without touching the old.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	"github.com/LudwigAndreas/Infopoisk/internal/index"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/cache"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/executor"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/ranker"
	"github.com/LudwigAndreas/Infopoisk/pkg/config"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
	"github.com/LudwigAndreas/Infopoisk/pkg/kafka"
	"github.com/LudwigAndreas/Infopoisk/pkg/metrics"
	"github.com/LudwigAndreas/Infopoisk/pkg/resilience"
)

// Snapshot is one immutable view of the corpus. All fields are read-only
// after construction; concurrent queries need no locking.
type Snapshot struct {
	Catalog      *catalog.Catalog
	Index        *index.Inverted
	Executor     *executor.Executor
	TermVectors  map[string]ranker.Vector
	TermIDF      map[string]float64
	LemmaVectors map[string]ranker.Vector
	LemmaIDF     map[string]float64
	LemmaTable   *corpus.LemmaTable
	BuiltAt      time.Time
}

// CatalogLoader supplies the document catalog (file- or database-backed).
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, error)

// Deps are the optional collaborators of the engine; any of them may be nil.
type Deps struct {
	Cache     *cache.QueryCache
	Publisher *kafka.Producer
	Metrics   *metrics.Metrics
}

// Engine serves boolean and ranked queries over the current snapshot and
// coordinates rebuilds.
type Engine struct {
	cfg         *config.Config
	loadCatalog CatalogLoader
	store       *index.Store
	src         *corpus.DirSource
	deps        Deps
	logger      *slog.Logger

	snap      atomic.Pointer[Snapshot]
	rebuildMu sync.Mutex
}

// rebuildEvent is published after every successful snapshot swap.
type rebuildEvent struct {
	Type      string    `json:"type"`
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	BuiltAt   time.Time `json:"built_at"`
}

// New creates an Engine. The snapshot is empty until the first Rebuild.
func New(cfg *config.Config, loadCatalog CatalogLoader, deps Deps) *Engine {
	src := corpus.NewDirSource(cfg.Corpus.DataDir)
	builder := index.NewBuilder(src, cfg.Index.BuildConcurrency)
	return &Engine{
		cfg:         cfg,
		loadCatalog: loadCatalog,
		store:       index.NewStore(cfg.Index.SnapshotFile, builder),
		src:         src,
		deps:        deps,
		logger:      slog.Default().With("component", "engine"),
	}
}

// Snapshot returns the current serving snapshot, or nil before the first
// successful rebuild.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Rebuild constructs a fresh snapshot and swaps it in atomically. With force
// set the persisted index snapshot is ignored and the index is rebuilt from
// the corpus artifacts. Rebuilds are serialized; queries keep running against
// the old snapshot until the swap.
func (e *Engine) Rebuild(ctx context.Context, force bool) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()
	cat, err := e.loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}

	cat, inv, err := e.store.Open(ctx, cat, force)
	if err != nil && inv == nil {
		return err
	}
	if err != nil {
		// In-memory index is complete; only persistence failed.
		e.logger.Error("index built but snapshot not persisted", "error", err)
	}

	snap := &Snapshot{
		Catalog:  cat,
		Index:    inv,
		Executor: executor.New(inv, cat),
		BuiltAt:  time.Now(),
	}
	e.loadVectors(snap)

	e.snap.Store(snap)
	e.logger.Info("snapshot swapped",
		"documents", cat.Len(),
		"terms", inv.TermCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if m := e.deps.Metrics; m != nil {
		trigger := "startup"
		if force {
			trigger = "rebuild"
		}
		m.IndexBuildsTotal.WithLabelValues(trigger).Inc()
		m.IndexBuildDuration.Observe(time.Since(start).Seconds())
		m.IndexedDocuments.Set(float64(cat.Len()))
		m.IndexedTerms.Set(float64(inv.TermCount()))
	}

	e.invalidateCache(ctx)
	e.publishRebuild(ctx, snap)
	return nil
}

// loadVectors populates the ranked-search side of the snapshot. Missing
// vector artifacts degrade the snapshot to boolean-only serving.
func (e *Engine) loadVectors(snap *Snapshot) {
	dir := e.cfg.TFIDF.OutputDir

	termVecs, termIDF, err := ranker.LoadVectors(dir, ranker.SpaceTerms)
	if err != nil {
		e.logger.Warn("term vectors unavailable, ranked search degraded", "error", err)
	} else {
		snap.TermVectors = termVecs
		snap.TermIDF = termIDF
	}

	lemmaVecs, lemmaIDF, err := ranker.LoadVectors(dir, ranker.SpaceLemmas)
	if err != nil {
		e.logger.Warn("lemma vectors unavailable, ranked search degraded", "error", err)
	} else {
		snap.LemmaVectors = lemmaVecs
		snap.LemmaIDF = lemmaIDF
	}

	ids, err := e.src.DocIDs()
	if err == nil {
		table, err := corpus.BuildLemmaTable(e.src, ids)
		if err == nil {
			snap.LemmaTable = table
		}
	}
}

// BooleanSearch evaluates a boolean query against the current snapshot,
// consulting the query cache when one is configured. InvalidQuery errors are
// returned alongside an empty result set.
func (e *Engine) BooleanSearch(ctx context.Context, query string) ([]executor.Result, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, apperrors.ErrSnapshotNotReady
	}

	start := time.Now()
	var results []executor.Result
	var hit bool
	var err error

	if e.deps.Cache != nil {
		results, hit, err = e.deps.Cache.GetOrCompute(ctx, query, func() ([]executor.Result, error) {
			return snap.Executor.Search(ctx, query)
		})
	} else {
		results, err = snap.Executor.Search(ctx, query)
	}

	if m := e.deps.Metrics; m != nil {
		m.QueryLatency.WithLabelValues("boolean").Observe(time.Since(start).Seconds())
		switch {
		case errors.Is(err, apperrors.ErrInvalidQuery):
			m.BooleanQueriesTotal.WithLabelValues("invalid").Inc()
		case err != nil:
			m.BooleanQueriesTotal.WithLabelValues("error").Inc()
		default:
			m.BooleanQueriesTotal.WithLabelValues("ok").Inc()
			m.QueryResultsCount.Observe(float64(len(results)))
		}
		if e.deps.Cache != nil && err == nil {
			if hit {
				m.CacheHitsTotal.Inc()
			} else {
				m.CacheMissesTotal.Inc()
			}
		}
	}
	if err != nil {
		return []executor.Result{}, err
	}
	return results, nil
}

// RankedSearch runs a top-K cosine-similarity query in the requested term
// space against the current snapshot.
func (e *Engine) RankedSearch(ctx context.Context, query string, space ranker.Space, limit int) ([]ranker.ScoredDoc, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, apperrors.ErrSnapshotNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := snap.TermVectors
	idf := snap.TermIDF
	var lemmas *corpus.LemmaTable
	if space == ranker.SpaceLemmas {
		vectors = snap.LemmaVectors
		idf = snap.LemmaIDF
		lemmas = snap.LemmaTable
	}
	if vectors == nil {
		return nil, fmt.Errorf("%w: %s space", apperrors.ErrVectorsMissing, space)
	}

	if limit <= 0 {
		limit = e.cfg.Search.DefaultLimit
	}
	if max := e.cfg.Search.MaxResults; max > 0 && limit > max {
		limit = max
	}

	start := time.Now()
	queryVec := ranker.QueryVector(query, idf, lemmas)
	results := ranker.Rank(queryVec, vectors, snap.Catalog, limit)

	if m := e.deps.Metrics; m != nil {
		m.RankedQueriesTotal.WithLabelValues(space.String()).Inc()
		m.QueryLatency.WithLabelValues("ranked").Observe(time.Since(start).Seconds())
		m.QueryResultsCount.Observe(float64(len(results)))
	}
	return results, nil
}

// InvalidateCache drops the query cache, used both locally after a rebuild
// and when a peer's rebuild notification arrives.
func (e *Engine) InvalidateCache(ctx context.Context) {
	e.invalidateCache(ctx)
}

func (e *Engine) invalidateCache(ctx context.Context) {
	if e.deps.Cache == nil {
		return
	}
	if err := e.deps.Cache.Invalidate(ctx); err != nil {
		e.logger.Error("cache invalidation failed", "error", err)
	}
}

func (e *Engine) publishRebuild(ctx context.Context, snap *Snapshot) {
	if e.deps.Publisher == nil {
		return
	}
	event := kafka.Event{
		Key: "index",
		Value: rebuildEvent{
			Type:      "index-complete",
			Documents: snap.Catalog.Len(),
			Terms:     snap.Index.TermCount(),
			BuiltAt:   snap.BuiltAt,
		},
	}
	err := resilience.Retry(ctx, "publish-rebuild", resilience.RetryConfig{}, func() error {
		return e.deps.Publisher.Publish(ctx, event)
	})
	if err != nil {
		e.logger.Error("rebuild event not published", "error", err)
	}
}
