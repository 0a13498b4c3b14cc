package index

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// Builder constructs the inverted index from the corpus artifacts. Documents
// are scanned in parallel; the posting-list merge is the synchronization
// barrier.
type Builder struct {
	src         corpus.Source
	concurrency int
	logger      *slog.Logger
}

// NewBuilder creates a Builder reading from src with the given scan
// parallelism (minimum 1).
func NewBuilder(src corpus.Source, concurrency int) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		src:         src,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "index-builder"),
	}
}

// Build scans every catalog document's token and lemma artifacts and merges
// them into one index. Missing artifacts are logged and skipped; the build is
// best-effort and only fails on context cancellation.
func (b *Builder) Build(ctx context.Context, cat *catalog.Catalog) (*Inverted, error) {
	inv := NewInverted()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, docID := range cat.IDs() {
		docID := docID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			terms := b.scanDocument(docID)
			if len(terms) == 0 {
				return nil
			}
			mu.Lock()
			for term := range terms {
				inv.Add(term, docID)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info("inverted index built",
		"documents", cat.Len(),
		"terms", inv.TermCount(),
	)
	return inv, nil
}

// scanDocument collects the distinct tokens and lemma keys of one document.
func (b *Builder) scanDocument(docID string) map[string]struct{} {
	terms := make(map[string]struct{})

	tokens, err := b.src.Tokens(docID)
	if err != nil {
		b.warnArtifact(docID, "tokens", err)
	} else {
		for _, tok := range tokens {
			terms[tok] = struct{}{}
		}
	}

	groups, err := b.src.LemmaGroups(docID)
	if err != nil {
		b.warnArtifact(docID, "lemmas", err)
	} else {
		for _, g := range groups {
			if g.Lemma != "" {
				terms[g.Lemma] = struct{}{}
			}
		}
	}
	return terms
}

func (b *Builder) warnArtifact(docID, kind string, err error) {
	if errors.Is(err, apperrors.ErrMissingArtifact) {
		b.logger.Warn("artifact not found, skipping", "doc_id", docID, "artifact", kind)
		return
	}
	b.logger.Warn("artifact unreadable, skipping", "doc_id", docID, "artifact", kind, "error", err)
}
