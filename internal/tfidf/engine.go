package tfidf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// Engine runs the whole-corpus TF-IDF computation: a parallel per-document
// scan collecting term frequencies, a barrier, then the idf computation and
// the per-document artifact writes. Raw terms and lemmas are weighted in
// fully separate spaces.
type Engine struct {
	src         *corpus.DirSource
	concurrency int
	logger      *slog.Logger
}

// NewEngine creates an Engine over a corpus directory.
func NewEngine(src *corpus.DirSource, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		src:         src,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "tfidf-engine"),
	}
}

// Run computes TF-IDF for every document with a token artifact and writes
// tfidf_terms_<id>.txt and tfidf_lemmas_<id>.txt into outputDir. Documents
// with missing artifacts are skipped with a warning. Write failures are
// collected and returned; already-written artifacts remain valid.
func (e *Engine) Run(ctx context.Context, outputDir string) error {
	ids, err := e.src.DocIDs()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lemmaTable, err := corpus.BuildLemmaTable(e.src, ids)
	if err != nil {
		return fmt.Errorf("building lemma table: %w", err)
	}

	termTFs := make(map[string]map[string]float64, len(ids))
	lemmaTFs := make(map[string]map[string]float64, len(ids))
	termDF := make(map[string]int)
	lemmaDF := make(map[string]int)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokens, err := e.src.Tokens(id)
			if err != nil {
				if errors.Is(err, apperrors.ErrMissingArtifact) {
					e.logger.Warn("tokens artifact missing, skipping document", "doc_id", id)
					return nil
				}
				return err
			}
			termTF := TermFrequency(tokens)
			lemmaTF := TermFrequency(lemmaTable.Apply(tokens))

			mu.Lock()
			termTFs[id] = termTF
			lemmaTFs[id] = lemmaTF
			for term := range termTF {
				termDF[term]++
			}
			for lemma := range lemmaTF {
				lemmaDF[lemma]++
			}
			mu.Unlock()
			return nil
		})
	}
	// The scan is the only parallel phase; df and idf are finalized after
	// this barrier.
	if err := g.Wait(); err != nil {
		return err
	}

	n := len(termTFs)
	termIDF := idfTable(n, termDF)
	lemmaIDF := idfTable(n, lemmaDF)

	var writeErrs []error
	for id, tf := range termTFs {
		if err := writeVector(filepath.Join(outputDir, "tfidf_terms_"+id+".txt"), tf, termIDF); err != nil {
			writeErrs = append(writeErrs, err)
		}
		if err := writeVector(filepath.Join(outputDir, "tfidf_lemmas_"+id+".txt"), lemmaTFs[id], lemmaIDF); err != nil {
			writeErrs = append(writeErrs, err)
		}
	}

	e.logger.Info("tfidf artifacts written",
		"documents", n,
		"terms", len(termIDF),
		"lemmas", len(lemmaIDF),
		"write_errors", len(writeErrs),
	)
	return errors.Join(writeErrs...)
}

func idfTable(totalDocs int, df map[string]int) map[string]float64 {
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = IDF(totalDocs, count)
	}
	return idf
}

// writeVector persists one document's weight vector as `term idf tfidf`
// lines with fixed 6-decimal precision, in sorted term order.
func writeVector(path string, tf map[string]float64, idf map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	w := bufio.NewWriter(f)
	for _, term := range terms {
		weight := idf[term]
		if _, err := fmt.Fprintf(w, "%s %.6f %.6f\n", term, weight, TFIDF(tf[term], weight)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}
