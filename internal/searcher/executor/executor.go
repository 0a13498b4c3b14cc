// Package executor evaluates postfix boolean queries against an inverted
// index and joins the matching document ids with the catalog.
package executor

import (
	"context"
	"log/slog"
	"sort"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/index"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/parser"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// Result is one matching document joined with its URL.
type Result struct {
	DocID string `json:"doc_id"`
	URL   string `json:"url"`
}

// Executor runs boolean queries against one immutable catalog+index pair.
// It is safe for concurrent use.
type Executor struct {
	idx    *index.Inverted
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New creates an Executor over the given snapshot.
func New(idx *index.Inverted, cat *catalog.Catalog) *Executor {
	return &Executor{
		idx:    idx,
		cat:    cat,
		logger: slog.Default().With("component", "bool-executor"),
	}
}

// Evaluate parses and evaluates a boolean query, returning the matching
// document-id set. An empty query yields the empty set; terms absent from
// the index contribute empty sets. Operator underflow and malformed postfix
// sequences are reported as ErrInvalidQuery.
func (e *Executor) Evaluate(query string) (index.DocSet, error) {
	rpn := parser.Parse(query)
	if len(rpn) == 0 {
		return index.DocSet{}, nil
	}

	var universe index.DocSet
	stack := make([]index.DocSet, 0, len(rpn))

	pop := func() index.DocSet {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for _, tok := range rpn {
		switch tok {
		case parser.OpAnd:
			if len(stack) < 2 {
				return nil, apperrors.Newf(apperrors.ErrInvalidQuery, 400,
					"not enough operands for AND operator")
			}
			right := pop()
			left := pop()
			stack = append(stack, left.Intersect(right))
		case parser.OpOr:
			if len(stack) < 2 {
				return nil, apperrors.Newf(apperrors.ErrInvalidQuery, 400,
					"not enough operands for OR operator")
			}
			right := pop()
			left := pop()
			stack = append(stack, left.Union(right))
		case parser.OpNot:
			if len(stack) < 1 {
				return nil, apperrors.Newf(apperrors.ErrInvalidQuery, 400,
					"not enough operands for NOT operator")
			}
			if universe == nil {
				universe = index.NewDocSet(e.cat.IDs()...)
			}
			operand := pop()
			stack = append(stack, universe.Difference(operand))
		default:
			postings := e.idx.Postings(tok)
			if postings == nil {
				postings = index.DocSet{}
			}
			stack = append(stack, postings)
		}
	}

	if len(stack) != 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidQuery, 400,
			"malformed expression: %d operands left after evaluation", len(stack))
	}
	return stack[0], nil
}

// Search evaluates a query and joins the result with the catalog, sorted by
// ascending document id.
func (e *Executor) Search(ctx context.Context, query string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched, err := e.Evaluate(query)
	if err != nil {
		e.logger.Debug("query rejected", "query", query, "error", err)
		return nil, err
	}

	results := make([]Result, 0, len(matched))
	for id := range matched {
		url, _ := e.cat.URL(id)
		results = append(results, Result{DocID: id, URL: url})
	}
	sort.Slice(results, func(i, j int) bool {
		return catalog.IDLess(results[i].DocID, results[j].DocID)
	})
	return results, nil
}
