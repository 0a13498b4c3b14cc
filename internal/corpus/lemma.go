package corpus

import (
	"errors"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// LemmaTable maps surface tokens to their lemma key. It is derived from the
// corpus lemma artifacts so that query-side lemmatization uses exactly the
// same mapping as the document-side preprocessing.
type LemmaTable struct {
	lemmas map[string]string
}

// BuildLemmaTable aggregates the lemma groups of the given documents into one
// surface→lemma table. Documents without a lemma artifact are skipped.
func BuildLemmaTable(src Source, docIDs []string) (*LemmaTable, error) {
	lemmas := make(map[string]string)
	for _, id := range docIDs {
		groups, err := src.LemmaGroups(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrMissingArtifact) {
				continue
			}
			return nil, err
		}
		for _, g := range groups {
			for _, surface := range g.Surfaces {
				lemmas[surface] = g.Lemma
			}
		}
	}
	return &LemmaTable{lemmas: lemmas}, nil
}

// Lemma returns the lemma for a surface token, or the token itself when the
// table has no entry for it.
func (t *LemmaTable) Lemma(token string) string {
	if t == nil {
		return token
	}
	if lemma, ok := t.lemmas[token]; ok {
		return lemma
	}
	return token
}

// Apply maps a token sequence into the lemma term space.
func (t *LemmaTable) Apply(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = t.Lemma(tok)
	}
	return out
}

// Len returns the number of surface forms in the table.
func (t *LemmaTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lemmas)
}
