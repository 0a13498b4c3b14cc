// Package index implements the inverted index: a mapping from normalized
// terms to the set of document ids containing them, with a persisted JSON
// snapshot that round-trips exactly.
package index

import (
	"sort"
	"strings"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
)

// DocSet is a set of document ids with O(1) membership.
type DocSet map[string]struct{}

// NewDocSet builds a DocSet from ids.
func NewDocSet(ids ...string) DocSet {
	s := make(DocSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an id; repeated insertion is a no-op.
func (s DocSet) Add(id string) {
	s[id] = struct{}{}
}

// Contains reports set membership.
func (s DocSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set with the ids of both operands.
func (s DocSet) Union(other DocSet) DocSet {
	out := make(DocSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set with the ids present in both operands.
func (s DocSet) Intersect(other DocSet) DocSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(DocSet)
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Difference returns a new set with the ids of s that are not in other.
func (s DocSet) Difference(other DocSet) DocSet {
	out := make(DocSet)
	for id := range s {
		if _, ok := other[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same ids.
func (s DocSet) Equal(other DocSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// IDs returns the ids in ascending catalog order.
func (s DocSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return catalog.IDLess(ids[i], ids[j]) })
	return ids
}

// Inverted maps terms to their posting sets. Terms are lowercased at
// insertion; both the raw-token space and the lemma-key space feed the same
// index.
type Inverted struct {
	postings map[string]DocSet
}

// NewInverted creates an empty index.
func NewInverted() *Inverted {
	return &Inverted{postings: make(map[string]DocSet)}
}

// Add inserts a document id into a term's posting set. The term is lowercased
// to enforce the index's key normalization.
func (inv *Inverted) Add(term, docID string) {
	term = strings.ToLower(term)
	if term == "" {
		return
	}
	set, ok := inv.postings[term]
	if !ok {
		set = make(DocSet)
		inv.postings[term] = set
	}
	set.Add(docID)
}

// Postings returns the posting set for a term, matched exactly as given
// (callers fold case upstream; the index stores lowercase keys). Returns nil
// for absent terms.
func (inv *Inverted) Postings(term string) DocSet {
	return inv.postings[term]
}

// TermCount returns the number of distinct terms in the index.
func (inv *Inverted) TermCount() int {
	return len(inv.postings)
}

// Terms returns all terms in sorted order, for snapshot serialisation.
func (inv *Inverted) Terms() []string {
	terms := make([]string, 0, len(inv.postings))
	for term := range inv.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Equal reports whether two indexes answer every term lookup identically.
func (inv *Inverted) Equal(other *Inverted) bool {
	if len(inv.postings) != len(other.postings) {
		return false
	}
	for term, set := range inv.postings {
		if !set.Equal(other.postings[term]) {
			return false
		}
	}
	return true
}

