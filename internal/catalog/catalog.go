// Package catalog holds the document-id → URL table. A Catalog is built once
// per corpus snapshot and is read-only afterwards.
package catalog

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// Document is one corpus entry. IDs are opaque numeric strings; they are
// never coerced to integers except through IDLess.
type Document struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Catalog is the immutable id→URL mapping for one corpus snapshot.
type Catalog struct {
	urls map[string]string
	ids  []string
}

// New builds a Catalog from documents. Duplicate ids keep the last URL seen.
func New(docs []Document) *Catalog {
	urls := make(map[string]string, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		urls[d.ID] = d.URL
	}
	ids := make([]string, 0, len(urls))
	for id := range urls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return IDLess(ids[i], ids[j]) })
	return &Catalog{urls: urls, ids: ids}
}

// FromMap builds a Catalog from an id→URL map (the snapshot's persisted form).
func FromMap(urls map[string]string) *Catalog {
	docs := make([]Document, 0, len(urls))
	for id, url := range urls {
		docs = append(docs, Document{ID: id, URL: url})
	}
	return New(docs)
}

// LoadFile reads a catalog artifact: one `id url` pair per line, separated by
// whitespace. Lines without both fields are skipped. A missing file is
// reported as ErrMissingArtifact.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: catalog file %s", apperrors.ErrMissingArtifact, path)
		}
		return nil, fmt.Errorf("opening catalog file %s: %w", path, err)
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, url, found := strings.Cut(line, " ")
		if !found {
			id, url, found = strings.Cut(line, "\t")
		}
		if !found {
			continue
		}
		docs = append(docs, Document{ID: strings.TrimSpace(id), URL: strings.TrimSpace(url)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	return New(docs), nil
}

// URL returns the URL for a document id.
func (c *Catalog) URL(id string) (string, bool) {
	url, ok := c.urls[id]
	return url, ok
}

// Contains reports whether the catalog knows the given document id.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.urls[id]
	return ok
}

// IDs returns all document ids in ascending IDLess order. The returned slice
// must not be mutated.
func (c *Catalog) IDs() []string {
	return c.ids
}

// URLs returns a copy of the id→URL map, for snapshot serialisation.
func (c *Catalog) URLs() map[string]string {
	out := make(map[string]string, len(c.urls))
	for id, url := range c.urls {
		out[id] = url
	}
	return out
}

// Len returns the number of documents in the catalog.
func (c *Catalog) Len() int {
	return len(c.urls)
}

// IDLess is the deterministic document-id ordering used everywhere results
// are sorted: ids that both parse as integers compare numerically, everything
// else falls back to bytewise comparison.
func IDLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		if na != nb {
			return na < nb
		}
		return a < b
	}
	return a < b
}
