package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// snapshotPayload is the persisted form of catalog + index. The field names
// match the artifact format consumed by the rest of the pipeline.
type snapshotPayload struct {
	DocURLs  map[string]string   `json:"doc_urls"`
	Postings map[string][]string `json:"inverted_index"`
}

// Save serialises the catalog and index into one snapshot file, writing to a
// temp file and renaming so a crash never leaves a torn snapshot.
func Save(path string, cat *catalog.Catalog, inv *Inverted) error {
	payload := snapshotPayload{
		DocURLs:  cat.URLs(),
		Postings: make(map[string][]string, inv.TermCount()),
	}
	for _, term := range inv.Terms() {
		payload.Postings[term] = inv.Postings(term).IDs()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}

// Load deserialises a snapshot. Parse failures and missing fields are
// reported as ErrCorruptSnapshot so callers can fall back to a rebuild.
func Load(path string) (*catalog.Catalog, *Inverted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrMissingArtifact, path)
		}
		return nil, nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptSnapshot, err)
	}
	if payload.DocURLs == nil || payload.Postings == nil {
		return nil, nil, fmt.Errorf("%w: missing doc_urls or inverted_index field", apperrors.ErrCorruptSnapshot)
	}

	cat := catalog.FromMap(payload.DocURLs)
	inv := NewInverted()
	for term, ids := range payload.Postings {
		for _, id := range ids {
			inv.Add(term, id)
		}
	}
	return cat, inv, nil
}

// Store owns the snapshot file and the rebuild fallback: it loads the
// persisted index when possible and self-heals by rebuilding and re-saving
// when the snapshot is absent or corrupt.
type Store struct {
	path    string
	builder *Builder
	logger  *slog.Logger
}

// NewStore creates a Store persisting to path and rebuilding with builder.
func NewStore(path string, builder *Builder) *Store {
	return &Store{
		path:    path,
		builder: builder,
		logger:  slog.Default().With("component", "index-store"),
	}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Open returns the serving catalog and index. Unless force is set it first
// tries the persisted snapshot; a corrupt or missing snapshot triggers a full
// rebuild from cat followed by a re-save. A failed save is returned as an
// error alongside the fully usable in-memory state.
func (s *Store) Open(ctx context.Context, cat *catalog.Catalog, force bool) (*catalog.Catalog, *Inverted, error) {
	if !force {
		loadedCat, inv, err := Load(s.path)
		if err == nil {
			s.logger.Info("index snapshot loaded",
				"path", s.path,
				"documents", loadedCat.Len(),
				"terms", inv.TermCount(),
			)
			return loadedCat, inv, nil
		}
		s.logger.Warn("snapshot unusable, rebuilding index", "path", s.path, "error", err)
	}

	inv, err := s.builder.Build(ctx, cat)
	if err != nil {
		return nil, nil, fmt.Errorf("building index: %w", err)
	}
	if err := Save(s.path, cat, inv); err != nil {
		return cat, inv, fmt.Errorf("persisting index snapshot: %w", err)
	}
	s.logger.Info("index snapshot saved", "path", s.path, "terms", inv.TermCount())
	return cat, inv, nil
}
