package ranker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// Space selects which persisted term space to load.
type Space int

const (
	SpaceTerms Space = iota
	SpaceLemmas
)

func (s Space) String() string {
	if s == SpaceLemmas {
		return "lemmas"
	}
	return "terms"
}

func (s Space) filePrefix() string {
	if s == SpaceLemmas {
		return "tfidf_lemmas_"
	}
	return "tfidf_terms_"
}

// LoadVectors reconstructs the per-document TF-IDF vectors and the global idf
// table from the persisted `term idf tfidf` artifacts of one term space. The
// idf value is redundantly stored per document; the first sighting of each
// term is taken as authoritative since every copy is identical.
func LoadVectors(dir string, space Space) (map[string]Vector, map[string]float64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: tfidf directory %s", apperrors.ErrVectorsMissing, dir)
		}
		return nil, nil, fmt.Errorf("listing tfidf directory %s: %w", dir, err)
	}

	prefix := space.filePrefix()
	docVectors := make(map[string]Vector)
	idf := make(map[string]float64)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		docID := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt")
		vec, err := readVectorFile(filepath.Join(dir, name), idf)
		if err != nil {
			return nil, nil, err
		}
		docVectors[docID] = vec
	}
	if len(docVectors) == 0 {
		return nil, nil, fmt.Errorf("%w: no %s* files in %s", apperrors.ErrVectorsMissing, prefix, dir)
	}
	return docVectors, idf, nil
}

// readVectorFile parses one document's weight file, populating idf on first
// sighting of each term.
func readVectorFile(path string, idf map[string]float64) (Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	vec := make(Vector)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("parsing %s: malformed line %q", path, line)
		}
		term := fields[0]
		idfVal, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: bad idf in line %q: %w", path, line, err)
		}
		tfidfVal, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: bad tfidf in line %q: %w", path, line, err)
		}
		vec[term] = tfidfVal
		if _, seen := idf[term]; !seen {
			idf[term] = idfVal
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vec, nil
}
