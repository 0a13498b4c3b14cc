// Package corpus reads the per-document artifacts produced by the external
// preprocessing pipeline: tokens_<id>.txt (one normalized token per line) and
// lemmas_<id>.txt (one lemma group per line, lemma key first, then the
// surface forms that map to it).
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

// LemmaGroup is one line of a lemma artifact: the lemma key and the distinct
// surface tokens that lemmatize to it.
type LemmaGroup struct {
	Lemma    string
	Surfaces []string
}

// Source supplies the per-document token and lemma sequences.
type Source interface {
	Tokens(docID string) ([]string, error)
	LemmaGroups(docID string) ([]LemmaGroup, error)
}

// DirSource reads artifacts from a flat corpus directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Tokens returns the token sequence for a document. A missing artifact is
// reported as ErrMissingArtifact so builds can skip the document.
func (s *DirSource) Tokens(docID string) ([]string, error) {
	path := filepath.Join(s.dir, "tokens_"+docID+".txt")
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens, nil
}

// LemmaGroups returns the lemma groups for a document. The first field of
// each line is the lemma key.
func (s *DirSource) LemmaGroups(docID string) ([]LemmaGroup, error) {
	path := filepath.Join(s.dir, "lemmas_"+docID+".txt")
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	groups := make([]LemmaGroup, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		groups = append(groups, LemmaGroup{
			Lemma:    fields[0],
			Surfaces: fields,
		})
	}
	return groups, nil
}

// DocIDs lists the document ids that have a token artifact in the directory.
func (s *DirSource) DocIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing corpus directory %s: %w", s.dir, err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "tokens_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "tokens_"), ".txt")
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingArtifact, path)
		}
		return nil, fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	return lines, nil
}
