// Command boolsearch answers a boolean query against a corpus directory,
// building (or loading) the persisted inverted index first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	"github.com/LudwigAndreas/Infopoisk/internal/index"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/executor"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
	"github.com/LudwigAndreas/Infopoisk/pkg/logger"
)

func main() {
	dir := flag.String("dir", "", "corpus directory with the catalog and token/lemma artifacts")
	rebuild := flag.Bool("rebuild", false, "rebuild the index even if a snapshot exists")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if *dir == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: boolsearch -dir <corpus-dir> [-rebuild] <query...>")
		os.Exit(2)
	}
	logger.Setup(*logLevel, "text")
	query := strings.Join(flag.Args(), " ")
	ctx := context.Background()

	cat, err := catalog.LoadFile(filepath.Join(*dir, "index.txt"))
	if err != nil {
		// An absent catalog degrades to an empty corpus, same as an
		// unreadable one; every query then returns no results.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		cat = catalog.New(nil)
	}

	src := corpus.NewDirSource(*dir)
	builder := index.NewBuilder(src, 8)
	store := index.NewStore(filepath.Join(*dir, "inverted_index.json"), builder)

	cat, inv, err := store.Open(ctx, cat, *rebuild)
	if err != nil {
		if inv == nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	results, err := executor.New(inv, cat).Search(ctx, query)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidQuery) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			fmt.Println("Found 0 results:")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d results:\n", len(results))
	for _, r := range results {
		fmt.Printf("Document %s: %s\n", r.DocID, r.URL)
	}
}
