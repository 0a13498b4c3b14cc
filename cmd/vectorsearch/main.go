// Command vectorsearch ranks the corpus against a free-text query by cosine
// similarity over persisted TF-IDF vectors.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/ranker"
	"github.com/LudwigAndreas/Infopoisk/pkg/logger"
)

func main() {
	dir := flag.String("dir", "", "directory with tfidf_terms_/tfidf_lemmas_ files")
	catalogPath := flag.String("catalog", "", "catalog artifact with id url pairs")
	corpusDir := flag.String("corpus", "", "optional corpus directory, used to lemmatize the query")
	useLemmas := flag.Bool("lemmas", false, "rank in the lemma term space")
	top := flag.Int("top", 10, "number of results to return")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if *dir == "" || *catalogPath == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: vectorsearch -dir <tfidf-dir> -catalog <index.txt> [-lemmas] [-top N] <query...>")
		os.Exit(2)
	}
	logger.Setup(*logLevel, "text")
	query := strings.Join(flag.Args(), " ")

	space := ranker.SpaceTerms
	if *useLemmas {
		space = ranker.SpaceLemmas
	}
	docVectors, idf, err := ranker.LoadVectors(*dir, space)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var lemmas *corpus.LemmaTable
	if *useLemmas && *corpusDir != "" {
		src := corpus.NewDirSource(*corpusDir)
		if ids, err := src.DocIDs(); err == nil {
			lemmas, _ = corpus.BuildLemmaTable(src, ids)
		}
	}

	queryVec := ranker.QueryVector(query, idf, lemmas)
	results := ranker.Rank(queryVec, docVectors, cat, *top)

	fmt.Printf("Search results for query: %q\n", query)
	for _, r := range results {
		fmt.Printf("Document %s: %s\n", r.DocID, r.URL)
		fmt.Printf("Relevance score: %.4f\n", r.Score)
	}
}
