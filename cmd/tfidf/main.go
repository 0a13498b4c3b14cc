// Command tfidf batch-computes TF-IDF artifacts for a corpus: per document,
// one weight file for raw terms and one for lemmas.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	"github.com/LudwigAndreas/Infopoisk/internal/tfidf"
	"github.com/LudwigAndreas/Infopoisk/pkg/logger"
)

func main() {
	in := flag.String("in", "", "directory with tokens_<id>.txt and lemmas_<id>.txt artifacts")
	out := flag.String("out", "", "directory for the tfidf_terms_/tfidf_lemmas_ output files")
	concurrency := flag.Int("concurrency", 8, "parallel document scans")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: tfidf -in <corpus-dir> -out <output-dir>")
		os.Exit(2)
	}
	logger.Setup(*logLevel, "text")

	engine := tfidf.NewEngine(corpus.NewDirSource(*in), *concurrency)
	if err := engine.Run(context.Background(), *out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
