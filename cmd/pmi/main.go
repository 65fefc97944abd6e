// Command pmi ranks, for every document in a single JSON-lines input file, its top 10
// words by pointwise mutual information against the corpus.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/compgraph/compgraph/internal/cliutil"
	"github.com/compgraph/compgraph/pipelines"
)

func main() {
	out := flag.String("out", "", "output file (JSON array); defaults to stdout")
	docCol := flag.String("doc-col", "doc_id", "name of the field holding the document identifier")
	textCol := flag.String("text-col", "text", "name of the field holding the document text")
	resultCol := flag.String("result-col", "pmi", "name of the output score field")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pmi [flags] <input.jsonl>")
		os.Exit(2)
	}

	source := cliutil.OpenJSONLines(flag.Arg(0))
	graph := pipelines.PMI(source, *docCol, *textCol, *resultCol)

	if err := cliutil.RunToJSONArray(graph, *out); err != nil {
		fmt.Fprintln(os.Stderr, "pmi:", err)
		os.Exit(1)
	}
}
