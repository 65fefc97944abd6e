// Command invertedindex computes per-word, per-document TF-IDF scores across the documents
// of a single JSON-lines input file, keeping the top 3 documents per word.
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
	resultCol := flag.String("result-col", "tf_idf", "name of the output score field")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: invertedindex [flags] <input.jsonl>")
		os.Exit(2)
	}

	source := cliutil.OpenJSONLines(flag.Arg(0))
	graph := pipelines.InvertedIndex(source, *docCol, *textCol, *resultCol)

	if err := cliutil.RunToJSONArray(graph, *out); err != nil {
		fmt.Fprintln(os.Stderr, "invertedindex:", err)
		os.Exit(1)
	}
}
