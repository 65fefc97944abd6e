// Command wordcount counts word occurrences in a single JSON-lines input file.
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
	textCol := flag.String("text-col", "text", "name of the field holding the document text")
	countCol := flag.String("count-col", "count", "name of the output count field")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wordcount [flags] <input.jsonl>")
		os.Exit(2)
	}

	source := cliutil.OpenJSONLines(flag.Arg(0))
	graph := pipelines.WordCount(source, *textCol, *countCol)

	if err := cliutil.RunToJSONArray(graph, *out); err != nil {
		fmt.Fprintln(os.Stderr, "wordcount:", err)
		os.Exit(1)
	}
}
