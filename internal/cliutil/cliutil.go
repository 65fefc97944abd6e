// Package cliutil holds the bit of plumbing shared by the compgraph cmd/ binaries:
// opening a JSON-lines input as a graph source and writing a graph's output as a single
// JSON array.
package cliutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/compgraph/compgraph/pkg/compgraph"
)

// OpenJSONLines returns a Graph whose sole source is the file at path, parsed one JSON
// object per line.
func OpenJSONLines(path string) *compgraph.Graph {
	return compgraph.FromFile(path, compgraph.JSONLineParser)
}

// RunToJSONArray runs g with no named-source bindings (every source in g is a FromFile
// leaf) and writes its output rows to outPath as a single JSON array.
func RunToJSONArray(g *compgraph.Graph, outPath string) error {
	stream, closer, err := g.RunCloseable(map[string]func() compgraph.RowStream{})
	if err != nil {
		return err
	}
	defer closer.Close()

	var out *os.File
	if outPath == "" || outPath == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file %s: %w", outPath, err)
		}
		defer out.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	rows := make([]map[string]any, 0)
	for {
		row, err := stream()
		if err != nil {
			if errors.Is(err, compgraph.EOS) {
				break
			}
			return err
		}
		rows = append(rows, compgraph.RowToJSON(row))
	}
	return enc.Encode(rows)
}
