package compgraph

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// NewCSVLineParser returns a header-driven LineParser for the given field separator: the
// first line it sees is treated as the header row (and produces no Row), every
// subsequent line is split the same way and type-sniffed into int64, float64, bool, or
// string per cell.
func NewCSVLineParser(sep rune) LineParser {
	var headers []string
	seenHeader := false
	return func(line string) (any, error) {
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = sep
		fields, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("parse delimited line: %w", err)
		}
		if !seenHeader {
			headers = append([]string(nil), fields...)
			seenHeader = true
			return nil, nil
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				row[h] = parseCSVCell(fields[i])
			}
		}
		return row, nil
	}
}

// NewCSVParser is NewCSVLineParser(',').
func NewCSVParser() LineParser { return NewCSVLineParser(',') }

// NewTSVParser is NewCSVLineParser('\t').
func NewTSVParser() LineParser { return NewCSVLineParser('\t') }

func parseCSVCell(cell string) Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return Str("")
	}
	lower := strings.ToLower(trimmed)
	if lower == "true" {
		return Bool(true)
	}
	if lower == "false" {
		return Bool(false)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(f)
	}
	return Str(cell)
}
