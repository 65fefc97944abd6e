package compgraph

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	gosort "sort"
)

// SortBufferRows bounds how many rows the external sort accumulates in memory before
// spilling a run to a temp file. Package-level so callers processing unusually large or
// small rows can tune it without changing the Graph API.
var SortBufferRows = 100000

type sortNode struct {
	parent plan
	keys   []string
}

// keyedRow carries a row together with its extracted key tuple so the buffer is compared
// without re-walking the key fields on every comparison.
type keyedRow struct {
	row Row
	key []Value
}

func (n *sortNode) run(sources map[string]func() RowStream) (RowStream, Closeable, error) {
	in, inCloser, err := n.parent.run(sources)
	if err != nil {
		return nil, nil, err
	}

	buf := make([]keyedRow, 0, SortBufferRows)
	var runPaths []string
	var tmpDir string
	var closeReaders func() error
	cleaned := false

	cleanup := func() error {
		if cleaned {
			return nil
		}
		cleaned = true
		var first error
		if inCloser != nil {
			if err := inCloser.Close(); err != nil {
				first = err
			}
		}
		if closeReaders != nil {
			if err := closeReaders(); err != nil && first == nil {
				first = err
			}
		}
		if tmpDir != "" {
			if err := os.RemoveAll(tmpDir); err != nil && first == nil {
				first = &IOError{Op: "remove temp dir " + tmpDir, Err: err}
			}
		}
		return first
	}

	sortBuf := func() {
		gosort.SliceStable(buf, func(i, j int) bool {
			return compareKeys(buf[i].key, buf[j].key) < 0
		})
	}

	spillRun := func() error {
		if tmpDir == "" {
			dir, err := os.MkdirTemp("", "compgraph-sort-*")
			if err != nil {
				return &IOError{Op: "create temp dir", Err: err}
			}
			tmpDir = dir
		}
		sortBuf()
		path := filepath.Join(tmpDir, fmt.Sprintf("run-%04d.ndjson", len(runPaths)))
		f, err := os.Create(path)
		if err != nil {
			return &IOError{Op: "create run file " + path, Err: err}
		}
		w := bufio.NewWriter(f)
		enc := json.NewEncoder(w)
		for _, kr := range buf {
			if err := enc.Encode(rowToWire(kr.row)); err != nil {
				f.Close()
				return &IOError{Op: "write run file " + path, Err: err}
			}
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return &IOError{Op: "flush run file " + path, Err: err}
		}
		if err := f.Close(); err != nil {
			return &IOError{Op: "close run file " + path, Err: err}
		}
		runPaths = append(runPaths, path)
		buf = buf[:0]
		return nil
	}

	// Run generation: accumulate into buf, spilling a run each time it fills. Key tuples
	// are extracted up front so a row missing a key field surfaces as ConfigError here,
	// the same way the grouped operators report it.
	for {
		row, err := in()
		if err != nil {
			if isEOS(err) {
				break
			}
			cleanup()
			return nil, nil, err
		}
		key, err := keyTuple(row, n.keys)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		buf = append(buf, keyedRow{row: row, key: key})
		if len(buf) >= SortBufferRows {
			if err := spillRun(); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	}

	if len(runPaths) == 0 {
		// Small-input fast path: everything fit in one buffer, nothing was spilled.
		sortBuf()
		sorted := buf
		i := 0
		pull := func() (Row, error) {
			if i >= len(sorted) {
				return nil, EOS
			}
			row := sorted[i].row
			i++
			return row, nil
		}
		return pull, closerFunc(cleanup), nil
	}

	if len(buf) > 0 {
		if err := spillRun(); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	pull, readersClose, err := mergeRuns(runPaths, n.keys)
	closeReaders = readersClose
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	// The spill directory is released as soon as the merged output ends or fails; Close
	// covers a consumer that stops pulling earlier.
	merged := func() (Row, error) {
		row, err := pull()
		if err != nil {
			cleanup()
		}
		return row, err
	}
	return merged, closerFunc(cleanup), nil
}

// Sort stably orders g's rows ascending by keys, spilling to disk once the input reaches
// SortBufferRows rows. A sort followed by a reduce/join on the same keys sees correctly
// grouped input.
func (g *Graph) Sort(keys []string) *Graph {
	return &Graph{plan: &sortNode{parent: g.plan, keys: keys}}
}

// --- k-way merge ---

type runReader struct {
	path    string
	f       *os.File
	scanner *bufio.Scanner
}

func openRun(path string) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InternalError{Msg: fmt.Sprintf("reopen run file %s: %v", path, err)}
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	return &runReader{path: path, f: f, scanner: sc}, nil
}

func (r *runReader) next() (Row, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, &InternalError{Msg: fmt.Sprintf("read run file %s: %v", r.path, err)}
		}
		return nil, EOS
	}
	var wr wireRow
	if err := json.Unmarshal(r.scanner.Bytes(), &wr); err != nil {
		return nil, &InternalError{Msg: fmt.Sprintf("decode run file %s: %v", r.path, err)}
	}
	return wireToRow(wr), nil
}

func (r *runReader) close() error { return r.f.Close() }

type heapItem struct {
	row    Row
	key    []Value
	runIdx int
}

type mergeHeap []heapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if c := compareKeys(h[i].key, h[j].key); c != 0 {
		return c < 0
	}
	return h[i].runIdx < h[j].runIdx
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)   { *h = append(*h, x.(heapItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeRuns opens every spilled run and streams them out in key order via a
// container/heap priority queue keyed by (key value, run index); the run-index tiebreak
// preserves stability since each run was itself written in stable-sorted order. The
// returned close func releases every opened run file; the caller folds it into the
// node's Closeable.
func mergeRuns(paths []string, keys []string) (RowStream, func() error, error) {
	readers := make([]*runReader, len(paths))
	closeAll := func() error {
		var first error
		for _, r := range readers {
			if r == nil {
				continue
			}
			if err := r.close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	for i, p := range paths {
		r, err := openRun(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		readers[i] = r
	}

	h := &mergeHeap{}
	heap.Init(h)
	for i, r := range readers {
		row, err := r.next()
		if err != nil {
			if isEOS(err) {
				continue
			}
			return nil, closeAll, err
		}
		key, err := keyTuple(row, keys)
		if err != nil {
			return nil, closeAll, err
		}
		heap.Push(h, heapItem{row: row, key: key, runIdx: i})
	}

	var deferredErr error
	return func() (Row, error) {
		if deferredErr != nil {
			err := deferredErr
			deferredErr = nil
			return nil, err
		}
		if h.Len() == 0 {
			return nil, EOS
		}
		item := heap.Pop(h).(heapItem)
		next, err := readers[item.runIdx].next()
		if err != nil {
			if !isEOS(err) {
				deferredErr = err
			}
		} else {
			key, kerr := keyTuple(next, keys)
			if kerr != nil {
				deferredErr = kerr
			} else {
				heap.Push(h, heapItem{row: next, key: key, runIdx: item.runIdx})
			}
		}
		return item.row, nil
	}, closeAll, nil
}

// --- NDJSON wire format for spilled runs ---

type wireValue struct {
	K int         `json:"k"`
	S string      `json:"s,omitempty"`
	I int64       `json:"i,omitempty"`
	F float64     `json:"f,omitempty"`
	B bool        `json:"b,omitempty"`
	C [2]float64  `json:"c,omitempty"`
	L []wireValue `json:"l,omitempty"`
}

type wireRow map[string]wireValue

func valueToWire(v Value) wireValue {
	w := wireValue{K: int(v.Kind())}
	switch v.Kind() {
	case KindString:
		w.S, _ = v.AsString()
	case KindInt:
		w.I, _ = v.AsInt()
	case KindFloat:
		w.F, _ = v.AsFloat()
	case KindBool:
		w.B, _ = v.AsBool()
	case KindCoord:
		w.C, _ = v.AsCoord()
	case KindList:
		elems, _ := v.AsList()
		w.L = make([]wireValue, len(elems))
		for i, e := range elems {
			w.L[i] = valueToWire(e)
		}
	}
	return w
}

func wireToValue(w wireValue) Value {
	switch Kind(w.K) {
	case KindString:
		return Str(w.S)
	case KindInt:
		return Int(w.I)
	case KindFloat:
		return Float(w.F)
	case KindBool:
		return Bool(w.B)
	case KindCoord:
		return Coord(w.C[0], w.C[1])
	case KindList:
		elems := make([]Value, len(w.L))
		for i, e := range w.L {
			elems[i] = wireToValue(e)
		}
		return List(elems)
	default:
		return Str("")
	}
}

func rowToWire(row Row) wireRow {
	out := make(wireRow, len(row))
	for k, v := range row {
		out[k] = valueToWire(v)
	}
	return out
}

func wireToRow(wr wireRow) Row {
	out := make(Row, len(wr))
	for k, v := range wr {
		out[k] = wireToValue(v)
	}
	return out
}
