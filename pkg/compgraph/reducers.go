package compgraph

import (
	"container/heap"
	"fmt"
)

// FirstReducer emits only the first row of each group.
func FirstReducer() Reducer {
	return func(_ []string, group RowStream) RowStream {
		done := false
		return func() (Row, error) {
			if done {
				return nil, EOS
			}
			done = true
			row, err := group()
			if err != nil {
				return nil, err
			}
			return row, nil
		}
	}
}

func keyRow(keys []string, kv []Value) Row {
	out := make(Row, len(keys))
	for i, k := range keys {
		out[k] = kv[i]
	}
	return out
}

// Count emits one row per group carrying the key fields plus out = the number of rows in
// the group, as an int64.
func Count(out string) Reducer {
	return func(keys []string, group RowStream) RowStream {
		done := false
		return func() (Row, error) {
			if done {
				return nil, EOS
			}
			done = true
			var n int64
			var kv []Value
			for {
				row, err := group()
				if err != nil {
					if isEOS(err) {
						break
					}
					return nil, err
				}
				if kv == nil {
					kv, _ = keyTuple(row, keys)
				}
				n++
			}
			result := keyRow(keys, kv)
			result[out] = Int(n)
			return result, nil
		}
	}
}

// Sum emits one row per group carrying the key fields plus col = the sum of the group's
// col values. Any row whose col field is not numeric fails with TypeError.
func Sum(col string) Reducer {
	return func(keys []string, group RowStream) RowStream {
		done := false
		return func() (Row, error) {
			if done {
				return nil, EOS
			}
			done = true
			var total float64
			var isInt = true
			var kv []Value
			for {
				row, err := group()
				if err != nil {
					if isEOS(err) {
						break
					}
					return nil, err
				}
				if kv == nil {
					kv, _ = keyTuple(row, keys)
				}
				v, ok := row[col]
				if !ok {
					return nil, &ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)}
				}
				f, ok := v.AsFloat()
				if !ok {
					return nil, &TypeError{Field: col, Want: "numeric", Got: v.Kind().String()}
				}
				if v.Kind() != KindInt {
					isInt = false
				}
				total += f
			}
			result := keyRow(keys, kv)
			if isInt {
				result[col] = Int(int64(total))
			} else {
				result[col] = Float(total)
			}
			return result, nil
		}
	}
}

// TermFrequency emits, for each distinct value of wordCol within the group, one row
// carrying the key fields, wordCol = that value, and out = count(value)/|group|.
func TermFrequency(wordCol, out string) Reducer {
	return func(keys []string, group RowStream) RowStream {
		var rows []Row
		for {
			row, err := group()
			if err != nil {
				if isEOS(err) {
					break
				}
				return func() (Row, error) { return nil, err }
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			return func() (Row, error) { return nil, EOS }
		}
		kv, _ := keyTuple(rows[0], keys)

		order := make([]string, 0)
		counts := make(map[string]int64)
		for _, row := range rows {
			wv, ok := row[wordCol]
			if !ok {
				return func() (Row, error) {
					return nil, &ConfigError{Msg: fmt.Sprintf("row is missing field %q", wordCol)}
				}
			}
			w, _ := wv.AsString()
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}

		i := 0
		total := float64(len(rows))
		return func() (Row, error) {
			if i >= len(order) {
				return nil, EOS
			}
			w := order[i]
			i++
			result := keyRow(keys, kv)
			result[wordCol] = Str(w)
			result[out] = Float(float64(counts[w]) / total)
			return result, nil
		}
	}
}

// topNItem is one entry held by TopN's min-heap: the row, plus its comparison value and a
// canonical secondary key so ties are broken deterministically regardless of arrival
// order or which run a spill produced the row from.
type topNItem struct {
	row Row
	val float64
	sec string
}

type topNHeap []topNItem

func (h topNHeap) Len() int { return len(h) }
func (h topNHeap) Less(i, j int) bool {
	if h[i].val != h[j].val {
		return h[i].val < h[j].val
	}
	return h[i].sec < h[j].sec
}
func (h topNHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *topNHeap) Push(x any)   { *h = append(*h, x.(topNItem)) }
func (h *topNHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func rowSecondaryKey(row Row) string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	// deterministic field order for the tiebreak, independent of map iteration order
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	s := ""
	for _, k := range names {
		s += k + "=" + row[k].canonicalString() + ";"
	}
	return s
}

// TopN keeps, per group, the n rows with the largest col value, breaking ties by a
// deterministic canonical-string comparison over the row's fields. Emission order is
// ascending from the smallest kept value, i.e. the order the internal min-heap drains in
// — not "largest first".
func TopN(col string, n int) Reducer {
	return func(keys []string, group RowStream) RowStream {
		h := &topNHeap{}
		heap.Init(h)
		for {
			row, err := group()
			if err != nil {
				if isEOS(err) {
					break
				}
				return func() (Row, error) { return nil, err }
			}
			v, ok := row[col]
			if !ok {
				return func() (Row, error) {
					return nil, &ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)}
				}
			}
			f, ok := v.AsFloat()
			if !ok {
				return func() (Row, error) {
					return nil, &TypeError{Field: col, Want: "numeric", Got: v.Kind().String()}
				}
			}
			item := topNItem{row: row, val: f, sec: rowSecondaryKey(row)}
			heap.Push(h, item)
			if h.Len() > n {
				heap.Pop(h)
			}
		}
		return func() (Row, error) {
			if h.Len() == 0 {
				return nil, EOS
			}
			item := heap.Pop(h).(topNItem)
			return item.row, nil
		}
	}
}
