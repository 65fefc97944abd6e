package compgraph

// Reducer consumes one group (a contiguous equal-key run) and emits zero or more rows. It
// must consume its group exactly once; it may stop before EOS (e.g. FirstReducer), in
// which case the Reduce operator drains the remainder before starting the next group.
type Reducer func(keys []string, group RowStream) RowStream

type reduceNode struct {
	parent  plan
	reducer Reducer
	keys    []string
}

func (n *reduceNode) run(sources map[string]func() RowStream) (RowStream, Closeable, error) {
	in, closer, err := n.parent.run(sources)
	if err != nil {
		return nil, nil, err
	}
	cursor := newGroupCursor(in, n.keys)

	var cur RowStream
	pull := func() (Row, error) {
		for {
			if cur != nil {
				row, err := cur()
				if err == nil {
					return row, nil
				}
				if !isEOS(err) {
					return nil, err
				}
				cur = nil
			}
			_, group, err := cursor.next()
			if err != nil {
				return nil, err
			}
			cur = n.reducer(n.keys, group)
		}
	}
	return pull, closer, nil
}

// Reduce applies r to every maximal equal-key run of g, where the run is keyed by keys.
// g is assumed already sorted ascending by keys; violating that assumption is undefined
// behaviour (grouping will simply be wrong) but must not crash.
func (g *Graph) Reduce(r Reducer, keys []string) *Graph {
	return &Graph{plan: &reduceNode{parent: g.plan, reducer: r, keys: keys}}
}
