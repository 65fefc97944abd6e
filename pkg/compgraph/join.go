package compgraph

// Joiner combines one group from each side of a Join into zero or more output rows. It is
// invoked with (keys, left, nil) or (keys, nil, right) for a group on one side that has no
// counterpart on the other. A joiner that emits such rows returns them unchanged, with no
// suffixing, since there is nothing for them to collide with; InnerJoiner emits none of
// them.
type Joiner func(keys []string, left, right []Row) []Row

type joinNode struct {
	left, right plan
	joiner      Joiner
	keys        []string
}

func collectGroup(group RowStream) ([]Row, error) {
	var rows []Row
	for {
		row, err := group()
		if err != nil {
			if isEOS(err) {
				return rows, nil
			}
			return rows, err
		}
		rows = append(rows, row)
	}
}

func (n *joinNode) run(sources map[string]func() RowStream) (RowStream, Closeable, error) {
	leftIn, leftCloser, err := n.left.run(sources)
	if err != nil {
		return nil, nil, err
	}
	rightIn, rightCloser, err := n.right.run(sources)
	if err != nil {
		leftCloser.Close()
		return nil, nil, err
	}
	closer := multiCloser{leftCloser, rightCloser}

	lc := newGroupCursor(leftIn, n.keys)
	rc := newGroupCursor(rightIn, n.keys)

	var leftDone, rightDone bool
	var leftKey, rightKey []Value
	var leftRows, rightRows []Row
	needLeft, needRight := true, true

	var queue []Row

	advance := func() error {
		for {
			if len(queue) > 0 {
				return nil
			}
			if needLeft && !leftDone {
				key, group, err := lc.next()
				if err != nil {
					if isEOS(err) {
						leftDone = true
						leftKey, leftRows = nil, nil
					} else {
						return err
					}
				} else {
					rows, err := collectGroup(group)
					if err != nil {
						return err
					}
					leftKey, leftRows = key, rows
				}
				needLeft = false
			}
			if needRight && !rightDone {
				key, group, err := rc.next()
				if err != nil {
					if isEOS(err) {
						rightDone = true
						rightKey, rightRows = nil, nil
					} else {
						return err
					}
				} else {
					rows, err := collectGroup(group)
					if err != nil {
						return err
					}
					rightKey, rightRows = key, rows
				}
				needRight = false
			}

			if leftDone && rightDone {
				return EOS
			}
			switch {
			case leftDone:
				queue = n.joiner(n.keys, nil, rightRows)
				needRight = true
			case rightDone:
				queue = n.joiner(n.keys, leftRows, nil)
				needLeft = true
			default:
				switch cmp := compareKeys(leftKey, rightKey); {
				case cmp == 0:
					queue = n.joiner(n.keys, leftRows, rightRows)
					needLeft, needRight = true, true
				case cmp < 0:
					queue = n.joiner(n.keys, leftRows, nil)
					needLeft = true
				default:
					queue = n.joiner(n.keys, nil, rightRows)
					needRight = true
				}
			}
		}
	}

	pull := func() (Row, error) {
		if err := advance(); err != nil {
			return nil, err
		}
		row := queue[0]
		queue = queue[1:]
		return row, nil
	}
	return pull, closer, nil
}

// Join merges g with other under j, keyed by keys. Both graphs are assumed already sorted
// ascending by keys. The join performs a linear merge over groups: matched groups are
// materialised fully and handed to j as a pair of slices; a group present on only one side
// is handed to j with the other side nil.
func (g *Graph) Join(j Joiner, other *Graph, keys []string) *Graph {
	return &Graph{plan: &joinNode{left: g.plan, right: other.plan, joiner: j, keys: keys}}
}
