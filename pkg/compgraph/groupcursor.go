package compgraph

// groupCursor partitions an assumed-sorted-by-key RowStream into maximal equal-key
// groups, handing each group to the caller as its own lazy RowStream. Reduce and Join
// both build on this: a reducer is free to stop pulling a group early (e.g. FirstReducer
// reading only the first row), so the cursor itself drains whatever is left of the
// previous group before starting the next one — callers never need to drain manually.
type groupCursor struct {
	src  RowStream
	keys []string

	hasLookahead bool
	lookahead    Row
	exhausted    bool
	deferredErr  error

	lastGroup RowStream
}

func newGroupCursor(src RowStream, keys []string) *groupCursor {
	return &groupCursor{src: src, keys: keys}
}

// fill pulls one row into the lookahead buffer if it is empty and the source has not
// already ended or failed. Errors are stashed in deferredErr rather than returned, so
// every caller sees them surface at the next natural pull boundary instead of losing
// whatever row was already in flight.
func (c *groupCursor) fill() {
	if c.hasLookahead || c.exhausted || c.deferredErr != nil {
		return
	}
	row, err := c.src()
	if err != nil {
		if isEOS(err) {
			c.exhausted = true
			return
		}
		c.deferredErr = err
		return
	}
	c.lookahead = row
	c.hasLookahead = true
}

// next drains whatever remains of the previous group, then returns the key tuple and a
// RowStream over the next group. It returns EOS once the source is exhausted.
func (c *groupCursor) next() ([]Value, RowStream, error) {
	if c.lastGroup != nil {
		for {
			if _, err := c.lastGroup(); err != nil {
				break // always EOS by construction; see group() below
			}
		}
		c.lastGroup = nil
	}

	c.fill()
	if c.deferredErr != nil {
		err := c.deferredErr
		c.deferredErr = nil
		return nil, nil, err
	}
	if !c.hasLookahead {
		return nil, nil, EOS
	}

	groupKey, err := keyTuple(c.lookahead, c.keys)
	if err != nil {
		return nil, nil, err
	}

	group := c.group(groupKey)
	c.lastGroup = group
	return groupKey, group, nil
}

// group returns a RowStream yielding rows matching groupKey, stopping (cleanly, at EOS)
// either when the source is exhausted or the next row's key differs. Any error
// encountered while peeking ahead for the boundary check is stashed for the cursor's next
// call to next(), not returned mid-group, so a row already handed to the caller is never
// retracted.
func (c *groupCursor) group(groupKey []Value) RowStream {
	active := true
	return func() (Row, error) {
		if !active {
			return nil, EOS
		}
		c.fill()
		if c.deferredErr != nil {
			active = false
			return nil, EOS
		}
		if !c.hasLookahead {
			active = false
			return nil, EOS
		}
		rowKey, err := keyTuple(c.lookahead, c.keys)
		if err != nil {
			c.deferredErr = err
			active = false
			return nil, EOS
		}
		if compareKeys(rowKey, groupKey) != 0 {
			active = false
			return nil, EOS
		}
		row := c.lookahead
		c.hasLookahead = false
		return row, nil
	}
}
