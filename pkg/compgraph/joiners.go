package compgraph

// JoinSuffixes names the disambiguation suffixes applied to a non-key field present on
// both sides of a matched join pair.
type JoinSuffixes struct {
	A string
	B string
}

// DefaultJoinSuffixes is applied when a Joiner constructor is called with no override.
var DefaultJoinSuffixes = JoinSuffixes{A: "_1", B: "_2"}

func resolveSuffixes(suffixes []JoinSuffixes) JoinSuffixes {
	if len(suffixes) > 0 {
		return suffixes[0]
	}
	return DefaultJoinSuffixes
}

// mergeMatched combines one left row and one right row sharing keys into a single row.
// Key fields are taken once, from the left row (they are equal by construction). A
// non-key field present on both sides is disambiguated with s.A / s.B; a field unique to
// one side is copied unchanged.
func mergeMatched(keys []string, left, right Row, s JoinSuffixes) Row {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	out := make(Row, len(left)+len(right))
	for k, v := range left {
		if keySet[k] {
			out[k] = v
			continue
		}
		if _, collide := right[k]; collide {
			out[k+s.A] = v
		} else {
			out[k] = v
		}
	}
	for k, v := range right {
		if keySet[k] {
			continue
		}
		if _, collide := left[k]; collide {
			out[k+s.B] = v
		} else {
			out[k] = v
		}
	}
	return out
}

func matchedRows(keys []string, left, right []Row, s JoinSuffixes) []Row {
	out := make([]Row, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, mergeMatched(keys, l, r, s))
		}
	}
	return out
}

// InnerJoiner emits only the Cartesian product of matched groups; unmatched rows on
// either side are dropped.
func InnerJoiner(suffixes ...JoinSuffixes) Joiner {
	s := resolveSuffixes(suffixes)
	return func(keys []string, left, right []Row) []Row {
		if len(left) == 0 || len(right) == 0 {
			return nil
		}
		return matchedRows(keys, left, right, s)
	}
}

// LeftJoiner emits the Cartesian product of matched groups plus, unchanged, any left row
// whose key has no match on the right.
func LeftJoiner(suffixes ...JoinSuffixes) Joiner {
	s := resolveSuffixes(suffixes)
	return func(keys []string, left, right []Row) []Row {
		if len(right) == 0 {
			return append([]Row(nil), left...)
		}
		if len(left) == 0 {
			return nil
		}
		return matchedRows(keys, left, right, s)
	}
}

// RightJoiner emits the Cartesian product of matched groups plus, unchanged, any right
// row whose key has no match on the left.
func RightJoiner(suffixes ...JoinSuffixes) Joiner {
	s := resolveSuffixes(suffixes)
	return func(keys []string, left, right []Row) []Row {
		if len(left) == 0 {
			return append([]Row(nil), right...)
		}
		if len(right) == 0 {
			return nil
		}
		return matchedRows(keys, left, right, s)
	}
}

// OuterJoiner emits the Cartesian product of matched groups plus, unchanged, any
// unmatched row from either side.
func OuterJoiner(suffixes ...JoinSuffixes) Joiner {
	s := resolveSuffixes(suffixes)
	return func(keys []string, left, right []Row) []Row {
		switch {
		case len(left) == 0:
			return append([]Row(nil), right...)
		case len(right) == 0:
			return append([]Row(nil), left...)
		default:
			return matchedRows(keys, left, right, s)
		}
	}
}
