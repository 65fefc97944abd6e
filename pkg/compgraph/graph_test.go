package compgraph

import "testing"

func TestGraphImmutability(t *testing.T) {
	base := FromIter("in")
	withMap := base.Map(FilterPunctuation("text"))

	src := map[string]func() RowStream{
		"in": func() RowStream { return FromSlice([]Row{{"text": Str("hi!")}}) },
	}

	baseRows := runGraph(t, base, src)
	if s, _ := baseRows[0]["text"].AsString(); s != "hi!" {
		t.Errorf("building withMap must not have mutated base's plan, got %v", baseRows)
	}

	mapRows := runGraph(t, withMap, src)
	if s, _ := mapRows[0]["text"].AsString(); s != "hi" {
		t.Errorf("expected punctuation stripped, got %v", mapRows)
	}
}

func TestGraphReRunIsDeterministic(t *testing.T) {
	g := FromIter("in").Sort([]string{"k"})
	newSrc := func() map[string]func() RowStream {
		return map[string]func() RowStream{
			"in": func() RowStream {
				return FromSlice([]Row{{"k": Int(3)}, {"k": Int(1)}, {"k": Int(2)}})
			},
		}
	}
	first := runGraph(t, g, newSrc())
	second := runGraph(t, g, newSrc())
	if len(first) != len(second) {
		t.Fatalf("expected equal-length results across runs")
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("index %d: %v != %v across independent Runs", i, first[i], second[i])
		}
	}
}

func TestMapPullsOnlyWhatTheConsumerAsksFor(t *testing.T) {
	pulls := 0
	infinite := func() RowStream {
		return func() (Row, error) {
			pulls++
			return Row{"n": Int(int64(pulls))}, nil
		}
	}
	g := FromIter("in").Map(func(r Row) RowStream { return FromSlice([]Row{r}) })

	stream, err := g.Run(map[string]func() RowStream{"in": infinite})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := stream(); err != nil {
			t.Fatalf("pull %d failed: %v", i, err)
		}
	}
	if pulls != 3 {
		t.Errorf("expected exactly 3 upstream pulls for 3 consumed rows, got %d", pulls)
	}
}

func TestJoinRunsBothParentsOnEachRun(t *testing.T) {
	left := FromIter("left")
	right := FromIter("right")
	joined := left.Join(InnerJoiner(), right, []string{"k"})

	calls := 0
	src := map[string]func() RowStream{
		"left": func() RowStream {
			calls++
			return FromSlice([]Row{{"k": Int(1)}})
		},
		"right": func() RowStream { return FromSlice([]Row{{"k": Int(1)}}) },
	}
	runGraph(t, joined, src)
	runGraph(t, joined, src)
	if calls != 2 {
		t.Errorf("expected the left source factory invoked once per Run, got %d", calls)
	}
}
