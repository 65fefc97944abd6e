package compgraph

import (
	"math"
	"testing"
)

func firstRow(t *testing.T, s RowStream) Row {
	t.Helper()
	row, err := s()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return row
}

func TestFilterPunctuationAndLowerCase(t *testing.T) {
	row := Row{"text": Str("Hello, World!")}
	out := firstRow(t, FilterPunctuation("text")(row))
	out = firstRow(t, LowerCase("text")(out))
	s, _ := out["text"].AsString()
	if s != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", s)
	}
}

func TestFilterPunctuationIsASCIIOnly(t *testing.T) {
	row := Row{"text": Str("café—naïve “quoted” 。")}
	out := firstRow(t, FilterPunctuation("text")(row))
	s, _ := out["text"].AsString()
	want := "café—naïve “quoted” 。"
	if s != want {
		t.Errorf("expected non-ASCII punctuation left untouched, got %q want %q", s, want)
	}
}

func TestSplitOnWhitespace(t *testing.T) {
	rows, err := Collect(Split("text")(Row{"text": Str("one two  three")}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(rows), rows)
	}
}

func TestProjectKeepsOnlyNamedFields(t *testing.T) {
	out := firstRow(t, Project([]string{"a"})(Row{"a": Int(1), "b": Int(2)}))
	if len(out) != 1 {
		t.Errorf("expected exactly one field, got %v", out)
	}
	if _, ok := out["a"]; !ok {
		t.Errorf("expected field a to survive projection")
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	once := firstRow(t, Project([]string{"a"})(Row{"a": Int(1), "b": Int(2)}))
	twice := firstRow(t, Project([]string{"a"})(once))
	if !once.Equal(twice) {
		t.Errorf("expected Project to be idempotent, got %v then %v", once, twice)
	}
}

func TestReveal(t *testing.T) {
	rows, err := Collect(Reveal("n")(Row{"n": Int(3), "tag": Str("x")}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 copies, got %d", len(rows))
	}
	for _, r := range rows {
		if _, ok := r["n"]; ok {
			t.Errorf("expected the repeat-count column removed, got %v", r)
		}
	}
}

func TestRevealTypeError(t *testing.T) {
	_, err := Collect(Reveal("n")(Row{"n": Str("not an int")}))
	if err == nil {
		t.Fatalf("expected a TypeError for a non-int repeat count")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Errorf("expected *TypeError, got %T", err)
	}
}

func TestInverseRoundTrips(t *testing.T) {
	row := Row{"v": Float(3.5)}
	once := firstRow(t, Inverse("v")(row))
	twice := firstRow(t, Inverse("v")(once))
	if !twice.Equal(row) {
		t.Errorf("expected Inverse(Inverse(x)) == x, got %v", twice)
	}
}

func TestGetHaversineDistKnownPoints(t *testing.T) {
	// Moscow to Saint Petersburg, roughly 634km as the crow flies.
	row := Row{
		"start": List([]Value{Float(37.6173), Float(55.7558)}),
		"end":   List([]Value{Float(30.3351), Float(59.9343)}),
	}
	out := firstRow(t, GetHaversineDist("start", "end", "dist")(row))
	d, _ := out["dist"].AsFloat()
	if math.Abs(d-634) > 20 {
		t.Errorf("expected roughly 634km, got %v", d)
	}
}

func TestGetHaversineDistShortHop(t *testing.T) {
	row := Row{
		"start": List([]Value{Float(37.5), Float(55.75)}),
		"end":   List([]Value{Float(37.6), Float(55.75)}),
	}
	out := firstRow(t, GetHaversineDist("start", "end", "dist")(row))
	d, _ := out["dist"].AsFloat()
	if math.Abs(d-6.28)/6.28 > 0.01 {
		t.Errorf("expected 6.28km within 1%%, got %v", d)
	}
}

func TestGetAverageSpeed(t *testing.T) {
	row := Row{"distance": Float(100), "duration": Float(2)}
	out := firstRow(t, GetAverageSpeed("distance", "duration", "speed")(row))
	s, _ := out["speed"].AsFloat()
	if s != 50 {
		t.Errorf("expected 50, got %v", s)
	}
}

func TestIDFAndPMI(t *testing.T) {
	row := Row{"a": Int(10), "b": Int(2)}
	out := firstRow(t, IDF([2]string{"a", "b"}, "idf")(row))
	v, _ := out["idf"].AsFloat()
	if math.Abs(v-math.Log(5)) > 1e-9 {
		t.Errorf("expected log(5), got %v", v)
	}
}
