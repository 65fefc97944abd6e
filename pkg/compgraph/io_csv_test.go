package compgraph

import "testing"

func TestCSVLineParserTypeSniffing(t *testing.T) {
	parser := NewCSVParser()

	if parsed, err := parser("name,age,active,score"); err != nil || parsed != nil {
		t.Fatalf("expected the header line to produce no row, got %v, %v", parsed, err)
	}

	parsed, err := parser("alice,30,true,9.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row, ok := parsed.(Row)
	if !ok {
		t.Fatalf("expected a Row, got %T", parsed)
	}
	if row["name"].Kind() != KindString {
		t.Errorf("expected name to stay a string, got %v", row["name"].Kind())
	}
	if n, _ := row["age"].AsInt(); n != 30 {
		t.Errorf("expected age=30, got %v", row["age"])
	}
	if b, _ := row["active"].AsBool(); !b {
		t.Errorf("expected active=true, got %v", row["active"])
	}
	if f, _ := row["score"].AsFloat(); f != 9.5 {
		t.Errorf("expected score=9.5, got %v", row["score"])
	}
}

func TestTSVParserUsesTabSeparator(t *testing.T) {
	parser := NewTSVParser()
	parser("name\tage")
	parsed, err := parser("bob\t20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := parsed.(Row)
	if n, _ := row["age"].AsInt(); n != 20 {
		t.Errorf("expected age=20, got %v", row["age"])
	}
}
