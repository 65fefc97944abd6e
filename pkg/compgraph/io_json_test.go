package compgraph

import "testing"

func TestJSONLineParserNumberDisambiguation(t *testing.T) {
	parsed, err := JSONLineParser(`{"a": 3, "b": 3.5, "c": "x", "d": true}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row, ok := parsed.(Row)
	if !ok {
		t.Fatalf("expected a Row, got %T", parsed)
	}
	if row["a"].Kind() != KindInt {
		t.Errorf("expected whole-number JSON value to become KindInt, got %v", row["a"].Kind())
	}
	if row["b"].Kind() != KindFloat {
		t.Errorf("expected fractional JSON value to become KindFloat, got %v", row["b"].Kind())
	}
	if row["c"].Kind() != KindString {
		t.Errorf("expected string to stay KindString, got %v", row["c"].Kind())
	}
	if row["d"].Kind() != KindBool {
		t.Errorf("expected bool to stay KindBool, got %v", row["d"].Kind())
	}
}

func TestJSONLineParserArrayBecomesList(t *testing.T) {
	parsed, err := JSONLineParser(`{"coord": [37.5, 55.7]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := parsed.(Row)
	if row["coord"].Kind() != KindList {
		t.Errorf("expected a JSON array to become KindList, got %v", row["coord"].Kind())
	}
}

func TestJSONLineParserInvalidJSON(t *testing.T) {
	if _, err := JSONLineParser("not json"); err == nil {
		t.Errorf("expected an error for invalid JSON")
	}
}

func TestRowToJSONScalarTypes(t *testing.T) {
	row := Row{"s": Str("x"), "i": Int(3), "f": Float(1.5), "b": Bool(true), "c": Coord(1, 2)}
	out := RowToJSON(row)
	if out["s"] != "x" || out["i"] != int64(3) || out["f"] != 1.5 || out["b"] != true {
		t.Errorf("unexpected RowToJSON output: %v", out)
	}
}
