package compgraph

import (
	"encoding/json"
	"fmt"
)

// JSONLineParser parses one JSON object per line into a Row. A JSON number with no
// fractional part becomes KindInt, any other number KindFloat; nested JSON arrays become KindList Values —
// a two-element numeric array is not eagerly promoted to a Coord, since whether a field
// is a coordinate is a property of how a mapper uses it, not of its JSON shape (see
// GetHaversineDist).
func JSONLineParser(line string) (any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, fmt.Errorf("parse JSON line: %w", err)
	}
	return jsonObjectToRow(obj), nil
}

func jsonObjectToRow(obj map[string]any) Row {
	row := make(Row, len(obj))
	for k, v := range obj {
		row[k] = jsonValueToValue(v)
	}
	return row
}

// RowToJSON renders row as a plain JSON-marshalable map, the inverse of JSONLineParser
// modulo the int/float widening JSON itself performs on the way back in; a Coord is
// written as a two-element array and so parses back as a KindList Value.
func RowToJSON(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = valueToJSON(v)
	}
	return out
}

func valueToJSON(v Value) any {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return s
	case KindInt:
		i, _ := v.AsInt()
		return i
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindCoord:
		c, _ := v.AsCoord()
		return []float64{c[0], c[1]}
	case KindList:
		list, _ := v.AsList()
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = valueToJSON(e)
		}
		return out
	default:
		return nil
	}
}

func jsonValueToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Str("")
	case bool:
		return Bool(t)
	case string:
		return Str(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = jsonValueToValue(e)
		}
		return List(elems)
	case map[string]any:
		// A nested object has no place in the flat Row model; fields of interest are
		// expected at the top level, so this collapses to its JSON text form.
		b, _ := json.Marshal(t)
		return Str(string(b))
	default:
		return Str(fmt.Sprintf("%v", t))
	}
}
