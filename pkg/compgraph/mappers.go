package compgraph

import (
	"fmt"
	"math"
	"strings"
	"time"
)

func singleRow(row Row) RowStream { return FromSlice([]Row{row}) }

func mapperErr(err error) RowStream {
	return func() (Row, error) { return nil, err }
}

// asciiPunctuation is the fixed 32-character set Python's string.punctuation names;
// FilterPunctuation strips exactly these, leaving non-ASCII punctuation (curly quotes,
// em dashes, CJK punctuation, ...) untouched.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// FilterPunctuation strips ASCII punctuation from col, in place.
func FilterPunctuation(col string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[col]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)})
		}
		s, ok := v.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: col, Want: "string", Got: v.Kind().String()})
		}
		out := strings.Map(func(r rune) rune {
			if strings.ContainsRune(asciiPunctuation, r) {
				return -1
			}
			return r
		}, s)
		row = row.Clone()
		row[col] = Str(out)
		return singleRow(row)
	}
}

// LowerCase lowercases col, in place.
func LowerCase(col string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[col]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)})
		}
		s, ok := v.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: col, Want: "string", Got: v.Kind().String()})
		}
		row = row.Clone()
		row[col] = Str(strings.ToLower(s))
		return singleRow(row)
	}
}

// Split splits col on whitespace, or on sep if given, emitting one row per token with col
// replaced by that token.
func Split(col string, sep ...string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[col]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)})
		}
		s, ok := v.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: col, Want: "string", Got: v.Kind().String()})
		}
		var tokens []string
		if len(sep) > 0 && sep[0] != "" {
			tokens = strings.Split(s, sep[0])
		} else {
			tokens = strings.Fields(s)
		}
		rows := make([]Row, len(tokens))
		for i, t := range tokens {
			r := row.Clone()
			r[col] = Str(t)
			rows[i] = r
		}
		return FromSlice(rows)
	}
}

// Product multiplies the numeric fields named by cols together into out.
func Product(cols []string, out string) Mapper {
	return func(row Row) RowStream {
		total := 1.0
		isInt := true
		for _, c := range cols {
			v, ok := row[c]
			if !ok {
				return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", c)})
			}
			f, ok := v.AsFloat()
			if !ok {
				return mapperErr(&TypeError{Field: c, Want: "numeric", Got: v.Kind().String()})
			}
			if v.Kind() != KindInt {
				isInt = false
			}
			total *= f
		}
		row = row.Clone()
		if isInt {
			row[out] = Int(int64(total))
		} else {
			row[out] = Float(total)
		}
		return singleRow(row)
	}
}

// FilterFn emits row unchanged when predicate(row) is true, nothing otherwise.
func FilterFn(predicate func(Row) bool) Mapper {
	return func(row Row) RowStream {
		if predicate(row) {
			return singleRow(row)
		}
		return FromSlice[Row](nil)
	}
}

// Project keeps only the named fields of row.
func Project(cols []string) Mapper {
	return func(row Row) RowStream {
		out := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				out[c] = v
			}
		}
		return singleRow(out)
	}
}

func ratioMapper(cols [2]string, out string, fn func(float64) float64) Mapper {
	return func(row Row) RowStream {
		a, ok := row[cols[0]]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", cols[0])})
		}
		b, ok := row[cols[1]]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", cols[1])})
		}
		af, ok := a.AsFloat()
		if !ok {
			return mapperErr(&TypeError{Field: cols[0], Want: "numeric", Got: a.Kind().String()})
		}
		bf, ok := b.AsFloat()
		if !ok {
			return mapperErr(&TypeError{Field: cols[1], Want: "numeric", Got: b.Kind().String()})
		}
		row = row.Clone()
		row[out] = Float(fn(af / bf))
		return singleRow(row)
	}
}

// IDF computes log(cols[0]/cols[1]) into out — the corpus-wide inverse document frequency
// term used by the inverted-index pipeline.
func IDF(cols [2]string, out string) Mapper {
	return ratioMapper(cols, out, math.Log)
}

// PMI computes log(cols[0]/cols[1]) into out — pointwise mutual information between a
// document-local and a corpus-wide frequency.
func PMI(cols [2]string, out string) Mapper {
	return ratioMapper(cols, out, math.Log)
}

// Reveal reads col as an integer repeat count, removes it from the row, and emits that
// many copies of the remaining row. A col whose Value is not KindInt is a TypeError, not
// a silent coercion.
func Reveal(col string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[col]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)})
		}
		n, ok := v.AsInt()
		if !ok {
			return mapperErr(&TypeError{Field: col, Want: "int", Got: v.Kind().String()})
		}
		row = row.Clone()
		delete(row, col)
		if n <= 0 {
			return FromSlice[Row](nil)
		}
		rows := make([]Row, n)
		for i := range rows {
			rows[i] = row
		}
		return FromSlice(rows)
	}
}

// Inverse negates the numeric field col — used to turn an ascending Sort+TopN into a
// descending one and back again.
func Inverse(col string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[col]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", col)})
		}
		f, ok := v.AsFloat()
		if !ok {
			return mapperErr(&TypeError{Field: col, Want: "numeric", Got: v.Kind().String()})
		}
		row = row.Clone()
		if v.Kind() == KindInt {
			row[col] = Int(-int64(f))
		} else {
			row[col] = Float(-f)
		}
		return singleRow(row)
	}
}

const tripTimeFormat = "20060102T150405.000000"

func parseTripTime(s string) (time.Time, error) {
	return time.Parse(tripTimeFormat, s)
}

// GetDuration computes the hours between start and leave (parsed with the traffic
// dataset's fixed timestamp layout) into out.
func GetDuration(start, leave, out string) Mapper {
	return func(row Row) RowStream {
		sv, ok := row[start]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", start)})
		}
		lv, ok := row[leave]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", leave)})
		}
		ss, ok := sv.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: start, Want: "string", Got: sv.Kind().String()})
		}
		ls, ok := lv.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: leave, Want: "string", Got: lv.Kind().String()})
		}
		st, err := parseTripTime(ss)
		if err != nil {
			return mapperErr(&ParseError{Source: start, Line: 0, Err: err})
		}
		lt, err := parseTripTime(ls)
		if err != nil {
			return mapperErr(&ParseError{Source: leave, Line: 0, Err: err})
		}
		row = row.Clone()
		row[out] = Float(lt.Sub(st).Hours())
		return singleRow(row)
	}
}

// GetWeekdayAndHour extracts the abbreviated weekday name and hour-of-day from t into
// wdOut and hrOut.
func GetWeekdayAndHour(t, wdOut, hrOut string) Mapper {
	return func(row Row) RowStream {
		v, ok := row[t]
		if !ok {
			return mapperErr(&ConfigError{Msg: fmt.Sprintf("row is missing field %q", t)})
		}
		s, ok := v.AsString()
		if !ok {
			return mapperErr(&TypeError{Field: t, Want: "string", Got: v.Kind().String()})
		}
		dt, err := parseTripTime(s)
		if err != nil {
			return mapperErr(&ParseError{Source: t, Line: 0, Err: err})
		}
		row = row.Clone()
		row[wdOut] = Str(dt.Weekday().String()[:3])
		row[hrOut] = Int(int64(dt.Hour()))
		return singleRow(row)
	}
}

func coordOf(row Row, col string) ([2]float64, bool) {
	v, ok := row[col]
	if !ok {
		return [2]float64{}, false
	}
	if c, ok := v.AsCoord(); ok {
		return c, true
	}
	if list, ok := v.AsList(); ok && len(list) == 2 {
		lng, ok1 := list[0].AsFloat()
		lat, ok2 := list[1].AsFloat()
		if ok1 && ok2 {
			return [2]float64{lng, lat}, true
		}
	}
	return [2]float64{}, false
}

const earthRadiusKM = 6373.0

// GetHaversineDist computes the great-circle distance in kilometres between the
// two-element [lng, lat] coordinate fields start and end into out.
func GetHaversineDist(start, end, out string) Mapper {
	return func(row Row) RowStream {
		c1, ok := coordOf(row, start)
		if !ok {
			return mapperErr(&TypeError{Field: start, Want: "coord", Got: "missing or malformed"})
		}
		c2, ok := coordOf(row, end)
		if !ok {
			return mapperErr(&TypeError{Field: end, Want: "coord", Got: "missing or malformed"})
		}
		lng1, lat1 := toRadians(c1[0]), toRadians(c1[1])
		lng2, lat2 := toRadians(c2[0]), toRadians(c2[1])
		dLat := lat2 - lat1
		dLng := lng2 - lng1
		a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
		dist := 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
		row = row.Clone()
		row[out] = Float(dist)
		return singleRow(row)
	}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// GetAverageSpeed computes dist/duration into out.
func GetAverageSpeed(dist, duration, out string) Mapper {
	return ratioMapper([2]string{dist, duration}, out, func(x float64) float64 { return x })
}
