package compgraph

import "errors"

// EOS is returned by a Stream once it is exhausted. Callers must stop pulling as soon as
// they see it; any error other than EOS aborts consumption immediately.
var EOS = errors.New("end of stream")

// isEOS reports whether err is (or wraps) the EOS sentinel.
func isEOS(err error) bool { return errors.Is(err, EOS) }

// Stream is a forward-only, single-pass, pull-based iterator: each call produces the next
// element, or a zero value and EOS once exhausted, or a zero value and a non-EOS error if
// producing the element failed. Streams are not safe for concurrent use; nothing in this
// package calls one from more than one goroutine.
type Stream[T any] func() (T, error)

// RowStream is the iterator shape every compgraph operator consumes and produces.
type RowStream = Stream[Row]

// FromSlice adapts an in-memory slice into a Stream, one element per call.
func FromSlice[T any](items []T) Stream[T] {
	i := 0
	return func() (T, error) {
		var zero T
		if i >= len(items) {
			return zero, EOS
		}
		v := items[i]
		i++
		return v, nil
	}
}

// Collect drains s into a slice. It stops at EOS and returns any other error encountered,
// along with whatever elements were pulled before it.
func Collect[T any](s Stream[T]) ([]T, error) {
	var out []T
	for {
		v, err := s()
		if err != nil {
			if errors.Is(err, EOS) {
				return out, nil
			}
			return out, err
		}
		out = append(out, v)
	}
}

// mapStream lazily applies f to each element s produces. f's error, including EOS, is
// passed through verbatim, so f can deliberately truncate its input by returning EOS.
func mapStream[T, U any](s Stream[T], f func(T) (U, error)) Stream[U] {
	return func() (U, error) {
		var zero U
		v, err := s()
		if err != nil {
			return zero, err
		}
		return f(v)
	}
}

// filterStream lazily skips elements of s for which keep returns false.
func filterStream[T any](s Stream[T], keep func(T) (bool, error)) Stream[T] {
	return func() (T, error) {
		var zero T
		for {
			v, err := s()
			if err != nil {
				return zero, err
			}
			ok, err := keep(v)
			if err != nil {
				return zero, err
			}
			if ok {
				return v, nil
			}
		}
	}
}

// concatStreams drains first entirely, then second, presenting them as one Stream.
func concatStreams[T any](first, second Stream[T]) Stream[T] {
	useSecond := false
	return func() (T, error) {
		var zero T
		if !useSecond {
			v, err := first()
			if err == nil {
				return v, nil
			}
			if !errors.Is(err, EOS) {
				return zero, err
			}
			useSecond = true
		}
		return second()
	}
}
