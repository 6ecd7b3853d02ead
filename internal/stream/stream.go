// Package stream provides the lazy pipeline stages used by discovery:
// small combinators over range-over-func iterators. Every stage pulls one
// element at a time from its source, so a consumer that stops early never
// pays for the rest of the pipeline.
package stream

import "iter"

// Map applies fn to every element of seq.
func Map[T, U any](seq iter.Seq[T], fn func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// Filter keeps the elements of seq for which keep returns true.
func Filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// FilterMap applies fn and keeps the results reported as ok.
func FilterMap[T, U any](seq iter.Seq[T], fn func(T) (U, bool)) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range seq {
			u, ok := fn(v)
			if ok && !yield(u) {
				return
			}
		}
	}
}

// MapValues applies fn to the values of a key/value sequence.
func MapValues[K, V, W any](seq iter.Seq2[K, V], fn func(V) W) iter.Seq2[K, W] {
	return func(yield func(K, W) bool) {
		for k, v := range seq {
			if !yield(k, fn(v)) {
				return
			}
		}
	}
}

// FilterValues keeps the pairs whose value satisfies keep.
func FilterValues[K, V any](seq iter.Seq2[K, V], keep func(V) bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range seq {
			if keep(v) && !yield(k, v) {
				return
			}
		}
	}
}

// Keys drops the values of a key/value sequence.
func Keys[K, V any](seq iter.Seq2[K, V]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range seq {
			if !yield(k) {
				return
			}
		}
	}
}

// Concat yields every pair of each sequence in order.
func Concat[K, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// FlatMap expands every element of seq into a sequence of pairs and
// concatenates the results, preserving inner order.
func FlatMap[T, K, V any](seq iter.Seq[T], fn func(T) iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for v := range seq {
			for k, w := range fn(v) {
				if !yield(k, w) {
					return
				}
			}
		}
	}
}

// WithNilError lifts a plain sequence into a (value, error) sequence that
// never reports an error.
func WithNilError[T any](seq iter.Seq[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v := range seq {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// UntilError yields pairs of seq up to and including the first non-nil
// error, then stops.
func UntilError[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// First returns the first element of seq.
func First[T any](seq iter.Seq[T]) (T, bool) {
	for v := range seq {
		return v, true
	}
	var zero T
	return zero, false
}
