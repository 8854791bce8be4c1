// Package transfer expands point, vertex, primitive and detail attributes
// into per-wedge arrays for one split.
//
// Output arrays hold one tuple per valid wedge of the split, in wedge
// order. Excluded wedges are skipped, not zero filled.
package transfer

import (
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/split"
	"golang.org/x/exp/constraints"
)

// Value is an attribute element type.
type Value interface {
	constraints.Integer | constraints.Float | ~string
}

// Expand maps src (owned by owner, tuple components per element) onto the
// valid wedges of vertexList. It returns false when src holds no values or
// lacks the element of some valid wedge.
func Expand[T Value](vertexList []int, src []T, owner geo.Owner, tuple int) ([]T, bool) {
	if tuple <= 0 || len(src) < tuple {
		return nil, false
	}

	valid := 0
	for _, p := range vertexList {
		if p != split.Excluded {
			valid++
		}
	}
	out := make([]T, 0, valid*tuple)

	if owner == geo.Detail {
		for i := 0; i < valid; i++ {
			out = append(out, src[:tuple]...)
		}
		return out, true
	}

	for w, p := range vertexList {
		if p == split.Excluded {
			continue
		}
		var elem int
		switch owner {
		case geo.Point:
			elem = p
		case geo.Vertex:
			elem = w
		case geo.Primitive:
			elem = w / 3
		}
		start := elem * tuple
		if elem < 0 || start+tuple > len(src) {
			return nil, false
		}
		out = append(out, src[start:start+tuple]...)
	}
	return out, true
}

// Rewind swaps the second and third wedge of every triangle so per-wedge
// data lines up with triangles emitted as (a, c, b).
func Rewind[T any](values []T, tuple int) []T {
	out := make([]T, len(values))
	copy(out, values)
	stride := 3 * tuple
	for t := 0; t+stride <= len(out); t += stride {
		b := out[t+tuple : t+2*tuple]
		c := out[t+2*tuple : t+3*tuple]
		for i := 0; i < tuple; i++ {
			b[i], c[i] = c[i], b[i]
		}
	}
	return out
}
