package collision

import (
	"fmt"
	"strings"

	"github.com/Faultbox/meshcook/internal/split"
	"github.com/Faultbox/meshcook/pkg/math"
)

// Options tunes the fitters.
type Options struct {
	// MultiHullMaxCount bounds the number of hulls of a multi-hull split.
	MultiHullMaxCount int
	// MultiHullMaxVerts bounds the vertex count of each hull.
	MultiHullMaxVerts int
	// KDopInflation pushes every k-DOP plane outward so flat point sets
	// still produce a solid.
	KDopInflation float64
}

// DefaultOptions returns the stock fitting options.
func DefaultOptions() Options {
	return Options{
		MultiHullMaxCount: 8,
		MultiHullMaxVerts: 16,
		KDopInflation:     1e-3,
	}
}

// Method is a fitting strategy picked from a split name.
type Method int

// Fitting methods.
const (
	MethodNone Method = iota
	MethodBox
	MethodOrientedBox
	MethodSphere
	MethodCapsule
	MethodOrientedCapsule
	MethodKDop
	MethodHull
	MethodMultiHull
)

func (m Method) String() string {
	switch m {
	case MethodBox:
		return "box"
	case MethodOrientedBox:
		return "oriented-box"
	case MethodSphere:
		return "sphere"
	case MethodCapsule:
		return "capsule"
	case MethodOrientedCapsule:
		return "oriented-capsule"
	case MethodKDop:
		return "kdop"
	case MethodHull:
		return "hull"
	case MethodMultiHull:
		return "multi-hull"
	}
	return "none"
}

// multiSuffix requests a multi-hull decomposition on convex collider splits.
const multiSuffix = "_multi"

// Select picks the fitting method and k-DOP direction set for a split.
func Select(name string, kind split.Kind) (Method, Directions) {
	lower := strings.ToLower(name)
	switch {
	case kind.IsUCX():
		if strings.Contains(lower, multiSuffix) {
			return MethodMultiHull, nil
		}
		return MethodHull, nil
	case !kind.IsSimple():
		return MethodNone, nil
	}

	switch {
	case strings.Contains(lower, "orientedbox"), strings.Contains(lower, "obox"):
		return MethodOrientedBox, nil
	case strings.Contains(lower, "box"):
		return MethodBox, nil
	case strings.Contains(lower, "sphere"):
		return MethodSphere, nil
	case strings.Contains(lower, "orientedcapsule"), strings.Contains(lower, "ocapsule"):
		return MethodOrientedCapsule, nil
	case strings.Contains(lower, "capsule"):
		return MethodCapsule, nil
	}
	for _, set := range namedDirections {
		if strings.Contains(lower, set.keyword) {
			return MethodKDop, set.dirs
		}
	}
	return MethodKDop, KDop26
}

// Input is the geometry of one collider split. Triangles index Points and
// may be empty; the multi-hull splitter uses them to close cut faces.
type Input struct {
	Points    []math.Vec3d
	Triangles []int
}

// Fit fits the collision shapes for a collider split. Complex colliders
// carry their triangles instead and yield no shape.
func Fit(name string, kind split.Kind, in Input, opts Options) ([]Shape, error) {
	if !kind.IsCollider() {
		return nil, fmt.Errorf("%s: %w (%v)", name, ErrNotCollider, kind)
	}
	method, dirs := Select(name, kind)
	if method == MethodNone {
		return nil, nil
	}
	if len(in.Points) == 0 {
		return nil, fmt.Errorf("%s: %w: no points", name, ErrDegenerate)
	}

	var (
		shape Shape
		err   error
	)
	switch method {
	case MethodBox:
		shape = FitBox(in.Points)
	case MethodOrientedBox:
		shape = FitOrientedBox(in.Points)
	case MethodSphere:
		shape, err = FitSphere(in.Points)
	case MethodCapsule:
		shape, err = FitCapsule(in.Points)
	case MethodOrientedCapsule:
		shape, err = FitOrientedCapsule(in.Points)
	case MethodKDop:
		shape, err = FitKDop(in.Points, dirs, opts.KDopInflation)
	case MethodHull:
		shape, err = FitHull(in.Points)
	case MethodMultiHull:
		shape, err = FitMultiHull(in, opts.MultiHullMaxCount, opts.MultiHullMaxVerts)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, method, err)
	}
	return []Shape{shape}, nil
}
