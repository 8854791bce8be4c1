package collision

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshcook/pkg/math"
)

// minHalfLength keeps a capsule from collapsing into a sphere.
const minHalfLength = 1e-6

func sqrt(x float64) float64 { return gomath.Sqrt(x) }

// FitCapsule fits a capsule along the longest world axis of the points.
// The radius starts at the larger of the two other half extents and grows
// to reach every point; the half length then covers the ends.
func FitCapsule(points []math.Vec3d) (*Capsule, error) {
	lo, hi := bounds(points)
	center := lo.Add(hi).Scale(0.5)
	half := hi.Sub(lo).Scale(0.5)
	_, axisIdx := half.MaxComponent()
	axis := math.Axis(axisIdx)

	radius := gomath.Max(half.At((axisIdx+1)%3), half.At((axisIdx+2)%3))
	for _, p := range points {
		if d, _ := lineDistance(p, center, axis); d > radius {
			radius = d
		}
	}
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: capsule radius %g", ErrDegenerate, radius)
	}

	c := &Capsule{
		Center:     center,
		Axis:       axis,
		Radius:     radius,
		HalfLength: coverLength(points, center, axis, radius, gomath.Max(0, half.At(axisIdx)-radius)),
		Rotation:   rotationToAxis(axis),
	}
	return c, nil
}

// FitOrientedCapsule fits a capsule along the principal axis of the points.
// The axis line is centered on the points' cross-section so the radius is
// the exact maximum distance to it.
func FitOrientedCapsule(points []math.Vec3d) (*Capsule, error) {
	cov, mean := math.Covariance(points)
	_, vecs := math.SymmetricEigen(cov)
	frame := vecs.Orthonormalize()
	axis := frame[0]

	// Center the axis within the perpendicular extents.
	lo := math.Vec3d{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)}
	hi := lo.Neg()
	for _, p := range points {
		l := frame.TransposeMulVec(p.Sub(mean))
		lo, hi = lo.Min(l), hi.Max(l)
	}
	mid := lo.Add(hi).Scale(0.5)
	center := mean.Add(frame.MulVec(mid))

	var radius float64
	for _, p := range points {
		if d, _ := lineDistance(p, center, axis); d > radius {
			radius = d
		}
	}
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: capsule radius %g", ErrDegenerate, radius)
	}

	extent := (hi.X - lo.X) / 2
	return &Capsule{
		Center:     center,
		Axis:       axis,
		Radius:     radius,
		HalfLength: coverLength(points, center, axis, radius, gomath.Max(0, extent-radius)),
		Rotation:   rotationToAxis(axis),
		Oriented:   true,
	}, nil
}

// coverLength grows the half length from start until every point lies in
// the capsule, and floors it at minHalfLength.
func coverLength(points []math.Vec3d, center, axis math.Vec3d, radius, start float64) float64 {
	half := start
	r2 := radius * radius
	for _, p := range points {
		d, along := lineDistance(p, center, axis)
		reach := sqrt(gomath.Max(0, r2-d*d))
		if need := abs(along) - reach; need > half {
			half = need
		}
	}
	if half < minHalfLength {
		half = minHalfLength
	}
	return half
}
