package collision

import (
	"fmt"

	"github.com/Faultbox/meshcook/pkg/math"
)

// FitSphere runs two bounding sphere heuristics and keeps the tighter one:
// Ritter's method seeded from the widest pair of axis extremes, and the
// AABB center grown to reach the farthest point.
func FitSphere(points []math.Vec3d) (*Sphere, error) {
	a := ritterSphere(points)
	b := boxCenterSphere(points)
	best := a
	if b.Radius < a.Radius {
		best = b
	}
	if !(best.Radius > 0) {
		return nil, fmt.Errorf("%w: sphere radius %g", ErrDegenerate, best.Radius)
	}
	return best, nil
}

func ritterSphere(points []math.Vec3d) *Sphere {
	var minIdx, maxIdx [3]int
	for i, p := range points {
		for axis := 0; axis < 3; axis++ {
			if p.At(axis) < points[minIdx[axis]].At(axis) {
				minIdx[axis] = i
			}
			if p.At(axis) > points[maxIdx[axis]].At(axis) {
				maxIdx[axis] = i
			}
		}
	}

	lo, hi := points[minIdx[0]], points[maxIdx[0]]
	span := hi.Sub(lo).LengthSq()
	for axis := 1; axis < 3; axis++ {
		a, b := points[minIdx[axis]], points[maxIdx[axis]]
		if d := b.Sub(a).LengthSq(); d > span {
			lo, hi, span = a, b, d
		}
	}

	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(center).Length()
	for _, p := range points {
		d := p.Sub(center).Length()
		if d <= radius {
			continue
		}
		newRadius := (radius + d) / 2
		center = center.Add(p.Sub(center).Scale((newRadius - radius) / d))
		radius = newRadius
	}
	return &Sphere{Center: center, Radius: radius}
}

func boxCenterSphere(points []math.Vec3d) *Sphere {
	lo, hi := bounds(points)
	center := lo.Add(hi).Scale(0.5)
	var r2 float64
	for _, p := range points {
		if d := p.Sub(center).LengthSq(); d > r2 {
			r2 = d
		}
	}
	return &Sphere{Center: center, Radius: sqrt(r2)}
}
