package collision

import (
	gomath "math"

	"github.com/Faultbox/meshcook/pkg/math"
)

func abs(x float64) float64 { return gomath.Abs(x) }

// bounds returns the axis-aligned bounds of points.
func bounds(points []math.Vec3d) (math.Vec3d, math.Vec3d) {
	if len(points) == 0 {
		return math.Vec3d{}, math.Vec3d{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// centroid returns the mean of points.
func centroid(points []math.Vec3d) math.Vec3d {
	var c math.Vec3d
	for _, p := range points {
		c = c.Add(p)
	}
	if len(points) > 0 {
		c = c.Scale(1 / float64(len(points)))
	}
	return c
}

// tolerance scales a base epsilon by the coordinate magnitude of points.
func tolerance(points []math.Vec3d) float64 {
	var mx, my, mz float64
	for _, p := range points {
		mx = gomath.Max(mx, abs(p.X))
		my = gomath.Max(my, abs(p.Y))
		mz = gomath.Max(mz, abs(p.Z))
	}
	eps := (mx + my + mz) * 1e-10
	if eps < 1e-12 {
		eps = 1e-12
	}
	return eps
}

// segmentDistance returns the distance from p to the segment through
// center along unit axis with the given half length.
func segmentDistance(p, center, axis math.Vec3d, half float64) float64 {
	d := p.Sub(center)
	t := gomath.Max(-half, gomath.Min(half, d.Dot(axis)))
	return d.Sub(axis.Scale(t)).Length()
}

// lineDistance returns the distance from p to the infinite line through
// center along unit axis, and the signed position of p along the axis.
func lineDistance(p, center, axis math.Vec3d) (dist, along float64) {
	d := p.Sub(center)
	along = d.Dot(axis)
	return d.Sub(axis.Scale(along)).Length(), along
}

// rotationToAxis returns the rotation that maps local Z onto axis.
func rotationToAxis(axis math.Vec3d) math.Quat {
	z := math.Vec3d{Z: 1}
	d := z.Dot(axis)
	if d > 1-1e-12 {
		return math.QuatIdentity()
	}
	if d < -1+1e-12 {
		return math.QuatFromAxisAngle(math.Vec3{X: 1}, gomath.Pi)
	}
	c := z.Cross(axis).Normalize()
	return math.QuatFromAxisAngle(c.F(), float32(gomath.Acos(d)))
}

// polytopeVolume sums pyramids from an interior point to each face.
func polytopeVolume(faces [][]math.Vec3d) float64 {
	var all []math.Vec3d
	for _, f := range faces {
		all = append(all, f...)
	}
	if len(all) == 0 {
		return 0
	}
	c := centroid(all)
	var v float64
	for _, f := range faces {
		for i := 1; i+1 < len(f); i++ {
			a, b, d := f[0].Sub(c), f[i].Sub(c), f[i+1].Sub(c)
			v += abs(a.Dot(b.Cross(d))) / 6
		}
	}
	return v
}

// dedupe removes points closer than eps to an earlier point.
func dedupe(points []math.Vec3d, eps float64) []math.Vec3d {
	out := make([]math.Vec3d, 0, len(points))
	eps2 := eps * eps
next:
	for _, p := range points {
		for _, q := range out {
			if p.Sub(q).LengthSq() <= eps2 {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}
