// Package collision fits simple, convex and k-DOP collision shapes to the
// point set of a collider split.
package collision

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshcook/pkg/math"
)

// Fitting errors.
var (
	ErrDegenerate  = errors.New("degenerate collision geometry")
	ErrNotCollider = errors.New("split kind has no collision shape")
)

// ShapeKind tags a Shape variant.
type ShapeKind int

// Shape kinds.
const (
	KindBox ShapeKind = iota
	KindOrientedBox
	KindSphere
	KindCapsule
	KindKDop
	KindConvexHull
)

var shapeNames = [...]string{
	KindBox:         "box",
	KindOrientedBox: "oriented-box",
	KindSphere:      "sphere",
	KindCapsule:     "capsule",
	KindKDop:        "kdop",
	KindConvexHull:  "convex-hull",
}

func (k ShapeKind) String() string {
	if k >= 0 && int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is a fitted collision primitive. Shapes are immutable once fit.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the world-space axis-aligned bounds.
	Bounds() (min, max math.Vec3d)
}

// Box is an axis-aligned box.
type Box struct {
	Center      math.Vec3d
	HalfExtents math.Vec3d
}

// Kind implements Shape.
func (b *Box) Kind() ShapeKind { return KindBox }

// Bounds implements Shape.
func (b *Box) Bounds() (math.Vec3d, math.Vec3d) {
	return b.Center.Sub(b.HalfExtents), b.Center.Add(b.HalfExtents)
}

// OrientedBox is a box with an arbitrary rotation. Axes holds the box's
// local X, Y and Z axes as columns.
type OrientedBox struct {
	Center      math.Vec3d
	HalfExtents math.Vec3d
	Axes        math.Mat3
	Rotation    math.Quat
}

// Kind implements Shape.
func (b *OrientedBox) Kind() ShapeKind { return KindOrientedBox }

// Bounds implements Shape.
func (b *OrientedBox) Bounds() (math.Vec3d, math.Vec3d) {
	var r math.Vec3d
	for i := 0; i < 3; i++ {
		h := b.HalfExtents.At(i)
		a := b.Axes[i]
		r = r.Add(math.Vec3d{X: abs(a.X) * h, Y: abs(a.Y) * h, Z: abs(a.Z) * h})
	}
	return b.Center.Sub(r), b.Center.Add(r)
}

// Volume returns the box volume.
func (b *OrientedBox) Volume() float64 {
	return 8 * b.HalfExtents.X * b.HalfExtents.Y * b.HalfExtents.Z
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center math.Vec3d
	Radius float64
}

// Kind implements Shape.
func (s *Sphere) Kind() ShapeKind { return KindSphere }

// Bounds implements Shape.
func (s *Sphere) Bounds() (math.Vec3d, math.Vec3d) {
	r := math.Vec3d{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return s.Center.Sub(r), s.Center.Add(r)
}

// Capsule is a swept sphere around a segment of length 2*HalfLength
// through Center along Axis. Rotation maps local Z onto Axis.
type Capsule struct {
	Center     math.Vec3d
	Axis       math.Vec3d
	HalfLength float64
	Radius     float64
	Rotation   math.Quat
	Oriented   bool
}

// Kind implements Shape.
func (c *Capsule) Kind() ShapeKind { return KindCapsule }

// Bounds implements Shape.
func (c *Capsule) Bounds() (math.Vec3d, math.Vec3d) {
	a := c.Center.Add(c.Axis.Scale(c.HalfLength))
	b := c.Center.Sub(c.Axis.Scale(c.HalfLength))
	r := math.Vec3d{X: c.Radius, Y: c.Radius, Z: c.Radius}
	return a.Min(b).Sub(r), a.Max(b).Add(r)
}

// Contains reports whether p lies inside the capsule, with tolerance eps.
func (c *Capsule) Contains(p math.Vec3d, eps float64) bool {
	return segmentDistance(p, c.Center, c.Axis, c.HalfLength) <= c.Radius+eps
}

// Plane is the half-space Normal·p <= Dist.
type Plane struct {
	Normal math.Vec3d
	Dist   float64
}

// Side returns the signed distance of p from the plane.
func (pl Plane) Side(p math.Vec3d) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// KDop is the convex polytope bounded by one plane per direction.
type KDop struct {
	Name   string
	Planes []Plane
	// Faces holds the polytope faces as convex polygons, one per plane
	// that survived clipping.
	Faces [][]math.Vec3d
	// Hull is the polytope as a collision hull.
	Hull Hull
}

// Kind implements Shape.
func (k *KDop) Kind() ShapeKind { return KindKDop }

// Bounds implements Shape.
func (k *KDop) Bounds() (math.Vec3d, math.Vec3d) {
	return k.Hull.Bounds()
}

// Volume returns the polytope volume.
func (k *KDop) Volume() float64 {
	return polytopeVolume(k.Faces)
}

// Hull is a convex hull with outward wound triangles.
type Hull struct {
	Vertices []math.Vec3d
	Faces    [][3]int
}

// Bounds returns the hull's axis-aligned bounds.
func (h Hull) Bounds() (math.Vec3d, math.Vec3d) {
	return bounds(h.Vertices)
}

// Volume returns the enclosed volume.
func (h Hull) Volume() float64 {
	var v float64
	for _, f := range h.Faces {
		a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
		v += a.Dot(b.Cross(c))
	}
	return v / 6
}

// ConvexHull is one hull or a multi-hull decomposition.
type ConvexHull struct {
	Hulls []Hull
	Multi bool
}

// Kind implements Shape.
func (c *ConvexHull) Kind() ShapeKind { return KindConvexHull }

// Bounds implements Shape.
func (c *ConvexHull) Bounds() (math.Vec3d, math.Vec3d) {
	var all []math.Vec3d
	for _, h := range c.Hulls {
		all = append(all, h.Vertices...)
	}
	return bounds(all)
}
