package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3d is a double precision 3D vector. Collision fitting works in double
// precision because plane clipping and hull construction accumulate error
// quickly in float32. Arithmetic goes through gonum's r3.
type Vec3d r3.Vec

func (v Vec3d) r() r3.Vec { return r3.Vec(v) }

// Add returns v + o.
func (v Vec3d) Add(o Vec3d) Vec3d { return Vec3d(r3.Add(v.r(), o.r())) }

// Sub returns v - o.
func (v Vec3d) Sub(o Vec3d) Vec3d { return Vec3d(r3.Sub(v.r(), o.r())) }

// Scale returns v * s.
func (v Vec3d) Scale(s float64) Vec3d { return Vec3d(r3.Scale(s, v.r())) }

// Neg returns -v.
func (v Vec3d) Neg() Vec3d { return v.Scale(-1) }

// Dot returns the dot product.
func (v Vec3d) Dot(o Vec3d) float64 { return r3.Dot(v.r(), o.r()) }

// Cross returns the cross product.
func (v Vec3d) Cross(o Vec3d) Vec3d { return Vec3d(r3.Cross(v.r(), o.r())) }

// LengthSq returns the squared magnitude.
func (v Vec3d) LengthSq() float64 { return r3.Norm2(v.r()) }

// Length returns the magnitude.
func (v Vec3d) Length() float64 { return r3.Norm(v.r()) }

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec3d) Normalize() Vec3d {
	if v.LengthSq() == 0 {
		return Vec3d{}
	}
	return Vec3d(r3.Unit(v.r()))
}

// Min returns the component-wise minimum.
func (v Vec3d) Min(o Vec3d) Vec3d {
	return Vec3d{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3d) Max(o Vec3d) Vec3d {
	return Vec3d{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

// At returns component i (0=X, 1=Y, 2=Z).
func (v Vec3d) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MaxComponent returns the largest component and its index.
func (v Vec3d) MaxComponent() (float64, int) {
	if v.X >= v.Y && v.X >= v.Z {
		return v.X, 0
	}
	if v.Y >= v.Z {
		return v.Y, 1
	}
	return v.Z, 2
}

// F narrows v to single precision.
func (v Vec3d) F() Vec3 {
	return Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// AnyPerpendicular returns a unit vector orthogonal to v.
func (v Vec3d) AnyPerpendicular() Vec3d {
	a := Vec3d{1, 0, 0}
	if math.Abs(v.X) > 0.6 {
		a = Vec3d{0, 1, 0}
	}
	return v.Cross(a).Normalize()
}

// Axis returns the unit world axis i.
func Axis(i int) Vec3d {
	switch i {
	case 0:
		return Vec3d{1, 0, 0}
	case 1:
		return Vec3d{0, 1, 0}
	default:
		return Vec3d{0, 0, 1}
	}
}
