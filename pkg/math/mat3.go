package math

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Mat3 is a 3x3 double precision matrix stored as three column vectors.
// For a rotation, the columns are the rotated X, Y and Z axes.
type Mat3 [3]Vec3d

// Identity3 returns the identity matrix.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// At returns the element at row r, column c.
func (m Mat3) At(r, c int) float64 {
	return m[c].At(r)
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3d) Vec3d {
	return m[0].Scale(v.X).Add(m[1].Scale(v.Y)).Add(m[2].Scale(v.Z))
}

// TransposeMulVec returns transpose(m) * v, which expresses v in the frame
// spanned by the columns of an orthonormal m.
func (m Mat3) TransposeMulVec(v Vec3d) Vec3d {
	return Vec3d{m[0].Dot(v), m[1].Dot(v), m[2].Dot(v)}
}

// Orthonormalize returns a right-handed orthonormal frame built from the
// first two columns of m (Gram-Schmidt).
func (m Mat3) Orthonormalize() Mat3 {
	x := m[0].Normalize()
	y := m[1].Sub(x.Scale(x.Dot(m[1]))).Normalize()
	if y.LengthSq() == 0 {
		y = x.AnyPerpendicular()
	}
	return Mat3{x, y, x.Cross(y)}
}

// Quat converts an orthonormal rotation matrix into a quaternion.
func (m Mat3) Quat() Quat {
	m00, m01, m02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m10, m11, m12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m20, m21, m22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	var x, y, z, w float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return Quat{X: float32(x), Y: float32(y), Z: float32(z), W: float32(w)}.Normalize()
}

// SymmetricEigen diagonalizes a symmetric matrix. Eigenvalues are
// returned in descending order together with the matching unit
// eigenvectors as columns. A matrix that fails to factorize yields zero
// eigenvalues and the identity frame.
func SymmetricEigen(a [3][3]float64) ([3]float64, Mat3) {
	sym := mat.NewSymDense(3, []float64{
		a[0][0], a[0][1], a[0][2],
		a[1][0], a[1][1], a[1][2],
		a[2][0], a[2][1], a[2][2],
	})
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return [3]float64{}, Identity3()
	}
	values := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// gonum orders eigenvalues ascending.
	var (
		vals [3]float64
		out  Mat3
	)
	for i := 0; i < 3; i++ {
		c := 2 - i
		vals[i] = values[c]
		out[i] = Vec3d{vecs.At(0, c), vecs.At(1, c), vecs.At(2, c)}
	}
	return vals, out
}

// Covariance returns the sample covariance matrix and centroid of a point
// set. Fewer than two points yield a zero matrix.
func Covariance(points []Vec3d) ([3][3]float64, Vec3d) {
	var cov [3][3]float64
	if len(points) == 0 {
		return cov, Vec3d{}
	}
	var mean Vec3d
	for _, p := range points {
		mean = mean.Add(p)
	}
	mean = mean.Scale(1 / float64(len(points)))
	if len(points) < 2 {
		return cov, mean
	}

	x := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		x.Set(i, 0, p.X)
		x.Set(i, 1, p.Y)
		x.Set(i, 2, p.Z)
	}
	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, x, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cov[r][c] = sym.At(r, c)
		}
	}
	return cov, mean
}
