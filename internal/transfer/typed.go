package transfer

import (
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/pkg/math"
)

// Floats expands a float attribute.
func Floats(vertexList []int, data geo.AttributeData) ([]float32, bool) {
	return Expand(vertexList, data.Float, data.Owner, data.TupleSize)
}

// Ints expands an integer attribute.
func Ints(vertexList []int, data geo.AttributeData) ([]int32, bool) {
	return Expand(vertexList, data.Int, data.Owner, data.TupleSize)
}

// Strings expands a string attribute.
func Strings(vertexList []int, data geo.AttributeData) ([]string, bool) {
	return Expand(vertexList, data.String, data.Owner, data.TupleSize)
}

// Vec3s expands a float attribute of tuple 3 or more into vectors.
func Vec3s(vertexList []int, data geo.AttributeData) ([]math.Vec3, bool) {
	if data.TupleSize < 3 {
		return nil, false
	}
	flat, ok := Floats(vertexList, data)
	if !ok {
		return nil, false
	}
	n := data.TupleSize
	out := make([]math.Vec3, len(flat)/n)
	for i := range out {
		out[i] = math.Vec3{X: flat[i*n], Y: flat[i*n+1], Z: flat[i*n+2]}
	}
	return out, true
}

// Vec2s expands a float attribute of tuple 2 or more into vectors.
func Vec2s(vertexList []int, data geo.AttributeData) ([]math.Vec2, bool) {
	if data.TupleSize < 2 {
		return nil, false
	}
	flat, ok := Floats(vertexList, data)
	if !ok {
		return nil, false
	}
	n := data.TupleSize
	out := make([]math.Vec2, len(flat)/n)
	for i := range out {
		out[i] = math.Vec2{X: flat[i*n], Y: flat[i*n+1]}
	}
	return out, true
}

// Colors expands Cd into RGBA, four floats per wedge. A fourth Cd
// component is used as alpha, then the separate alpha attribute, then 1.
func Colors(vertexList []int, cd geo.AttributeData, alpha geo.AttributeData, hasAlpha bool) ([]float32, bool) {
	rgb, ok := Floats(vertexList, cd)
	if !ok || cd.TupleSize < 3 {
		return nil, false
	}
	var a []float32
	if cd.TupleSize < 4 && hasAlpha {
		a, _ = Floats(vertexList, alpha)
	}

	n := cd.TupleSize
	wedges := len(rgb) / n
	out := make([]float32, 0, wedges*4)
	for i := 0; i < wedges; i++ {
		out = append(out, rgb[i*n], rgb[i*n+1], rgb[i*n+2])
		switch {
		case n >= 4:
			out = append(out, rgb[i*n+3])
		case i < len(a):
			out = append(out, a[i])
		default:
			out = append(out, 1)
		}
	}
	return out, true
}
