// Package math provides the vector, rotation, and linear algebra types used
// by the mesh pipeline.
package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}
