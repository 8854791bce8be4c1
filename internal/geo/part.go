package geo

import "errors"

// Geometry errors.
var (
	ErrUnknownOwner    = errors.New("unknown attribute owner")
	ErrNotTriangulated = errors.New("vertex count is not a multiple of 3")
	ErrPointIndex      = errors.New("vertex references a point out of range")
	ErrFaceIndex       = errors.New("group references a face out of range")
)

// Part is one read-only unit of source geometry for a single cook pass.
// Faces are triangles: wedges 3f, 3f+1, 3f+2 belong to face f.
type Part interface {
	// Name identifies the part in logs.
	Name() string
	PointCount() int
	FaceCount() int
	// VertexCount is the number of wedges (3 x FaceCount).
	VertexCount() int
	// VertexList maps each wedge to its point index.
	VertexList() []int
	// GroupNames lists the primitive groups in source order.
	GroupNames() []string
	// GroupMembership returns one flag per face for the named group.
	GroupMembership(name string) ([]bool, bool)
	// Attribute fetches an attribute array. A missing attribute returns
	// false, which is distinct from an existing all-zero array.
	Attribute(q Query) (AttributeData, bool)
	// MaterialIDs returns the external material id assigned to each face,
	// or false when the source carries no material assignment.
	MaterialIDs() ([]int, bool)
}
