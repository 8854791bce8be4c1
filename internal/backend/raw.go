package backend

import (
	gomath "math"

	"github.com/Faultbox/meshcook/pkg/math"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

func emptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: gomath.MaxFloat32, Y: gomath.MaxFloat32, Z: gomath.MaxFloat32},
		Max: math.Vec3{X: -gomath.MaxFloat32, Y: -gomath.MaxFloat32, Z: -gomath.MaxFloat32},
	}
}

func (b *Bounds) extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// RawLOD stores one LOD with every attribute.
type RawLOD struct {
	Positions     []math.Vec3
	Indices       []int
	MaterialSlots []int
	// Attributes holds flattened per-wedge values by kind.
	Attributes map[AttributeKind][]float32
	Tuple      map[AttributeKind]int
	Bounds     Bounds
}

// RawMesh is a full-fidelity mesh description.
type RawMesh struct {
	LODs []RawLOD
}

// NewRawMesh creates an empty raw mesh.
func NewRawMesh() *RawMesh {
	return &RawMesh{}
}

// Reserve implements Builder.
func (m *RawMesh) Reserve(lod, verts, tris int) {
	for len(m.LODs) <= lod {
		m.LODs = append(m.LODs, RawLOD{})
	}
	m.LODs[lod] = RawLOD{
		Positions:     make([]math.Vec3, verts),
		Indices:       make([]int, 3*tris),
		MaterialSlots: make([]int, tris),
		Attributes:    make(map[AttributeKind][]float32),
		Tuple:         make(map[AttributeKind]int),
		Bounds:        emptyBounds(),
	}
}

// SetVertexPosition implements Builder.
func (m *RawMesh) SetVertexPosition(lod, vertex int, p math.Vec3) {
	l := &m.LODs[lod]
	l.Positions[vertex] = p
	l.Bounds.extend(p)
}

// SetTriangleIndices implements Builder.
func (m *RawMesh) SetTriangleIndices(lod, tri int, a, b, c int) {
	idx := m.LODs[lod].Indices
	idx[3*tri], idx[3*tri+1], idx[3*tri+2] = a, b, c
}

// SetVertexAttribute implements Builder.
func (m *RawMesh) SetVertexAttribute(lod int, kind AttributeKind, wedge int, values ...float32) {
	l := &m.LODs[lod]
	n := len(values)
	data, ok := l.Attributes[kind]
	if !ok {
		data = make([]float32, len(l.Indices)*n)
		l.Tuple[kind] = n
	}
	if n != l.Tuple[kind] || (wedge+1)*n > len(data) {
		return
	}
	copy(data[wedge*n:], values)
	l.Attributes[kind] = data
}

// SetTriangleMaterialSlot implements Builder.
func (m *RawMesh) SetTriangleMaterialSlot(lod, tri, slot int) {
	m.LODs[lod].MaterialSlots[tri] = slot
}

// Normals returns the per-wedge normals of a LOD as vectors.
func (l *RawLOD) Normals() []math.Vec3 {
	data := l.Attributes[AttrNormal]
	out := make([]math.Vec3, len(data)/3)
	for i := range out {
		out[i] = math.Vec3{X: data[3*i], Y: data[3*i+1], Z: data[3*i+2]}
	}
	return out
}

// RecomputeNormals replaces the normals of a LOD with area-weighted face
// normals averaged over wedges that share a position. Smoothing across
// coincident positions welds seams split by UVs.
func (l *RawLOD) RecomputeNormals() {
	const epsilon float32 = 0.001

	wedges := len(l.Indices)
	normals := make([]float32, 3*wedges)
	faceNormals := make([]math.Vec3, wedges/3)
	for t := range faceNormals {
		p0 := l.Positions[l.Indices[3*t]]
		p1 := l.Positions[l.Indices[3*t+1]]
		p2 := l.Positions[l.Indices[3*t+2]]
		faceNormals[t] = p1.Sub(p0).Cross(p2.Sub(p0))
	}

	// Group wedges by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for w := 0; w < wedges; w++ {
		p := l.Positions[l.Indices[w]]
		key := [3]int32{
			int32(gomath.Round(float64(p.X / epsilon))),
			int32(gomath.Round(float64(p.Y / epsilon))),
			int32(gomath.Round(float64(p.Z / epsilon))),
		}
		posMap[key] = append(posMap[key], w)
	}

	for _, ws := range posMap {
		var sum math.Vec3
		for _, w := range ws {
			sum = sum.Add(faceNormals[w/3])
		}
		avg := sum.Normalize()
		for _, w := range ws {
			normals[3*w], normals[3*w+1], normals[3*w+2] = avg.X, avg.Y, avg.Z
		}
	}

	l.Attributes[AttrNormal] = normals
	l.Tuple[AttrNormal] = 3
}
