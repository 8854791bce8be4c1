// Package backend writes assembled meshes into concrete mesh targets.
package backend

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/pkg/math"
)

// ErrIndexRange is returned when a triangle references a missing vertex.
var ErrIndexRange = errors.New("triangle index out of range")

// AttributeKind names a per-wedge vertex attribute.
type AttributeKind int

// Attribute kinds. UV channels follow UV0 consecutively.
const (
	AttrNormal AttributeKind = iota
	AttrTangentU
	AttrTangentV
	AttrColor
	AttrUV0
)

// UV returns the kind of texture channel i.
func UV(i int) AttributeKind {
	return AttrUV0 + AttributeKind(i)
}

func (k AttributeKind) String() string {
	switch k {
	case AttrNormal:
		return "normal"
	case AttrTangentU:
		return "tangent-u"
	case AttrTangentV:
		return "tangent-v"
	case AttrColor:
		return "color"
	}
	return fmt.Sprintf("uv%d", int(k-AttrUV0))
}

// Builder is a mesh target. LODs are reserved in ascending order before
// any of their data is set.
type Builder interface {
	Reserve(lod, verts, tris int)
	SetVertexPosition(lod, vertex int, p math.Vec3)
	SetTriangleIndices(lod, tri int, a, b, c int)
	SetVertexAttribute(lod int, kind AttributeKind, wedge int, values ...float32)
	SetTriangleMaterialSlot(lod, tri, slot int)
}

// Write feeds every LOD of mesh to b. A mesh without render LODs writes
// its complex collision geometry as LOD 0.
func Write(mesh *assembly.DestinationMesh, b Builder) error {
	lods := mesh.LODs
	if len(lods) == 0 && mesh.ComplexCollider != nil {
		lods = []assembly.LOD{*mesh.ComplexCollider}
	}
	for i := range lods {
		if err := writeLOD(i, &lods[i], b); err != nil {
			return fmt.Errorf("mesh %s lod %d: %w", mesh.Key, i, err)
		}
	}
	return nil
}

func writeLOD(i int, lod *assembly.LOD, b Builder) error {
	verts := lod.VertexCount()
	for _, idx := range lod.Triangles {
		if idx < 0 || idx >= verts {
			return fmt.Errorf("%w: %d of %d", ErrIndexRange, idx, verts)
		}
	}

	b.Reserve(i, verts, lod.TriangleCount())
	for v, p := range lod.Positions {
		b.SetVertexPosition(i, v, p)
	}
	for t := 0; t < lod.TriangleCount(); t++ {
		b.SetTriangleIndices(i, t, lod.Triangles[3*t], lod.Triangles[3*t+1], lod.Triangles[3*t+2])
		slot := 0
		if t < len(lod.MaterialSlots) {
			slot = lod.MaterialSlots[t]
		}
		b.SetTriangleMaterialSlot(i, t, slot)
	}

	writeVec3s(i, AttrNormal, lod.Normals, b)
	writeVec3s(i, AttrTangentU, lod.TangentsU, b)
	writeVec3s(i, AttrTangentV, lod.TangentsV, b)
	for w := 0; 4*w+3 < len(lod.Colors); w++ {
		b.SetVertexAttribute(i, AttrColor, w, lod.Colors[4*w:4*w+4]...)
	}
	for c, ch := range lod.UVs {
		for w, uv := range ch.Values {
			b.SetVertexAttribute(i, UV(c), w, uv.X, uv.Y)
		}
	}
	return nil
}

func writeVec3s(lod int, kind AttributeKind, values []math.Vec3, b Builder) {
	for w, v := range values {
		b.SetVertexAttribute(lod, kind, w, v.X, v.Y, v.Z)
	}
}
