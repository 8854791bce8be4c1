package backend

import "github.com/Faultbox/meshcook/pkg/math"

// Proxy is a lightweight runtime mesh: positions, indices and material
// slots of LOD 0 only. Vertex attributes are ignored.
type Proxy struct {
	Positions     []math.Vec3
	Indices       []uint32
	MaterialSlots []int
	Bounds        Bounds
}

// Reserve implements Builder.
func (p *Proxy) Reserve(lod, verts, tris int) {
	if lod != 0 {
		return
	}
	p.Positions = make([]math.Vec3, verts)
	p.Indices = make([]uint32, 3*tris)
	p.MaterialSlots = make([]int, tris)
	p.Bounds = emptyBounds()
}

// SetVertexPosition implements Builder.
func (p *Proxy) SetVertexPosition(lod, vertex int, pos math.Vec3) {
	if lod != 0 {
		return
	}
	p.Positions[vertex] = pos
	p.Bounds.extend(pos)
}

// SetTriangleIndices implements Builder.
func (p *Proxy) SetTriangleIndices(lod, tri int, a, b, c int) {
	if lod != 0 {
		return
	}
	p.Indices[3*tri], p.Indices[3*tri+1], p.Indices[3*tri+2] = uint32(a), uint32(b), uint32(c)
}

// SetVertexAttribute implements Builder.
func (p *Proxy) SetVertexAttribute(int, AttributeKind, int, ...float32) {}

// SetTriangleMaterialSlot implements Builder.
func (p *Proxy) SetTriangleMaterialSlot(lod, tri, slot int) {
	if lod != 0 {
		return
	}
	p.MaterialSlots[tri] = slot
}
