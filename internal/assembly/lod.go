package assembly

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshcook/internal/attrcache"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/split"
	"github.com/Faultbox/meshcook/internal/transfer"
	"github.com/Faultbox/meshcook/pkg/math"
)

// ErrNoPositions is returned when a part carries no point positions.
var ErrNoPositions = errors.New("part has no point positions")

// AutoScreenSize lets the engine pick the LOD switch distance.
const AutoScreenSize float32 = -1

// UVChannel is one texture coordinate channel, one value per wedge.
type UVChannel struct {
	Name   string
	Values []math.Vec2
}

// LOD is one level of detail of a destination mesh.
//
// Positions are per local vertex. Triangles index Positions three per
// triangle. Per-wedge arrays follow the triangle corners in order and are
// nil when the source carried no such attribute.
type LOD struct {
	Name      string
	Positions []math.Vec3
	Triangles []int

	Normals   []math.Vec3
	TangentsU []math.Vec3
	TangentsV []math.Vec3
	Colors    []float32 // RGBA
	UVs       []UVChannel

	// Per triangle.
	SmoothingMasks []int32
	MaterialSlots  []int

	ScreenSize float32
}

// VertexCount returns the number of unique vertices.
func (l *LOD) VertexCount() int { return len(l.Positions) }

// TriangleCount returns the number of triangles.
func (l *LOD) TriangleCount() int { return len(l.Triangles) / 3 }

// WedgeCount returns the number of triangle corners.
func (l *LOD) WedgeCount() int { return len(l.Triangles) }

// NewLOD builds a LOD from a split and its remap table. Wedge attributes
// are read through the cache so later splits of the same part reuse them.
func NewLOD(c *attrcache.Cache, g *split.Group, r *split.RemapTable) (LOD, error) {
	pos, ok := c.Positions()
	if !ok {
		return LOD{}, fmt.Errorf("split %s: %w", g.Name, ErrNoPositions)
	}

	lod := LOD{
		Name:       g.Name,
		Positions:  make([]math.Vec3, len(r.Needed)),
		Triangles:  append([]int(nil), r.Triangles...),
		ScreenSize: ScreenSize(c, g.FirstValidFace),
	}
	for l, p := range r.Needed {
		if 3*p+2 < len(pos.Float) {
			lod.Positions[l] = math.Vec3{X: pos.Float[3*p], Y: pos.Float[3*p+1], Z: pos.Float[3*p+2]}
		}
	}

	// Only the faces the remapper emitted contribute wedges.
	list := emittedWedges(g.VertexList, r.Faces)

	if data, ok := c.Normals(); ok {
		if v, ok := transfer.Vec3s(list, data); ok {
			lod.Normals = transfer.Rewind(v, 1)
		}
	}
	if data, ok := c.TangentU(); ok {
		if v, ok := transfer.Vec3s(list, data); ok {
			lod.TangentsU = transfer.Rewind(v, 1)
		}
	}
	if data, ok := c.TangentV(); ok {
		if v, ok := transfer.Vec3s(list, data); ok {
			lod.TangentsV = transfer.Rewind(v, 1)
		}
	}
	if cd, ok := c.Colors(); ok {
		alpha, hasAlpha := c.Alpha()
		if v, ok := transfer.Colors(list, cd, alpha, hasAlpha); ok {
			lod.Colors = transfer.Rewind(v, 4)
		}
	}
	for _, set := range c.UVSets() {
		if v, ok := transfer.Vec2s(list, set.Data); ok {
			lod.UVs = append(lod.UVs, UVChannel{Name: set.Name, Values: transfer.Rewind(v, 1)})
		}
	}
	if data, ok := c.FaceSmoothingMasks(); ok {
		lod.SmoothingMasks = make([]int32, len(r.Faces))
		for t, f := range r.Faces {
			if f < len(data.Int) {
				lod.SmoothingMasks[t] = data.Int[f]
			}
		}
	}
	return lod, nil
}

func emittedWedges(vertexList []int, faces []int) []int {
	out := make([]int, len(vertexList))
	for i := range out {
		out[i] = split.Excluded
	}
	for _, f := range faces {
		copy(out[3*f:3*f+3], vertexList[3*f:3*f+3])
	}
	return out
}

// ScreenSize reads lod_screensize for a split: the value of its first valid
// face, else the detail value. Values above 1 are percentages. Without the
// attribute the engine decides.
func ScreenSize(c *attrcache.Cache, firstFace int) float32 {
	data, ok := c.LODScreenSize()
	if !ok || len(data.Float) == 0 {
		return AutoScreenSize
	}
	v := data.Float[0]
	if data.Owner == geo.Primitive && firstFace >= 0 && firstFace < len(data.Float) {
		v = data.Float[firstFace]
	}
	if v > 1 {
		v /= 100
	}
	return v
}
