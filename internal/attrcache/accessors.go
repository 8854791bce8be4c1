package attrcache

import (
	"fmt"

	"github.com/Faultbox/meshcook/internal/geo"
)

// MaxUVSets is the number of texture coordinate channels a mesh can carry.
const MaxUVSets = 8

// UVSet is one texture coordinate channel.
type UVSet struct {
	Name string
	Data geo.AttributeData
}

// Positions returns the point positions (tuple 3).
func (c *Cache) Positions() (geo.AttributeData, bool) {
	return c.Get(geo.AttrPosition, geo.Point, 3)
}

// Normals returns normals on any owner.
func (c *Cache) Normals() (geo.AttributeData, bool) {
	return c.Get(geo.AttrNormal, AnyOwner, 3)
}

// TangentU returns the first tangent on any owner.
func (c *Cache) TangentU() (geo.AttributeData, bool) {
	return c.Get(geo.AttrTangentU, AnyOwner, 3)
}

// TangentV returns the binormal on any owner.
func (c *Cache) TangentV() (geo.AttributeData, bool) {
	return c.Get(geo.AttrTangentV, AnyOwner, 3)
}

// Colors returns Cd as stored (tuple 3 or 4).
func (c *Cache) Colors() (geo.AttributeData, bool) {
	data, ok := c.Get(geo.AttrColor, AnyOwner, 0)
	if !ok || data.TupleSize < 3 {
		return geo.AttributeData{}, false
	}
	return data, true
}

// Alpha returns the separate alpha channel.
func (c *Cache) Alpha() (geo.AttributeData, bool) {
	return c.Get(geo.AttrAlpha, AnyOwner, 1)
}

// UVSets returns the texture coordinate channels in slot order. The first
// channel is "uv"; further channels are numbered from uv1 when uv1 exists,
// else from uv2. Missing channels are skipped.
func (c *Cache) UVSets() []UVSet {
	names := uvNames(c.Has(geo.AttrUV + "1"))
	var sets []UVSet
	for _, name := range names {
		if data, ok := c.Get(name, AnyOwner, 2); ok {
			sets = append(sets, UVSet{Name: name, Data: data})
		}
	}
	return sets
}

func uvNames(fromOne bool) []string {
	names := []string{geo.AttrUV}
	first := 2
	if fromOne {
		first = 1
	}
	for i := first; len(names) < MaxUVSets; i++ {
		names = append(names, fmt.Sprintf("%s%d", geo.AttrUV, i))
	}
	return names
}

// Has reports whether the attribute exists on any owner.
func (c *Cache) Has(name string) bool {
	_, ok := c.Get(name, AnyOwner, 0)
	return ok
}

// FaceSmoothingMasks returns the per-face smoothing group masks.
func (c *Cache) FaceSmoothingMasks() (geo.AttributeData, bool) {
	return c.Get(geo.AttrFaceSmoothingMask, geo.Primitive, 1)
}

// LightmapResolution returns the lightmap resolution from the first face or
// the detail attribute.
func (c *Cache) LightmapResolution() (int, bool) {
	for _, owner := range []geo.Owner{geo.Primitive, geo.Detail} {
		data, ok := c.Get(geo.AttrLightmapResolution, owner, 1)
		if ok && len(data.Int) > 0 {
			return int(data.Int[0]), true
		}
	}
	return 0, false
}

// LODScreenSize returns lod_screensize stored per face or on the detail.
func (c *Cache) LODScreenSize() (geo.AttributeData, bool) {
	if data, ok := c.Get(geo.AttrLODScreenSize, geo.Primitive, 1); ok {
		return data, true
	}
	return c.Get(geo.AttrLODScreenSize, geo.Detail, 1)
}

// MaterialOverrides returns the material name override attribute, trying
// unreal_material, unreal_face_material and unreal_material_instance in
// order. Only face and detail owned strings are accepted.
func (c *Cache) MaterialOverrides() (geo.AttributeData, bool) {
	for _, name := range []string{geo.AttrMaterial, geo.AttrMaterialFallback, geo.AttrMaterialInstance} {
		for _, owner := range []geo.Owner{geo.Primitive, geo.Detail} {
			data, ok := c.Get(name, owner, 1)
			if ok && len(data.String) > 0 {
				return data, true
			}
		}
	}
	return geo.AttributeData{}, false
}
