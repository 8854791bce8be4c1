// Package geo describes the flat, attribute-tagged triangle soup handed to
// the pipeline by the external geometry source.
package geo

import (
	"fmt"
	"strings"
)

// Owner identifies which element an attribute array is indexed by.
type Owner int

// Attribute owners. The set is closed; transfer code switches over all four.
const (
	Point Owner = iota
	Vertex
	Primitive
	Detail
)

// Owners lists every owner in lookup order for "any owner" queries.
var Owners = []Owner{Vertex, Point, Primitive, Detail}

// String returns the owner name.
func (o Owner) String() string {
	switch o {
	case Point:
		return "point"
	case Vertex:
		return "vertex"
	case Primitive:
		return "primitive"
	case Detail:
		return "detail"
	default:
		return fmt.Sprintf("Owner(%d)", int(o))
	}
}

// ParseOwner parses an owner name (case-insensitive, "prim" accepted).
func ParseOwner(s string) (Owner, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return Point, nil
	case "vertex":
		return Vertex, nil
	case "primitive", "prim":
		return Primitive, nil
	case "detail":
		return Detail, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOwner, s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Owner) UnmarshalText(text []byte) error {
	v, err := ParseOwner(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Well-known attribute names understood by the pipeline.
const (
	AttrPosition           = "P"
	AttrNormal             = "N"
	AttrTangentU           = "tangentu"
	AttrTangentV           = "tangentv"
	AttrColor              = "Cd"
	AttrAlpha              = "Alpha"
	AttrUV                 = "uv"
	AttrMaterial           = "unreal_material"
	AttrMaterialFallback   = "unreal_face_material"
	AttrMaterialInstance   = "unreal_material_instance"
	AttrFaceSmoothingMask  = "unreal_face_smoothing_mask"
	AttrLightmapResolution = "unreal_lightmap_resolution"
	AttrLODScreenSize      = "lod_screensize"
)

// Query is a request for one attribute array. TupleSize 0 means "as stored";
// Count 0 means "through the end".
type Query struct {
	Name      string
	Owner     Owner
	TupleSize int
	Start     int
	Count     int
}

// AttributeData holds the values of one attribute. Exactly one of Float,
// Int or String is populated.
type AttributeData struct {
	Owner     Owner
	TupleSize int
	Float     []float32
	Int       []int32
	String    []string
}

// Len returns the number of elements (tuples) stored.
func (a AttributeData) Len() int {
	if a.TupleSize <= 0 {
		return 0
	}
	switch {
	case a.Float != nil:
		return len(a.Float) / a.TupleSize
	case a.Int != nil:
		return len(a.Int) / a.TupleSize
	default:
		return len(a.String) / a.TupleSize
	}
}

// Empty reports whether the attribute holds no values.
func (a AttributeData) Empty() bool {
	return len(a.Float) == 0 && len(a.Int) == 0 && len(a.String) == 0
}
