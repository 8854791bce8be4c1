package cook

import (
	"errors"
	gomath "math"
	"reflect"
	"testing"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/internal/collision"
	"github.com/Faultbox/meshcook/internal/config"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/material"
	"github.com/Faultbox/meshcook/internal/split"
	"github.com/Faultbox/meshcook/internal/transfer"
	"go.uber.org/multierr"
)

var cubeTriangles = []int{
	0, 1, 2, 0, 2, 3,
	4, 6, 5, 4, 7, 6,
	0, 4, 5, 0, 5, 1,
	1, 5, 6, 1, 6, 2,
	2, 6, 7, 2, 7, 3,
	3, 7, 4, 3, 4, 0,
}

var cubeCorners = []float32{
	0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
	0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1,
}

func allFaces() []int {
	f := make([]int, 12)
	for i := range f {
		f[i] = i
	}
	return f
}

func cubePart(t *testing.T, groups map[string][]int) *geo.MemoryPart {
	t.Helper()
	part, err := geo.NewMemoryPart("cube", 8, append([]int(nil), cubeTriangles...))
	if err != nil {
		t.Fatal(err)
	}
	part.SetFloat(geo.AttrPosition, geo.Point, 3, cubeCorners...)
	for name, faces := range groups {
		if err := part.AddGroup(name, faces...); err != nil {
			t.Fatal(err)
		}
	}
	return part
}

func changed() assembly.PassInput {
	return assembly.PassInput{GeoChanged: true, PartChanged: true}
}

func TestCookCube(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo":             allFaces(),
		"collision_simple_box": allFaces(),
	})

	res := New(nil, nil).Cook(part, changed())
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected issues: %v", err)
	}
	if got := res.Keys(); !reflect.DeepEqual(got, []string{"main_geo"}) {
		t.Fatalf("Keys() = %v", got)
	}

	m := res.Meshes["main_geo"]
	if len(m.LODs) != 1 {
		t.Fatalf("got %d LODs, want 1", len(m.LODs))
	}
	lod := m.LODs[0]
	if lod.WedgeCount() != 36 || lod.VertexCount() != 8 {
		t.Errorf("wedges=%d vertices=%d, want 36 and 8", lod.WedgeCount(), lod.VertexCount())
	}
	if len(m.Colliders) != 1 {
		t.Fatalf("got %d colliders, want 1", len(m.Colliders))
	}
	box, ok := m.Colliders[0].(*collision.Box)
	if !ok {
		t.Fatalf("collider is %T, want *collision.Box", m.Colliders[0])
	}
	const eps = 1e-9
	for i := 0; i < 3; i++ {
		if gomath.Abs(box.HalfExtents.At(i)-0.5) > eps || gomath.Abs(box.Center.At(i)-0.5) > eps {
			t.Errorf("box = %+v, want unit cube", box)
		}
	}
	if len(m.Slots) != 1 || m.Slots[0].Identity.Name() != material.DefaultPath {
		t.Errorf("slots = %+v, want the default material only", m.Slots)
	}
	if !m.Policy.RecomputeNormals || !m.Policy.RecomputeTangents {
		t.Errorf("policy = %+v, want recompute normals and tangents", m.Policy)
	}
	if res.Stats.Remaps != 2 || res.Stats.Fits != 1 || res.Stats.Resolves != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestCookScreenSizeBroadcast(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo": {0, 1, 2, 3, 4, 5},
		"lod1":     {6, 7, 8, 9, 10, 11},
	})
	part.SetFloat(geo.AttrLODScreenSize, geo.Detail, 1, 0.35)

	res := New(nil, nil).Cook(part, changed())
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}
	m := res.Meshes["main_geo"]
	if len(m.LODs) != 2 || m.LODs[0].Name != "main_geo" || m.LODs[1].Name != "lod1" {
		t.Fatalf("LODs = %d", len(m.LODs))
	}
	for _, lod := range m.LODs {
		if lod.ScreenSize != 0.35 {
			t.Errorf("%s: screen size %v, want 0.35", lod.Name, lod.ScreenSize)
		}
	}

	data, _ := part.Attribute(geo.Query{Name: geo.AttrLODScreenSize, Owner: geo.Detail, TupleSize: 1})
	groups, _ := split.Partition(part, []string{"lod1", "main_geo"})
	for _, g := range groups {
		vals, ok := transfer.Floats(g.VertexList, data)
		if !ok || len(vals) != g.ValidWedges {
			t.Fatalf("%s: %d values for %d wedges", g.Name, len(vals), g.ValidWedges)
		}
		for _, v := range vals {
			if v != 0.35 {
				t.Errorf("%s: wedge value %v", g.Name, v)
			}
		}
	}
}

// tenTriangles builds ten disjoint triangles with material id 7 on every
// face and an override on the first two.
func tenTriangles(t *testing.T) *geo.MemoryPart {
	t.Helper()
	verts := make([]int, 30)
	pos := make([]float32, 0, 90)
	for i := range verts {
		verts[i] = i
	}
	for f := 0; f < 10; f++ {
		x := float32(2 * f)
		pos = append(pos, x, 0, 0, x+1, 0, 0, x, 1, 0)
	}
	part, err := geo.NewMemoryPart("strip", 30, verts)
	if err != nil {
		t.Fatal(err)
	}
	part.SetFloat(geo.AttrPosition, geo.Point, 3, pos...)
	overrides := make([]string, 10)
	overrides[0], overrides[1] = "/Game/Brick", "/Game/Brick"
	part.SetString(geo.AttrMaterial, geo.Primitive, overrides...)
	part.FaceMaterials = []int{7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	return part
}

func TestCookMaterialOverrides(t *testing.T) {
	tests := []struct {
		name         string
		replacements map[string]string
		wantSlots    []string
		wantFaces    []int
	}{
		{
			name:      "override and id",
			wantSlots: []string{"/Game/Brick", "/Game/Stone"},
			wantFaces: []int{0, 0, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			name:         "replacement collapses to one identity",
			replacements: map[string]string{"/Game/Stone": "/Game/Brick"},
			wantSlots:    []string{"/Game/Brick"},
			wantFaces:    make([]int, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Materials.IDs = map[string]string{"7": "/Game/Stone"}
			cfg.Materials.Replacements = tt.replacements

			resolver, err := NewResolver(cfg.Materials, material.NewLibrary(material.PathLoader))
			if err != nil {
				t.Fatal(err)
			}
			res := New(cfg, resolver).Cook(tenTriangles(t), changed())
			if err := res.Err(); err != nil {
				t.Fatal(err)
			}

			m := res.Meshes["main_geo"]
			var got []string
			for _, s := range m.Slots {
				got = append(got, s.Identity.Name())
			}
			if !reflect.DeepEqual(got, tt.wantSlots) {
				t.Errorf("slots = %v, want %v", got, tt.wantSlots)
			}
			if !reflect.DeepEqual(m.LODs[0].MaterialSlots, tt.wantFaces) {
				t.Errorf("face slots = %v, want %v", m.LODs[0].MaterialSlots, tt.wantFaces)
			}
		})
	}
}

func TestCookUnresolvableOverride(t *testing.T) {
	part := tenTriangles(t)
	part.SetString(geo.AttrMaterial, geo.Primitive, "missing", "missing", "", "", "", "", "", "", "", "")
	part.FaceMaterials = nil

	res := New(nil, material.NewResolver(material.NewLibrary(material.PathLoader), nil, nil)).Cook(part, changed())
	if !errors.Is(res.Err(), material.ErrUnresolvable) {
		t.Errorf("Err() = %v, want ErrUnresolvable", res.Err())
	}
	m := res.Meshes["main_geo"]
	if len(m.Slots) != 1 || m.Slots[0].Identity.Name() != material.DefaultPath {
		t.Errorf("slots = %+v, want default only", m.Slots)
	}
}

func TestCookReuse(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo":             allFaces(),
		"collision_simple_box": allFaces(),
		"collision_ucx_hull":   allFaces(),
	})
	c := New(nil, nil)

	first := c.Cook(part, changed())
	if first.Stats.Fits != 2 {
		t.Fatalf("first pass fits = %d, want 2", first.Stats.Fits)
	}

	second := c.Cook(part, assembly.PassInput{})
	if second.Stats != (Stats{}) {
		t.Errorf("reused pass did work: %+v", second.Stats)
	}
	if !reflect.DeepEqual(first.Meshes, second.Meshes) {
		t.Error("reused meshes differ from the previous pass")
	}
	if first.PassID == second.PassID {
		t.Error("pass ids should differ")
	}

	third := c.Cook(part, assembly.PassInput{MaterialsChanged: true})
	if third.Stats.Fits != 2 || third.Stats.Remaps != 3 {
		t.Errorf("rebuild stats = %+v", third.Stats)
	}
	if v := third.Meshes["main_geo"].Version; v != 1 {
		t.Errorf("Version = %d, want 1", v)
	}
}

func TestCookLocalFailures(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo":             {0, 1, 2, 3, 4, 5, 6, 7},
		"collision_ucx_floor":  {0, 1},
		"collision_simple_box": {0, 1, 2, 3, 4, 5, 6, 7},
		"socket_a":             {8, 9, 10, 11},
	})

	res := New(nil, nil).Cook(part, changed())
	err := res.Err()
	if !errors.Is(err, collision.ErrDegenerate) {
		t.Errorf("missing degenerate hull issue: %v", err)
	}
	if !errors.Is(err, split.ErrInvalidGroup) {
		t.Errorf("missing invalid group issue: %v", err)
	}
	if n := len(multierr.Errors(err)); n != len(res.Issues) || n != 2 {
		t.Errorf("%d combined errors for %d issues, want 2", n, len(res.Issues))
	}

	m := res.Meshes["main_geo"]
	if m == nil || len(m.Colliders) != 1 {
		t.Fatalf("main mesh should keep the box collider")
	}
	// Faces of the unrecognised group fall back to the main mesh.
	if got := m.LODs[0].TriangleCount(); got != 12 {
		t.Errorf("main triangles = %d, want 12", got)
	}
}

func TestCookColliderMeshes(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo":                      allFaces(),
		"rendered_collision_simple_box": allFaces(),
		"collision_walls":               {8, 9, 10, 11},
	})

	res := New(nil, nil).Cook(part, changed())
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{"collision_walls", "main_geo", "rendered_collision_simple_box"}
	if got := res.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	rendered := res.Meshes["rendered_collision_simple_box"]
	if len(rendered.LODs) != 1 || len(rendered.Colliders) != 1 {
		t.Errorf("rendered collider: %d LODs, %d colliders", len(rendered.LODs), len(rendered.Colliders))
	}

	walls := res.Meshes["collision_walls"]
	if len(walls.LODs) != 0 || walls.ComplexCollider == nil || walls.ComplexCollider.TriangleCount() != 4 {
		t.Errorf("complex collider mesh = %+v", walls)
	}
	main := res.Meshes["main_geo"]
	if main.ComplexCollider == nil || main.ComplexCollider.Name != "collision_walls" {
		t.Error("invisible complex collider should attach to the main mesh")
	}
}

func TestCollisionOptions(t *testing.T) {
	m := config.Default().Mesh
	m.MultiHullMaxCount = 3
	if got := CollisionOptions(m); got.MultiHullMaxCount != 3 || got.MultiHullMaxVerts != 16 || got.KDopInflation != 1e-3 {
		t.Errorf("CollisionOptions() = %+v", got)
	}
}
