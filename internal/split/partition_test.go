package split

import (
	"errors"
	"testing"

	"github.com/Faultbox/meshcook/internal/geo"
)

// cubeTriangles is a closed unit cube as 12 triangles over 8 corners.
var cubeTriangles = []int{
	0, 1, 2, 0, 2, 3, // bottom
	4, 6, 5, 4, 7, 6, // top
	0, 4, 5, 0, 5, 1, // front
	1, 5, 6, 1, 6, 2, // right
	2, 6, 7, 2, 7, 3, // back
	3, 7, 4, 3, 4, 0, // left
}

func cubePart(t *testing.T, groups map[string][]int) *geo.MemoryPart {
	t.Helper()
	part, err := geo.NewMemoryPart("cube", 8, append([]int(nil), cubeTriangles...))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"main_geo", "collision_simple_box", "lod1", "collision_geo_ucx", "socket"} {
		faces, ok := groups[name]
		if !ok {
			continue
		}
		if err := part.AddGroup(name, faces...); err != nil {
			t.Fatal(err)
		}
	}
	return part
}

func allFaces() []int {
	f := make([]int, 12)
	for i := range f {
		f[i] = i
	}
	return f
}

func checkSentinel(t *testing.T, part geo.Part, g Group) {
	t.Helper()
	if len(g.VertexList) != 3*part.FaceCount() {
		t.Errorf("%s: vertex list len = %d, want %d", g.Name, len(g.VertexList), 3*part.FaceCount())
	}
	valid := 0
	for _, p := range g.VertexList {
		if p != Excluded {
			valid++
		}
	}
	if valid != g.ValidWedges || valid%3 != 0 {
		t.Errorf("%s: %d valid wedges (recorded %d)", g.Name, valid, g.ValidWedges)
	}
}

func TestPartitionSentinel(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"lod1":              {0, 1, 2, 3},
		"collision_geo_ucx": {4, 5},
	})
	names, _ := Sort(part.GroupNames())
	groups, issues := Partition(part, names)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3 (two named + remaining)", len(groups))
	}
	for _, g := range groups {
		checkSentinel(t, part, g)
	}

	ucx := groups[0]
	if ucx.Name != "collision_geo_ucx" || ucx.FirstValidFace != 4 || ucx.FirstValidVertex != 12 {
		t.Errorf("ucx split = %s first face %d first wedge %d", ucx.Name, ucx.FirstValidFace, ucx.FirstValidVertex)
	}
	if ucx.VertexList[0] != Excluded || ucx.VertexList[12] != cubeTriangles[12] {
		t.Error("ucx split sentinel placement wrong")
	}

	rest := groups[2]
	if !rest.Remaining || rest.Name != MainMeshKey || rest.Kind != Normal {
		t.Errorf("remaining split = %+v", rest)
	}
	if rest.ValidWedges != 18 {
		t.Errorf("remaining wedges = %d, want 18", rest.ValidWedges)
	}
}

func TestPartitionNoGroups(t *testing.T) {
	part := cubePart(t, nil)
	groups, issues := Partition(part, nil)
	if len(issues) != 0 || len(groups) != 1 {
		t.Fatalf("groups=%d issues=%v", len(groups), issues)
	}
	if g := groups[0]; !g.Remaining || g.ValidWedges != 36 || len(g.FaceIndices) != 12 {
		t.Errorf("whole-part split = %+v", g)
	}
}

func TestPartitionAllClaimed(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo":             allFaces(),
		"collision_simple_box": allFaces(),
	})
	names, _ := Sort(part.GroupNames())
	groups, _ := Partition(part, names)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (no remaining split)", len(groups))
	}
	if groups[0].Kind != InvisibleSimple || groups[1].Kind != Normal {
		t.Errorf("order = %v, %v", groups[0].Kind, groups[1].Kind)
	}
}

func TestPartitionRemainingJoinsMain(t *testing.T) {
	part := cubePart(t, map[string][]int{
		"main_geo": {2, 3},
		"lod1":     {0, 1},
	})
	names, _ := Sort(part.GroupNames())
	groups, _ := Partition(part, names)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	main := groups[1]
	if main.Name != "main_geo" || main.Remaining {
		t.Fatalf("expected named main split, got %+v", main)
	}
	if main.ValidWedges != 30 || main.FirstValidFace != 2 {
		t.Errorf("main wedges = %d first face = %d", main.ValidWedges, main.FirstValidFace)
	}
	if len(main.FaceIndices) != 10 || main.FaceIndices[0] != 2 {
		t.Errorf("main faces = %v", main.FaceIndices)
	}
}

func TestPartitionMalformed(t *testing.T) {
	// Built by hand so the bad point index gets past NewMemoryPart.
	part := &geo.MemoryPart{
		PartName: "bad",
		Points:   4,
		Vertices: []int{0, 1, 2, 0, 2, 9},
		Groups: []geo.Group{
			{Name: "lod1", Faces: []int{1}},
			{Name: "main_geo", Faces: []int{0}},
			{Name: "socket", Faces: []int{0}},
		},
	}
	groups, issues := Partition(part, []string{"lod1", "main_geo", "socket", "lod_missing"})

	if len(groups) != 1 || groups[0].Name != "main_geo" {
		t.Fatalf("groups = %+v", groups)
	}
	var malformed, invalid, missing int
	for _, err := range issues {
		switch {
		case errors.Is(err, ErrMalformedSplit):
			malformed++
		case errors.Is(err, ErrInvalidGroup):
			invalid++
		case errors.Is(err, ErrMissingGroup):
			missing++
		}
	}
	if malformed != 1 || invalid != 1 || missing != 1 {
		t.Errorf("issues = %v", issues)
	}
}

func TestGroupFaceIndices(t *testing.T) {
	part := cubePart(t, map[string][]int{"lod1": {3, 7}})
	groups, _ := Partition(part, []string{"lod1"})
	faces := groups[0].FaceIndices
	if len(faces) != 2 || faces[0] != 3 || faces[1] != 7 {
		t.Errorf("FaceIndices = %v", faces)
	}
	if groups[0].ValidWedges != 6 {
		t.Errorf("ValidWedges = %d, want 6", groups[0].ValidWedges)
	}
}
