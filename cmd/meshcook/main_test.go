package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/internal/cook"
	"github.com/Faultbox/meshcook/internal/geo"
)

func TestPrintProxies(t *testing.T) {
	part, err := geo.NewMemoryPart("cube", 8, []int{
		0, 1, 2, 0, 2, 3,
		4, 6, 5, 4, 7, 6,
		0, 4, 5, 0, 5, 1,
		1, 5, 6, 1, 6, 2,
		2, 6, 7, 2, 7, 3,
		3, 7, 4, 3, 4, 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	part.SetFloat(geo.AttrPosition, geo.Point, 3,
		0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
		0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1)

	res := cook.New(nil, nil).Cook(part, assembly.PassInput{GeoChanged: true, PartChanged: true})
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printProxies(&buf, res)
	out := buf.String()
	if !strings.HasPrefix(out, "main_geo") {
		t.Fatalf("output = %q, want a main_geo line", out)
	}
	for _, want := range []string{" 8 verts", " 12 tris", " 1 slots", "bounds {0 0 0}..{1 1 1}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}

func TestDistinctSlots(t *testing.T) {
	if got := distinctSlots([]int{0, 1, 1, 0, 2}); got != 3 {
		t.Errorf("distinctSlots() = %d, want 3", got)
	}
	if got := distinctSlots(nil); got != 0 {
		t.Errorf("distinctSlots(nil) = %d, want 0", got)
	}
}
