package collision

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/meshcook/internal/split"
	"github.com/Faultbox/meshcook/pkg/math"
)

const tol = 1e-9

func unitCube() []math.Vec3d {
	var pts []math.Vec3d
	for _, x := range []float64{0, 1} {
		for _, y := range []float64{0, 1} {
			for _, z := range []float64{0, 1} {
				pts = append(pts, math.Vec3d{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

// cylinder returns two rings of 8 points of radius r at x=0 and x=length.
func cylinder(r, length float64) []math.Vec3d {
	var pts []math.Vec3d
	for _, x := range []float64{0, length} {
		for i := 0; i < 8; i++ {
			a := float64(i) * gomath.Pi / 4
			pts = append(pts, math.Vec3d{X: x, Y: r * gomath.Cos(a), Z: r * gomath.Sin(a)})
		}
	}
	return pts
}

func fibonacciSphere(n int) []math.Vec3d {
	pts := make([]math.Vec3d, n)
	golden := gomath.Pi * (3 - gomath.Sqrt(5))
	for i := range pts {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := gomath.Sqrt(1 - y*y)
		a := golden * float64(i)
		pts[i] = math.Vec3d{X: r * gomath.Cos(a), Y: y, Z: r * gomath.Sin(a)}
	}
	return pts
}

func near(a, b, eps float64) bool { return gomath.Abs(a-b) <= eps }

func nearVec(a, b math.Vec3d, eps float64) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		dirs   int
	}{
		{"collision_geo_simple_box", MethodBox, 0},
		{"collision_simple_Box", MethodBox, 0},
		{"collision_geo_simple_orientedbox", MethodOrientedBox, 0},
		{"collision_geo_simple_obox", MethodOrientedBox, 0},
		{"collision_geo_simple_sphere", MethodSphere, 0},
		{"collision_geo_simple_capsule", MethodCapsule, 0},
		{"collision_geo_simple_ocapsule", MethodOrientedCapsule, 0},
		{"collision_geo_simple_kdop10X", MethodKDop, 10},
		{"collision_geo_simple_kdop10y", MethodKDop, 10},
		{"collision_geo_simple_kdop10z", MethodKDop, 10},
		{"collision_geo_simple_kdop18", MethodKDop, 18},
		{"collision_geo_simple_kdop6", MethodKDop, 6},
		{"collision_geo_simple", MethodKDop, 26},
		{"rendered_collision_geo_simple_sphere", MethodSphere, 0},
		{"collision_geo_ucx", MethodHull, 0},
		{"collision_geo_ucx_multi", MethodMultiHull, 0},
		{"collision_geo", MethodNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, dirs := Select(tt.name, split.Classify(tt.name))
			if m != tt.method {
				t.Errorf("method = %v, want %v", m, tt.method)
			}
			if len(dirs) != tt.dirs {
				t.Errorf("directions = %d, want %d", len(dirs), tt.dirs)
			}
		})
	}
}

func TestDirectionSetsAreDistinct(t *testing.T) {
	for _, set := range namedDirections {
		for i, a := range set.dirs {
			for j, b := range set.dirs {
				if i != j && nearVec(a.Normalize(), b.Normalize(), 1e-12) {
					t.Errorf("%s: directions %d and %d coincide", set.keyword, i, j)
				}
			}
		}
	}
}

func TestFitBoxCube(t *testing.T) {
	shapes, err := Fit("collision_simple_box", split.InvisibleSimple, Input{Points: unitCube()}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	box, ok := shapes[0].(*Box)
	if !ok {
		t.Fatalf("got %T, want *Box", shapes[0])
	}
	if !nearVec(box.HalfExtents, math.Vec3d{X: 0.5, Y: 0.5, Z: 0.5}, tol) {
		t.Errorf("half extents = %+v", box.HalfExtents)
	}
	if !nearVec(box.Center, math.Vec3d{X: 0.5, Y: 0.5, Z: 0.5}, tol) {
		t.Errorf("center = %+v", box.Center)
	}
}

func TestFitOrientedBox(t *testing.T) {
	rot := math.Mat3{
		{X: gomath.Cos(0.5), Y: gomath.Sin(0.5)},
		{X: -gomath.Sin(0.5), Y: gomath.Cos(0.5)},
		{Z: 1},
	}
	var pts []math.Vec3d
	for _, x := range []float64{-2, 2} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-0.5, 0.5} {
				pts = append(pts, rot.MulVec(math.Vec3d{X: x, Y: y, Z: z}).Add(math.Vec3d{X: 3}))
			}
		}
	}

	obb := FitOrientedBox(pts)
	if !near(obb.Volume(), 8, 1e-6) {
		t.Errorf("volume = %f, want 8", obb.Volume())
	}
	if !nearVec(obb.Center, math.Vec3d{X: 3}, 1e-6) {
		t.Errorf("center = %+v", obb.Center)
	}
	aabb := FitBox(pts)
	if aabbVol := 8 * aabb.HalfExtents.X * aabb.HalfExtents.Y * aabb.HalfExtents.Z; aabbVol <= obb.Volume() {
		t.Errorf("oriented box (%f) not tighter than axis-aligned (%f)", obb.Volume(), aabbVol)
	}
	lo, hi := obb.Bounds()
	for _, p := range pts {
		if p.X < lo.X-1e-6 || p.Y < lo.Y-1e-6 || p.X > hi.X+1e-6 || p.Y > hi.Y+1e-6 {
			t.Errorf("point %+v outside bounds", p)
		}
	}
}

func TestFitSphere(t *testing.T) {
	s, err := FitSphere(unitCube())
	if err != nil {
		t.Fatal(err)
	}
	if !near(s.Radius, gomath.Sqrt(3)/2, tol) {
		t.Errorf("radius = %f, want %f", s.Radius, gomath.Sqrt(3)/2)
	}
	if !nearVec(s.Center, math.Vec3d{X: 0.5, Y: 0.5, Z: 0.5}, tol) {
		t.Errorf("center = %+v", s.Center)
	}

	// Ritter never loses points.
	pts := fibonacciSphere(50)
	r := ritterSphere(pts)
	for _, p := range pts {
		if p.Sub(r.Center).Length() > r.Radius+tol {
			t.Errorf("point %+v outside Ritter sphere", p)
		}
	}
}

func TestFitSphereDegenerate(t *testing.T) {
	pts := []math.Vec3d{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}
	if _, err := FitSphere(pts); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	if _, err := Fit("collision_geo_simple_sphere", split.InvisibleSimple, Input{Points: pts}, DefaultOptions()); !errors.Is(err, ErrDegenerate) {
		t.Errorf("Fit() expected ErrDegenerate, got %v", err)
	}
}

func TestFitCapsule(t *testing.T) {
	pts := cylinder(0.5, 4)
	c, err := FitCapsule(pts)
	if err != nil {
		t.Fatal(err)
	}
	if !nearVec(c.Axis, math.Vec3d{X: 1}, tol) {
		t.Errorf("axis = %+v, want X", c.Axis)
	}
	if !near(c.Radius, 0.5, 1e-9) {
		t.Errorf("radius = %f, want 0.5", c.Radius)
	}
	if !near(c.HalfLength, 2, 1e-6) {
		t.Errorf("half length = %f, want 2", c.HalfLength)
	}
	for _, p := range pts {
		if !c.Contains(p, 1e-9) {
			t.Errorf("point %+v outside capsule", p)
		}
	}
	z := rotatedZ(c.Rotation)
	if !nearVec(z, c.Axis, 1e-5) {
		t.Errorf("rotation maps Z to %+v, want %+v", z, c.Axis)
	}
}

// rotatedZ returns local Z under q, the third column of its matrix.
func rotatedZ(q math.Quat) math.Vec3d {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)
	return math.Vec3d{X: 2 * (x*z + w*y), Y: 2 * (y*z - w*x), Z: 1 - 2*(x*x+y*y)}
}

func TestFitCapsuleFloorsLength(t *testing.T) {
	// A sphere-like cloud: the radius alone covers the axis extent.
	c, err := FitCapsule(unitCube())
	if err != nil {
		t.Fatal(err)
	}
	if c.HalfLength < minHalfLength {
		t.Errorf("half length %g below floor", c.HalfLength)
	}
	for _, p := range unitCube() {
		if !c.Contains(p, 1e-9) {
			t.Errorf("point %+v outside capsule", p)
		}
	}
}

func TestFitCapsuleDegenerate(t *testing.T) {
	line := []math.Vec3d{{}, {X: 1}, {X: 2}}
	if _, err := FitCapsule(line); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
}

func TestFitOrientedCapsule(t *testing.T) {
	rot := math.Mat3{
		{X: gomath.Sqrt2 / 2, Y: gomath.Sqrt2 / 2},
		{X: -gomath.Sqrt2 / 2, Y: gomath.Sqrt2 / 2},
		{Z: 1},
	}
	var pts []math.Vec3d
	for _, p := range cylinder(0.5, 6) {
		pts = append(pts, rot.MulVec(p))
	}
	c, err := FitOrientedCapsule(pts)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Vec3d{X: 1, Y: 1}.Normalize()
	if gomath.Abs(c.Axis.Dot(want)) < 0.999 {
		t.Errorf("axis = %+v, want ±%+v", c.Axis, want)
	}
	if !near(c.Radius, 0.5, 1e-6) {
		t.Errorf("radius = %f, want 0.5", c.Radius)
	}
	if !c.Oriented {
		t.Error("Oriented not set")
	}
	for _, p := range pts {
		if !c.Contains(p, 1e-6) {
			t.Errorf("point %+v outside capsule", p)
		}
	}
}

func TestKDop6CubeVolume(t *testing.T) {
	k, err := FitKDop(unitCube(), KDop6, DefaultOptions().KDopInflation)
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Faces) != 6 {
		t.Errorf("faces = %d, want 6", len(k.Faces))
	}
	if v := k.Volume(); gomath.Abs(v-1) > 0.01 {
		t.Errorf("volume = %f, want within 1%% of 1", v)
	}
	if v := k.Hull.Volume(); gomath.Abs(v-1) > 0.01 {
		t.Errorf("hull volume = %f, want within 1%% of 1", v)
	}
}

func TestKDop26Cube(t *testing.T) {
	k, err := FitKDop(unitCube(), KDop26, DefaultOptions().KDopInflation)
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Faces) < minKDopFaces || len(k.Planes) != 26 {
		t.Errorf("faces = %d planes = %d", len(k.Faces), len(k.Planes))
	}
	if v := k.Volume(); v < 1 || v > 1.01 {
		t.Errorf("volume = %f, want in [1, 1.01]", v)
	}
	lo, hi := k.Bounds()
	if lo.X > 0 || hi.X < 1 {
		t.Errorf("bounds %+v..%+v do not cover the cube", lo, hi)
	}
}

func TestKDopDegenerate(t *testing.T) {
	flat := []math.Vec3d{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	if _, err := FitKDop(flat, KDop6, 0); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	// Inflation turns the same points into a thin slab.
	if _, err := FitKDop(flat, KDop6, 1e-3); err != nil {
		t.Errorf("inflated flat k-DOP failed: %v", err)
	}
}

func TestQuickHullCube(t *testing.T) {
	pts := append(unitCube(), math.Vec3d{X: 0.5, Y: 0.5, Z: 0.5}, math.Vec3d{X: 0.2, Y: 0.7, Z: 0.1})
	h, err := quickHull(pts)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8", len(h.Vertices))
	}
	if len(h.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(h.Faces))
	}
	if !near(h.Volume(), 1, 1e-9) {
		t.Errorf("volume = %f, want 1", h.Volume())
	}
}

func TestQuickHullContainsPoints(t *testing.T) {
	pts := fibonacciSphere(200)
	pts = append(pts, math.Vec3d{X: 0.1}, math.Vec3d{Y: -0.3, Z: 0.2})
	h, err := quickHull(pts)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Vertices) != 200 {
		t.Errorf("vertices = %d, want 200", len(h.Vertices))
	}
	if v := h.Volume(); v <= 0 || v > 4*gomath.Pi/3 {
		t.Errorf("volume = %f", v)
	}
	for _, f := range h.Faces {
		a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, p := range pts {
			if n.Dot(p.Sub(a)) > 1e-7 {
				t.Fatalf("point %+v outside face %v", p, f)
			}
		}
	}
}

func TestQuickHullDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []math.Vec3d
	}{
		{"too few", []math.Vec3d{{}, {X: 1}, {Y: 1}}},
		{"coplanar", []math.Vec3d{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 0.2}}},
		{"collinear", []math.Vec3d{{}, {X: 1}, {X: 2}, {X: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FitHull(tt.pts); !errors.Is(err, ErrDegenerate) {
				t.Errorf("expected ErrDegenerate, got %v", err)
			}
		})
	}
}

func TestFitMultiHull(t *testing.T) {
	in := Input{Points: fibonacciSphere(120)}
	ch, err := FitMultiHull(in, 4, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !ch.Multi {
		t.Error("Multi not set")
	}
	if len(ch.Hulls) < 2 || len(ch.Hulls) > 4 {
		t.Errorf("hulls = %d, want 2..4", len(ch.Hulls))
	}
	for i, h := range ch.Hulls {
		if len(h.Vertices) > 16 {
			t.Errorf("hull %d has %d vertices, want <= 16", i, len(h.Vertices))
		}
		if h.Volume() <= 0 {
			t.Errorf("hull %d volume %f", i, h.Volume())
		}
	}
}

func TestFitMultiHullWithTriangles(t *testing.T) {
	// Closed cube mesh: every cut face is rebuilt from clipped triangles.
	tris := []int{
		0, 2, 6, 0, 6, 4, 1, 5, 7, 1, 7, 3,
		0, 4, 5, 0, 5, 1, 2, 3, 7, 2, 7, 6,
		0, 1, 3, 0, 3, 2, 4, 6, 7, 4, 7, 5,
	}
	ch, err := FitMultiHull(Input{Points: unitCube(), Triangles: tris}, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Hulls) != 2 {
		t.Fatalf("hulls = %d, want 2", len(ch.Hulls))
	}
	var total float64
	for _, h := range ch.Hulls {
		total += h.Volume()
	}
	if total > 1+1e-6 || total <= 0 {
		t.Errorf("total volume = %f", total)
	}
}

func TestFitMultiHullFallsBack(t *testing.T) {
	flat := []math.Vec3d{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	if _, err := FitMultiHull(Input{Points: flat}, 8, 16); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate from single-hull fallback, got %v", err)
	}

	ch, err := FitMultiHull(Input{Points: unitCube()}, 8, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Hulls) != 1 {
		t.Errorf("small hull split into %d pieces", len(ch.Hulls))
	}
}

func TestQuickHullMergesEdgeAndFacePoints(t *testing.T) {
	pts := unitCube()
	// Edge midpoints along X and face centers lie on the hull but are not
	// corners.
	for _, y := range []float64{0, 1} {
		for _, z := range []float64{0, 1} {
			pts = append(pts, math.Vec3d{X: 0.5, Y: y, Z: z})
		}
	}
	pts = append(pts,
		math.Vec3d{X: 0.5, Y: 0.5}, math.Vec3d{X: 0.5, Y: 0.5, Z: 1},
		math.Vec3d{X: 0.5, Z: 0.5}, math.Vec3d{X: 0.5, Y: 1, Z: 0.5})

	h, err := quickHull(pts)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8: %v", len(h.Vertices), h.Vertices)
	}
	if len(h.Faces) != 12 {
		t.Errorf("faces = %d, want 12", len(h.Faces))
	}
	if !near(h.Volume(), 1, 1e-9) {
		t.Errorf("volume = %f, want 1", h.Volume())
	}
}

func TestCutCubeKeepsBoxCorners(t *testing.T) {
	tris := []int{
		0, 2, 6, 0, 6, 4, 1, 5, 7, 1, 7, 3,
		0, 4, 5, 0, 5, 1, 2, 3, 7, 2, 7, 6,
		0, 1, 3, 0, 3, 2, 4, 6, 7, 4, 7, 5,
	}
	pts := unitCube()
	root := &piece{points: pts}
	for i := 0; i < len(tris); i += 3 {
		root.tris = append(root.tris, [3]math.Vec3d{pts[tris[i]], pts[tris[i+1]], pts[tris[i+2]]})
	}
	a, b, ok := root.cut()
	if !ok {
		t.Fatal("cube not cut")
	}
	for name, p := range map[string]*piece{"below": a, "above": b} {
		h := p.ensureHull()
		if h == nil {
			t.Fatalf("%s: no hull", name)
		}
		if len(h.Vertices) != 8 {
			t.Errorf("%s: %d vertices, want 8: %v", name, len(h.Vertices), h.Vertices)
		}
		if !near(h.Volume(), 0.5, 1e-9) {
			t.Errorf("%s: volume = %f, want 0.5", name, h.Volume())
		}
	}
}

func TestFarthestPointsEnclosesVolume(t *testing.T) {
	// Plain farthest-point sampling takes all four square corners.
	pts := []math.Vec3d{
		{X: -1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: 1, Y: -1},
		{Z: 0.1},
	}
	picks := farthestPoints(pts, 4)
	if len(picks) != 4 {
		t.Fatalf("picks = %v", picks)
	}
	if picks[3] != (math.Vec3d{Z: 0.1}) {
		t.Errorf("fourth pick = %+v, want the apex", picks[3])
	}
	if _, err := quickHull(picks); err != nil {
		t.Errorf("reduced hull: %v", err)
	}
}

func TestFitDispatch(t *testing.T) {
	opts := DefaultOptions()
	if _, err := Fit("main_geo", split.Normal, Input{Points: unitCube()}, opts); !errors.Is(err, ErrNotCollider) {
		t.Errorf("expected ErrNotCollider, got %v", err)
	}
	shapes, err := Fit("collision_geo", split.InvisibleComplex, Input{Points: unitCube()}, opts)
	if err != nil || shapes != nil {
		t.Errorf("complex collider = %v, %v", shapes, err)
	}
	if _, err := Fit("collision_geo_simple_box", split.InvisibleSimple, Input{}, opts); !errors.Is(err, ErrDegenerate) {
		t.Errorf("empty split: expected ErrDegenerate, got %v", err)
	}

	kinds := map[string]ShapeKind{
		"collision_geo_simple_box":     KindBox,
		"collision_geo_simple_obox":    KindOrientedBox,
		"collision_geo_simple_sphere":  KindSphere,
		"collision_geo_simple_capsule": KindCapsule,
		"collision_geo_simple_kdop18":  KindKDop,
		"collision_geo_ucx":            KindConvexHull,
		"collision_geo_ucx_multi":      KindConvexHull,
	}
	for name, want := range kinds {
		shapes, err := Fit(name, split.Classify(name), Input{Points: unitCube()}, opts)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(shapes) != 1 || shapes[0].Kind() != want {
			t.Errorf("%s: got %v, want %v", name, shapes, want)
		}
	}
}
