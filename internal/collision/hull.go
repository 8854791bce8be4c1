package collision

import (
	"fmt"

	"github.com/Faultbox/meshcook/pkg/math"
)

// FitHull returns the convex hull of points as a single-hull collider.
func FitHull(points []math.Vec3d) (*ConvexHull, error) {
	h, err := quickHull(points)
	if err != nil {
		return nil, err
	}
	return &ConvexHull{Hulls: []Hull{h}}, nil
}

type hullFace struct {
	v       [3]int
	normal  math.Vec3d
	offset  float64
	outside []int
	dead    bool
}

func (f *hullFace) dist(p math.Vec3d) float64 {
	return f.normal.Dot(p) - f.offset
}

func newHullFace(pts []math.Vec3d, a, b, c int) *hullFace {
	n := pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[a])).Normalize()
	return &hullFace{v: [3]int{a, b, c}, normal: n, offset: n.Dot(pts[a])}
}

type edge struct{ a, b int }

// quickHull returns the convex hull of points with only corner vertices.
func quickHull(points []math.Vec3d) (Hull, error) {
	h, err := buildHull(points)
	if err != nil {
		return Hull{}, err
	}
	// Points on a hull edge or inside a flat face survive the build when
	// they are within tolerance of it.
	if corners := h.corners(); len(corners) >= 4 && len(corners) < len(h.Vertices) {
		if merged, err := buildHull(corners); err == nil {
			return merged, nil
		}
	}
	return h, nil
}

// buildHull builds the convex hull of points incrementally: start from a
// tetrahedron of extreme points, then repeatedly add the farthest outside
// point of some face and replace the faces it can see.
func buildHull(points []math.Vec3d) (Hull, error) {
	if len(points) < 4 {
		return Hull{}, fmt.Errorf("%w: %d points, need 4", ErrDegenerate, len(points))
	}
	eps := tolerance(points)

	i0, i1, i2, i3, ok := initialSimplex(points, eps)
	if !ok {
		return Hull{}, fmt.Errorf("%w: points are coplanar", ErrDegenerate)
	}

	faces := []*hullFace{
		newHullFace(points, i0, i1, i2),
		newHullFace(points, i0, i2, i3),
		newHullFace(points, i0, i3, i1),
		newHullFace(points, i1, i3, i2),
	}
	// Orient outward: the fourth vertex must be behind the first face.
	if faces[0].dist(points[i3]) > 0 {
		faces = []*hullFace{
			newHullFace(points, i0, i2, i1),
			newHullFace(points, i0, i3, i2),
			newHullFace(points, i0, i1, i3),
			newHullFace(points, i1, i2, i3),
		}
	}

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i := range points {
		if !used[i] {
			assignOutside(faces, points, i, eps)
		}
	}

	for {
		var face *hullFace
		for _, f := range faces {
			if !f.dead && len(f.outside) > 0 {
				face = f
				break
			}
		}
		if face == nil {
			break
		}

		eye, far := -1, 0.0
		for _, i := range face.outside {
			if d := face.dist(points[i]); d > far {
				eye, far = i, d
			}
		}
		p := points[eye]

		var (
			visible  []*hullFace
			edges    = make(map[edge]bool)
			orphaned []int
		)
		for _, f := range faces {
			if !f.dead && f.dist(p) > eps {
				visible = append(visible, f)
				f.dead = true
				for k := 0; k < 3; k++ {
					edges[edge{f.v[k], f.v[(k+1)%3]}] = true
				}
				orphaned = append(orphaned, f.outside...)
				f.outside = nil
			}
		}

		var created []*hullFace
		for _, f := range visible {
			for k := 0; k < 3; k++ {
				e := edge{f.v[k], f.v[(k+1)%3]}
				if edges[edge{e.b, e.a}] {
					continue
				}
				created = append(created, newHullFace(points, e.a, e.b, eye))
			}
		}
		faces = append(created, faces...)
		for _, i := range orphaned {
			if i != eye {
				assignOutside(faces, points, i, eps)
			}
		}
	}

	return compactHull(points, faces), nil
}

func initialSimplex(points []math.Vec3d, eps float64) (int, int, int, int, bool) {
	// Widest pair among the axis extremes.
	var i0, i1 int
	best := -1.0
	for axis := 0; axis < 3; axis++ {
		lo, hi := 0, 0
		for i, p := range points {
			if p.At(axis) < points[lo].At(axis) {
				lo = i
			}
			if p.At(axis) > points[hi].At(axis) {
				hi = i
			}
		}
		if d := points[hi].Sub(points[lo]).LengthSq(); d > best {
			i0, i1, best = lo, hi, d
		}
	}
	if best <= eps*eps {
		return 0, 0, 0, 0, false
	}

	// Farthest from the line.
	dir := points[i1].Sub(points[i0]).Normalize()
	i2, far := -1, eps
	for i, p := range points {
		if d, _ := lineDistance(p, points[i0], dir); d > far {
			i2, far = i, d
		}
	}
	if i2 < 0 {
		return 0, 0, 0, 0, false
	}

	// Farthest from the plane.
	n := points[i1].Sub(points[i0]).Cross(points[i2].Sub(points[i0])).Normalize()
	i3, far := -1, eps
	for i, p := range points {
		if d := abs(n.Dot(p.Sub(points[i0]))); d > far {
			i3, far = i, d
		}
	}
	if i3 < 0 {
		return 0, 0, 0, 0, false
	}
	return i0, i1, i2, i3, true
}

func assignOutside(faces []*hullFace, points []math.Vec3d, i int, eps float64) {
	for _, f := range faces {
		if !f.dead && f.dist(points[i]) > eps {
			f.outside = append(f.outside, i)
			return
		}
	}
}

// compactHull renumbers the live faces onto the vertices they use.
func compactHull(points []math.Vec3d, faces []*hullFace) Hull {
	var h Hull
	remap := make(map[int]int)
	for _, f := range faces {
		if f.dead {
			continue
		}
		var tri [3]int
		for k, v := range f.v {
			idx, ok := remap[v]
			if !ok {
				idx = len(h.Vertices)
				remap[v] = idx
				h.Vertices = append(h.Vertices, points[v])
			}
			tri[k] = idx
		}
		h.Faces = append(h.Faces, tri)
	}
	return h
}

// planarTol is the normal deviation below which two hull faces share a
// plane.
const planarTol = 1e-6

// corners returns the hull vertices whose incident face planes meet in a
// point. Vertices along a straight edge or inside a flat face are left out.
func (h Hull) corners() []math.Vec3d {
	incident := make([][]math.Vec3d, len(h.Vertices))
	for _, f := range h.Faces {
		a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
		e1, e2 := b.Sub(a), c.Sub(a)
		cr := e1.Cross(e2)
		// Slivers have no reliable normal.
		if cr.LengthSq() <= planarTol*planarTol*e1.LengthSq()*e2.LengthSq() {
			continue
		}
		n := cr.Normalize()
		for _, v := range f {
			incident[v] = appendPlane(incident[v], n)
		}
	}

	var out []math.Vec3d
	for i, normals := range incident {
		if spansSpace(normals) {
			out = append(out, h.Vertices[i])
		}
	}
	return out
}

func appendPlane(normals []math.Vec3d, n math.Vec3d) []math.Vec3d {
	for _, m := range normals {
		if m.Dot(n) > 1-planarTol {
			return normals
		}
	}
	return append(normals, n)
}

// spansSpace reports whether three of the normals are linearly independent.
func spansSpace(normals []math.Vec3d) bool {
	for i := 0; i < len(normals); i++ {
		for j := i + 1; j < len(normals); j++ {
			c := normals[i].Cross(normals[j])
			if c.LengthSq() <= planarTol*planarTol {
				continue
			}
			for k := j + 1; k < len(normals); k++ {
				if abs(c.Dot(normals[k])) > planarTol {
					return true
				}
			}
		}
	}
	return false
}
