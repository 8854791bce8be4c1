package collision

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshcook/pkg/math"
)

// Directions is a k-DOP direction set. Directions need not be unit length;
// they are normalized when planes are built.
type Directions []math.Vec3d

// minKDopFaces is the least number of faces of a closed polytope.
const minKDopFaces = 4

var axisDirections = Directions{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// Stock direction sets.
var (
	KDop6   = axisDirections
	KDop10X = join(axisDirections, Directions{{Y: 1, Z: 1}, {Y: 1, Z: -1}, {Y: -1, Z: 1}, {Y: -1, Z: -1}})
	KDop10Y = join(axisDirections, Directions{{X: 1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: 1}, {X: -1, Z: -1}})
	KDop10Z = join(axisDirections, Directions{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}})
	KDop18  = join(KDop10X, Directions{{X: 1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: 1}, {X: -1, Z: -1}},
		Directions{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}})
	KDop26 = join(KDop18, Directions{
		{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: -1},
	})
)

// namedDirections maps split name keywords to direction sets. Longer
// keywords come first so kdop10x is not read as a different set.
var namedDirections = []struct {
	keyword string
	dirs    Directions
}{
	{"kdop10x", KDop10X},
	{"kdop10y", KDop10Y},
	{"kdop10z", KDop10Z},
	{"kdop18", KDop18},
	{"kdop26", KDop26},
	{"kdop6", KDop6},
}

func join(sets ...Directions) Directions {
	var out Directions
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// FitKDop bounds points by one plane per direction, pushed out by
// inflation, and intersects the half-spaces. Every plane is turned into a
// face by clipping a large square on it against all other planes; planes
// whose square clips away entirely are redundant. All scratch state is
// local to the call.
func FitKDop(points []math.Vec3d, dirs Directions, inflation float64) (*KDop, error) {
	if len(dirs) == 0 {
		dirs = KDop26
	}
	planes := make([]Plane, 0, len(dirs))
	for _, d := range dirs {
		n := d.Normalize()
		maxDist := gomath.Inf(-1)
		for _, p := range points {
			maxDist = gomath.Max(maxDist, n.Dot(p))
		}
		planes = append(planes, Plane{Normal: n, Dist: maxDist + inflation})
	}

	lo, hi := bounds(points)
	size := 4 * (hi.Sub(lo).Length() + lo.Length() + hi.Length() + 1)
	eps := tolerance(points)

	var faces [][]math.Vec3d
	for i, pl := range planes {
		poly := planeSquare(pl, size)
		for j, other := range planes {
			if i == j {
				continue
			}
			poly = clipPolygon(poly, other, eps)
			if len(poly) < 3 {
				break
			}
		}
		if len(poly) >= 3 && polygonArea(poly) > eps*eps {
			faces = append(faces, poly)
		}
	}
	if len(faces) < minKDopFaces {
		return nil, fmt.Errorf("%w: k-DOP has %d faces", ErrDegenerate, len(faces))
	}

	var verts []math.Vec3d
	for _, f := range faces {
		verts = append(verts, f...)
	}
	verts = dedupe(verts, gomath.Max(eps, inflation*1e-3))

	k := &KDop{Name: fmt.Sprintf("kdop%d", len(dirs)), Planes: planes, Faces: faces}
	hull, err := quickHull(verts)
	if err != nil {
		return nil, fmt.Errorf("k-DOP hull: %w", err)
	}
	k.Hull = hull
	return k, nil
}

// planeSquare returns a square of the given half size lying on pl, wound
// counter-clockwise around the plane normal.
func planeSquare(pl Plane, size float64) []math.Vec3d {
	u := pl.Normal.AnyPerpendicular()
	v := pl.Normal.Cross(u)
	o := pl.Normal.Scale(pl.Dist)
	u, v = u.Scale(size), v.Scale(size)
	return []math.Vec3d{
		o.Sub(u).Sub(v),
		o.Add(u).Sub(v),
		o.Add(u).Add(v),
		o.Sub(u).Add(v),
	}
}

// clipPolygon keeps the part of poly inside pl (Sutherland-Hodgman).
func clipPolygon(poly []math.Vec3d, pl Plane, eps float64) []math.Vec3d {
	if len(poly) == 0 {
		return nil
	}
	out := make([]math.Vec3d, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevSide := pl.Side(prev)
	for _, cur := range poly {
		curSide := pl.Side(cur)
		switch {
		case curSide <= eps:
			if prevSide > eps {
				out = append(out, intersect(prev, cur, prevSide, curSide))
			}
			out = append(out, cur)
		case prevSide <= eps:
			out = append(out, intersect(prev, cur, prevSide, curSide))
		}
		prev, prevSide = cur, curSide
	}
	return out
}

func intersect(a, b math.Vec3d, da, db float64) math.Vec3d {
	t := da / (da - db)
	return a.Add(b.Sub(a).Scale(t))
}

func polygonArea(poly []math.Vec3d) float64 {
	var n math.Vec3d
	for i := 1; i+1 < len(poly); i++ {
		n = n.Add(poly[i].Sub(poly[0]).Cross(poly[i+1].Sub(poly[0])))
	}
	return n.Length() / 2
}
