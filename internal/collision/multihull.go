package collision

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshcook/internal/logger"
	"github.com/Faultbox/meshcook/pkg/math"
)

type piece struct {
	points []math.Vec3d
	tris   [][3]math.Vec3d
	hull   *Hull
	final  bool
}

// FitMultiHull approximates a convex decomposition. The piece whose hull
// has the most vertices above maxVerts is cut through its centroid across
// its principal axis until every hull is small enough or maxCount pieces
// exist. Triangles, when given, are clipped along the cut so each half
// stays closed. Each hull is then reduced to at most maxVerts vertices; a
// hull whose reduction is degenerate is kept whole. When no piece yields
// a hull, the single hull of all points is returned.
func FitMultiHull(in Input, maxCount, maxVerts int) (*ConvexHull, error) {
	if maxCount < 1 {
		maxCount = 1
	}
	if maxVerts < 4 {
		maxVerts = 4
	}

	root := &piece{points: in.Points}
	for t := 0; t+2 < len(in.Triangles); t += 3 {
		a, b, c := in.Triangles[t], in.Triangles[t+1], in.Triangles[t+2]
		if a < len(in.Points) && b < len(in.Points) && c < len(in.Points) {
			root.tris = append(root.tris, [3]math.Vec3d{in.Points[a], in.Points[b], in.Points[c]})
		}
	}
	pieces := []*piece{root}

	for len(pieces) < maxCount {
		pick := -1
		most := maxVerts
		for i, p := range pieces {
			if p.final {
				continue
			}
			h := p.ensureHull()
			if h != nil && len(h.Vertices) > most {
				pick, most = i, len(h.Vertices)
			}
		}
		if pick < 0 {
			break
		}
		a, b, ok := pieces[pick].cut()
		if !ok {
			pieces[pick].final = true
			continue
		}
		pieces[pick] = a
		pieces = append(pieces, b)
	}

	out := &ConvexHull{Multi: true}
	for i, p := range pieces {
		h := p.ensureHull()
		if h == nil {
			logger.Warn("hull piece dropped",
				zap.Int("piece", i), zap.Int("points", len(p.points)))
			continue
		}
		if len(h.Vertices) > maxVerts {
			reduced, err := quickHull(farthestPoints(h.Vertices, maxVerts))
			if err != nil {
				logger.Warn("hull not reduced",
					zap.Int("piece", i), zap.Int("vertices", len(h.Vertices)), zap.Error(err))
			} else {
				h = &reduced
			}
		}
		out.Hulls = append(out.Hulls, *h)
	}
	if len(out.Hulls) == 0 {
		return FitHull(in.Points)
	}
	return out, nil
}

func (p *piece) ensureHull() *Hull {
	if p.hull == nil && !p.final {
		h, err := quickHull(p.points)
		if err != nil {
			p.final = true
			return nil
		}
		p.hull = &h
	}
	return p.hull
}

// cut splits the piece by the plane through its centroid normal to its
// principal axis.
func (p *piece) cut() (*piece, *piece, bool) {
	cov, c := math.Covariance(p.points)
	_, vecs := math.SymmetricEigen(cov)
	n := vecs[0].Normalize()
	if n.LengthSq() == 0 {
		return nil, nil, false
	}
	eps := tolerance(p.points)
	below := Plane{Normal: n, Dist: n.Dot(c)}
	above := Plane{Normal: n.Neg(), Dist: -n.Dot(c)}

	var hasBelow, hasAbove bool
	for _, q := range p.points {
		s := below.Side(q)
		hasBelow = hasBelow || s < -eps
		hasAbove = hasAbove || s > eps
	}
	if !hasBelow || !hasAbove {
		return nil, nil, false
	}

	a, b := &piece{}, &piece{}
	if len(p.tris) > 0 {
		for _, t := range p.tris {
			poly := t[:]
			a.addPolygon(clipPolygon(poly, below, eps))
			b.addPolygon(clipPolygon(poly, above, eps))
		}
		a.points = uniquePoints(a.tris)
		b.points = uniquePoints(b.tris)
	} else {
		for _, q := range p.points {
			s := below.Side(q)
			if s <= eps {
				a.points = append(a.points, q)
			}
			if s >= -eps {
				b.points = append(b.points, q)
			}
		}
	}
	if len(a.points) < 4 || len(b.points) < 4 {
		return nil, nil, false
	}
	return a, b, true
}

func (p *piece) addPolygon(poly []math.Vec3d) {
	for i := 1; i+1 < len(poly); i++ {
		p.tris = append(p.tris, [3]math.Vec3d{poly[0], poly[i], poly[i+1]})
	}
}

func uniquePoints(tris [][3]math.Vec3d) []math.Vec3d {
	seen := make(map[math.Vec3d]bool)
	var out []math.Vec3d
	for _, t := range tris {
		for _, v := range t {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// farthestPoints picks n points by farthest-point sampling, starting from
// the point farthest from the centroid. The third pick is kept off the line
// of the first two and the fourth off their plane, so the picks enclose a
// volume whenever the input does.
func farthestPoints(points []math.Vec3d, n int) []math.Vec3d {
	if len(points) <= n {
		return points
	}
	c := centroid(points)
	first, far := 0, -1.0
	for i, p := range points {
		if d := p.Sub(c).LengthSq(); d > far {
			first, far = i, d
		}
	}

	eps := tolerance(points)
	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = p.Sub(points[first]).LengthSq()
	}
	out := []math.Vec3d{points[first]}
	for len(out) < n {
		next, best := -1, 0.0
		for i, d := range dist {
			if d > best && !flatWith(out, points[i], eps) {
				next, best = i, d
			}
		}
		if next < 0 {
			break
		}
		out = append(out, points[next])
		for i, p := range points {
			if d := p.Sub(points[next]).LengthSq(); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return out
}

// flatWith reports whether adding p to the first picks leaves them
// collinear (two picks) or coplanar (three picks).
func flatWith(picks []math.Vec3d, p math.Vec3d, eps float64) bool {
	switch len(picks) {
	case 2:
		d, _ := lineDistance(p, picks[0], picks[1].Sub(picks[0]).Normalize())
		return d <= eps
	case 3:
		n := picks[1].Sub(picks[0]).Cross(picks[2].Sub(picks[0])).Normalize()
		return abs(n.Dot(p.Sub(picks[0]))) <= eps
	}
	return false
}
