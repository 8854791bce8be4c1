package collision

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/meshcook/pkg/math"
)

// FitBox returns the axis-aligned bounds of points.
func FitBox(points []math.Vec3d) *Box {
	lo, hi := bounds(points)
	return &Box{
		Center:      lo.Add(hi).Scale(0.5),
		HalfExtents: hi.Sub(lo).Scale(0.5),
	}
}

// FitOrientedBox searches for a small-volume oriented box. Candidate frames
// come from the world axes, the principal axes, and for every convex hull
// face the minimum-area rectangle of the hull projected onto that face.
func FitOrientedBox(points []math.Vec3d) *OrientedBox {
	frames := []math.Mat3{math.Identity3()}
	_, pca := math.SymmetricEigen(covariance(points))
	frames = append(frames, pca.Orthonormalize())

	hullPoints := points
	if h, err := quickHull(points); err == nil {
		hullPoints = h.Vertices
		frames = append(frames, faceFrames(h)...)
	}

	var best *OrientedBox
	for _, f := range frames {
		box := boxInFrame(hullPoints, f)
		if best == nil || box.Volume() < best.Volume()-1e-12 {
			best = box
		}
	}
	best.Rotation = best.Axes.Quat()
	return best
}

func covariance(points []math.Vec3d) [3][3]float64 {
	c, _ := math.Covariance(points)
	return c
}

// boxInFrame returns the box aligned with frame that bounds points.
func boxInFrame(points []math.Vec3d, frame math.Mat3) *OrientedBox {
	lo := math.Vec3d{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)}
	hi := lo.Neg()
	for _, p := range points {
		l := frame.TransposeMulVec(p)
		lo = lo.Min(l)
		hi = hi.Max(l)
	}
	return &OrientedBox{
		Center:      frame.MulVec(lo.Add(hi).Scale(0.5)),
		HalfExtents: hi.Sub(lo).Scale(0.5),
		Axes:        frame,
	}
}

// faceFrames returns, per distinct hull face normal, the frame whose
// in-plane axes hold the minimum-area bounding rectangle of the hull.
func faceFrames(h Hull) []math.Mat3 {
	var (
		frames  []math.Mat3
		normals []math.Vec3d
	)
	for _, f := range h.Faces {
		a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		if n.LengthSq() == 0 || seenDirection(normals, n) {
			continue
		}
		normals = append(normals, n)

		u := n.AnyPerpendicular()
		v := n.Cross(u)
		pts := make([]vec2, len(h.Vertices))
		for i, p := range h.Vertices {
			pts[i] = vec2{p.Dot(u), p.Dot(v)}
		}
		dx, dy := minAreaRect(pts)
		x := u.Scale(dx).Add(v.Scale(dy)).Normalize()
		frames = append(frames, math.Mat3{x, n.Cross(x), n}.Orthonormalize())
	}
	return frames
}

func seenDirection(dirs []math.Vec3d, n math.Vec3d) bool {
	for _, d := range dirs {
		if abs(d.Dot(n)) > 1-1e-9 {
			return true
		}
	}
	return false
}

type vec2 struct{ x, y float64 }

func cross2(o, a, b vec2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// hull2 returns the 2D convex hull in counter-clockwise order (monotone chain).
func hull2(pts []vec2) []vec2 {
	p := append([]vec2(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].x != p[j].x {
			return p[i].x < p[j].x
		}
		return p[i].y < p[j].y
	})
	if len(p) < 3 {
		return p
	}
	out := make([]vec2, 0, 2*len(p))
	for _, q := range p {
		for len(out) >= 2 && cross2(out[len(out)-2], out[len(out)-1], q) <= 0 {
			out = out[:len(out)-1]
		}
		out = append(out, q)
	}
	lower := len(out) + 1
	for i := len(p) - 2; i >= 0; i-- {
		q := p[i]
		for len(out) >= lower && cross2(out[len(out)-2], out[len(out)-1], q) <= 0 {
			out = out[:len(out)-1]
		}
		out = append(out, q)
	}
	return out[:len(out)-1]
}

// minAreaRect returns the edge direction of the 2D hull whose aligned
// bounding rectangle has the least area.
func minAreaRect(pts []vec2) (float64, float64) {
	h := hull2(pts)
	bestX, bestY, bestArea := 1.0, 0.0, gomath.Inf(1)
	for i := range h {
		j := (i + 1) % len(h)
		ex, ey := h[j].x-h[i].x, h[j].y-h[i].y
		l := gomath.Hypot(ex, ey)
		if l == 0 {
			continue
		}
		ex, ey = ex/l, ey/l
		minU, maxU := gomath.Inf(1), gomath.Inf(-1)
		minV, maxV := gomath.Inf(1), gomath.Inf(-1)
		for _, q := range h {
			u := q.x*ex + q.y*ey
			v := -q.x*ey + q.y*ex
			minU, maxU = gomath.Min(minU, u), gomath.Max(maxU, u)
			minV, maxV = gomath.Min(minV, v), gomath.Max(maxV, v)
		}
		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestX, bestY, bestArea = ex, ey, area
		}
	}
	return bestX, bestY
}
