package split

// RemapTable renumbers the points a split uses into a dense local range.
type RemapTable struct {
	// Local maps an original point index to its local index, or -1.
	Local []int
	// Needed maps a local index back to the original point index.
	Needed []int
	// Triangles holds local indices three per face, wound (a, c, b).
	Triangles []int
	// Faces holds the source face of each triangle.
	Faces []int
	// Dropped counts faces skipped for referencing invalid points.
	Dropped int
}

// TriangleCount returns the number of emitted triangles.
func (r *RemapTable) TriangleCount() int {
	return len(r.Triangles) / 3
}

// Remap numbers the split's points in first-appearance order and emits the
// triangle buffer with the second and third corners swapped.
func Remap(g *Group, pointCount int) RemapTable {
	r := RemapTable{
		Local:     make([]int, pointCount),
		Needed:    make([]int, 0, g.ValidWedges),
		Triangles: make([]int, 0, g.ValidWedges),
		Faces:     make([]int, 0, g.ValidWedges/3),
	}
	for i := range r.Local {
		r.Local[i] = -1
	}

	list := g.VertexList
	for w := 0; w+2 < len(list); w += 3 {
		a, b, c := list[w], list[w+1], list[w+2]
		if a == Excluded && b == Excluded && c == Excluded {
			continue
		}
		if !inRange(a, pointCount) || !inRange(b, pointCount) || !inRange(c, pointCount) {
			r.Dropped++
			continue
		}
		la, lb, lc := r.local(a), r.local(b), r.local(c)
		r.Triangles = append(r.Triangles, la, lc, lb)
		r.Faces = append(r.Faces, w/3)
	}
	return r
}

func (r *RemapTable) local(p int) int {
	if l := r.Local[p]; l >= 0 {
		return l
	}
	l := len(r.Needed)
	r.Local[p] = l
	r.Needed = append(r.Needed, p)
	return l
}

func inRange(p, n int) bool {
	return p >= 0 && p < n
}
