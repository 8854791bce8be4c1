package split

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshcook/internal/geo"
)

// Partition errors.
var (
	ErrInvalidGroup   = errors.New("group name does not match any split prefix")
	ErrMalformedSplit = errors.New("malformed split")
	ErrMissingGroup   = errors.New("group not present on part")
)

// Excluded marks a wedge that does not belong to a split.
const Excluded = -1

// Group is one split of a part.
type Group struct {
	Name string
	Kind Kind

	// FaceIndices lists the member faces in ascending order.
	FaceIndices []int

	// VertexList has one entry per part wedge: the point index for member
	// wedges, Excluded otherwise.
	VertexList []int

	ValidWedges      int
	FirstValidVertex int
	FirstValidFace   int

	// Remaining is set on the split built from faces no named group claimed.
	Remaining bool
}

// MeshKey returns the destination mesh key of the split.
func (g *Group) MeshKey() string {
	return MeshKey(g.Name, g.Kind)
}

// Partition builds one split per name (already in processing order) plus a
// split for the faces no named group claims. Splits that cannot be built
// are skipped and reported; the rest are unaffected.
func Partition(part geo.Part, names []string) ([]Group, []error) {
	var (
		groups  []Group
		issues  []error
		wedges  = part.VertexList()
		faces   = len(wedges) / 3
		points  = part.PointCount()
		claimed = make([]bool, faces)
		main    = -1
	)

	if len(wedges)%3 != 0 {
		issues = append(issues, fmt.Errorf("part %s: %w: %d wedges", part.Name(), ErrMalformedSplit, len(wedges)))
	}

	for _, name := range names {
		kind := Classify(name)
		if kind == Invalid {
			issues = append(issues, fmt.Errorf("group %s: %w", name, ErrInvalidGroup))
			continue
		}
		member, ok := part.GroupMembership(name)
		if !ok {
			issues = append(issues, fmt.Errorf("group %s: %w", name, ErrMissingGroup))
			continue
		}

		g := newGroup(name, kind, len(wedges))
		for f := 0; f < faces && f < len(member); f++ {
			if !member[f] {
				continue
			}
			claimed[f] = true
			g.addFace(f, wedges, points)
		}
		if err := g.validate(); err != nil {
			issues = append(issues, err)
			continue
		}
		if kind == Normal && main < 0 {
			main = len(groups)
		}
		groups = append(groups, g)
	}

	rest := newGroup(MainMeshKey, Normal, len(wedges))
	rest.Remaining = true
	for f := 0; f < faces; f++ {
		if !claimed[f] {
			rest.addFace(f, wedges, points)
		}
	}
	if rest.ValidWedges == 0 && len(rest.FaceIndices) == 0 {
		return groups, issues
	}
	if err := rest.validate(); err != nil {
		return groups, append(issues, err)
	}

	if main >= 0 {
		// A named main group already exists: unclaimed faces join it.
		groups[main].merge(&rest)
		return groups, issues
	}
	return append(groups, rest), issues
}

func newGroup(name string, kind Kind, wedges int) Group {
	g := Group{
		Name:             name,
		Kind:             kind,
		VertexList:       make([]int, wedges),
		FirstValidVertex: -1,
		FirstValidFace:   -1,
	}
	for i := range g.VertexList {
		g.VertexList[i] = Excluded
	}
	return g
}

// addFace copies the point indices of face f. Wedges that reference a
// point outside the part stay excluded.
func (g *Group) addFace(f int, wedges []int, points int) {
	g.FaceIndices = append(g.FaceIndices, f)
	for w := 3 * f; w < 3*f+3; w++ {
		p := wedges[w]
		if p < 0 || p >= points {
			continue
		}
		g.VertexList[w] = p
		g.ValidWedges++
		if g.FirstValidVertex < 0 {
			g.FirstValidVertex = w
			g.FirstValidFace = f
		}
	}
}

func (g *Group) validate() error {
	if g.ValidWedges == 0 {
		return fmt.Errorf("group %s: %w: no valid wedges", g.Name, ErrMalformedSplit)
	}
	if g.ValidWedges%3 != 0 {
		return fmt.Errorf("group %s: %w: %d valid wedges", g.Name, ErrMalformedSplit, g.ValidWedges)
	}
	return nil
}

func (g *Group) merge(o *Group) {
	for w, p := range o.VertexList {
		if p != Excluded {
			g.VertexList[w] = p
		}
	}
	g.FaceIndices = mergeSorted(g.FaceIndices, o.FaceIndices)
	g.ValidWedges += o.ValidWedges
	if o.FirstValidVertex >= 0 && (g.FirstValidVertex < 0 || o.FirstValidVertex < g.FirstValidVertex) {
		g.FirstValidVertex = o.FirstValidVertex
		g.FirstValidFace = o.FirstValidFace
	}
}

func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
