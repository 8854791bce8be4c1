// Package split classifies named face groups and partitions a part's wedge
// list into per-group splits with dense local vertex numbering.
package split

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Kind is the role of a split in the output.
type Kind int

// Split kinds.
const (
	Invalid Kind = iota
	Normal
	LOD
	RenderedSimple
	RenderedUCX
	RenderedComplex
	InvisibleSimple
	InvisibleUCX
	InvisibleComplex
)

// Group name prefixes. Matching is case-insensitive and the "_geo" infix of
// the collision prefixes is optional.
const (
	PrefixMain              = "main_geo"
	PrefixLOD               = "lod"
	PrefixRenderedCollision = "rendered_collision"
	PrefixCollision         = "collision"

	geoInfix     = "_geo"
	simpleSuffix = "_simple"
	ucxSuffix    = "_ucx"
)

// MainMeshKey is the destination key of the main render mesh.
const MainMeshKey = PrefixMain

var kindNames = [...]string{
	Invalid:          "invalid",
	Normal:           "normal",
	LOD:              "lod",
	RenderedSimple:   "rendered-simple",
	RenderedUCX:      "rendered-ucx",
	RenderedComplex:  "rendered-complex",
	InvisibleSimple:  "invisible-simple",
	InvisibleUCX:     "invisible-ucx",
	InvisibleComplex: "invisible-complex",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsCollider reports whether the split produces collision data.
func (k Kind) IsCollider() bool {
	return k >= RenderedSimple && k <= InvisibleComplex
}

// IsRendered reports whether the split produces renderable triangles.
func (k Kind) IsRendered() bool {
	return k == Normal || k == LOD || k == RenderedSimple || k == RenderedUCX || k == RenderedComplex
}

// IsSimple reports whether the split is fitted with an analytic shape.
func (k Kind) IsSimple() bool {
	return k == RenderedSimple || k == InvisibleSimple
}

// IsUCX reports whether the split is a convex hull collider.
func (k Kind) IsUCX() bool {
	return k == RenderedUCX || k == InvisibleUCX
}

// IsComplex reports whether the split is a complex collision mesh.
func (k Kind) IsComplex() bool {
	return k == RenderedComplex || k == InvisibleComplex
}

// Classify maps a group name to its kind. It is a pure function of the name.
func Classify(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, PrefixMain):
		return Normal
	case strings.HasPrefix(lower, PrefixLOD):
		return LOD
	case strings.HasPrefix(lower, PrefixRenderedCollision):
		return collider(lower[len(PrefixRenderedCollision):], RenderedSimple, RenderedUCX, RenderedComplex)
	case strings.HasPrefix(lower, PrefixCollision):
		return collider(lower[len(PrefixCollision):], InvisibleSimple, InvisibleUCX, InvisibleComplex)
	}
	return Invalid
}

func collider(rest string, simple, ucx, complex Kind) Kind {
	rest = strings.TrimPrefix(rest, geoInfix)
	switch {
	case strings.HasPrefix(rest, simpleSuffix):
		return simple
	case strings.HasPrefix(rest, ucxSuffix):
		return ucx
	}
	return complex
}

// MeshKey returns the destination mesh a split contributes to. Render
// splits and invisible simple or convex colliders attach to the main mesh;
// rendered colliders and invisible complex colliders get their own mesh.
func MeshKey(name string, kind Kind) string {
	switch kind {
	case Normal, LOD, InvisibleSimple, InvisibleUCX:
		return MainMeshKey
	}
	return name
}

// rank orders kinds for processing: invisible simple and convex colliders
// first, then LODs and the main mesh, then rendered and complex colliders.
var rank = map[Kind]int{
	InvisibleSimple:  0,
	InvisibleUCX:     1,
	LOD:              2,
	Normal:           3,
	RenderedSimple:   4,
	RenderedUCX:      5,
	RenderedComplex:  6,
	InvisibleComplex: 7,
}

// Sort returns the valid names in processing order along with the names
// that could not be classified. Within a kind the input order is kept,
// except LODs which are ordered by their numeric suffix.
func Sort(names []string) (ordered, invalid []string) {
	for _, n := range names {
		if Classify(n) == Invalid {
			invalid = append(invalid, n)
			continue
		}
		ordered = append(ordered, n)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ki, kj := Classify(ordered[i]), Classify(ordered[j])
		if ki != kj {
			return rank[ki] < rank[kj]
		}
		if ki == LOD {
			return naturalLess(ordered[i], ordered[j])
		}
		return false
	})
	return ordered, invalid
}

// naturalLess compares case-insensitively, treating digit runs as numbers
// so lod2 sorts before lod10.
func naturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		ra, rb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ra) && unicode.IsDigit(rb) {
			na, restA := digits(a)
			nb, restB := digits(b)
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		if ra != rb {
			return ra < rb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func digits(s string) (int, string) {
	n, i := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}
