package geo

import "fmt"

// Group is a named set of faces.
type Group struct {
	Name  string `yaml:"name"`
	Faces []int  `yaml:"faces"`
}

// MemoryPart is an in-memory Part. It backs tests, fixtures and the CLI.
// Queries counts Attribute calls so callers can verify caching.
type MemoryPart struct {
	PartName      string
	Points        int
	Vertices      []int
	Groups        []Group
	FaceMaterials []int

	attrs   map[attrKey]AttributeData
	Queries int
}

type attrKey struct {
	name  string
	owner Owner
}

// NewMemoryPart creates a part from a wedge-to-point list.
func NewMemoryPart(name string, points int, vertices []int) (*MemoryPart, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("part %s: %w (%d)", name, ErrNotTriangulated, len(vertices))
	}
	for i, p := range vertices {
		if p < 0 || p >= points {
			return nil, fmt.Errorf("part %s: wedge %d: %w (%d)", name, i, ErrPointIndex, p)
		}
	}
	return &MemoryPart{
		PartName: name,
		Points:   points,
		Vertices: vertices,
		attrs:    make(map[attrKey]AttributeData),
	}, nil
}

// AddGroup appends a primitive group.
func (m *MemoryPart) AddGroup(name string, faces ...int) error {
	for _, f := range faces {
		if f < 0 || f >= m.FaceCount() {
			return fmt.Errorf("group %s: %w (%d)", name, ErrFaceIndex, f)
		}
	}
	m.Groups = append(m.Groups, Group{Name: name, Faces: faces})
	return nil
}

// SetAttribute stores an attribute array, replacing any previous array
// with the same name and owner.
func (m *MemoryPart) SetAttribute(name string, data AttributeData) {
	if m.attrs == nil {
		m.attrs = make(map[attrKey]AttributeData)
	}
	m.attrs[attrKey{name, data.Owner}] = data
}

// SetFloat stores a float attribute.
func (m *MemoryPart) SetFloat(name string, owner Owner, tuple int, values ...float32) {
	m.SetAttribute(name, AttributeData{Owner: owner, TupleSize: tuple, Float: values})
}

// SetInt stores an integer attribute.
func (m *MemoryPart) SetInt(name string, owner Owner, tuple int, values ...int32) {
	m.SetAttribute(name, AttributeData{Owner: owner, TupleSize: tuple, Int: values})
}

// SetString stores a string attribute with tuple size 1.
func (m *MemoryPart) SetString(name string, owner Owner, values ...string) {
	m.SetAttribute(name, AttributeData{Owner: owner, TupleSize: 1, String: values})
}

// Name implements Part.
func (m *MemoryPart) Name() string { return m.PartName }

// PointCount implements Part.
func (m *MemoryPart) PointCount() int { return m.Points }

// FaceCount implements Part.
func (m *MemoryPart) FaceCount() int { return len(m.Vertices) / 3 }

// VertexCount implements Part.
func (m *MemoryPart) VertexCount() int { return len(m.Vertices) }

// VertexList implements Part.
func (m *MemoryPart) VertexList() []int { return m.Vertices }

// GroupNames implements Part.
func (m *MemoryPart) GroupNames() []string {
	names := make([]string, len(m.Groups))
	for i, g := range m.Groups {
		names[i] = g.Name
	}
	return names
}

// GroupMembership implements Part.
func (m *MemoryPart) GroupMembership(name string) ([]bool, bool) {
	for _, g := range m.Groups {
		if g.Name != name {
			continue
		}
		member := make([]bool, m.FaceCount())
		for _, f := range g.Faces {
			if f >= 0 && f < len(member) {
				member[f] = true
			}
		}
		return member, true
	}
	return nil, false
}

// MaterialIDs implements Part.
func (m *MemoryPart) MaterialIDs() ([]int, bool) {
	if len(m.FaceMaterials) == 0 {
		return nil, false
	}
	return m.FaceMaterials, true
}

// Attribute implements Part.
func (m *MemoryPart) Attribute(q Query) (AttributeData, bool) {
	m.Queries++
	data, ok := m.attrs[attrKey{q.Name, q.Owner}]
	if !ok || data.TupleSize <= 0 {
		return AttributeData{}, false
	}
	tuple := data.TupleSize
	if q.TupleSize > 0 {
		if q.TupleSize > data.TupleSize {
			return AttributeData{}, false
		}
		tuple = q.TupleSize
	}

	n := data.Len()
	start := q.Start
	if start < 0 || start > n {
		return AttributeData{}, false
	}
	end := n
	if q.Count > 0 && start+q.Count < n {
		end = start + q.Count
	}

	out := AttributeData{Owner: data.Owner, TupleSize: tuple}
	switch {
	case data.Float != nil:
		out.Float = repack(data.Float, data.TupleSize, tuple, start, end)
	case data.Int != nil:
		out.Int = repack(data.Int, data.TupleSize, tuple, start, end)
	default:
		out.String = repack(data.String, data.TupleSize, tuple, start, end)
	}
	return out, true
}

// repack copies elements [start, end) keeping the first `to` components
// of each stored tuple.
func repack[T any](src []T, from, to, start, end int) []T {
	out := make([]T, 0, (end-start)*to)
	for e := start; e < end; e++ {
		out = append(out, src[e*from:e*from+to]...)
	}
	return out
}
