package geo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML form of a MemoryPart.
type Fixture struct {
	Name          string             `yaml:"name"`
	Points        int                `yaml:"points"`
	Vertices      []int              `yaml:"vertices"`
	Groups        []Group            `yaml:"groups"`
	FaceMaterials []int              `yaml:"face_materials"`
	Attributes    []FixtureAttribute `yaml:"attributes"`
}

// FixtureAttribute is one attribute array in a Fixture.
type FixtureAttribute struct {
	Name   string    `yaml:"name"`
	Owner  Owner     `yaml:"owner"`
	Tuple  int       `yaml:"tuple"`
	Float  []float32 `yaml:"float,omitempty"`
	Int    []int32   `yaml:"int,omitempty"`
	String []string  `yaml:"string,omitempty"`
}

// LoadPartYAML reads a part fixture from disk.
func LoadPartYAML(path string) (*MemoryPart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	part, err := ParsePartYAML(data)
	if err != nil {
		return nil, fmt.Errorf("loading part from %s: %w", path, err)
	}
	return part, nil
}

// ParsePartYAML decodes a part fixture.
func ParsePartYAML(data []byte) (*MemoryPart, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	part, err := NewMemoryPart(fx.Name, fx.Points, fx.Vertices)
	if err != nil {
		return nil, err
	}
	for _, g := range fx.Groups {
		if err := part.AddGroup(g.Name, g.Faces...); err != nil {
			return nil, err
		}
	}
	part.FaceMaterials = fx.FaceMaterials
	for _, a := range fx.Attributes {
		tuple := a.Tuple
		if tuple <= 0 {
			tuple = 1
		}
		part.SetAttribute(a.Name, AttributeData{
			Owner:     a.Owner,
			TupleSize: tuple,
			Float:     a.Float,
			Int:       a.Int,
			String:    a.String,
		})
	}
	return part, nil
}

// MarshalPartYAML encodes a MemoryPart as a fixture.
func MarshalPartYAML(m *MemoryPart) ([]byte, error) {
	fx := Fixture{
		Name:          m.PartName,
		Points:        m.Points,
		Vertices:      m.Vertices,
		Groups:        m.Groups,
		FaceMaterials: m.FaceMaterials,
	}
	for key, a := range m.attrs {
		fx.Attributes = append(fx.Attributes, FixtureAttribute{
			Name:   key.name,
			Owner:  a.Owner,
			Tuple:  a.TupleSize,
			Float:  a.Float,
			Int:    a.Int,
			String: a.String,
		})
	}
	return yaml.Marshal(fx)
}
