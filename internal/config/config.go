// Package config handles meshcook configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all cook settings.
type Config struct {
	Mesh      MeshConfig      `yaml:"mesh" toml:"mesh"`
	Materials MaterialsConfig `yaml:"materials" toml:"materials"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// MeshConfig holds mesh build settings.
type MeshConfig struct {
	ForceRebuild        bool    `yaml:"force_rebuild" toml:"force_rebuild"`
	RecomputeNormals    Policy  `yaml:"recompute_normals" toml:"recompute_normals"`
	RecomputeTangents   Policy  `yaml:"recompute_tangents" toml:"recompute_tangents"`
	GenerateLightmapUVs Policy  `yaml:"generate_lightmap_uvs" toml:"generate_lightmap_uvs"`
	MultiHullMaxCount   int     `yaml:"multi_hull_max_count" toml:"multi_hull_max_count"`
	MultiHullMaxVerts   int     `yaml:"multi_hull_max_verts" toml:"multi_hull_max_verts"`
	KDopInflation       float64 `yaml:"kdop_inflation" toml:"kdop_inflation"`
}

// MaterialsConfig maps source material references to asset paths.
type MaterialsConfig struct {
	Default string `yaml:"default" toml:"default"`
	// IDs maps external face material ids (decimal keys) to asset paths.
	IDs map[string]string `yaml:"ids" toml:"ids"`
	// Replacements swaps one resolved asset path for another.
	Replacements map[string]string `yaml:"replacements" toml:"replacements"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Policy decides whether a derived mesh attribute is rebuilt.
type Policy int

// Build policies.
const (
	OnlyIfMissing Policy = iota
	Always
	Never
)

var policyNames = map[Policy]string{
	OnlyIfMissing: "only_if_missing",
	Always:        "always",
	Never:         "never",
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses a policy name. Dashes and case are ignored.
func ParsePolicy(s string) (Policy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for p, name := range policyNames {
		if norm == name || norm == strings.ReplaceAll(name, "_", "") {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Decide reports whether to rebuild an attribute that is missing from
// every source (missing) under this policy.
func (p Policy) Decide(missing bool) bool {
	switch p {
	case Always:
		return true
	case Never:
		return false
	}
	return missing
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			RecomputeNormals:    OnlyIfMissing,
			RecomputeTangents:   OnlyIfMissing,
			GenerateLightmapUVs: OnlyIfMissing,
			MultiHullMaxCount:   8,
			MultiHullMaxVerts:   16,
			KDopInflation:       1e-3,
		},
		Materials: MaterialsConfig{
			Default: "/Engine/EngineMaterials/DefaultMaterial",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	for name, p := range map[string]Policy{
		"recompute_normals":     c.Mesh.RecomputeNormals,
		"recompute_tangents":    c.Mesh.RecomputeTangents,
		"generate_lightmap_uvs": c.Mesh.GenerateLightmapUVs,
	} {
		if _, ok := policyNames[p]; !ok {
			return fmt.Errorf("%w: mesh.%s = %d", ErrInvalidConfig, name, int(p))
		}
	}
	if c.Mesh.MultiHullMaxCount < 1 {
		return fmt.Errorf("%w: mesh.multi_hull_max_count must be positive, got %d", ErrInvalidConfig, c.Mesh.MultiHullMaxCount)
	}
	if c.Mesh.MultiHullMaxVerts < 4 {
		return fmt.Errorf("%w: mesh.multi_hull_max_verts must be at least 4, got %d", ErrInvalidConfig, c.Mesh.MultiHullMaxVerts)
	}
	if c.Mesh.KDopInflation < 0 {
		return fmt.Errorf("%w: mesh.kdop_inflation must not be negative", ErrInvalidConfig)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
