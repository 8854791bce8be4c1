// Package assembly collects the LODs, material slots and colliders of each
// destination mesh over one cook pass and applies the reuse contract.
package assembly

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/meshcook/internal/collision"
	"github.com/Faultbox/meshcook/internal/config"
	"github.com/Faultbox/meshcook/internal/logger"
	"github.com/Faultbox/meshcook/internal/material"
	"github.com/Faultbox/meshcook/internal/split"
	"go.uber.org/zap"
)

// Assembly errors.
var (
	ErrSecondComplex = errors.New("mesh already has a complex collider")
	ErrSecondMain    = errors.New("mesh already has a main LOD")
	ErrNotRenderable = errors.New("split kind has no render geometry")
)

// PassInput carries the change signals of the geometry source for one pass.
type PassInput struct {
	GeoChanged       bool
	PartChanged      bool
	MaterialsChanged bool
}

// BuildPolicy tells the mesh builder which derived data to generate.
type BuildPolicy struct {
	RecomputeNormals    bool
	RecomputeTangents   bool
	GenerateLightmapUVs bool
}

// DestinationMesh is the assembled output for one mesh key.
type DestinationMesh struct {
	Key string
	// LODs are ordered by decreasing detail; LOD 0 is the main geometry.
	LODs      []LOD
	Slots     []material.Slot
	Colliders []collision.Shape
	// ComplexCollider is the triangle mesh used for per-poly collision.
	ComplexCollider *LOD
	Policy          BuildPolicy

	LightmapResolution int
	// Version counts rebuilds of this key.
	Version int
}

type pending struct {
	main      *LOD
	lods      []LOD
	colliders []collision.Shape
	complex   *LOD
	slots     []material.Slot
	lightmap  int
}

// Assembler builds destination meshes across passes. It is not safe for
// concurrent use.
type Assembler struct {
	Config config.MeshConfig

	meshes  map[string]*DestinationMesh
	pending map[string]*pending
	kept    map[string]bool
	input   PassInput
}

// New creates an assembler.
func New(cfg config.MeshConfig) *Assembler {
	return &Assembler{
		Config: cfg,
		meshes: make(map[string]*DestinationMesh),
	}
}

// Begin starts a pass.
func (a *Assembler) Begin(in PassInput) {
	a.input = in
	a.pending = make(map[string]*pending)
	a.kept = make(map[string]bool)
	if a.meshes == nil {
		a.meshes = make(map[string]*DestinationMesh)
	}
}

// Reusable reports whether the mesh for key can be carried over from the
// previous pass unchanged. A true result marks it kept; the caller must
// then skip every split that targets key.
func (a *Assembler) Reusable(key string) bool {
	if a.Config.ForceRebuild || a.input.GeoChanged || a.input.PartChanged || a.input.MaterialsChanged {
		return false
	}
	if _, ok := a.meshes[key]; !ok {
		return false
	}
	if _, building := a.pending[key]; building {
		return false
	}
	a.kept[key] = true
	return true
}

func (a *Assembler) entry(key string) *pending {
	p, ok := a.pending[key]
	if !ok {
		p = &pending{}
		a.pending[key] = p
	}
	return p
}

// AddLOD adds render geometry for a split. Normal and rendered collider
// splits provide the main LOD; LOD splits are kept for ordering in Finish.
func (a *Assembler) AddLOD(key string, kind split.Kind, lod LOD) error {
	p := a.entry(key)
	switch {
	case kind == split.LOD:
		p.lods = append(p.lods, lod)
	case kind == split.Normal, kind.IsRendered():
		if p.main != nil {
			logger.Warn("main geometry already set, split dropped",
				logger.Mesh(key), logger.Split(lod.Name), zap.String("kept", p.main.Name))
			return fmt.Errorf("%s: %w (%s)", lod.Name, ErrSecondMain, p.main.Name)
		}
		l := lod
		p.main = &l
	default:
		return fmt.Errorf("%s: %w (%v)", lod.Name, ErrNotRenderable, kind)
	}
	return nil
}

// AddColliders attaches fitted shapes to a mesh.
func (a *Assembler) AddColliders(key string, shapes ...collision.Shape) {
	p := a.entry(key)
	p.colliders = append(p.colliders, shapes...)
}

// SetComplex designates the complex collision geometry of a mesh. Only the
// first one per mesh is kept.
func (a *Assembler) SetComplex(key string, lod LOD) error {
	p := a.entry(key)
	if p.complex != nil {
		logger.Warn("second complex collider dropped",
			logger.Mesh(key), logger.Split(lod.Name), zap.String("kept", p.complex.Name))
		return fmt.Errorf("%s: %w (%s)", lod.Name, ErrSecondComplex, p.complex.Name)
	}
	l := lod
	p.complex = &l
	return nil
}

// SetSlots records the material table of a mesh.
func (a *Assembler) SetSlots(key string, slots []material.Slot) {
	a.entry(key).slots = append([]material.Slot(nil), slots...)
}

// SetLightmapResolution records the lightmap resolution of a mesh.
func (a *Assembler) SetLightmapResolution(key string, res int) {
	a.entry(key).lightmap = res
}

// Finish assembles the meshes of the pass. Kept meshes are returned as the
// previous values; meshes neither kept nor rebuilt are dropped.
func (a *Assembler) Finish() map[string]*DestinationMesh {
	out := make(map[string]*DestinationMesh, len(a.pending)+len(a.kept))
	for key := range a.kept {
		out[key] = a.meshes[key]
	}

	for key, p := range a.pending {
		m := &DestinationMesh{
			Key:                key,
			LODs:               orderLODs(p.main, p.lods),
			Slots:              p.slots,
			Colliders:          p.colliders,
			ComplexCollider:    p.complex,
			LightmapResolution: p.lightmap,
		}
		m.Policy = a.policy(m.LODs)
		if prev, ok := a.meshes[key]; ok {
			m.Version = prev.Version + 1
		}
		out[key] = m
	}

	a.meshes = out
	a.pending = nil
	a.kept = nil
	return out
}

// orderLODs puts the main geometry first, or promotes the first LOD when
// there is none, followed by the LODs in ascending name order.
func orderLODs(main *LOD, lods []LOD) []LOD {
	sorted := append([]LOD(nil), lods...)
	names := make([]string, len(sorted))
	for i := range sorted {
		names[i] = sorted[i].Name
	}
	ordered, _ := split.Sort(names)
	rank := make(map[string]int, len(ordered))
	for i, n := range ordered {
		rank[n] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Name] < rank[sorted[j].Name]
	})

	if main == nil {
		return sorted
	}
	return append([]LOD{*main}, sorted...)
}

// policy recomputes a derived attribute only when no LOD carries it, unless
// the configuration forces the decision.
func (a *Assembler) policy(lods []LOD) BuildPolicy {
	var hasNormals, hasTangents, hasLightmap bool
	for i := range lods {
		hasNormals = hasNormals || lods[i].Normals != nil
		hasTangents = hasTangents || (lods[i].TangentsU != nil && lods[i].TangentsV != nil)
		hasLightmap = hasLightmap || len(lods[i].UVs) > 1
	}
	return BuildPolicy{
		RecomputeNormals:    a.Config.RecomputeNormals.Decide(!hasNormals),
		RecomputeTangents:   a.Config.RecomputeTangents.Decide(!hasTangents),
		GenerateLightmapUVs: a.Config.GenerateLightmapUVs.Decide(!hasLightmap),
	}
}

// Keys returns the mesh keys of a result in sorted order.
func Keys(meshes map[string]*DestinationMesh) []string {
	keys := make([]string, 0, len(meshes))
	for k := range meshes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
