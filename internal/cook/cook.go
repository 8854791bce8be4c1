// Package cook runs one geometry part through classification, partitioning,
// remapping, attribute transfer, material resolution, collision fitting and
// LOD assembly.
package cook

import (
	"fmt"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/internal/attrcache"
	"github.com/Faultbox/meshcook/internal/collision"
	"github.com/Faultbox/meshcook/internal/config"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/logger"
	"github.com/Faultbox/meshcook/internal/material"
	"github.com/Faultbox/meshcook/internal/split"
	"github.com/Faultbox/meshcook/pkg/math"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Issue is a local failure that skipped one split or collider.
type Issue struct {
	Split string
	Kind  split.Kind
	Err   error
}

func (i Issue) Error() string {
	if i.Split == "" {
		return i.Err.Error()
	}
	return fmt.Sprintf("%s (%v): %v", i.Split, i.Kind, i.Err)
}

// Unwrap returns the underlying error.
func (i Issue) Unwrap() error { return i.Err }

// Stats counts the expensive steps of a pass.
type Stats struct {
	Remaps   int
	Fits     int
	Resolves int
}

// Result is the outcome of one pass.
type Result struct {
	PassID uuid.UUID
	Part   string
	Meshes map[string]*assembly.DestinationMesh
	Issues []Issue
	Stats  Stats
}

// Err combines the issues of the pass, nil when there were none.
func (r *Result) Err() error {
	var err error
	for _, issue := range r.Issues {
		err = multierr.Append(err, issue)
	}
	return err
}

// Keys returns the mesh keys in sorted order.
func (r *Result) Keys() []string {
	return assembly.Keys(r.Meshes)
}

// Cooker holds the state carried between passes. It is not safe for
// concurrent use; cook one part at a time.
type Cooker struct {
	Config    *config.Config
	Materials *material.Resolver
	Assembler *assembly.Assembler
}

// New creates a cooker. A nil resolver resolves every face to the default
// material.
func New(cfg *config.Config, resolver *material.Resolver) *Cooker {
	if cfg == nil {
		cfg = config.Default()
	}
	if resolver == nil {
		resolver = material.NewResolver(nil, nil, nil)
	}
	return &Cooker{
		Config:    cfg,
		Materials: resolver,
		Assembler: assembly.New(cfg.Mesh),
	}
}

// CollisionOptions returns the fitting options of the mesh configuration.
func CollisionOptions(m config.MeshConfig) collision.Options {
	return collision.Options{
		MultiHullMaxCount: m.MultiHullMaxCount,
		MultiHullMaxVerts: m.MultiHullMaxVerts,
		KDopInflation:     m.KDopInflation,
	}
}

// pass is the state of one Cook call.
type pass struct {
	*Cooker
	part    geo.Part
	cache   *attrcache.Cache
	result  *Result
	log     *zap.Logger
	faces   *material.FaceSource
	touched map[string]bool
}

// Cook processes part. Failures are local: the affected split is skipped,
// reported in Result.Issues, and the rest of the part is still cooked.
func (c *Cooker) Cook(part geo.Part, in assembly.PassInput) *Result {
	p := &pass{
		Cooker: c,
		part:   part,
		cache:  attrcache.New(part),
		result: &Result{
			PassID: uuid.New(),
			Part:   part.Name(),
		},
		touched: make(map[string]bool),
	}
	p.log = logger.L().With(zap.Stringer("pass", p.result.PassID), logger.Part(part.Name()))

	c.Assembler.Begin(in)
	c.Materials.BeginPass()
	resolves := c.Materials.Resolves()

	ordered, invalid := split.Sort(part.GroupNames())
	for _, name := range invalid {
		p.issue(name, split.Invalid, split.ErrInvalidGroup)
	}

	groups, errs := split.Partition(part, ordered)
	for _, err := range errs {
		p.issue("", split.Invalid, err)
	}
	for i := range groups {
		p.cookGroup(&groups[i])
	}

	for key := range p.touched {
		c.Assembler.SetSlots(key, c.Materials.Slots(key))
	}
	if res, ok := p.cache.LightmapResolution(); ok && p.touched[split.MainMeshKey] {
		c.Assembler.SetLightmapResolution(split.MainMeshKey, res)
	}

	p.result.Meshes = c.Assembler.Finish()
	p.result.Stats.Resolves = c.Materials.Resolves() - resolves

	p.log.Debug("pass finished",
		zap.Int("meshes", len(p.result.Meshes)),
		zap.Int("issues", len(p.result.Issues)),
		zap.Int("remaps", p.result.Stats.Remaps),
		zap.Int("fits", p.result.Stats.Fits),
		zap.Int("resolves", p.result.Stats.Resolves),
		zap.Any("cache", p.cache.Stats()))
	return p.result
}

func (p *pass) issue(name string, kind split.Kind, err error) {
	p.log.Warn("split skipped", logger.Split(name), logger.Kind(kind), zap.Error(err))
	p.result.Issues = append(p.result.Issues, Issue{Split: name, Kind: kind, Err: err})
}

func (p *pass) cookGroup(g *split.Group) {
	key := g.MeshKey()
	if p.Assembler.Reusable(key) {
		p.log.Debug("mesh reused", logger.Mesh(key), logger.Split(g.Name))
		return
	}

	r := split.Remap(g, p.part.PointCount())
	p.result.Stats.Remaps++
	if r.Dropped > 0 {
		p.log.Warn("faces with invalid points dropped",
			logger.Split(g.Name), zap.Int("faces", r.Dropped))
	}
	if r.TriangleCount() == 0 {
		p.issue(g.Name, g.Kind, fmt.Errorf("%w: no triangles", split.ErrMalformedSplit))
		return
	}

	switch {
	case g.Kind.IsComplex():
		p.addComplex(g, key, &r)
		return
	case g.Kind.IsRendered():
		if !p.addRender(g, key, &r) {
			return
		}
	}
	if g.Kind.IsSimple() || g.Kind.IsUCX() {
		p.fit(g, key, &r)
	}
}

func (p *pass) addRender(g *split.Group, key string, r *split.RemapTable) bool {
	lod, err := assembly.NewLOD(p.cache, g, r)
	if err != nil {
		p.issue(g.Name, g.Kind, err)
		return false
	}

	if p.faces == nil {
		src := material.NewFaceSource(p.cache)
		p.faces = &src
	}
	slots, err := p.Materials.SlotsFor(key, *p.faces, r.Faces)
	if err != nil {
		// Unresolved names already fell back to the next tier.
		p.result.Issues = append(p.result.Issues, Issue{Split: g.Name, Kind: g.Kind, Err: err})
	}
	lod.MaterialSlots = slots

	if err := p.Assembler.AddLOD(key, g.Kind, lod); err != nil {
		p.result.Issues = append(p.result.Issues, Issue{Split: g.Name, Kind: g.Kind, Err: err})
		return false
	}
	p.touched[key] = true
	return true
}

// addComplex stores the triangles of a complex collider. An invisible one
// also serves as the complex collision of the main mesh.
func (p *pass) addComplex(g *split.Group, key string, r *split.RemapTable) {
	lod, err := assembly.NewLOD(p.cache, g, r)
	if err != nil {
		p.issue(g.Name, g.Kind, err)
		return
	}
	if g.Kind == split.RenderedComplex {
		if !p.addRender(g, key, r) {
			return
		}
	}
	if err := p.Assembler.SetComplex(key, lod); err != nil {
		p.result.Issues = append(p.result.Issues, Issue{Split: g.Name, Kind: g.Kind, Err: err})
		return
	}
	if g.Kind == split.InvisibleComplex {
		if p.Assembler.Reusable(split.MainMeshKey) {
			return
		}
		if err := p.Assembler.SetComplex(split.MainMeshKey, lod); err != nil {
			p.result.Issues = append(p.result.Issues, Issue{Split: g.Name, Kind: g.Kind, Err: err})
		}
	}
}

func (p *pass) fit(g *split.Group, key string, r *split.RemapTable) {
	pos, ok := p.cache.Positions()
	if !ok {
		p.issue(g.Name, g.Kind, assembly.ErrNoPositions)
		return
	}
	points := make([]math.Vec3d, len(r.Needed))
	for l, pt := range r.Needed {
		if 3*pt+2 < len(pos.Float) {
			points[l] = math.Vec3{X: pos.Float[3*pt], Y: pos.Float[3*pt+1], Z: pos.Float[3*pt+2]}.D()
		}
	}

	p.result.Stats.Fits++
	shapes, err := collision.Fit(g.Name, g.Kind, collision.Input{Points: points, Triangles: r.Triangles}, CollisionOptions(p.Config.Mesh))
	if err != nil {
		p.issue(g.Name, g.Kind, err)
		return
	}
	for _, s := range shapes {
		p.log.Debug("collider fitted", logger.Mesh(key), logger.Split(g.Name), logger.Kind(s.Kind()))
	}
	p.Assembler.AddColliders(key, shapes...)
}
