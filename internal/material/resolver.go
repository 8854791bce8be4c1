package material

import (
	"fmt"

	"github.com/Faultbox/meshcook/internal/attrcache"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultPath names the fallback material used when nothing else resolves.
const DefaultPath = "/Engine/EngineMaterials/DefaultMaterial"

// IDLookup maps an external per-face material id to an identity.
type IDLookup func(id int) (Identity, bool)

// Slot is one entry of a mesh's material table.
type Slot struct {
	Index    int
	Identity Identity
}

// FaceSource carries the per-face material inputs of a part.
type FaceSource struct {
	// Overrides holds one material name per part face, "" for none.
	// Nil when the part has no override attribute.
	Overrides []string
	// IDs holds one external material id per part face, nil when absent.
	IDs []int
	// Single is set when the part has no overrides and at most one
	// distinct material id.
	Single bool
}

// NewFaceSource collects overrides and ids for every face of the cached
// part. A detail-owned override applies to every face.
func NewFaceSource(c *attrcache.Cache) FaceSource {
	part := c.Part()
	faces := part.FaceCount()
	var src FaceSource

	if data, ok := c.MaterialOverrides(); ok {
		src.Overrides = make([]string, faces)
		for f := range src.Overrides {
			switch {
			case data.Owner == geo.Detail:
				src.Overrides[f] = data.String[0]
			case f < len(data.String):
				src.Overrides[f] = data.String[f]
			}
		}
	}
	if ids, ok := part.MaterialIDs(); ok {
		src.IDs = ids
	}

	src.Single = src.Overrides == nil
	for _, id := range src.IDs {
		if id != src.IDs[0] {
			src.Single = false
			break
		}
	}
	return src
}

type slotTable struct {
	slots []Slot
	index map[Identity]int
}

// Resolver assigns material slots per destination mesh. It is not safe
// for concurrent use.
type Resolver struct {
	Library      *Library
	Lookup       IDLookup
	Replacements map[Identity]Identity
	Default      Identity

	tables   map[string]*slotTable
	resolves int
}

// NewResolver creates a resolver. A nil def uses DefaultPath.
func NewResolver(lib *Library, lookup IDLookup, def Identity) *Resolver {
	if def == nil {
		def = NewMaterial(DefaultPath)
	}
	return &Resolver{
		Library: lib,
		Lookup:  lookup,
		Default: def,
		tables:  make(map[string]*slotTable),
	}
}

// BeginPass starts a new cook pass. Slot tables are rebuilt the first time
// each mesh is seen again.
func (r *Resolver) BeginPass() {
	r.tables = make(map[string]*slotTable)
	if r.Library != nil {
		r.Library.BeginPass()
	}
}

// Resolves returns the number of face resolutions performed.
func (r *Resolver) Resolves() int {
	return r.resolves
}

// Slots returns the ordered slot table of a mesh.
func (r *Resolver) Slots(meshKey string) []Slot {
	if t, ok := r.tables[meshKey]; ok {
		return t.slots
	}
	return nil
}

// SlotsFor resolves the material of each listed face and returns its slot
// in the mesh's table, growing the table in first-seen order. The error
// lists names that could not be loaded; those faces fall back to the next
// tier and still get a slot.
func (r *Resolver) SlotsFor(meshKey string, src FaceSource, faces []int) ([]int, error) {
	if r.tables == nil {
		r.tables = make(map[string]*slotTable)
	}
	t, ok := r.tables[meshKey]
	if !ok {
		t = &slotTable{index: make(map[Identity]int)}
		r.tables[meshKey] = t
	}

	out := make([]int, len(faces))
	if src.Single {
		id := r.Default
		if len(src.IDs) > 0 {
			id = r.byID(src.IDs[0])
		}
		r.resolves++
		slot := t.slotFor(id)
		for i := range out {
			out[i] = slot
		}
		return out, nil
	}

	var (
		errs   error
		failed map[string]bool
	)
	for i, f := range faces {
		id, err := r.resolve(src, f)
		if err != nil {
			name := src.Overrides[f]
			if !failed[name] {
				if failed == nil {
					failed = make(map[string]bool)
				}
				failed[name] = true
				errs = multierr.Append(errs, err)
				logger.Warn("material override unresolved",
					logger.Mesh(meshKey), zap.String("material", name), zap.Error(err))
			}
		}
		out[i] = t.slotFor(id)
	}
	return out, errs
}

// resolve walks override name, external id, then default for face f.
func (r *Resolver) resolve(src FaceSource, f int) (Identity, error) {
	r.resolves++
	var loadErr error
	if f < len(src.Overrides) && src.Overrides[f] != "" {
		if r.Library == nil {
			loadErr = fmt.Errorf("%w: %s: no library", ErrUnresolvable, src.Overrides[f])
		} else if id, err := r.Library.Load(src.Overrides[f]); err == nil {
			return r.replace(id), nil
		} else {
			loadErr = err
		}
	}
	if f < len(src.IDs) {
		return r.byID(src.IDs[f]), loadErr
	}
	return r.Default, loadErr
}

func (r *Resolver) byID(id int) Identity {
	if r.Lookup != nil {
		if mat, ok := r.Lookup(id); ok && mat != nil {
			return r.replace(mat)
		}
	}
	return r.Default
}

func (r *Resolver) replace(id Identity) Identity {
	if rep, ok := r.Replacements[id]; ok && rep != nil {
		return rep
	}
	return id
}

func (t *slotTable) slotFor(id Identity) int {
	if i, ok := t.index[id]; ok {
		return i
	}
	i := len(t.slots)
	t.index[id] = i
	t.slots = append(t.slots, Slot{Index: i, Identity: id})
	return i
}
