package cook

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/meshcook/internal/config"
	"github.com/Faultbox/meshcook/internal/material"
	"go.uber.org/multierr"
)

// NewResolver builds a material resolver from configuration. External ids
// and replacement targets are loaded through lib so equal paths share one
// identity. Entries that fail to load are reported and skipped.
func NewResolver(cfg config.MaterialsConfig, lib *material.Library) (*material.Resolver, error) {
	var errs error

	var def material.Identity
	if cfg.Default != "" {
		id, err := lib.Load(cfg.Default)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("default material: %w", err))
		} else {
			def = id
		}
	}

	ids := make(map[int]string, len(cfg.IDs))
	for k, path := range cfg.IDs {
		n, err := strconv.Atoi(k)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("material id %q: %w", k, err))
			continue
		}
		ids[n] = path
	}
	lookup := func(id int) (material.Identity, bool) {
		path, ok := ids[id]
		if !ok {
			return nil, false
		}
		mat, err := lib.Load(path)
		return mat, err == nil
	}

	r := material.NewResolver(lib, lookup, def)
	if len(cfg.Replacements) > 0 {
		r.Replacements = make(map[material.Identity]material.Identity, len(cfg.Replacements))
	}
	for from, to := range cfg.Replacements {
		src, err := lib.Load(from)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("replacement source: %w", err))
			continue
		}
		dst, err := lib.Load(to)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("replacement target: %w", err))
			continue
		}
		r.Replacements[src] = dst
	}
	return r, errs
}
