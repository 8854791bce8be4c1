package config

import "flag"

// Flags holds command-line overrides. Register them on a command's flag
// set, parse, then pass the struct to Load.
type Flags struct {
	ConfigPath        string
	Debug             bool
	ForceRebuild      bool
	RecomputeNormals  string
	RecomputeTangents string
}

// Register adds the config flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.ForceRebuild, "force-rebuild", false, "Rebuild every mesh even when the part is unchanged")
	fs.StringVar(&f.RecomputeNormals, "recompute-normals", "", "Normals policy: always, never, only_if_missing")
	fs.StringVar(&f.RecomputeTangents, "recompute-tangents", "", "Tangents policy: always, never, only_if_missing")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) error {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.ForceRebuild {
		cfg.Mesh.ForceRebuild = true
	}
	if f.RecomputeNormals != "" {
		p, err := ParsePolicy(f.RecomputeNormals)
		if err != nil {
			return err
		}
		cfg.Mesh.RecomputeNormals = p
	}
	if f.RecomputeTangents != "" {
		p, err := ParsePolicy(f.RecomputeTangents)
		if err != nil {
			return err
		}
		cfg.Mesh.RecomputeTangents = p
	}
	return nil
}
