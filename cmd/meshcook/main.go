// meshcook turns attribute-tagged geometry parts into render meshes, LODs
// and collision shapes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/internal/backend"
	"github.com/Faultbox/meshcook/internal/config"
	"github.com/Faultbox/meshcook/internal/cook"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/logger"
	"github.com/Faultbox/meshcook/internal/material"
	"github.com/Faultbox/meshcook/internal/split"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "cook":
		cmdCook(args)
	case "classify":
		cmdClassify(args)
	case "watch":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshcook - geometry part to mesh converter

Usage:
  meshcook <command> [options]

Commands:
  cook <part.yaml>         Cook a part and print the resulting meshes
  classify <group...>      Show group kinds in processing order
  watch <part.yaml>        Re-cook a part whenever the file changes
  config [path]            Write the effective configuration

Options (cook, watch, config):
  -config <file>           Config file (.yaml or .toml)
  -debug                   Enable debug logging
  -force-rebuild           Never reuse meshes from the previous pass
  -recompute-normals <p>   always, never or only_if_missing
  -recompute-tangents <p>  always, never or only_if_missing

Options (cook):
  -proxy                   Print the LOD 0 runtime proxy of each mesh instead

Examples:
  meshcook cook crate.yaml
  meshcook cook -proxy crate.yaml
  meshcook classify main_geo lod1 collision_geo_simple_box
  meshcook watch -debug crate.yaml`)
}

// setup parses the shared flags plus any command flags added by extra,
// loads the configuration and starts the logger.
func setup(name string, args []string, extra ...func(*flag.FlagSet)) (*config.Config, *flag.FlagSet) {
	var flags config.Flags
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags.Register(fs)
	for _, register := range extra {
		register(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, fs
}

func newCooker(cfg *config.Config) *cook.Cooker {
	resolver, err := cook.NewResolver(cfg.Materials, material.NewLibrary(material.PathLoader))
	if err != nil {
		logger.Warn("material configuration incomplete", zap.Error(err))
	}
	return cook.New(cfg, resolver)
}

func cmdCook(args []string) {
	var proxy bool
	cfg, fs := setup("cook", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&proxy, "proxy", false, "Print the LOD 0 runtime proxy of each mesh")
	})
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshcook cook [options] <part.yaml>")
		os.Exit(1)
	}

	part, err := geo.LoadPartYAML(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res := newCooker(cfg).Cook(part, assembly.PassInput{GeoChanged: true, PartChanged: true})
	if proxy {
		printProxies(os.Stdout, res)
	} else {
		printResult(res)
	}
	if res.Err() != nil {
		logger.Sync()
		os.Exit(2)
	}
}

func cmdClassify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshcook classify <group...>")
		os.Exit(1)
	}

	ordered, invalid := split.Sort(args)
	for i, name := range ordered {
		kind := split.Classify(name)
		fmt.Printf("%2d  %-40s %-18s -> %s\n", i, name, kind, split.MeshKey(name, kind))
	}
	for _, name := range invalid {
		fmt.Printf(" -  %-40s %s\n", name, split.Invalid)
	}
}

func cmdConfig(args []string) {
	cfg, fs := setup("config", args)
	defer logger.Sync()

	var err error
	if fs.NArg() > 0 {
		err = cfg.SaveTo(fs.Arg(0))
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printResult(res *cook.Result) {
	fmt.Printf("Part:  %s\n", res.Part)
	fmt.Printf("Pass:  %s\n", res.PassID)
	fmt.Printf("Work:  %d remaps, %d fits, %d resolves\n", res.Stats.Remaps, res.Stats.Fits, res.Stats.Resolves)
	fmt.Println()

	for _, key := range res.Keys() {
		m := res.Meshes[key]
		raw := backend.NewRawMesh()
		if err := backend.Write(m, raw); err != nil {
			fmt.Printf("%s: %v\n", key, err)
			continue
		}

		fmt.Printf("%s (v%d)\n", key, m.Version)
		for i := range raw.LODs {
			l := &raw.LODs[i]
			if m.Policy.RecomputeNormals {
				l.RecomputeNormals()
			}
			fmt.Printf("  LOD%d  %6d verts %6d tris  bounds %v..%v\n",
				i, len(l.Positions), len(l.Indices)/3, l.Bounds.Min, l.Bounds.Max)
		}
		var slots []string
		for _, s := range m.Slots {
			slots = append(slots, s.Identity.Name())
		}
		if len(slots) > 0 {
			fmt.Printf("  slots      %s\n", strings.Join(slots, ", "))
		}
		for _, c := range m.Colliders {
			lo, hi := c.Bounds()
			fmt.Printf("  collider   %-13s %v..%v\n", c.Kind(), lo, hi)
		}
		if m.ComplexCollider != nil {
			fmt.Printf("  complex    %s (%d tris)\n", m.ComplexCollider.Name, m.ComplexCollider.TriangleCount())
		}
		fmt.Printf("  policy     normals=%t tangents=%t lightmap_uvs=%t\n",
			m.Policy.RecomputeNormals, m.Policy.RecomputeTangents, m.Policy.GenerateLightmapUVs)
	}

	if len(res.Issues) > 0 {
		fmt.Println()
		fmt.Printf("Issues (%d):\n", len(res.Issues))
		for _, issue := range res.Issues {
			fmt.Printf("  %v\n", issue)
		}
	}
}

// printProxies writes every mesh into a runtime proxy and prints one line
// per mesh.
func printProxies(w io.Writer, res *cook.Result) {
	for _, key := range res.Keys() {
		var p backend.Proxy
		if err := backend.Write(res.Meshes[key], &p); err != nil {
			fmt.Fprintf(w, "%s: %v\n", key, err)
			continue
		}
		fmt.Fprintf(w, "%-24s %6d verts %6d tris %2d slots  bounds %v..%v\n",
			key, len(p.Positions), len(p.Indices)/3, distinctSlots(p.MaterialSlots), p.Bounds.Min, p.Bounds.Max)
	}
}

func distinctSlots(slots []int) int {
	seen := make(map[int]bool)
	for _, s := range slots {
		seen[s] = true
	}
	return len(seen)
}
