package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcook/internal/assembly"
	"github.com/Faultbox/meshcook/internal/cook"
	"github.com/Faultbox/meshcook/internal/geo"
	"github.com/Faultbox/meshcook/internal/logger"
)

// watcher re-cooks one part file. Geometry counts as changed only when the
// file content hash differs from the last cooked version.
type watcher struct {
	path   string
	cooker *cook.Cooker
	hash   [sha256.Size]byte
	cooked bool
}

func (w *watcher) cook() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		logger.Warn("read part", zap.String("path", w.path), zap.Error(err))
		return
	}
	sum := sha256.Sum256(data)
	changed := !w.cooked || sum != w.hash

	part, err := geo.ParsePartYAML(data)
	if err != nil {
		logger.Warn("parse part", zap.String("path", w.path), zap.Error(err))
		return
	}

	res := w.cooker.Cook(part, assembly.PassInput{GeoChanged: changed, PartChanged: !w.cooked})
	w.hash, w.cooked = sum, true
	printResult(res)
	fmt.Println()
}

func cmdWatch(args []string) {
	cfg, fs := setup("watch", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshcook watch [options] <part.yaml>")
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := &watcher{path: path, cooker: newCooker(cfg)}
	w.cook()
	logger.Info("watching", zap.String("path", path))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("part changed", zap.String("op", ev.Op.String()))
			w.cook()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", zap.Error(err))
		case <-stop:
			logger.Info("watch stopped")
			return
		}
	}
}
