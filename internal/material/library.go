// Package material resolves per-face material identities and assigns
// per-mesh material slots.
package material

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnresolvable is returned when a material name cannot be loaded.
var ErrUnresolvable = errors.New("material cannot be resolved")

// Identity is a loaded material. Slots are keyed by identity, so two
// names that load the same object share a slot. Implementations must be
// comparable; pointers are the usual choice.
type Identity interface {
	Name() string
}

// Material is the default Identity implementation.
type Material struct {
	Path string
}

// Name returns the material path.
func (m *Material) Name() string { return m.Path }

// NewMaterial creates a material identity for path.
func NewMaterial(path string) *Material {
	return &Material{Path: path}
}

// Loader loads a material by name.
type Loader interface {
	LoadMaterial(name string) (Identity, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (Identity, error)

// LoadMaterial calls f.
func (f LoaderFunc) LoadMaterial(name string) (Identity, error) { return f(name) }

// PathLoader accepts any absolute asset path ("/Game/...") and rejects
// everything else.
var PathLoader = LoaderFunc(func(name string) (Identity, error) {
	if !strings.HasPrefix(name, "/") || strings.ContainsAny(name, " \t\n") {
		return nil, fmt.Errorf("%w: %q is not an asset path", ErrUnresolvable, name)
	}
	return NewMaterial(name), nil
})

// LibraryStats reports library activity.
type LibraryStats struct {
	Loads    int
	Hits     int
	Failures int
}

// Library loads materials by name and caches the result. Names that fail
// to load are remembered until the next pass and not retried.
type Library struct {
	loader  Loader
	loaded  map[string]Identity
	invalid map[string]error
	mu      sync.RWMutex

	stats LibraryStats
}

// NewLibrary creates a library backed by loader.
func NewLibrary(loader Loader) *Library {
	return &Library{
		loader:  loader,
		loaded:  make(map[string]Identity),
		invalid: make(map[string]error),
	}
}

// Register adds an already loaded material under name.
func (l *Library) Register(name string, id Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded[name] = id
	delete(l.invalid, name)
}

// Load returns the material for name, loading it on first use.
func (l *Library) Load(name string) (Identity, error) {
	l.mu.RLock()
	id, ok := l.loaded[name]
	bad := l.invalid[name]
	l.mu.RUnlock()
	if ok {
		l.mu.Lock()
		l.stats.Hits++
		l.mu.Unlock()
		return id, nil
	}
	if bad != nil {
		return nil, bad
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if id, ok := l.loaded[name]; ok {
		l.stats.Hits++
		return id, nil
	}
	l.stats.Loads++
	if l.loader == nil {
		return nil, l.fail(name, fmt.Errorf("%w: %s: no loader", ErrUnresolvable, name))
	}
	id, err := l.loader.LoadMaterial(name)
	if err != nil {
		if !errors.Is(err, ErrUnresolvable) {
			err = fmt.Errorf("%w: %s: %v", ErrUnresolvable, name, err)
		}
		return nil, l.fail(name, err)
	}
	if id == nil {
		return nil, l.fail(name, fmt.Errorf("%w: %s", ErrUnresolvable, name))
	}
	l.loaded[name] = id
	return id, nil
}

func (l *Library) fail(name string, err error) error {
	l.stats.Failures++
	l.invalid[name] = err
	return err
}

// BeginPass forgets failed names so they are retried once in the new pass.
func (l *Library) BeginPass() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalid = make(map[string]error)
}

// Stats returns library statistics.
func (l *Library) Stats() LibraryStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}
