package compiler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/akore/log"
)

// Registry holds instructions in registration order along with their
// enablement. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	logger  log.Logger
}

type entry struct {
	inst   Instruction
	status Status
}

// RegistryOption configures a [Registry].
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used while loading manifests.
func WithRegistryLogger(logger log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add appends enabled instructions to the registry.
func (r *Registry) Add(insts ...Instruction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inst := range insts {
		if inst != nil {
			r.entries = append(r.entries, entry{inst: inst, status: Enabled})
		}
	}
}

// Enable enables the first instruction matching each name and returns the
// number of instructions found.
func (r *Registry) Enable(names ...string) int {
	return r.setStatus(Enabled, names...)
}

// Disable disables the first instruction matching each name and returns the
// number of instructions found.
func (r *Registry) Disable(names ...string) int {
	return r.setStatus(Disabled, names...)
}

func (r *Registry) setStatus(status Status, names ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := 0

	for _, name := range names {
		i := slices.IndexFunc(r.entries, func(e entry) bool {
			return matches(e.inst, name)
		})
		if i < 0 {
			continue
		}

		r.entries[i].status = status
		found++
	}

	return found
}

// Status returns the status of the first instruction matching name.
func (r *Registry) Status(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if matches(e.inst, name) {
			return e.status, true
		}
	}

	return Disabled, false
}

// Instructions returns every registered instruction regardless of status.
func (r *Registry) Instructions() []Instruction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	insts := make([]Instruction, len(r.entries))
	for i, e := range r.entries {
		insts[i] = e.inst
	}

	return insts
}

// Len returns the number of registered instructions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// View returns a snapshot of the enabled instructions. Later changes to the
// registry do not affect the returned View.
func (r *Registry) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var v View

	for _, e := range r.entries {
		if e.status == Enabled {
			v.insts = append(v.insts, e.inst)
		}
	}

	return v
}

// LoadDir recursively loads every instruction manifest (*.yaml or *.yml)
// beneath dir and reports whether any instruction was added.
//
// A manifest that fails to load aborts the walk; instructions loaded from
// earlier files remain registered.
func (r *Registry) LoadDir(ctx context.Context, dir string) (bool, error) {
	before := r.Len()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}

		if d.IsDir() || !isManifest(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		inst, err := ParseManifest(ctx, data)
		if err != nil {
			return ErrManifest.Wrap(err).With(slog.String("path", path))
		}

		r.logger.DebugContext(ctx, "instruction loaded",
			slog.String("name", inst.Name()),
			slog.String("id", inst.ID()),
			slog.String("path", path),
		)

		r.Add(inst)

		return nil
	})

	return r.Len() != before, err
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// View is an immutable snapshot of enabled instructions in registration
// order.
type View struct {
	insts []Instruction
}

// Lookup returns the first instruction whose name or ID equals name.
func (v View) Lookup(name string) (Instruction, bool) {
	for _, inst := range v.insts {
		if matches(inst, name) {
			return inst, true
		}
	}

	return nil, false
}

// Names returns the names of the instructions in the view.
func (v View) Names() []string {
	names := make([]string, len(v.insts))
	for i, inst := range v.insts {
		names[i] = inst.Name()
	}

	return names
}

// Len returns the number of instructions in the view.
func (v View) Len() int { return len(v.insts) }
