package driver

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"cmkit/internal/cmakecache"
)

// Driver is the active build driver of a workspace as seen by consumers that
// only need its configure cache.
type Driver interface {
	// Cache returns the parsed cache of the active configuration. It may
	// block while the driver refreshes the cache from disk.
	Cache(ctx context.Context) (*cmakecache.Cache, error)
}

// Registry binds workspace roots to their active driver. At most one driver
// is bound per workspace; registering again replaces the previous binding.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: map[string]Driver{}}
}

// Register binds d to workspace, replacing any existing binding.
func (r *Registry) Register(workspace string, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[string]Driver{}
	}
	r.drivers[Key(workspace)] = d
}

// Get returns the driver bound to workspace.
func (r *Registry) Get(workspace string) (Driver, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[Key(workspace)]
	return d, ok
}

// Unregister drops the binding for workspace, if any.
func (r *Registry) Unregister(workspace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drivers, Key(workspace))
}

// Workspaces lists the bound workspace keys in sorted order.
func (r *Registry) Workspaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.drivers))
	for k := range r.drivers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key canonicalizes a workspace path.
func Key(workspace string) string {
	if abs, err := filepath.Abs(workspace); err == nil {
		return abs
	}
	return filepath.Clean(workspace)
}

// Static is a Driver over an already parsed cache.
type Static struct {
	cache *cmakecache.Cache
}

// NewStatic wraps c.
func NewStatic(c *cmakecache.Cache) *Static {
	return &Static{cache: c}
}

func (s *Static) Cache(ctx context.Context) (*cmakecache.Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.cache, nil
}
