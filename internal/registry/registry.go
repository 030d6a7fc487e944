// Package registry provides a lookup table from Source UUID to Source; the
// fabric loader builds one Registry per loaded topology. The routing core in internal/fabric never consults it — it
// works purely in terms of *domain.Source pointers handed to Select
// directly — but the RPC control plane needs one, since a wire request can
// only carry a source's UUID, not a live pointer into the running fabric's
// in-memory graph.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"fabricmux/internal/domain"
)

// Registry is a concurrency-safe UUID to Source lookup table.
type Registry struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.Source
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*domain.Source)}
}

// Register records src under its UUID, overwriting any previous entry with
// the same id.
func (r *Registry) Register(src *domain.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[src.UUID] = src
}

// Get parses rawUUID and returns the Source registered under it. It returns
// an error both when rawUUID fails to parse and when no source is
// registered under it, since callers at the RPC boundary treat both the
// same way: the requested source does not exist.
func (r *Registry) Get(rawUUID string) (*domain.Source, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, fmt.Errorf("registry: invalid source uuid %q: %w", rawUUID, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("registry: no source registered under %s", id)
	}
	return src, nil
}

// List returns a snapshot of every registered Source. Order is unspecified.
func (r *Registry) List() []*domain.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Source, 0, len(r.byID))
	for _, src := range r.byID {
		out = append(out, src)
	}
	return out
}

// Reset empties the registry. Intended for test isolation between cases
// that construct their own fabrics.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[uuid.UUID]*domain.Source)
}
