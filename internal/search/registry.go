package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

// Index is a search index registered on the host.
type Index interface {
	Name() string
	Refresh(ctx context.Context, ref domain.ItemRef) error
}

// Registry keeps registered indexes in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	indexes map[string]Index
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{indexes: map[string]Index{}}
}

// Register adds or replaces an index implementation.
func (r *Registry) Register(index Index) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexes == nil {
		r.indexes = map[string]Index{}
	}
	name := index.Name()
	if _, ok := r.indexes[name]; !ok {
		r.order = append(r.order, name)
	}
	r.indexes[name] = index
}

// Resolve returns an index by exact name or an error if it is absent.
func (r *Registry) Resolve(name string) (Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index, ok := r.indexes[name]; ok {
		return index, nil
	}
	return nil, fmt.Errorf("search index %s is not registered", name)
}

// Find returns the first index whose name contains fragment, ignoring case.
func (r *Registry) Find(fragment string) (Index, bool) {
	fragment = strings.ToLower(fragment)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if strings.Contains(strings.ToLower(name), fragment) {
			return r.indexes[name], true
		}
	}
	return nil, false
}

// Names lists registered index names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Notifier refreshes items in the first index matching a name fragment.
type Notifier struct {
	registry *Registry
	match    string
	logger   *slog.Logger
}

var _ ports.IndexNotifier = (*Notifier)(nil)

// NewNotifier wires the registry; match defaults to "web".
func NewNotifier(reg *Registry, match string, log *slog.Logger) *Notifier {
	if match == "" {
		match = "web"
	}
	return &Notifier{registry: reg, match: match, logger: log}
}

// Refresh is a no-op when no index matches.
func (n *Notifier) Refresh(ctx context.Context, ref domain.ItemRef) error {
	if n.registry == nil {
		return nil
	}
	index, ok := n.registry.Find(n.match)
	if !ok {
		n.debug("no matching search index", "match", n.match)
		return nil
	}
	n.debug("refresh search index", "index", index.Name(), "item", ref.ID)
	if err := index.Refresh(ctx, ref); err != nil {
		return fmt.Errorf("refresh index %s: %w", index.Name(), err)
	}
	return nil
}

func (n *Notifier) debug(msg string, args ...interface{}) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
