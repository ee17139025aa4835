// Package registry tracks the group conversations under active monitoring.
package registry

import (
	"log/slog"
	"sync"
	"time"
)

// GroupInfo describes one conversation visible on the platform.
type GroupInfo struct {
	ID           string
	Name         string
	Participants int
}

// Group is a monitored conversation with its last-activity bookkeeping.
type Group struct {
	ID           string
	Name         string
	Participants int
	LastActivity time.Time
}

// Registry holds the monitored group set. Membership is populated once from a
// full platform scan and only ever re-populated on an explicit rescan request;
// a plain reconnect keeps the existing membership.
type Registry struct {
	mu        sync.RWMutex
	groups    map[string]*Group
	populated bool
	now       func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[string]*Group),
		now:    time.Now,
	}
}

// Populate intersects the visible conversations against the configured target
// display names (exact match) and records the hits. It runs at most once per
// process lifetime unless Rescan was called; repeat calls leave membership
// untouched. Returns the number of monitored groups.
func (r *Registry) Populate(visible []GroupInfo, targetNames []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.populated {
		return len(r.groups)
	}
	r.populated = true

	targets := make(map[string]struct{}, len(targetNames))
	for _, name := range targetNames {
		targets[name] = struct{}{}
	}

	for _, g := range visible {
		if _, ok := targets[g.Name]; !ok {
			continue
		}
		r.groups[g.ID] = &Group{
			ID:           g.ID,
			Name:         g.Name,
			Participants: g.Participants,
			LastActivity: r.now(),
		}
		slog.Info("registry: monitoring group", "name", g.Name, "participants", g.Participants)
	}

	if len(r.groups) == 0 {
		slog.Warn("registry: no target groups found, check the configured group names")
	}
	return len(r.groups)
}

// Rescan requests a fresh full scan: the next Populate call rebuilds
// membership from scratch.
func (r *Registry) Rescan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.populated = false
	r.groups = make(map[string]*Group)
}

// Populated reports whether the one-shot scan already ran.
func (r *Registry) Populated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.populated
}

// Has reports whether the group id is under monitoring.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[id]
	return ok
}

// Name returns the display name for a monitored group id.
func (r *Registry) Name(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.groups[id]; ok {
		return g.Name
	}
	return ""
}

// Touch updates the last-activity timestamp for a monitored group. Unknown
// ids are a no-op, never an insert.
func (r *Registry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return false
	}
	g.LastActivity = r.now()
	return true
}

// Len returns the number of monitored groups.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// Snapshot returns a copy of the monitored groups.
func (r *Registry) Snapshot() []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out
}
