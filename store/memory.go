// Package store provides snapshot persistence. Memory keeps everything
// in-process for tests and single-run tools; the pgstore subpackage persists
// to PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ozgurk/folio"
)

// Memory is an in-memory folio.SnapshotStore. It is safe for concurrent use
// and keeps its own copies: callers cannot mutate a saved snapshot.
type Memory struct {
	mu    sync.RWMutex
	snaps []*folio.Snapshot
	slugs map[string]bool
}

func NewMemory() *Memory {
	return &Memory{slugs: make(map[string]bool)}
}

func clone(s *folio.Snapshot) *folio.Snapshot {
	c := *s
	if s.IRRPct != nil {
		irr := *s.IRRPct
		c.IRRPct = &irr
	}
	c.Items = append([]folio.SnapshotItem(nil), s.Items...)
	return &c
}

// Save stores the snapshot. The whole record lands at once or not at all.
func (m *Memory) Save(_ context.Context, s *folio.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugs[s.Slug] {
		return fmt.Errorf("slug %q already taken", s.Slug)
	}
	m.snaps = append(m.snaps, clone(s))
	m.slugs[s.Slug] = true
	return nil
}

func (m *Memory) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slugs[slug], nil
}

// LatestBefore returns the series' most recent snapshot strictly before the
// date. Same-day snapshots break the tie by insertion order, latest wins.
func (m *Memory) LatestBefore(_ context.Context, kind folio.SnapshotKind, parentID string, on folio.Date) (*folio.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *folio.Snapshot
	for _, s := range m.snaps {
		if s.Kind != kind || s.ParentID != parentID || !s.On.Before(on) {
			continue
		}
		if best == nil || !s.On.Before(best.On) {
			best = s
		}
	}
	if best == nil {
		return nil, folio.ErrNoSnapshot
	}
	return clone(best), nil
}

func (m *Memory) SetIRR(_ context.Context, id uuid.UUID, irrPct float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snaps {
		if s.ID == id {
			s.IRRPct = &irrPct
			return nil
		}
	}
	return fmt.Errorf("snapshot %s: %w", id, folio.ErrNoSnapshot)
}

// Get returns a snapshot by slug, or ErrNoSnapshot.
func (m *Memory) Get(_ context.Context, slug string) (*folio.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snaps {
		if s.Slug == slug {
			return clone(s), nil
		}
	}
	return nil, fmt.Errorf("snapshot %q: %w", slug, folio.ErrNoSnapshot)
}

var _ folio.SnapshotStore = (*Memory)(nil)
