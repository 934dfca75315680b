// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package anchors keeps the set of detected plane anchors current from an
// asynchronous update stream.
package anchors

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gogpu/vrrbench/internal/logging"
)

// Classification is the detected surface type of a plane.
type Classification uint8

const (
	ClassUnknown Classification = iota
	ClassWall
	ClassFloor
	ClassCeiling
	ClassTable
	ClassSeat
	ClassWindow
	ClassDoor
)

var classNames = [...]string{"unknown", "wall", "floor", "ceiling", "table", "seat", "window", "door"}

func (c Classification) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Event is the kind of anchor update.
type Event uint8

const (
	EventAdded Event = iota
	EventUpdated
	EventRemoved
)

func (e Event) String() string {
	switch e {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Anchor is a detected plane.
type Anchor struct {
	ID             uuid.UUID
	Classification Classification
	Transform      mgl64.Mat4
	Extent         mgl64.Vec2
}

// Update is one element of the anchor stream.
type Update struct {
	Event  Event
	Anchor Anchor
}

// Store maps anchor IDs to the latest anchor. Each operation holds the lock
// for one map access; readers get copies.
type Store struct {
	mu     sync.RWMutex
	planes map[uuid.UUID]Anchor
}

// NewStore returns an empty store sized for capacity planes.
func NewStore(capacity int) *Store {
	return &Store{planes: make(map[uuid.UUID]Anchor, max(capacity, 0))}
}

// Put inserts or replaces a.
func (s *Store) Put(a Anchor) {
	s.mu.Lock()
	s.planes[a.ID] = a
	s.mu.Unlock()
}

// Remove deletes id. Removing an unknown id is a no-op.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.planes, id)
	s.mu.Unlock()
}

// Get returns the anchor for id.
func (s *Store) Get(id uuid.UUID) (Anchor, bool) {
	s.mu.RLock()
	a, ok := s.planes[id]
	s.mu.RUnlock()
	return a, ok
}

// Len returns the number of planes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.planes)
}

// Snapshot returns a copy of every plane ordered by ID.
func (s *Store) Snapshot() []Anchor {
	s.mu.RLock()
	out := make([]Anchor, 0, len(s.planes))
	for _, a := range s.planes {
		out = append(out, a)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Anchor) int { return bytes.Compare(a.ID[:], b.ID[:]) })
	return out
}

// Apply folds one update into the store. Window planes are discarded and
// Apply reports false for them.
func (s *Store) Apply(u Update) bool {
	if u.Anchor.Classification == ClassWindow {
		return false
	}
	switch u.Event {
	case EventAdded, EventUpdated:
		s.Put(u.Anchor)
	case EventRemoved:
		s.Remove(u.Anchor.ID)
	default:
		return false
	}
	return true
}

// Tracker consumes an update stream into a Store.
type Tracker struct {
	store   *Store
	applied atomic.Int64
	skipped atomic.Int64
}

// NewTracker returns a tracker feeding store.
func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store}
}

// Store returns the tracked store.
func (t *Tracker) Store() *Store { return t.store }

// Applied returns the number of updates folded into the store.
func (t *Tracker) Applied() int64 { return t.applied.Load() }

// Skipped returns the number of discarded updates.
func (t *Tracker) Skipped() int64 { return t.skipped.Load() }

// Run applies updates until the channel closes (nil) or ctx is canceled
// (ctx.Err()).
func (t *Tracker) Run(ctx context.Context, updates <-chan Update) error {
	log := logging.Logger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if t.store.Apply(u) {
				t.applied.Add(1)
				continue
			}
			t.skipped.Add(1)
			log.Debug("anchors: update skipped",
				"event", u.Event, "id", u.Anchor.ID, "class", u.Anchor.Classification)
		}
	}
}
