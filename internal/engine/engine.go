/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine is the layout state engine: an explicitly constructed
// container holding categories, the catalog and location projects, with one
// method per command. Every successful command commits exactly one history
// entry; commands addressing an unknown id change nothing and commit nothing.
//
// All exported methods are safe for concurrent use. A command runs its
// mutation, optional snapshot sync and history commit under one lock, so no
// partial state is ever observable. Readers always receive deep copies.
// Listeners see changes in commit order and must not issue commands
// themselves.
package engine

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"branchplanner/internal/domain"
	"branchplanner/internal/geometry"
	applog "branchplanner/internal/log"
	"branchplanner/internal/undo"
)

// Engine owns the live planner state and its undo history.
type Engine struct {
	mu sync.Mutex

	locations  []domain.LocationProject
	categories []domain.Category
	catalog    []domain.CatalogItem
	currentID  string
	selectedID string
	hist       *undo.Manager

	clock    func() time.Time
	newID    func(prefix string) string
	depth    int
	log      *slog.Logger
	resolver geometry.Resolver

	listeners    map[int]func(domain.AppState)
	nextListener int

	// seq numbers every applied change under mu; notified is the last one
	// delivered to listeners.
	seq      uint64
	notifyMu sync.Mutex
	turn     *sync.Cond
	notified uint64
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		clock:     time.Now,
		newID:     newUUID,
		depth:     undo.MaxEntries,
		resolver:  geometry.DefaultResolver(),
		listeners: make(map[int]func(domain.AppState)),
	}
	e.turn = sync.NewCond(&e.notifyMu)
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = applog.WithComponent("engine")
	}
	return e
}

// New builds an engine seeded with the built-in categories, catalog and demo
// location. The history starts with that state as its only entry.
func New(opts ...Option) *Engine {
	e := newEngine(opts)
	seed := Defaults(e.nowMillis())
	e.locations = seed.Locations
	e.categories = seed.Categories
	e.catalog = seed.Catalog
	e.currentID = seed.CurrentLocationID
	e.hist = undo.NewManager(undo.Config{MaxEntries: e.depth}, e.snapshotLocked())
	return e
}

// Restore builds an engine from a previously persisted document, replacing
// the defaults wholesale. A missing history is started from the live state;
// an out-of-range cursor lands on the newest entry.
func Restore(state domain.AppState, opts ...Option) *Engine {
	e := newEngine(opts)
	s := state.Clone()
	e.locations = s.Locations
	e.categories = s.Categories
	e.catalog = s.Catalog
	e.currentID = s.CurrentLocationID
	e.selectedID = s.SelectedID
	e.hist = undo.NewManager(undo.Config{MaxEntries: e.depth}, e.snapshotLocked())
	e.hist.Restore(s.History, s.HistoryIndex)
	e.repairCurrentLocked()
	e.log.Debug("state restored",
		slog.Int("locations", len(e.locations)),
		slog.Int("catalog", len(e.catalog)),
		slog.Int("history", e.hist.Len()))
	return e
}

func (e *Engine) nowMillis() int64 { return e.clock().UnixMilli() }

func (e *Engine) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{Locations: e.locations, Categories: e.categories, Catalog: e.catalog}.Clone()
}

func (e *Engine) stateLocked() domain.AppState {
	s := e.snapshotLocked()
	return domain.AppState{
		Locations:         s.Locations,
		Categories:        s.Categories,
		Catalog:           s.Catalog,
		CurrentLocationID: e.currentID,
		SelectedID:        e.selectedID,
		History:           e.hist.Entries(),
		HistoryIndex:      e.hist.Index(),
	}
}

func (e *Engine) applySnapshotLocked(s domain.Snapshot) {
	e.locations = s.Locations
	e.categories = s.Categories
	e.catalog = s.Catalog
}

// repairCurrentLocked points the current location at an existing location,
// falling back to the first one or none.
func (e *Engine) repairCurrentLocked() {
	for _, l := range e.locations {
		if l.ID == e.currentID {
			return
		}
	}
	e.currentID = ""
	if len(e.locations) > 0 {
		e.currentID = e.locations[0].ID
	}
}

// command runs fn under the lock and commits a history entry when it reports
// a change. Listeners are notified after the lock is released, in the order
// the changes were applied.
func (e *Engine) command(op string, fn func() bool) bool {
	return e.change(op, true, fn)
}

func (e *Engine) change(op string, commit bool, fn func() bool) bool {
	st, ls, seq, ok := e.apply(commit, fn)
	if !ok {
		return false
	}
	if commit {
		applog.WithOperation(e.log, op).Debug("committed",
			slog.Int("history_len", len(st.History)),
			slog.Int("history_index", st.HistoryIndex))
	}
	e.notify(seq, st, ls)
	return true
}

// notify waits until every earlier change has been delivered, then hands st
// to the listeners. The last listener gets st itself, the others copies.
func (e *Engine) notify(seq uint64, st domain.AppState, ls []func(domain.AppState)) {
	e.notifyMu.Lock()
	for e.notified != seq-1 {
		e.turn.Wait()
	}
	e.notifyMu.Unlock()
	defer func() {
		e.notifyMu.Lock()
		e.notified = seq
		e.notifyMu.Unlock()
		e.turn.Broadcast()
	}()
	for i, l := range ls {
		s := st
		if i < len(ls)-1 {
			s = st.Clone()
		}
		l(s)
	}
}

// apply holds the lock for the mutation and the commit only; the deferred
// unlock keeps the engine readable if fn panics.
func (e *Engine) apply(commit bool, fn func() bool) (domain.AppState, []func(domain.AppState), uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn() {
		return domain.AppState{}, nil, 0, false
	}
	if commit {
		e.hist.Commit(e.snapshotLocked())
	}
	e.seq++
	return e.stateLocked(), e.listenersLocked(), e.seq, true
}

func (e *Engine) listenersLocked() []func(domain.AppState) {
	keys := make([]int, 0, len(e.listeners))
	for k := range e.listeners {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]func(domain.AppState), 0, len(keys))
	for _, k := range keys {
		out = append(out, e.listeners[k])
	}
	return out
}

// Subscribe registers fn to receive a copy of the full state after every
// change, including selection changes. The returned func unregisters it.
func (e *Engine) Subscribe(fn func(domain.AppState)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// State returns a deep copy of the whole state, history included.
func (e *Engine) State() domain.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// CurrentLocation returns a copy of the current location, if any.
func (e *Engine) CurrentLocation() (domain.LocationProject, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.locations {
		if l.ID == e.currentID {
			return domain.CloneLocation(l), true
		}
	}
	return domain.LocationProject{}, false
}

// FindCatalogItem tolerates ids that were removed from the catalog.
func (e *Engine) FindCatalogItem(id string) (domain.CatalogItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.catalog {
		if c.ID == id {
			return c, true
		}
	}
	return domain.CatalogItem{}, false
}

// Resolver returns the geometry resolver used for drops and drags.
func (e *Engine) Resolver() geometry.Resolver { return e.resolver }

func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// Undo restores the previous history entry and clears the selection.
func (e *Engine) Undo() bool {
	return e.change("undo", false, func() bool {
		s, ok := e.hist.Undo()
		if !ok {
			return false
		}
		e.applySnapshotLocked(s)
		e.selectedID = ""
		e.repairCurrentLocked()
		return true
	})
}

// Redo re-applies the next history entry and clears the selection.
func (e *Engine) Redo() bool {
	return e.change("redo", false, func() bool {
		s, ok := e.hist.Redo()
		if !ok {
			return false
		}
		e.applySnapshotLocked(s)
		e.selectedID = ""
		e.repairCurrentLocked()
		return true
	})
}

// SetCurrentLocation switches the working location and clears the selection.
// It is not recorded in history.
func (e *Engine) SetCurrentLocation(id string) bool {
	return e.change("set_current_location", false, func() bool {
		if e.locationIndexLocked(id) < 0 {
			return false
		}
		e.currentID = id
		e.selectedID = ""
		return true
	})
}

// SetSelected selects a placed instance; an empty id clears the selection.
// It is not recorded in history.
func (e *Engine) SetSelected(instanceID string) {
	e.change("set_selected", false, func() bool {
		e.selectedID = instanceID
		return true
	})
}
