/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"

	"branchplanner/internal/domain"
)

// MaxEntries is the hard upper bound on retained history entries.
const MaxEntries = 50

// Config controls the depth cap.
type Config struct {
	// MaxEntries limits the number of snapshots kept in memory. Values outside
	// [1, MaxEntries] are clamped; zero means MaxEntries.
	MaxEntries int
}

// Manager is a linear undo/redo log of full-state snapshots with a cursor.
// Entries after the cursor form the redo branch and are discarded by the next
// Commit. It is safe for concurrent use.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	entries []domain.Snapshot
	index   int
}

// NewManager starts a log whose single entry is the initial state.
func NewManager(cfg Config, initial domain.Snapshot) *Manager {
	cfg.MaxEntries = clampDepth(cfg.MaxEntries)
	return &Manager{cfg: cfg, entries: []domain.Snapshot{initial.Clone()}}
}

func clampDepth(n int) int {
	if n <= 0 || n > MaxEntries {
		return MaxEntries
	}
	return n
}

// Commit truncates the redo branch, appends a copy of s and moves the cursor
// onto it. The oldest entries are evicted once the cap is exceeded.
func (m *Manager) Commit(s domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], s.Clone())
	m.index = len(m.entries) - 1
	m.enforceCapLocked()
}

// Undo moves the cursor back one entry and returns a copy of it.
func (m *Manager) Undo() (domain.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index <= 0 {
		return domain.Snapshot{}, false
	}
	m.index--
	return m.entries[m.index].Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of it.
func (m *Manager) Redo() (domain.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index >= len(m.entries)-1 {
		return domain.Snapshot{}, false
	}
	m.index++
	return m.entries[m.index].Clone(), true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index < len(m.entries)-1
}

// Current returns a copy of the entry under the cursor.
func (m *Manager) Current() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].Clone()
}

// Entries returns deep copies of all retained entries, oldest first.
func (m *Manager) Entries() []domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Snapshot, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Clone()
	}
	return out
}

func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Restore replaces the log with persisted entries. An out-of-range index is
// pulled back onto the last entry; an over-long log keeps its newest entries.
// Restore reports false and leaves the log untouched when entries is empty.
func (m *Manager) Restore(entries []domain.Snapshot, index int) bool {
	if len(entries) == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]domain.Snapshot, len(entries))
	for i, e := range entries {
		m.entries[i] = e.Clone()
	}
	if index < 0 || index >= len(m.entries) {
		index = len(m.entries) - 1
	}
	m.index = index
	m.enforceCapLocked()
	return true
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (entries int, index int, redoable int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), m.index, len(m.entries) - 1 - m.index
}

func (m *Manager) enforceCapLocked() {
	if extra := len(m.entries) - m.cfg.MaxEntries; extra > 0 {
		// drop the oldest extras and re-base the cursor
		m.entries = append([]domain.Snapshot{}, m.entries[extra:]...)
		m.index -= extra
		if m.index < 0 {
			m.index = 0
		}
	}
}
