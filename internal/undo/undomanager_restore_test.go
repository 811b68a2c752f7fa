/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"testing"

	"branchplanner/internal/domain"
)

func TestRestoreNormalisesCursor(t *testing.T) {
	m := NewManager(Config{}, snap("s0"))
	if m.Restore(nil, 0) {
		t.Fatalf("empty restore must be rejected")
	}
	if !m.Restore([]domain.Snapshot{snap("a"), snap("b")}, 7) {
		t.Fatalf("restore failed")
	}
	if m.Index() != 1 || nameOf(m.Current()) != "b" {
		t.Fatalf("out-of-range cursor should land on the last entry, got %d", m.Index())
	}
	m.Restore([]domain.Snapshot{snap("a"), snap("b")}, 0)
	if !m.CanRedo() || m.CanUndo() {
		t.Fatalf("cursor 0 of 2 should allow redo only")
	}
}

func TestRestoreTrimsOverlongLog(t *testing.T) {
	var entries []domain.Snapshot
	for i := 0; i < 55; i++ {
		entries = append(entries, snap(fmt.Sprintf("s%d", i)))
	}
	m := NewManager(Config{}, snap("x"))
	m.Restore(entries, 54)
	if m.Len() != MaxEntries || m.Index() != MaxEntries-1 {
		t.Fatalf("unexpected len=%d idx=%d", m.Len(), m.Index())
	}
	if nameOf(m.Entries()[0]) != "s5" {
		t.Fatalf("oldest retained entry should be s5")
	}
}
