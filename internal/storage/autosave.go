/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"log/slog"
	"sync"

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
)

// Autosaver writes engine states to a Store in the background.
// Its queue is bounded and coalescing: when it is full the oldest pending
// state is dropped, so the newest state is always the one that gets saved.
// Save errors are logged and remembered but never reach the caller of Enqueue.
type Autosaver struct {
	store Store
	log   *slog.Logger
	q     chan domain.AppState
	done  chan struct{}

	mu      sync.Mutex
	closed  bool
	saved   int
	dropped int
	lastErr error
}

// NewAutosaver starts the background writer. queue < 1 is treated as 1.
func NewAutosaver(store Store, queue int) *Autosaver {
	if queue < 1 {
		queue = 1
	}
	a := &Autosaver{
		store: store,
		log:   applog.WithComponent("autosave"),
		q:     make(chan domain.AppState, queue),
		done:  make(chan struct{}),
	}
	go a.loop()
	return a
}

// Enqueue schedules s for saving. It never blocks. Suitable as an engine listener.
func (a *Autosaver) Enqueue(s domain.AppState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.q <- s:
		return
	default:
	}
	select {
	case <-a.q:
		a.dropped++
	default:
	}
	select {
	case a.q <- s:
	default:
		// only reachable if the queue refilled, which a single producer under mu rules out
		a.dropped++
	}
}

func (a *Autosaver) loop() {
	defer close(a.done)
	for s := range a.q {
		err := a.store.Save(context.Background(), s)
		a.mu.Lock()
		if err != nil {
			a.lastErr = err
		} else {
			a.saved++
		}
		a.mu.Unlock()
		if err != nil {
			applog.WithOperation(a.log, "save").Error("autosave failed", slog.Any("err", err))
		}
	}
}

// Stats reports completed saves and states superseded before they were written.
func (a *Autosaver) Stats() (saved, dropped int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved, a.dropped
}

// Err returns the most recent save error, if any.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Close stops accepting states and waits for pending ones to be written or
// for ctx to end. It returns ctx's error on timeout, otherwise the last save error.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.q)
	}
	a.mu.Unlock()
	select {
	case <-a.done:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
