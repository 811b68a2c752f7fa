/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"log/slog"
	"time"

	"branchplanner/internal/geometry"
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock replaces time.Now, used for LastModified stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithIDGenerator replaces the uuid based id source. The generator receives
// the entity prefix ("cat-", "c-", "loc-" or "inst-") and must return ids that
// are unique across the whole state.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithHistoryDepth lowers the number of retained history entries.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) { e.depth = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithGeometry sets the scale and grid used by drop and drag commands.
func WithGeometry(r geometry.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}
