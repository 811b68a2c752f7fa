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
	"sort"

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
)

// Direction moves a category one rank up (lower order) or down.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// CategoryPatch holds the editable category fields; nil means unchanged.
// Order is changed only through ReorderCategory.
type CategoryPatch struct {
	Name *string
}

func (e *Engine) categoryIndexLocked(id string) int {
	for i, c := range e.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) categoryExistsLocked(id string) bool { return e.categoryIndexLocked(id) >= 0 }

// renumberCategoriesLocked sorts by the current order and reassigns 1..N.
func (e *Engine) renumberCategoriesLocked() {
	sort.SliceStable(e.categories, func(i, j int) bool { return e.categories[i].Order < e.categories[j].Order })
	for i := range e.categories {
		e.categories[i].Order = i + 1
	}
}

// AddCategory appends a category ranked last. Names are not validated here.
func (e *Engine) AddCategory(name string) string {
	var id string
	e.command("add_category", func() bool {
		id = e.newID(PrefixCategory)
		e.categories = append(e.categories, domain.Category{ID: id, Name: name, Order: len(e.categories) + 1})
		return true
	})
	return id
}

// UpdateCategory renames a category. Placements keep their category name
// snapshot until their catalog item is synced.
func (e *Engine) UpdateCategory(id string, p CategoryPatch) bool {
	return e.command("update_category", func() bool {
		i := e.categoryIndexLocked(id)
		if i < 0 || p.Name == nil || *p.Name == e.categories[i].Name {
			return false
		}
		e.categories[i].Name = *p.Name
		return true
	})
}

// DeleteCategory removes an unused category and renumbers the rest to 1..N.
// A category still referenced by a catalog item is left in place and a
// *CategoryInUseError is returned. Unknown ids are ignored.
func (e *Engine) DeleteCategory(id string) error {
	var inUse error
	e.command("delete_category", func() bool {
		i := e.categoryIndexLocked(id)
		if i < 0 {
			return false
		}
		for _, c := range e.catalog {
			if c.CategoryID == id {
				inUse = &CategoryInUseError{CategoryID: id, ItemID: c.ID}
				return false
			}
		}
		e.categories = append(e.categories[:i:i], e.categories[i+1:]...)
		e.renumberCategoriesLocked()
		return true
	})
	if inUse != nil {
		applog.WithOperation(e.log, "delete_category").Warn("category deletion refused", slog.Any("err", inUse))
	}
	return inUse
}

// ReorderCategory swaps a category with its neighbour in rank order. At the
// boundary nothing moves, but orders are still renumbered and committed.
func (e *Engine) ReorderCategory(id string, dir Direction) bool {
	return e.command("reorder_category", func() bool {
		if e.categoryIndexLocked(id) < 0 || (dir != Up && dir != Down) {
			return false
		}
		e.renumberCategoriesLocked()
		i := e.categoryIndexLocked(id)
		j := i - 1
		if dir == Down {
			j = i + 1
		}
		if j >= 0 && j < len(e.categories) {
			e.categories[i], e.categories[j] = e.categories[j], e.categories[i]
		}
		for k := range e.categories {
			e.categories[k].Order = k + 1
		}
		return true
	})
}
