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

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
)

// CatalogItemDraft is the input for a new catalog item.
type CatalogItemDraft struct {
	CategoryID string
	Name       string
	SKU        string
	WidthM     float64
	DepthM     float64
	Price      float64
	Notes      string
	Color      string
}

// CatalogItemPatch holds catalog fields to change; nil means unchanged.
// Setting IsActive reactivates or deactivates an item directly.
type CatalogItemPatch struct {
	CategoryID *string
	Name       *string
	SKU        *string
	WidthM     *float64
	DepthM     *float64
	Price      *float64
	Notes      *string
	Color      *string
	IsActive   *bool
}

func (p CatalogItemPatch) apply(c domain.CatalogItem) domain.CatalogItem {
	if p.CategoryID != nil {
		c.CategoryID = *p.CategoryID
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.SKU != nil {
		c.SKU = *p.SKU
	}
	if p.WidthM != nil {
		c.WidthM = *p.WidthM
	}
	if p.DepthM != nil {
		c.DepthM = *p.DepthM
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	return c
}

// DeleteOutcome reports which lifecycle transition a delete took.
type DeleteOutcome int

const (
	DeleteNotFound DeleteOutcome = iota
	DeleteRemoved
	DeleteDeactivated
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteRemoved:
		return "removed"
	case DeleteDeactivated:
		return "deactivated"
	default:
		return "not_found"
	}
}

func (e *Engine) catalogIndexLocked(id string) int {
	for i, c := range e.catalog {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddCatalogItem validates the draft and appends it as an active item.
func (e *Engine) AddCatalogItem(d CatalogItemDraft) (string, error) {
	var id string
	var err error
	e.command("add_catalog_item", func() bool {
		item := domain.CatalogItem{
			CategoryID: d.CategoryID,
			Name:       d.Name,
			SKU:        d.SKU,
			WidthM:     d.WidthM,
			DepthM:     d.DepthM,
			Price:      d.Price,
			Notes:      d.Notes,
			Color:      d.Color,
			IsActive:   true,
		}
		if err = item.Validate(e.categoryExistsLocked); err != nil {
			return false
		}
		id = e.newID(PrefixCatalog)
		item.ID = id
		e.catalog = append(e.catalog, item)
		return true
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateCatalogItem merges p into the item. The merged item must validate.
// Existing placements keep their snapshots unless syncExisting is set, in
// which case every placement of the item in every location is refreshed.
// It reports false when neither the item nor any placement changed.
func (e *Engine) UpdateCatalogItem(id string, p CatalogItemPatch, syncExisting bool) (bool, error) {
	var err error
	synced := 0
	ok := e.command("update_catalog_item", func() bool {
		i := e.catalogIndexLocked(id)
		if i < 0 {
			return false
		}
		merged := p.apply(e.catalog[i])
		if err = merged.Validate(e.categoryExistsLocked); err != nil {
			return false
		}
		changed := merged != e.catalog[i]
		e.catalog[i] = merged
		if syncExisting {
			var locs []domain.LocationProject
			if locs, synced = SyncPlacements(e.locations, merged, e.categories); synced > 0 {
				e.locations = locs
			}
		}
		return changed || synced > 0
	})
	if ok && synced > 0 {
		applog.WithOperation(e.log, "update_catalog_item").Debug("placements synced",
			slog.String("catalog_item", id), slog.Int("count", synced))
	}
	return ok, err
}

// DeleteCatalogItem removes an unused item. An item still placed anywhere is
// deactivated instead and its placements stay byte-identical; deactivating an
// inactive item commits nothing.
func (e *Engine) DeleteCatalogItem(id string) DeleteOutcome {
	out := DeleteNotFound
	e.command("delete_catalog_item", func() bool {
		i := e.catalogIndexLocked(id)
		if i < 0 {
			return false
		}
		if usageCount(e.locations, id) > 0 {
			out = DeleteDeactivated
			if !e.catalog[i].IsActive {
				return false
			}
			e.catalog[i].IsActive = false
			return true
		}
		e.catalog = append(e.catalog[:i:i], e.catalog[i+1:]...)
		out = DeleteRemoved
		return true
	})
	return out
}

// DuplicateCatalogItem copies an item under a fresh id. Usage is not copied.
func (e *Engine) DuplicateCatalogItem(id string) (string, bool) {
	var newID string
	ok := e.command("duplicate_catalog_item", func() bool {
		i := e.catalogIndexLocked(id)
		if i < 0 {
			return false
		}
		c := e.catalog[i]
		c.ID = e.newID(PrefixCatalog)
		c.Name += " (Copy)"
		c.SKU += "-copy"
		c.IsActive = true
		newID = c.ID
		e.catalog = append(e.catalog, c)
		return true
	})
	return newID, ok
}

// CatalogUsage counts placements of a catalog item across all locations.
func (e *Engine) CatalogUsage(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return usageCount(e.locations, id)
}
