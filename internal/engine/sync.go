/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "branchplanner/internal/domain"

// Snapshot synchronization. Placed items carry a cached projection of their
// catalog item. These functions are the only place that projection is
// written: once at placement time, and again only on an explicit sync.

// UncategorizedName labels placements whose category cannot be resolved.
const UncategorizedName = "Uncategorized"

// CategoryName resolves a category id, falling back to UncategorizedName.
func CategoryName(categories []domain.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return UncategorizedName
}

// SnapshotFor builds a placement of item at (x, y) with a fresh projection.
func SnapshotFor(item domain.CatalogItem, categories []domain.Category, instanceID string, x, y float64) domain.PlacedItem {
	p := domain.PlacedItem{InstanceID: instanceID, CatalogItemID: item.ID, X: x, Y: y}
	project(&p, item, categories)
	return p
}

func project(p *domain.PlacedItem, item domain.CatalogItem, categories []domain.Category) {
	p.NameSnapshot = item.Name
	p.SKUSnapshot = item.SKU
	p.WidthMSnapshot = item.WidthM
	p.DepthMSnapshot = item.DepthM
	p.PriceSnapshot = item.Price
	p.CategoryNameSnapshot = CategoryName(categories, item.CategoryID)
}

// SyncPlacements returns a copy of locations where every placement of item
// carries item's current values, plus the number of placements whose
// projection actually changed.
// Placements of other items are left untouched. It never fails.
func SyncPlacements(locations []domain.LocationProject, item domain.CatalogItem, categories []domain.Category) ([]domain.LocationProject, int) {
	out := domain.CloneLocations(locations)
	n := 0
	for li := range out {
		items := out[li].Items
		for i := range items {
			if items[i].CatalogItemID != item.ID {
				continue
			}
			before := items[i]
			project(&items[i], item, categories)
			if items[i] != before {
				n++
			}
		}
	}
	return out, n
}

// usageCount counts placements of a catalog item across all locations.
func usageCount(locations []domain.LocationProject, catalogItemID string) int {
	n := 0
	for _, l := range locations {
		for _, p := range l.Items {
			if p.CatalogItemID == catalogItemID {
				n++
			}
		}
	}
	return n
}
