/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "branchplanner/internal/domain"

// Defaults for locations created without explicit values.
const (
	DefaultLocationName   = "New Location"
	DefaultLocationBudget = 50000.0
	DefaultFloorWidth     = 10.0
	DefaultFloorDepth     = 8.0
)

// Defaults returns the built-in seed: seven categories, five catalog items and
// one demo location with two placements. History fields are left empty.
func Defaults(nowMillis int64) domain.AppState {
	categories := []domain.Category{
		{ID: "cat-1", Name: "Counter Service", Order: 1},
		{ID: "cat-2", Name: "Self-Service", Order: 2},
		{ID: "cat-3", Name: "Office Furniture", Order: 3},
		{ID: "cat-4", Name: "Signage", Order: 4},
		{ID: "cat-5", Name: "Security", Order: 5},
		{ID: "cat-6", Name: "Tech & Power", Order: 6},
		{ID: "cat-7", Name: "Decor", Order: 7},
	}
	catalog := []domain.CatalogItem{
		{ID: "c1", CategoryID: "cat-1", Name: "Standard Counter Desk", WidthM: 1.8, DepthM: 0.8, Price: 1200, SKU: "TL-001", Color: "#3b82f6", IsActive: true},
		{ID: "c2", CategoryID: "cat-2", Name: "Express ATM", WidthM: 0.8, DepthM: 0.8, Price: 4500, SKU: "ATM-E1", Color: "#10b981", IsActive: true},
		{ID: "c3", CategoryID: "cat-3", Name: "Customer Waiting Chair", WidthM: 0.6, DepthM: 0.6, Price: 250, SKU: "CH-W02", Color: "#f59e0b", IsActive: true},
		{ID: "c4", CategoryID: "cat-4", Name: "Digital Branch Map Screen", WidthM: 1.2, DepthM: 0.1, Price: 1800, SKU: "DS-B01", Color: "#8b5cf6", IsActive: true},
		{ID: "c5", CategoryID: "cat-6", Name: "Secure Tablet Kiosk Stand", WidthM: 0.4, DepthM: 0.4, Price: 450, SKU: "TS-S99", Color: "#ef4444", IsActive: true},
	}
	desk := SnapshotFor(catalog[0], categories, "inst-1", 1, 1)
	atm := SnapshotFor(catalog[1], categories, "inst-2", 6, 1)
	atm.Rotation = 90
	loc := domain.LocationProject{
		ID:           "loc-1",
		Name:         "Zhongshan N. Rd Express Branch",
		Address:      "No. 123, Sec. 2, Zhongshan N. Rd., Zhongshan Dist., Taipei",
		Notes:        "Small-footprint demo branch for a high-traffic area.",
		Budget:       25000,
		FloorPlan:    domain.FloorPlan{Width: 8, Depth: 6, Points: []domain.Point{}},
		Items:        []domain.PlacedItem{desk, atm},
		LastModified: nowMillis,
	}
	return domain.AppState{
		Locations:         []domain.LocationProject{loc},
		Categories:        categories,
		Catalog:           catalog,
		CurrentLocationID: loc.ID,
	}
}
