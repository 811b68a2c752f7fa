/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the branch planner.
// Field names and JSON tags mirror the persisted planner document so that
// previously saved layouts keep loading without a migration step.

// Category is a named grouping with a display rank. Order is dense 1..N
// across all categories.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CatalogItem is a reusable module definition available for placement.
// IsActive=false marks a soft-deleted item that is kept only because
// placements still reference it.
type CatalogItem struct {
	ID         string  `json:"id"`
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	WidthM     float64 `json:"widthM"` // meters
	DepthM     float64 `json:"depthM"` // meters
	Price      float64 `json:"price"`
	Notes      string  `json:"notes,omitempty"`
	Color      string  `json:"color"` // CSS hex, e.g. #3b82f6
	IsActive   bool    `json:"isActive"`
}

// PlacedItem is one occurrence of a catalog item inside a location.
//
// The *Snapshot fields are a cached projection of the catalog item taken at
// placement time. They are the source of truth for rendering and costing and
// are never refreshed implicitly; only an explicit sync rewrites them.
type PlacedItem struct {
	InstanceID    string  `json:"instanceId"`
	CatalogItemID string  `json:"catalogItemId"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Rotation      int     `json:"rotation"` // 0, 90, 180 or 270

	NameSnapshot         string  `json:"nameSnapshot"`
	SKUSnapshot          string  `json:"skuSnapshot"`
	WidthMSnapshot       float64 `json:"widthMSnapshot"`
	DepthMSnapshot       float64 `json:"depthMSnapshot"`
	PriceSnapshot        float64 `json:"priceSnapshot"`
	CategoryNameSnapshot string  `json:"categoryNameSnapshot"`
}

// Point is an outline vertex in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FloorPlan is the bounded rectangle items are laid out in. Points is an
// optional outline carried for document compatibility; it is not interpreted.
type FloorPlan struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Points []Point `json:"points"`
}

// LocationProject is one floor-plan scenario. It owns its placed items.
type LocationProject struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Notes        string       `json:"notes"`
	Budget       float64      `json:"budget"`
	FloorPlan    FloorPlan    `json:"floorPlan"`
	Items        []PlacedItem `json:"items"`
	LastModified int64        `json:"lastModified"` // unix millis
}

// Snapshot is one immutable capture of the undoable state. Selection and the
// current location are deliberately not part of it.
type Snapshot struct {
	Locations  []LocationProject `json:"locations"`
	Categories []Category        `json:"categories"`
	Catalog    []CatalogItem     `json:"catalog"`
}

// AppState is the root aggregate and the persisted document shape.
type AppState struct {
	Locations         []LocationProject `json:"locations"`
	Categories        []Category        `json:"categories"`
	Catalog           []CatalogItem     `json:"catalog"`
	CurrentLocationID string            `json:"currentLocationId"`
	SelectedID        string            `json:"selectedId"`
	History           []Snapshot        `json:"history"`
	HistoryIndex      int               `json:"historyIndex"`
}

// Lifecycle is the catalog item state machine: Active -> Deactivated | Removed.
type Lifecycle string

const (
	LifecycleActive      Lifecycle = "active"
	LifecycleDeactivated Lifecycle = "deactivated"
	LifecycleRemoved     Lifecycle = "removed"
)

// Lifecycle reports the item's current state. Removed items are no longer
// stored, so a stored item is either active or deactivated.
func (c CatalogItem) Lifecycle() Lifecycle {
	if c.IsActive {
		return LifecycleActive
	}
	return LifecycleDeactivated
}

// Snapshot returns the undoable part of the state as a deep copy.
func (s AppState) Snapshot() Snapshot {
	return Snapshot{Locations: s.Locations, Categories: s.Categories, Catalog: s.Catalog}.Clone()
}

// FindLocation returns the location with the given id.
func (s AppState) FindLocation(id string) (LocationProject, bool) {
	for _, l := range s.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return LocationProject{}, false
}

// FindCatalogItem tolerates missing entries; placements may outlive their catalog item.
func (s Snapshot) FindCatalogItem(id string) (CatalogItem, bool) {
	for _, c := range s.Catalog {
		if c.ID == id {
			return c, true
		}
	}
	return CatalogItem{}, false
}

// FindPlacedItem looks up an instance within this location only.
func (l LocationProject) FindPlacedItem(instanceID string) (PlacedItem, bool) {
	for _, pi := range l.Items {
		if pi.InstanceID == instanceID {
			return pi, true
		}
	}
	return PlacedItem{}, false
}

// FloorArea is the floor rectangle in square meters.
func (l LocationProject) FloorArea() float64 { return l.FloorPlan.Width * l.FloorPlan.Depth }

// Area is the snapshot footprint in square meters; rotation does not change it.
func (p PlacedItem) Area() float64 { return p.WidthMSnapshot * p.DepthMSnapshot }
