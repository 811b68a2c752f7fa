/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"branchplanner/internal/domain"
	"branchplanner/internal/geometry"
)

// PlacedItemPatch holds placement fields to change; nil means unchanged.
type PlacedItemPatch struct {
	X        *float64
	Y        *float64
	Rotation *int
}

// CatalogDescriptor is what an input surface hands over when a catalog item
// is dragged onto the floor.
type CatalogDescriptor struct {
	ID         string
	CategoryID string
	Name       string
	SKU        string
	WidthM     float64
	DepthM     float64
	Price      float64
}

// Describe builds the drag descriptor for a catalog item.
func Describe(c domain.CatalogItem) CatalogDescriptor {
	return CatalogDescriptor{
		ID:         c.ID,
		CategoryID: c.CategoryID,
		Name:       c.Name,
		SKU:        c.SKU,
		WidthM:     c.WidthM,
		DepthM:     c.DepthM,
		Price:      c.Price,
	}
}

// DropRequest describes a drop gesture in surface pixels.
type DropRequest struct {
	LocationID string
	Item       CatalogDescriptor
	Pointer    geometry.Pt
	Surface    geometry.Size
	Snap       bool
}

func (e *Engine) placedIndexLocked(locIdx int, instanceID string) int {
	for i, p := range e.locations[locIdx].Items {
		if p.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (e *Engine) touchLocked(locIdx int) { e.locations[locIdx].LastModified = e.nowMillis() }

// appendPlacementLocked adds p to the location, replacing an empty or
// colliding instance id with a fresh one.
func (e *Engine) appendPlacementLocked(locIdx int, p domain.PlacedItem) string {
	if p.InstanceID == "" || e.placedIndexLocked(locIdx, p.InstanceID) >= 0 {
		p.InstanceID = e.newID(PrefixInstance)
	}
	l := &e.locations[locIdx]
	l.Items = append(l.Items, p)
	e.touchLocked(locIdx)
	return p.InstanceID
}

// AddItemToLayout appends a prepared placement to a location and returns its
// instance id. The snapshot fields are stored as given.
func (e *Engine) AddItemToLayout(locationID string, item domain.PlacedItem) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	var id string
	e.command("add_item_to_layout", func() bool {
		li := e.locationIndexLocked(locationID)
		if li < 0 {
			return false
		}
		id = e.appendPlacementLocked(li, item)
		return true
	})
	return id, nil
}

// PlaceCatalogItem places an active catalog item with its top-left corner at
// pos, taking the snapshot from the live catalog entry.
func (e *Engine) PlaceCatalogItem(locationID, catalogItemID string, pos geometry.Pt) (string, bool) {
	var id string
	ok := e.command("place_catalog_item", func() bool {
		li := e.locationIndexLocked(locationID)
		ci := e.catalogIndexLocked(catalogItemID)
		if li < 0 || ci < 0 || !e.catalog[ci].IsActive {
			return false
		}
		p := SnapshotFor(e.catalog[ci], e.categories, "", pos.X, pos.Y)
		id = e.appendPlacementLocked(li, p)
		return true
	})
	return id, ok
}

// DropCatalogItem centers the dragged item under the pointer, snapping when
// requested, places it and selects the new instance.
func (e *Engine) DropCatalogItem(req DropRequest) (string, bool) {
	var id string
	ok := e.command("drop_catalog_item", func() bool {
		li := e.locationIndexLocked(req.LocationID)
		if li < 0 {
			return false
		}
		fp := e.locations[li].FloorPlan
		pos := e.resolver.DropPosition(req.Pointer, req.Surface,
			geometry.Size{W: fp.Width, H: fp.Depth},
			geometry.Size{W: req.Item.WidthM, H: req.Item.DepthM}, req.Snap)
		item := domain.CatalogItem{
			ID:         req.Item.ID,
			CategoryID: req.Item.CategoryID,
			Name:       req.Item.Name,
			SKU:        req.Item.SKU,
			WidthM:     req.Item.WidthM,
			DepthM:     req.Item.DepthM,
			Price:      req.Item.Price,
		}
		id = e.appendPlacementLocked(li, SnapshotFor(item, e.categories, "", pos.X, pos.Y))
		e.selectedID = id
		return true
	})
	return id, ok
}

// UpdatePlacedItem patches position or rotation of one placement. It reports
// false, committing nothing, when the placement is missing or unchanged.
func (e *Engine) UpdatePlacedItem(locationID, instanceID string, p PlacedItemPatch) (bool, error) {
	if p.Rotation != nil && !domain.ValidRotation(*p.Rotation) {
		return false, domain.PlacedItem{Rotation: *p.Rotation}.Validate()
	}
	ok := e.command("update_placed_item", func() bool {
		li := e.locationIndexLocked(locationID)
		if li < 0 {
			return false
		}
		pi := e.placedIndexLocked(li, instanceID)
		if pi < 0 {
			return false
		}
		it := &e.locations[li].Items[pi]
		next := *it
		if p.X != nil {
			next.X = *p.X
		}
		if p.Y != nil {
			next.Y = *p.Y
		}
		if p.Rotation != nil {
			next.Rotation = *p.Rotation
		}
		if next == *it {
			return false
		}
		*it = next
		e.touchLocked(li)
		return true
	})
	return ok, nil
}

// MovePlacedItem finishes a drag: layerPx is the node position in pixels
// relative to the floor origin.
func (e *Engine) MovePlacedItem(locationID, instanceID string, layerPx geometry.Pt, snap bool) bool {
	pos := e.resolver.DragEnd(layerPx, snap)
	ok, _ := e.UpdatePlacedItem(locationID, instanceID, PlacedItemPatch{X: &pos.X, Y: &pos.Y})
	return ok
}

// RotatePlacedItem turns a placement by a quarter turn clockwise.
func (e *Engine) RotatePlacedItem(locationID, instanceID string) bool {
	return e.command("rotate_placed_item", func() bool {
		li := e.locationIndexLocked(locationID)
		if li < 0 {
			return false
		}
		pi := e.placedIndexLocked(li, instanceID)
		if pi < 0 {
			return false
		}
		it := &e.locations[li].Items[pi]
		it.Rotation = geometry.NextRotation(it.Rotation)
		e.touchLocked(li)
		return true
	})
}

// RemovePlacedItem deletes one placement, clearing the selection if it was
// the selected instance.
func (e *Engine) RemovePlacedItem(locationID, instanceID string) bool {
	return e.command("remove_placed_item", func() bool {
		li := e.locationIndexLocked(locationID)
		if li < 0 {
			return false
		}
		pi := e.placedIndexLocked(li, instanceID)
		if pi < 0 {
			return false
		}
		items := e.locations[li].Items
		e.locations[li].Items = append(items[:pi:pi], items[pi+1:]...)
		if e.selectedID == instanceID {
			e.selectedID = ""
		}
		e.touchLocked(li)
		return true
	})
}
