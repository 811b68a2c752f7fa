/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"slices"

	"branchplanner/internal/domain"
)

// LocationDraft is the input for a new location. Zero values take the
// package defaults; Budget and FloorPlan are pointers so zero is expressible.
type LocationDraft struct {
	Name      string
	Address   string
	Notes     string
	Budget    *float64
	FloorPlan *domain.FloorPlan
}

// LocationPatch holds location fields to change; nil means unchanged.
type LocationPatch struct {
	Name      *string
	Address   *string
	Notes     *string
	Budget    *float64
	FloorPlan *domain.FloorPlan
}

func (p LocationPatch) apply(l domain.LocationProject) domain.LocationProject {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.Budget != nil {
		l.Budget = *p.Budget
	}
	if p.FloorPlan != nil {
		l.FloorPlan = *p.FloorPlan
		l.FloorPlan.Points = append([]domain.Point{}, p.FloorPlan.Points...)
	}
	return l
}

// sameDetails compares the patchable fields of two locations.
func sameDetails(a, b domain.LocationProject) bool {
	return a.Name == b.Name &&
		a.Address == b.Address &&
		a.Notes == b.Notes &&
		a.Budget == b.Budget &&
		a.FloorPlan.Width == b.FloorPlan.Width &&
		a.FloorPlan.Depth == b.FloorPlan.Depth &&
		slices.Equal(a.FloorPlan.Points, b.FloorPlan.Points)
}

func (e *Engine) locationIndexLocked(id string) int {
	for i, l := range e.locations {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// AddLocation creates an empty location, makes it current and clears the
// selection.
func (e *Engine) AddLocation(d LocationDraft) (string, error) {
	var id string
	var err error
	e.command("add_location", func() bool {
		l := domain.LocationProject{
			Name:      d.Name,
			Address:   d.Address,
			Notes:     d.Notes,
			Budget:    DefaultLocationBudget,
			FloorPlan: domain.FloorPlan{Width: DefaultFloorWidth, Depth: DefaultFloorDepth, Points: []domain.Point{}},
			Items:     []domain.PlacedItem{},
		}
		if l.Name == "" {
			l.Name = DefaultLocationName
		}
		if d.Budget != nil {
			l.Budget = *d.Budget
		}
		if d.FloorPlan != nil {
			l.FloorPlan = *d.FloorPlan
			l.FloorPlan.Points = append([]domain.Point{}, d.FloorPlan.Points...)
		}
		if err = l.Validate(); err != nil {
			return false
		}
		id = e.newID(PrefixLocation)
		l.ID = id
		l.LastModified = e.nowMillis()
		e.locations = append(e.locations, l)
		e.currentID = id
		e.selectedID = ""
		return true
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// DuplicateLocation deep-copies a location. Every copied placement gets a
// new instance id that is distinct from all ids in the source. The copy
// becomes current.
func (e *Engine) DuplicateLocation(id string) (string, bool) {
	var newID string
	ok := e.command("duplicate_location", func() bool {
		i := e.locationIndexLocked(id)
		if i < 0 {
			return false
		}
		l := domain.CloneLocation(e.locations[i])
		l.ID = e.newID(PrefixLocation)
		l.Name += " (Copy)"
		for k := range l.Items {
			l.Items[k].InstanceID = e.newID(PrefixInstance)
		}
		l.LastModified = e.nowMillis()
		newID = l.ID
		e.locations = append(e.locations, l)
		e.currentID = newID
		e.selectedID = ""
		return true
	})
	return newID, ok
}

// UpdateLocation merges p into the location; the result must validate. A
// patch that leaves every field as it was commits nothing.
func (e *Engine) UpdateLocation(id string, p LocationPatch) (bool, error) {
	var err error
	ok := e.command("update_location", func() bool {
		i := e.locationIndexLocked(id)
		if i < 0 {
			return false
		}
		merged := p.apply(e.locations[i])
		if err = merged.Validate(); err != nil {
			return false
		}
		if sameDetails(merged, e.locations[i]) {
			return false
		}
		merged.LastModified = e.nowMillis()
		e.locations[i] = merged
		return true
	})
	return ok, err
}

// DeleteLocation removes a location and clears the selection. If it was
// current, the first remaining location becomes current, or none.
func (e *Engine) DeleteLocation(id string) bool {
	return e.command("delete_location", func() bool {
		i := e.locationIndexLocked(id)
		if i < 0 {
			return false
		}
		e.locations = append(e.locations[:i:i], e.locations[i+1:]...)
		if e.currentID == id {
			e.currentID = ""
			if len(e.locations) > 0 {
				e.currentID = e.locations[0].ID
			}
		}
		e.selectedID = ""
		return true
	})
}
