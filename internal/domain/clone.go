/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Deep copy helpers. Every value handed across the engine boundary goes
// through one of these so readers never alias live slices.

func CloneLocation(l LocationProject) LocationProject {
	out := l
	out.Items = append([]PlacedItem(nil), l.Items...)
	if out.Items == nil {
		out.Items = []PlacedItem{}
	}
	if l.FloorPlan.Points != nil {
		out.FloorPlan.Points = append([]Point(nil), l.FloorPlan.Points...)
	} else {
		out.FloorPlan.Points = []Point{}
	}
	return out
}

func CloneLocations(ls []LocationProject) []LocationProject {
	out := make([]LocationProject, len(ls))
	for i, l := range ls {
		out[i] = CloneLocation(l)
	}
	return out
}

func CloneCategories(cs []Category) []Category {
	return append(make([]Category, 0, len(cs)), cs...)
}

func CloneCatalog(cs []CatalogItem) []CatalogItem {
	return append(make([]CatalogItem, 0, len(cs)), cs...)
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Locations:  CloneLocations(s.Locations),
		Categories: CloneCategories(s.Categories),
		Catalog:    CloneCatalog(s.Catalog),
	}
}

// Clone returns a deep copy of the whole state including history.
func (s AppState) Clone() AppState {
	out := s
	out.Locations = CloneLocations(s.Locations)
	out.Categories = CloneCategories(s.Categories)
	out.Catalog = CloneCatalog(s.Catalog)
	out.History = make([]Snapshot, len(s.History))
	for i, h := range s.History {
		out.History[i] = h.Clone()
	}
	return out
}
