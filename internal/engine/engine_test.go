/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"branchplanner/internal/domain"
	"branchplanner/internal/geometry"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(prefix string) string {
			n++
			return fmt.Sprintf("%sgen-%d", prefix, n)
		}),
	}
	return New(append(base, opts...)...)
}

func ptr[T any](v T) *T { return &v }

func TestNewSeedsDefaults(t *testing.T) {
	e := newTestEngine()
	st := e.State()
	require.Len(t, st.Categories, 7)
	require.Len(t, st.Catalog, 5)
	require.Len(t, st.Locations, 1)
	require.Equal(t, "loc-1", st.CurrentLocationID)
	require.Len(t, st.History, 1)
	require.Equal(t, 0, st.HistoryIndex)
	require.False(t, e.CanUndo())

	loc := st.Locations[0]
	require.Equal(t, fixedNow.UnixMilli(), loc.LastModified)
	require.Len(t, loc.Items, 2)
	atm := loc.Items[1]
	require.Equal(t, "inst-2", atm.InstanceID)
	require.Equal(t, 90, atm.Rotation)
	require.Equal(t, "Self-Service", atm.CategoryNameSnapshot)
	require.Equal(t, 4500.0, atm.PriceSnapshot)
}

func TestCategoryCommands(t *testing.T) {
	e := newTestEngine()
	id := e.AddCategory("Lighting")
	st := e.State()
	require.Len(t, st.Categories, 8)
	require.Equal(t, 8, st.Categories[7].Order)
	require.Equal(t, id, st.Categories[7].ID)

	require.True(t, e.UpdateCategory(id, CategoryPatch{Name: ptr("Lights")}))
	require.False(t, e.UpdateCategory("missing", CategoryPatch{Name: ptr("x")}))
	require.False(t, e.UpdateCategory(id, CategoryPatch{}))
	require.Equal(t, 2, e.State().HistoryIndex)

	require.False(t, e.ReorderCategory("missing", Up))
	require.False(t, e.ReorderCategory(id, Direction("sideways")))
}

func TestDeleteCategoryRenumbersSurvivors(t *testing.T) {
	e := newTestEngine()
	// cat-5 and cat-7 are not used by the seed catalog
	require.NoError(t, e.DeleteCategory("cat-5"))
	st := e.State()
	require.Len(t, st.Categories, 6)
	for i, c := range st.Categories {
		require.Equal(t, i+1, c.Order, "category %s", c.ID)
		require.NotEqual(t, "cat-5", c.ID)
	}
	require.NoError(t, e.DeleteCategory("missing"))
	require.Equal(t, 1, e.State().HistoryIndex)
}

func TestDeleteCategoryInUse(t *testing.T) {
	e := newTestEngine()
	before := e.State()
	err := e.DeleteCategory("cat-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCategoryInUse))
	var inUse *CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	require.Equal(t, "c1", inUse.ItemID)

	after := e.State()
	require.Equal(t, before.Categories, after.Categories)
	require.Equal(t, before.HistoryIndex, after.HistoryIndex)
}

func TestAddCatalogItemValidation(t *testing.T) {
	e := newTestEngine()
	_, err := e.AddCatalogItem(CatalogItemDraft{CategoryID: "cat-404", Name: "Ghost", WidthM: 1, DepthM: 1})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.AddCatalogItem(CatalogItemDraft{CategoryID: "cat-1", Name: "Flat", WidthM: 0, DepthM: 1})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.AddCatalogItem(CatalogItemDraft{CategoryID: "cat-1", Name: "Cheap", WidthM: 1, DepthM: 1, Price: -1})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Len(t, e.State().Catalog, 5)
	require.Equal(t, 0, e.State().HistoryIndex)

	id, err := e.AddCatalogItem(CatalogItemDraft{CategoryID: "cat-7", Name: "Plant", SKU: "PL-1", WidthM: 0.5, DepthM: 0.5, Price: 80})
	require.NoError(t, err)
	c, ok := e.FindCatalogItem(id)
	require.True(t, ok)
	require.True(t, c.IsActive)
	require.Equal(t, domain.LifecycleActive, c.Lifecycle())
}

func TestUpdateCatalogItemRejectsInvalidMerge(t *testing.T) {
	e := newTestEngine()
	ok, err := e.UpdateCatalogItem("c1", CatalogItemPatch{DepthM: ptr(-0.5)}, true)
	require.False(t, ok)
	require.ErrorIs(t, err, domain.ErrValidation)
	c, _ := e.FindCatalogItem("c1")
	require.Equal(t, 0.8, c.DepthM)

	ok, err = e.UpdateCatalogItem("nope", CatalogItemPatch{Name: ptr("x")}, false)
	require.False(t, ok)
	require.NoError(t, err)
}

func TestDuplicateCatalogItem(t *testing.T) {
	e := newTestEngine()
	id, ok := e.DuplicateCatalogItem("c3")
	require.True(t, ok)
	c, _ := e.FindCatalogItem(id)
	require.Equal(t, "Customer Waiting Chair (Copy)", c.Name)
	require.Equal(t, "CH-W02-copy", c.SKU)
	require.Equal(t, 0, e.CatalogUsage(id))

	_, ok = e.DuplicateCatalogItem("missing")
	require.False(t, ok)
}

func TestDeactivatedItemCanBeReactivated(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, DeleteDeactivated, e.DeleteCatalogItem("c1"))
	c, _ := e.FindCatalogItem("c1")
	require.Equal(t, domain.LifecycleDeactivated, c.Lifecycle())

	_, ok := e.PlaceCatalogItem("loc-1", "c1", geometry.Pt{X: 2, Y: 2})
	require.False(t, ok, "inactive items are not placeable")

	ok, err := e.UpdateCatalogItem("c1", CatalogItemPatch{IsActive: ptr(true)}, false)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok = e.PlaceCatalogItem("loc-1", "c1", geometry.Pt{X: 2, Y: 2})
	require.True(t, ok)
	require.Equal(t, DeleteNotFound, e.DeleteCatalogItem("missing"))
}

func TestLocationCommands(t *testing.T) {
	e := newTestEngine()
	e.SetSelected("inst-1")

	id, err := e.AddLocation(LocationDraft{})
	require.NoError(t, err)
	st := e.State()
	loc, ok := st.FindLocation(id)
	require.True(t, ok)
	require.Equal(t, DefaultLocationName, loc.Name)
	require.Equal(t, DefaultLocationBudget, loc.Budget)
	require.Equal(t, domain.FloorPlan{Width: 10, Depth: 8, Points: []domain.Point{}}, loc.FloorPlan)
	require.Empty(t, loc.Items)
	require.Equal(t, id, st.CurrentLocationID)
	require.Empty(t, st.SelectedID)

	_, err = e.AddLocation(LocationDraft{Budget: ptr(-1.0)})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.AddLocation(LocationDraft{FloorPlan: &domain.FloorPlan{Width: 0, Depth: 4}})
	require.ErrorIs(t, err, domain.ErrValidation)

	ok, err = e.UpdateLocation(id, LocationPatch{Name: ptr("Harbour"), Budget: ptr(12000.0)})
	require.NoError(t, err)
	require.True(t, ok)
	cur, _ := e.CurrentLocation()
	require.Equal(t, "Harbour", cur.Name)
	require.Equal(t, 12000.0, cur.Budget)

	require.True(t, e.SetCurrentLocation("loc-1"))
	require.False(t, e.SetCurrentLocation("missing"))

	// deleting the current location falls back to the first remaining one
	require.True(t, e.DeleteLocation("loc-1"))
	require.Equal(t, id, e.State().CurrentLocationID)
	require.True(t, e.DeleteLocation(id))
	require.Empty(t, e.State().CurrentLocationID)
	_, ok = e.CurrentLocation()
	require.False(t, ok)
	require.False(t, e.DeleteLocation(id))
}

func TestDeleteNonCurrentLocationKeepsCurrent(t *testing.T) {
	e := newTestEngine()
	id, err := e.AddLocation(LocationDraft{Name: "Second"})
	require.NoError(t, err)
	require.True(t, e.DeleteLocation("loc-1"))
	require.Equal(t, id, e.State().CurrentLocationID)
}

func TestPlacementCommands(t *testing.T) {
	e := newTestEngine()
	id, ok := e.PlaceCatalogItem("loc-1", "c3", geometry.Pt{X: 2, Y: 3})
	require.True(t, ok)
	cur, _ := e.CurrentLocation()
	p, ok := cur.FindPlacedItem(id)
	require.True(t, ok)
	require.Equal(t, "CH-W02", p.SKUSnapshot)
	require.Equal(t, "Office Furniture", p.CategoryNameSnapshot)

	require.True(t, e.RotatePlacedItem("loc-1", id))
	require.True(t, e.MovePlacedItem("loc-1", id, geometry.Pt{X: 63.5, Y: 31.5}, true))
	cur, _ = e.CurrentLocation()
	p, _ = cur.FindPlacedItem(id)
	require.Equal(t, 90, p.Rotation)
	require.InDelta(t, 1.5, p.X, 1e-9)
	require.InDelta(t, 0.5, p.Y, 1e-9)

	ok, err := e.UpdatePlacedItem("loc-1", id, PlacedItemPatch{Rotation: ptr(45)})
	require.False(t, ok)
	require.ErrorIs(t, err, domain.ErrValidation)

	e.SetSelected(id)
	require.True(t, e.RemovePlacedItem("loc-1", id))
	require.Empty(t, e.State().SelectedID)
	require.False(t, e.RemovePlacedItem("loc-1", id))
	require.False(t, e.RotatePlacedItem("loc-x", id))
}

func TestRemoveOtherItemKeepsSelection(t *testing.T) {
	e := newTestEngine()
	e.SetSelected("inst-1")
	require.True(t, e.RemovePlacedItem("loc-1", "inst-2"))
	require.Equal(t, "inst-1", e.State().SelectedID)
}

func TestAddItemToLayoutAssignsFreshIDOnCollision(t *testing.T) {
	e := newTestEngine()
	id, err := e.AddItemToLayout("loc-1", domain.PlacedItem{InstanceID: "inst-1", CatalogItemID: "c3"})
	require.NoError(t, err)
	require.NotEqual(t, "inst-1", id)

	id, err = e.AddItemToLayout("loc-1", domain.PlacedItem{InstanceID: "keep-me", CatalogItemID: "c3"})
	require.NoError(t, err)
	require.Equal(t, "keep-me", id)

	_, err = e.AddItemToLayout("loc-1", domain.PlacedItem{CatalogItemID: "c3", Rotation: 30})
	require.ErrorIs(t, err, domain.ErrValidation)

	id, err = e.AddItemToLayout("missing", domain.PlacedItem{CatalogItemID: "c3"})
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestNoOpCommandsCommitNothing(t *testing.T) {
	e := newTestEngine()
	calls := 0
	unsubscribe := e.Subscribe(func(domain.AppState) { calls++ })
	defer unsubscribe()

	e.RemovePlacedItem("loc-1", "nope")
	e.DeleteLocation("nope")
	e.DuplicateLocation("nope")
	e.UpdateLocation("nope", LocationPatch{Name: ptr("x")})
	require.NoError(t, e.DeleteCategory("nope"))
	require.False(t, e.ReorderCategory("nope", Up))
	_, ok := e.DuplicateCatalogItem("nope")
	require.False(t, ok)
	require.Equal(t, DeleteNotFound, e.DeleteCatalogItem("nope"))
	e.Undo()
	e.Redo()
	require.Equal(t, 0, calls)
	require.Len(t, e.State().History, 1)
}

func TestUnchangedUpdatesCommitNothing(t *testing.T) {
	e := newTestEngine()
	calls := 0
	unsubscribe := e.Subscribe(func(domain.AppState) { calls++ })
	defer unsubscribe()
	before := e.State()

	cases := []struct {
		name string
		run  func() (bool, error)
	}{
		{"empty placement patch", func() (bool, error) {
			return e.UpdatePlacedItem("loc-1", "inst-1", PlacedItemPatch{})
		}},
		{"same placement position", func() (bool, error) {
			return e.UpdatePlacedItem("loc-1", "inst-1", PlacedItemPatch{X: ptr(1.0), Y: ptr(1.0), Rotation: ptr(0)})
		}},
		{"empty catalog patch", func() (bool, error) {
			return e.UpdateCatalogItem("c1", CatalogItemPatch{}, false)
		}},
		{"same catalog values", func() (bool, error) {
			return e.UpdateCatalogItem("c1", CatalogItemPatch{Name: ptr("Standard Counter Desk"), Price: ptr(1200.0)}, false)
		}},
		{"sync of placements already current", func() (bool, error) {
			return e.UpdateCatalogItem("c1", CatalogItemPatch{}, true)
		}},
		{"empty location patch", func() (bool, error) {
			return e.UpdateLocation("loc-1", LocationPatch{})
		}},
		{"same location values", func() (bool, error) {
			return e.UpdateLocation("loc-1", LocationPatch{Budget: ptr(25000.0), FloorPlan: &domain.FloorPlan{Width: 8, Depth: 6}})
		}},
		{"same category name", func() (bool, error) {
			return e.UpdateCategory("cat-1", CategoryPatch{Name: ptr("Counter Service")}), nil
		}},
		{"empty category patch", func() (bool, error) {
			return e.UpdateCategory("cat-1", CategoryPatch{}), nil
		}},
	}
	for _, tc := range cases {
		ok, err := tc.run()
		require.NoError(t, err, tc.name)
		require.False(t, ok, tc.name)
	}
	require.Equal(t, 0, calls)
	after := e.State()
	require.Len(t, after.History, 1)
	require.Equal(t, before.Locations[0].LastModified, after.Locations[0].LastModified)
}

func TestRepeatedDeactivationCommitsOnce(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, DeleteDeactivated, e.DeleteCatalogItem("c1"))
	require.Len(t, e.State().History, 2)

	require.Equal(t, DeleteDeactivated, e.DeleteCatalogItem("c1"))
	require.Len(t, e.State().History, 2)
	item, ok := e.FindCatalogItem("c1")
	require.True(t, ok)
	require.False(t, item.IsActive)
}

func TestSyncOnlyUpdateRefreshesStaleSnapshots(t *testing.T) {
	e := newTestEngine()
	ok, err := e.UpdateCatalogItem("c1", CatalogItemPatch{Price: ptr(1300.0)}, false)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.UpdateCatalogItem("c1", CatalogItemPatch{}, true)
	require.NoError(t, err)
	require.True(t, ok, "stale snapshots make a sync-only update a change")
	p, _ := e.State().Locations[0].FindPlacedItem("inst-1")
	require.Equal(t, 1300.0, p.PriceSnapshot)
	require.Len(t, e.State().History, 3)
}

func TestListenersReceiveIndependentCopies(t *testing.T) {
	e := newTestEngine()
	var got []domain.AppState
	e.Subscribe(func(s domain.AppState) {
		s.Locations[0].Name = "mutated by listener"
		got = append(got, s)
	})
	unsubscribe := e.Subscribe(func(s domain.AppState) { got = append(got, s) })

	e.AddCategory("x")
	require.Len(t, got, 2)
	require.Equal(t, "Zhongshan N. Rd Express Branch", got[1].Locations[0].Name)
	require.Equal(t, "Zhongshan N. Rd Express Branch", e.State().Locations[0].Name)

	unsubscribe()
	e.AddCategory("y")
	require.Len(t, got, 3)
}

func TestListenersSeeConcurrentChangesInOrder(t *testing.T) {
	e := New()
	var (
		mu       sync.Mutex
		indices  []int
		reversed int
	)
	e.Subscribe(func(s domain.AppState) {
		time.Sleep(50 * time.Microsecond)
		mu.Lock()
		defer mu.Unlock()
		if n := len(indices); n > 0 && s.HistoryIndex < indices[n-1] {
			reversed++
		}
		indices = append(indices, s.HistoryIndex)
	})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				e.AddCategory(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	require.Zero(t, reversed)
	require.Len(t, indices, 40)
	require.Equal(t, e.State().HistoryIndex, indices[len(indices)-1])
}

func TestUndoClearsSelection(t *testing.T) {
	e := newTestEngine()
	e.AddCategory("x")
	e.SetSelected("inst-1")
	require.True(t, e.Undo())
	require.Empty(t, e.State().SelectedID)
	require.True(t, e.CanRedo())
	require.True(t, e.Redo())
	require.False(t, e.CanRedo())
}

func TestRestoreReplacesDefaults(t *testing.T) {
	doc := domain.AppState{
		Locations: []domain.LocationProject{{
			ID: "loc-a", Name: "A", Budget: 10,
			FloorPlan: domain.FloorPlan{Width: 4, Depth: 4},
		}},
		Categories:        []domain.Category{{ID: "cat-a", Name: "Only", Order: 1}},
		CurrentLocationID: "loc-gone",
		HistoryIndex:      3,
	}
	e := Restore(doc, WithClock(func() time.Time { return fixedNow }))
	st := e.State()
	require.Len(t, st.Categories, 1)
	require.Empty(t, st.Catalog)
	require.Equal(t, "loc-a", st.CurrentLocationID)
	require.Len(t, st.History, 1)
	require.Equal(t, 0, st.HistoryIndex)

	e.AddCategory("two")
	restored := Restore(e.State())
	require.True(t, restored.CanUndo())
	require.True(t, restored.Undo())
	require.Len(t, restored.State().Categories, 1)
}
