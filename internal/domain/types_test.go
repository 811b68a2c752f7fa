/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAppStateJSONUsesDocumentKeys(t *testing.T) {
	s := AppState{
		Locations: []LocationProject{{
			ID: "loc-1", Name: "Main", Budget: 100,
			FloorPlan: FloorPlan{Width: 8, Depth: 6},
			Items:     []PlacedItem{{InstanceID: "inst-1", CatalogItemID: "c1", SKUSnapshot: "TL-001"}},
		}},
		CurrentLocationID: "loc-1",
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"locations", "categories", "catalog", "currentLocationId", "selectedId", "history", "historyIndex"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
	loc := m["locations"].([]any)[0].(map[string]any)
	item := loc["items"].([]any)[0].(map[string]any)
	if item["skuSnapshot"] != "TL-001" || item["instanceId"] != "inst-1" {
		t.Fatalf("unexpected placed item encoding: %v", item)
	}
}

func TestSnapshotCloneDoesNotAlias(t *testing.T) {
	s := Snapshot{
		Locations:  []LocationProject{{ID: "l", Items: []PlacedItem{{InstanceID: "a"}}}},
		Categories: []Category{{ID: "cat", Order: 1}},
		Catalog:    []CatalogItem{{ID: "c"}},
	}
	c := s.Clone()
	c.Locations[0].Items[0].InstanceID = "changed"
	c.Categories[0].Name = "changed"
	c.Catalog[0].Name = "changed"
	if s.Locations[0].Items[0].InstanceID != "a" || s.Categories[0].Name != "" || s.Catalog[0].Name != "" {
		t.Fatalf("clone aliases the original: %+v", s)
	}
}

func TestCatalogItemValidate(t *testing.T) {
	exists := func(id string) bool { return id == "cat-1" }
	base := CatalogItem{Name: "Desk", CategoryID: "cat-1", WidthM: 1, DepthM: 1, Price: 0}
	if err := base.Validate(exists); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}
	cases := map[string]func(c *CatalogItem){
		"name":       func(c *CatalogItem) { c.Name = " " },
		"categoryId": func(c *CatalogItem) { c.CategoryID = "cat-9" },
		"widthM":     func(c *CatalogItem) { c.WidthM = 0 },
		"depthM":     func(c *CatalogItem) { c.DepthM = -1 },
		"price":      func(c *CatalogItem) { c.Price = -0.01 },
	}
	for field, mutate := range cases {
		c := base
		mutate(&c)
		err := c.Validate(exists)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: expected validation error on field, got %v", field, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected errors.Is ErrValidation", field)
		}
	}
}

func TestLifecycle(t *testing.T) {
	if (CatalogItem{IsActive: true}).Lifecycle() != LifecycleActive {
		t.Fatalf("active item should report active")
	}
	if (CatalogItem{}).Lifecycle() != LifecycleDeactivated {
		t.Fatalf("inactive item should report deactivated")
	}
}
