/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bom

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"branchplanner/internal/domain"
)

func placed(sku string, price, w, d float64) domain.PlacedItem {
	return domain.PlacedItem{SKUSnapshot: sku, NameSnapshot: "item " + sku, CategoryNameSnapshot: "cat", PriceSnapshot: price, WidthMSnapshot: w, DepthMSnapshot: d}
}

func TestBuildGroupsBySKUInFirstAppearanceOrder(t *testing.T) {
	rows := Build([]domain.PlacedItem{
		placed("B", 10.5, 1, 1),
		placed("A", 3, 1, 1),
		placed("B", 10.5, 1, 1),
		placed("B", 10.5, 1, 1),
	})
	require.Len(t, rows, 2)
	require.Equal(t, "B", rows[0].SKU)
	require.Equal(t, 3, rows[0].Quantity)
	require.True(t, rows[0].Subtotal.Equal(decimal.RequireFromString("31.5")), rows[0].Subtotal.String())
	require.Equal(t, "A", rows[1].SKU)
	require.True(t, Total(rows).Equal(decimal.RequireFromString("34.5")))
	require.Empty(t, Build(nil))
}

func TestSubtotalAvoidsFloatDrift(t *testing.T) {
	rows := Build([]domain.PlacedItem{placed("X", 0.1, 1, 1), placed("X", 0.1, 1, 1), placed("X", 0.1, 1, 1)})
	require.Equal(t, "0.3", rows[0].Subtotal.String())
}

func TestSummarize(t *testing.T) {
	loc := domain.LocationProject{
		Budget:    1000,
		FloorPlan: domain.FloorPlan{Width: 4, Depth: 5},
		Items: []domain.PlacedItem{
			placed("A", 600, 2, 2),
			placed("B", 500, 1, 1),
		},
	}
	s := Summarize(loc)
	require.True(t, s.TotalCost.Equal(decimal.NewFromInt(1100)))
	require.True(t, s.Remaining.Equal(decimal.NewFromInt(-100)))
	require.True(t, s.OverBudget)
	require.Equal(t, 20.0, s.FloorArea)
	require.Equal(t, 5.0, s.UsedArea)
	require.Equal(t, 25, s.UtilizationPercent)
	require.Equal(t, 2, s.ItemCount)

	loc.Budget = 1100
	require.False(t, Summarize(loc).OverBudget, "equal to budget is not over")
}

func TestUtilizationIsCapped(t *testing.T) {
	loc := domain.LocationProject{
		FloorPlan: domain.FloorPlan{Width: 1, Depth: 1},
		Items:     []domain.PlacedItem{placed("A", 0, 2, 2)},
	}
	require.Equal(t, 100, Summarize(loc).UtilizationPercent)
	require.Equal(t, 0, Summarize(domain.LocationProject{}).UtilizationPercent)
}
