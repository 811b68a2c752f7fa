/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bom derives the bill of materials and the cost/space summary of a
// location from its placed items. Costing uses the price snapshots, never the
// live catalog.
package bom

import (
	"math"

	"github.com/shopspring/decimal"

	"branchplanner/internal/domain"
)

// Row is one line of the bill of materials: all placements sharing a SKU.
type Row struct {
	SKU       string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// Build groups placements by SKU snapshot in order of first appearance.
// Name, category and unit price come from the first placement of each SKU.
func Build(items []domain.PlacedItem) []Row {
	index := make(map[string]int)
	var rows []Row
	for _, p := range items {
		i, ok := index[p.SKUSnapshot]
		if !ok {
			index[p.SKUSnapshot] = len(rows)
			rows = append(rows, Row{
				SKU:       p.SKUSnapshot,
				Name:      p.NameSnapshot,
				Category:  p.CategoryNameSnapshot,
				UnitPrice: decimal.NewFromFloat(p.PriceSnapshot),
			})
			i = len(rows) - 1
		}
		rows[i].Quantity++
	}
	for i := range rows {
		rows[i].Subtotal = rows[i].UnitPrice.Mul(decimal.NewFromInt(int64(rows[i].Quantity)))
	}
	return rows
}

// Total sums the row subtotals.
func Total(rows []Row) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Subtotal)
	}
	return sum
}

// Summary is the derived budget and space report of one location.
type Summary struct {
	TotalCost          decimal.Decimal
	Budget             decimal.Decimal
	Remaining          decimal.Decimal
	OverBudget         bool
	FloorArea          float64 // m²
	UsedArea           float64 // m²
	UtilizationPercent int     // rounded, capped at 100
	ItemCount          int
}

// Summarize computes the budget and space figures for a location. Being over
// budget is reported, never an error.
func Summarize(loc domain.LocationProject) Summary {
	total := decimal.Zero
	used := 0.0
	for _, p := range loc.Items {
		total = total.Add(decimal.NewFromFloat(p.PriceSnapshot))
		used += p.Area()
	}
	budget := decimal.NewFromFloat(loc.Budget)
	s := Summary{
		TotalCost:  total,
		Budget:     budget,
		Remaining:  budget.Sub(total),
		OverBudget: total.GreaterThan(budget),
		FloorArea:  loc.FloorArea(),
		UsedArea:   used,
		ItemCount:  len(loc.Items),
	}
	if s.FloorArea > 0 {
		s.UtilizationPercent = int(math.Min(100, math.Round(used/s.FloorArea*100)))
	}
	return s
}
