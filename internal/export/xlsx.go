/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	bomSheet       = "BOM"
	placementSheet = "Placements"
)

// WriteXLSX writes a workbook with the bill of materials, a budget summary
// and a sheet listing every placement.
func WriteXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", bomSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("summary style: %w", err)
	}

	for i, h := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bomSheet, cell, h)
		_ = f.SetCellStyle(bomSheet, cell, cell, header)
	}
	row := 2
	for _, b := range r.Rows {
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("A%d", row), b.SKU)
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("B%d", row), b.Name)
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("C%d", row), b.Category)
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("D%d", row), b.UnitPrice.InexactFloat64())
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("E%d", row), b.Quantity)
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("F%d", row), b.Subtotal.InexactFloat64())
		row++
	}

	row++
	s := r.Summary
	summary := []struct {
		label string
		value any
	}{
		{"Total", s.TotalCost.InexactFloat64()},
		{"Budget", s.Budget.InexactFloat64()},
		{"Remaining", s.Remaining.InexactFloat64()},
		{"Over budget", s.OverBudget},
		{"Utilization %", s.UtilizationPercent},
	}
	for _, kv := range summary {
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("E%d", row), kv.label)
		_ = f.SetCellValue(bomSheet, fmt.Sprintf("F%d", row), kv.value)
		_ = f.SetCellStyle(bomSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), bold)
		row++
	}
	for i, w := range []float64{14, 32, 20, 12, 10, 14} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(bomSheet, col, col, w)
	}

	if _, err := f.NewSheet(placementSheet); err != nil {
		return fmt.Errorf("placement sheet: %w", err)
	}
	for i, h := range []string{"Instance", "SKU", "Name", "X (m)", "Y (m)", "Rotation", "Width (m)", "Depth (m)", "Price"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(placementSheet, cell, h)
		_ = f.SetCellStyle(placementSheet, cell, cell, header)
	}
	for i, p := range r.Location.Items {
		vals := []any{p.InstanceID, p.SKUSnapshot, p.NameSnapshot, p.X, p.Y, p.Rotation, p.WidthMSnapshot, p.DepthMSnapshot, p.PriceSnapshot}
		for j, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(placementSheet, cell, v)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
