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
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"branchplanner/internal/geometry"
)

// PDF page geometry in points: A4 landscape with a fixed margin. The floor
// plan fills the left panel, the bill of materials the right one.
const (
	pdfPageW  = 842.0
	pdfPageH  = 595.0
	pdfMargin = 36.0
	pdfPlanW  = 470.0
	pdfTableX = pdfMargin + pdfPlanW + 24
)

// WritePDF writes a one-page plan sheet: the floor plan with every placement,
// the bill of materials and the budget summary. Text uses the built-in
// Helvetica so no fonts are embedded.
func WritePDF(path string, r Report) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pdfPageW, Ht: pdfPageH},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	loc := r.Location
	pdf.SetTitle(tr(loc.Name+" - Plan"), false)
	pdf.SetAuthor("Branch Planner", false)
	pdf.AddPage()

	pdf.SetTextColor(15, 23, 42)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pdfMargin, pdfMargin+4, tr(loc.Name))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(pdfMargin, pdfMargin+18, tr(fmt.Sprintf("%s   %g x %g m", loc.Address, loc.FloorPlan.Width, loc.FloorPlan.Depth)))

	drawPDFPlan(pdf, r, tr)
	drawPDFTable(pdf, r, tr)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawPDFPlan(pdf *gofpdf.Fpdf, r Report, tr func(string) string) {
	fp := r.Location.FloorPlan
	top := pdfMargin + 32
	availH := pdfPageH - pdfMargin - top
	if fp.Width <= 0 || fp.Depth <= 0 {
		return
	}
	scale := math.Min(pdfPlanW/fp.Width, availH/fp.Depth) // pt per meter
	ox, oy := pdfMargin, top

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(226, 232, 240)
	pdf.SetLineWidth(0.3)
	for x := geometry.GridSize; x < fp.Width; x += geometry.GridSize {
		pdf.Line(ox+x*scale, oy, ox+x*scale, oy+fp.Depth*scale)
	}
	for y := geometry.GridSize; y < fp.Depth; y += geometry.GridSize {
		pdf.Line(ox, oy+y*scale, ox+fp.Width*scale, oy+y*scale)
	}
	pdf.SetDrawColor(148, 163, 184)
	pdf.SetLineWidth(1.5)
	pdf.Rect(ox, oy, fp.Width*scale, fp.Depth*scale, "D")

	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(30, 41, 59)
	pdf.SetFont("Helvetica", "B", 6)
	for _, p := range r.Location.Items {
		b := bounds(p)
		c := parseHex(r.colorOf(p))
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.SetAlpha(0.7, "Normal")
		pdf.Rect(ox+b.X*scale, oy+b.Y*scale, b.W*scale, b.H*scale, "FD")
		pdf.SetAlpha(1, "Normal")
		pdf.SetTextColor(15, 23, 42)
		pdf.Text(ox+b.X*scale+2, oy+b.Y*scale+8, tr(p.NameSnapshot))
	}
}

func drawPDFTable(pdf *gofpdf.Fpdf, r Report, tr func(string) string) {
	x := pdfTableX
	y := pdfMargin + 40
	cols := []struct {
		title string
		w     float64
	}{{"SKU", 58}, {"Name", 124}, {"Qty", 30}, {"Subtotal", 60}}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(217, 225, 242)
	cx := x
	for _, c := range cols {
		pdf.SetXY(cx, y)
		pdf.CellFormat(c.w, 14, c.title, "B", 0, "L", true, 0, "")
		cx += c.w
	}
	y += 14
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range r.Rows {
		vals := []string{row.SKU, row.Name, fmt.Sprintf("%d", row.Quantity), r.money(row.Subtotal)}
		cx = x
		for i, c := range cols {
			pdf.SetXY(cx, y)
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(c.w, 12, tr(vals[i]), "", 0, align, false, 0, "")
			cx += c.w
		}
		y += 12
	}

	s := r.Summary
	y += 10
	pdf.SetFont("Helvetica", "B", 9)
	lines := [][2]string{
		{"Total", r.money(s.TotalCost)},
		{"Budget", r.money(s.Budget)},
		{"Remaining", r.money(s.Remaining)},
		{"Utilization", fmt.Sprintf("%d%%", s.UtilizationPercent)},
	}
	for i, kv := range lines {
		pdf.SetTextColor(15, 23, 42)
		if i == 2 && s.OverBudget {
			pdf.SetTextColor(220, 38, 38)
		}
		pdf.SetXY(x, y)
		pdf.CellFormat(182, 13, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 13, kv[1], "", 0, "R", false, 0, "")
		y += 13
	}
	if s.OverBudget {
		pdf.SetTextColor(220, 38, 38)
		pdf.SetXY(x, y+4)
		pdf.CellFormat(272, 13, "Over budget", "", 0, "L", false, 0, "")
	}
}
