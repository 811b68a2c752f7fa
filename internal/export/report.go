/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a location's bill of materials and floor plan to
// files: CSV, XLSX, PDF, PNG and SVG.
package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"branchplanner/internal/bom"
	"branchplanner/internal/domain"
	"branchplanner/internal/geometry"
)

// FallbackColor is used for placements whose catalog item is gone or has no color.
const FallbackColor = "#94a3b8"

// Report bundles everything the writers need about one location.
type Report struct {
	Location domain.LocationProject
	// Colors maps catalog item ids to CSS hex colors.
	Colors   map[string]string
	Rows     []bom.Row
	Summary  bom.Summary
	Currency string
}

// NewReport derives the bill of materials and summary of loc. The catalog is
// only consulted for display colors.
func NewReport(loc domain.LocationProject, catalog []domain.CatalogItem) Report {
	colors := make(map[string]string, len(catalog))
	for _, c := range catalog {
		colors[c.ID] = c.Color
	}
	return Report{
		Location: domain.CloneLocation(loc),
		Colors:   colors,
		Rows:     bom.Build(loc.Items),
		Summary:  bom.Summarize(loc),
		Currency: "$",
	}
}

func (r Report) colorOf(p domain.PlacedItem) string {
	if c := r.Colors[p.CatalogItemID]; c != "" {
		return c
	}
	return FallbackColor
}

// bounds returns the placement's covered area in meters.
func bounds(p domain.PlacedItem) geometry.Rect {
	return geometry.PlacementBounds(geometry.Pt{X: p.X, Y: p.Y},
		geometry.Size{W: p.WidthMSnapshot, H: p.DepthMSnapshot}, p.Rotation)
}

// parseHex reads #rgb or #rrggbb; anything else yields the fallback grey.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return parseHex(FallbackColor)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return parseHex(FallbackColor)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func (r Report) money(v fmt.Stringer) string { return r.Currency + v.String() }

// FileName is the default output name for a location and format, e.g.
// "bom_Harbour Branch.csv". Path separators in the name are replaced.
func FileName(locationName, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(locationName))
	if name == "" {
		name = "location"
	}
	return fmt.Sprintf("bom_%s.%s", name, strings.TrimPrefix(ext, "."))
}
