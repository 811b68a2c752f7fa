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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"branchplanner/internal/geometry"
)

// PNGOptions controls PNG rendering of the floor plan.
// PixelsPerMeter defaults to the editor scale; Margin is in pixels.
type PNGOptions struct {
	PixelsPerMeter float64
	Margin         int
	Grid           bool
	Labels         bool
}

// DefaultPNGOptions renders like the editor: 50 px/m, grid and labels on.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{PixelsPerMeter: geometry.PixelsPerMeter, Margin: 20, Grid: true, Labels: true}
}

var (
	pngBackground = color.RGBA{241, 245, 249, 255}
	pngFloor      = color.RGBA{255, 255, 255, 255}
	pngGrid       = color.RGBA{226, 232, 240, 255}
	pngBorder     = color.RGBA{148, 163, 184, 255}
	pngItemStroke = color.RGBA{30, 41, 59, 255}
)

// RenderPlan draws the floor plan of the report's location.
func RenderPlan(r Report, opt PNGOptions) *image.RGBA {
	ppm := opt.PixelsPerMeter
	if ppm <= 0 {
		ppm = geometry.PixelsPerMeter
	}
	m := opt.Margin
	fp := r.Location.FloorPlan
	fw := int(math.Round(fp.Width * ppm))
	fh := int(math.Round(fp.Depth * ppm))
	img := image.NewRGBA(image.Rect(0, 0, fw+2*m+1, fh+2*m+1))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: pngBackground}, image.Point{}, draw.Src)
	fillRect(img, m, m, m+fw, m+fh, pngFloor)

	if opt.Grid {
		step := geometry.GridSize * ppm
		for x := step; x < float64(fw); x += step {
			px := m + int(math.Round(x))
			for y := m; y <= m+fh; y++ {
				img.SetRGBA(px, y, pngGrid)
			}
		}
		for y := step; y < float64(fh); y += step {
			py := m + int(math.Round(y))
			for x := m; x <= m+fw; x++ {
				img.SetRGBA(x, py, pngGrid)
			}
		}
	}
	strokeRect(img, m, m, m+fw, m+fh, pngBorder)

	toPx := func(v float64) int { return m + int(math.Round(v*ppm)) }
	for _, p := range r.Location.Items {
		b := bounds(p)
		x0, y0 := toPx(b.X), toPx(b.Y)
		x1, y1 := toPx(b.X+b.W)-1, toPx(b.Y+b.H)-1
		fillRect(img, x0, y0, x1, y1, blend(parseHex(r.colorOf(p)), pngFloor, 0.7))
		strokeRect(img, x0, y0, x1, y1, pngItemStroke)
		if opt.Labels {
			drawLabel(img, x0+2, y0+11, p.NameSnapshot)
		}
	}
	return img
}

// WritePNG renders the floor plan and encodes it to path.
func WritePNG(path string, r Report, opt PNGOptions) error {
	img := RenderPlan(r, opt)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func drawLabel(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(pngItemStroke),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// blend mixes c over bg with the given opacity.
func blend(c, bg color.RGBA, alpha float64) color.RGBA {
	mix := func(a, b uint8) uint8 { return uint8(math.Round(float64(a)*alpha + float64(b)*(1-alpha))) }
	return color.RGBA{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 255}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
