/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"branchplanner/internal/geometry"
)

// SVGOptions controls SVG export. The document is drawn in meters;
// PixelsPerMeter only sets the nominal width and height.
type SVGOptions struct {
	PixelsPerMeter float64
	Grid           bool
}

// WriteSVG writes the floor plan as a standalone SVG document. Placements are
// turned about their top-left corner, as in the editor.
func WriteSVG(path string, r Report, opt SVGOptions) error {
	ppm := opt.PixelsPerMeter
	if ppm <= 0 {
		ppm = geometry.PixelsPerMeter
	}
	fp := r.Location.FloorPlan

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", fp.Width*ppm, fp.Depth*ppm, fp.Width, fp.Depth)
	wf("  <title>%s</title>\n", escText(r.Location.Name))
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", fp.Width, fp.Depth)
	if opt.Grid {
		gc := svgColor(pngGrid)
		for x := geometry.GridSize; x < fp.Width; x += geometry.GridSize {
			wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.01\"/>\n", x, x, fp.Depth, gc)
		}
		for y := geometry.GridSize; y < fp.Depth; y += geometry.GridSize {
			wf("  <line x1=\"0\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.01\"/>\n", y, fp.Width, y, gc)
		}
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.04\"/>\n", fp.Width, fp.Depth, svgColor(pngBorder))

	for _, p := range r.Location.Items {
		wf("  <g id=\"%s\" transform=\"translate(%g %g) rotate(%d)\">\n", escAttr(p.InstanceID), p.X, p.Y, p.Rotation)
		wf("    <rect width=\"%g\" height=\"%g\" fill=\"%s\" fill-opacity=\"0.7\" stroke=\"%s\" stroke-width=\"0.02\"/>\n",
			p.WidthMSnapshot, p.DepthMSnapshot, svgColor(parseHex(r.colorOf(p))), svgColor(pngItemStroke))
		wf("    <text x=\"%g\" y=\"0.22\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"0.2\" text-anchor=\"middle\" fill=\"#ffffff\">%s</text>\n",
			p.WidthMSnapshot/2, escText(p.NameSnapshot))
		wf("  </g>\n")
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
