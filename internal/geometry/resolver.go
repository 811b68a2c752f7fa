/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "math"

const (
	// PixelsPerMeter is the fixed render scale between world meters and surface pixels.
	PixelsPerMeter = 50.0
	// GridSize is the snapping step in meters.
	GridSize = 0.5
)

// Resolver turns surface pixels into world meters. The floor rectangle is
// centered inside the surface. Coordinates outside the floor are allowed and
// never clamped.
type Resolver struct {
	PixelsPerMeter float64
	GridSize       float64
}

// DefaultResolver uses the fixed planner scale and grid.
func DefaultResolver() Resolver {
	return Resolver{PixelsPerMeter: PixelsPerMeter, GridSize: GridSize}
}

func (r Resolver) ppm() float64 {
	if r.PixelsPerMeter <= 0 {
		return PixelsPerMeter
	}
	return r.PixelsPerMeter
}

func (r Resolver) grid() float64 {
	if r.GridSize <= 0 {
		return GridSize
	}
	return r.GridSize
}

// Offset is the pixel position of the floor's top-left corner inside the surface.
func (r Resolver) Offset(surface Size, floorM Size) Pt {
	ppm := r.ppm()
	return Pt{
		X: (surface.W - floorM.W*ppm) / 2,
		Y: (surface.H - floorM.H*ppm) / 2,
	}
}

// SurfaceToWorld returns the transform from surface pixels to world meters.
func (r Resolver) SurfaceToWorld(surface Size, floorM Size) Affine2D {
	off := r.Offset(surface, floorM)
	inv := 1 / r.ppm()
	return Scale(inv, inv).Mul(Translate(-off.X, -off.Y))
}

// PointerToWorld maps a pointer position in surface pixels to world meters.
func (r Resolver) PointerToWorld(pointer Pt, surface Size, floorM Size) Pt {
	return r.SurfaceToWorld(surface, floorM).Apply(pointer)
}

// DropPosition returns the top-left corner for an item dropped under the
// pointer, centered on it and optionally snapped.
func (r Resolver) DropPosition(pointer Pt, surface Size, floorM Size, itemM Size, snap bool) Pt {
	w := r.PointerToWorld(pointer, surface, floorM)
	p := Pt{X: w.X - itemM.W/2, Y: w.Y - itemM.H/2}
	if snap {
		p = r.Snap(p)
	}
	return p
}

// DragEnd converts a dragged node's layer position (pixels relative to the
// floor origin) to meters, optionally snapped.
func (r Resolver) DragEnd(layerPx Pt, snap bool) Pt {
	ppm := r.ppm()
	p := Pt{X: layerPx.X / ppm, Y: layerPx.Y / ppm}
	if snap {
		p = r.Snap(p)
	}
	return p
}

// ToSurface maps a world position back to surface pixels.
func (r Resolver) ToSurface(world Pt, surface Size, floorM Size) Pt {
	off := r.Offset(surface, floorM)
	ppm := r.ppm()
	return Pt{X: world.X*ppm + off.X, Y: world.Y*ppm + off.Y}
}

// Snap rounds each axis independently to the nearest grid multiple.
func (r Resolver) Snap(p Pt) Pt {
	return Pt{X: r.SnapValue(p.X), Y: r.SnapValue(p.Y)}
}

func (r Resolver) SnapValue(v float64) float64 {
	g := r.grid()
	// rounding to 9 places removes float noise such as 1.5000000000000002
	return FloatRound(math.Round(v/g)*g, 9)
}

// NextRotation advances a rotation by one quarter turn: 0→90→180→270→0.
func NextRotation(rotation int) int {
	return ((rotation/90)*90 + 90) % 360
}

// Footprint is the axis-aligned size of an item after rotation.
func Footprint(itemM Size, rotation int) Size {
	switch ((rotation%360)+360) % 360 {
	case 90, 270:
		return Size{W: itemM.H, H: itemM.W}
	}
	return itemM
}

// PlacementBounds is the axis-aligned area covered by an item whose top-left
// corner sits at origin and which is turned clockwise about that corner.
func PlacementBounds(origin Pt, itemM Size, rotation int) Rect {
	w, h := itemM.W, itemM.H
	switch ((rotation%360)+360) % 360 {
	case 90:
		return R(origin.X-h, origin.Y, h, w)
	case 180:
		return R(origin.X-w, origin.Y-h, w, h)
	case 270:
		return R(origin.X, origin.Y-w, h, w)
	}
	return R(origin.X, origin.Y, w, h)
}
