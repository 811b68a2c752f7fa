/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestSnapRoundsEachAxis(t *testing.T) {
	r := DefaultResolver()
	p := r.Snap(Pt{X: 1.27, Y: 0.63})
	require.InDelta(t, 1.5, p.X, eps)
	require.InDelta(t, 0.5, p.Y, eps)

	cases := []struct{ in, want float64 }{
		{0, 0},
		{0.24, 0},
		{0.26, 0.5},
		{-0.3, -0.5},
		{3.74, 3.5},
		{12.9, 13},
	}
	for _, c := range cases {
		require.InDelta(t, c.want, r.SnapValue(c.in), eps, "snap(%v)", c.in)
	}
}

func TestDropCentersItemUnderPointer(t *testing.T) {
	r := DefaultResolver()
	surface := Size{W: 600, H: 500}
	floor := Size{W: 8, H: 6}
	// floor is 400x300 px, so the offset is (100, 100)
	off := r.Offset(surface, floor)
	require.InDelta(t, 100, off.X, eps)
	require.InDelta(t, 100, off.Y, eps)

	pointer := Pt{X: 100 + 4*PixelsPerMeter, Y: 100 + 3*PixelsPerMeter}
	w := r.PointerToWorld(pointer, surface, floor)
	require.InDelta(t, 4.0, w.X, eps)
	require.InDelta(t, 3.0, w.Y, eps)

	p := r.DropPosition(pointer, surface, floor, Size{W: 0.8, H: 0.8}, false)
	require.InDelta(t, 3.6, p.X, eps)
	require.InDelta(t, 2.6, p.Y, eps)

	snapped := r.DropPosition(pointer, surface, floor, Size{W: 0.8, H: 0.8}, true)
	require.InDelta(t, 3.5, snapped.X, eps)
	require.InDelta(t, 2.5, snapped.Y, eps)
}

func TestPointerOutsideFloorIsNotClamped(t *testing.T) {
	r := DefaultResolver()
	w := r.PointerToWorld(Pt{X: 0, Y: 0}, Size{W: 600, H: 500}, Size{W: 8, H: 6})
	require.InDelta(t, -2.0, w.X, eps)
	require.InDelta(t, -2.0, w.Y, eps)
}

func TestToSurfaceInvertsPointerToWorld(t *testing.T) {
	r := DefaultResolver()
	surface, floor := Size{W: 900, H: 700}, Size{W: 10, H: 8}
	world := Pt{X: 2.25, Y: 7.5}
	back := r.PointerToWorld(r.ToSurface(world, surface, floor), surface, floor)
	require.InDelta(t, world.X, back.X, eps)
	require.InDelta(t, world.Y, back.Y, eps)
}

func TestDragEnd(t *testing.T) {
	r := DefaultResolver()
	p := r.DragEnd(Pt{X: 63.5, Y: 31.5}, false)
	require.InDelta(t, 1.27, p.X, eps)
	require.InDelta(t, 0.63, p.Y, eps)
	p = r.DragEnd(Pt{X: 63.5, Y: 31.5}, true)
	require.InDelta(t, 1.5, p.X, eps)
	require.InDelta(t, 0.5, p.Y, eps)
}

func TestZeroResolverFallsBackToDefaults(t *testing.T) {
	var r Resolver
	require.InDelta(t, 0.5, r.SnapValue(0.4), eps)
	require.InDelta(t, 1.0, r.DragEnd(Pt{X: 50, Y: 0}, false).X, eps)
}

func TestRotationCycle(t *testing.T) {
	got := []int{}
	r := 0
	for i := 0; i < 4; i++ {
		r = NextRotation(r)
		got = append(got, r)
	}
	require.Equal(t, []int{90, 180, 270, 0}, got)
	require.Equal(t, Size{W: 0.1, H: 1.2}, Footprint(Size{W: 1.2, H: 0.1}, 90))
	require.Equal(t, Size{W: 1.2, H: 0.1}, Footprint(Size{W: 1.2, H: 0.1}, 180))
}

func TestAffineMulAppliesRightFirst(t *testing.T) {
	m := Scale(2, 2).Mul(Translate(1, 1))
	p := m.Apply(Pt{X: 1, Y: 2})
	require.Equal(t, Pt{X: 4, Y: 6}, p)
	require.True(t, R(0, 0, 2, 2).Contains(Pt{X: 1, Y: 1}))
	require.Equal(t, 1.23, FloatRound(1.2345, 2))
}

func requireRect(t *testing.T, want, got Rect) {
	t.Helper()
	require.InDelta(t, want.X, got.X, eps)
	require.InDelta(t, want.Y, got.Y, eps)
	require.InDelta(t, want.W, got.W, eps)
	require.InDelta(t, want.H, got.H, eps)
}

func TestPlacementBoundsTurnsAboutOrigin(t *testing.T) {
	o := Pt{X: 6, Y: 1}
	item := Size{W: 0.8, H: 0.4}
	requireRect(t, R(6, 1, 0.8, 0.4), PlacementBounds(o, item, 0))
	requireRect(t, R(5.6, 1, 0.4, 0.8), PlacementBounds(o, item, 90))
	requireRect(t, R(5.2, 0.6, 0.8, 0.4), PlacementBounds(o, item, 180))
	requireRect(t, R(6, 0.2, 0.4, 0.8), PlacementBounds(o, item, 270))
}
