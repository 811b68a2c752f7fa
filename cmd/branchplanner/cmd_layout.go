/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"branchplanner/internal/engine"
	"branchplanner/internal/geometry"
)

func newPlaceCmd(a *app) *cobra.Command {
	var (
		location           string
		x, y               float64
		px, py             float64
		surfaceW, surfaceH float64
	)
	cmd := &cobra.Command{
		Use:   "place <catalogId>",
		Short: "Place a catalog item on a floor",
		Long: `Place a catalog item either at a floor position in meters (--x/--y) or
as a drop under a pointer on a rendered surface (--px/--py with
--surface-w/--surface-h), where the item is centered on the pointer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.snapFlag(cmd)
			drop := cmd.Flags().Changed("px") || cmd.Flags().Changed("py")
			return a.mutate(cmd, func(e *engine.Engine) error {
				locID, err := locationOrCurrent(e, location)
				if err != nil {
					return err
				}
				item, ok := e.FindCatalogItem(args[0])
				if !ok {
					return notFound("catalog item", args[0])
				}
				if !item.IsActive {
					return fmt.Errorf("catalog item %q is deactivated", item.ID)
				}
				var id string
				if drop {
					if surfaceW <= 0 || surfaceH <= 0 {
						return errors.New("--surface-w and --surface-h are required with --px/--py")
					}
					id, ok = e.DropCatalogItem(engine.DropRequest{
						LocationID: locID,
						Item:       engine.Describe(item),
						Pointer:    geometry.Pt{X: px, Y: py},
						Surface:    geometry.Size{W: surfaceW, H: surfaceH},
						Snap:       snap,
					})
				} else {
					pos := geometry.Pt{X: x, Y: y}
					if snap {
						pos = e.Resolver().Snap(pos)
					}
					id, ok = e.PlaceCatalogItem(locID, item.ID, pos)
				}
				if !ok {
					return fmt.Errorf("could not place %q", item.ID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&location, "location", "", "location id (default: current)")
	f.Float64Var(&x, "x", 0, "left edge in meters")
	f.Float64Var(&y, "y", 0, "top edge in meters")
	f.Float64Var(&px, "px", 0, "pointer x in surface pixels")
	f.Float64Var(&py, "py", 0, "pointer y in surface pixels")
	f.Float64Var(&surfaceW, "surface-w", 0, "surface width in pixels")
	f.Float64Var(&surfaceH, "surface-h", 0, "surface height in pixels")
	f.Bool("snap", false, "snap to the grid (default from config)")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var (
		location string
		x, y     float64
		px, py   float64
	)
	cmd := &cobra.Command{
		Use:   "move <instanceId>",
		Short: "Move a placed item",
		Long: `Move a placed item to a floor position in meters (--x/--y) or to the
end of a drag given in pixels relative to the floor origin (--px/--py).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.snapFlag(cmd)
			fs := cmd.Flags()
			drag := fs.Changed("px") || fs.Changed("py")
			if !drag && !fs.Changed("x") && !fs.Changed("y") {
				return errors.New("give a position with --x/--y or --px/--py")
			}
			return a.mutate(cmd, func(e *engine.Engine) error {
				locID, err := locationOrCurrent(e, location)
				if err != nil {
					return err
				}
				loc, _ := e.State().FindLocation(locID)
				p, ok := loc.FindPlacedItem(args[0])
				if !ok {
					return notFound("placed item", args[0])
				}
				if drag {
					if fs.Changed("px") {
						p.X = px
					} else {
						p.X *= e.Resolver().PixelsPerMeter
					}
					if fs.Changed("py") {
						p.Y = py
					} else {
						p.Y *= e.Resolver().PixelsPerMeter
					}
					e.MovePlacedItem(locID, p.InstanceID, geometry.Pt{X: p.X, Y: p.Y}, snap)
					return nil
				}
				if fs.Changed("x") {
					p.X = x
				}
				if fs.Changed("y") {
					p.Y = y
				}
				pos := geometry.Pt{X: p.X, Y: p.Y}
				if snap {
					pos = e.Resolver().Snap(pos)
				}
				_, err = e.UpdatePlacedItem(locID, p.InstanceID, engine.PlacedItemPatch{X: &pos.X, Y: &pos.Y})
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&location, "location", "", "location id (default: current)")
	f.Float64Var(&x, "x", 0, "left edge in meters")
	f.Float64Var(&y, "y", 0, "top edge in meters")
	f.Float64Var(&px, "px", 0, "drag end x in pixels from the floor origin")
	f.Float64Var(&py, "py", 0, "drag end y in pixels from the floor origin")
	f.Bool("snap", false, "snap to the grid (default from config)")
	return cmd
}

func newRotateCmd(a *app) *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "rotate <instanceId>",
		Short: "Rotate a placed item a quarter turn clockwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				locID, err := locationOrCurrent(e, location)
				if err != nil {
					return err
				}
				if !e.RotatePlacedItem(locID, args[0]) {
					return notFound("placed item", args[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "location id (default: current)")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "remove <instanceId>",
		Short: "Remove a placed item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				locID, err := locationOrCurrent(e, location)
				if err != nil {
					return err
				}
				if !e.RemovePlacedItem(locID, args[0]) {
					return notFound("placed item", args[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "location id (default: current)")
	return cmd
}
