/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"branchplanner/internal/domain"
	"branchplanner/internal/engine"
)

type locationFlags struct {
	name, address, notes string
	budget, width, depth float64
}

func (f *locationFlags) register(fs *pflag.FlagSet, withName bool) {
	if withName {
		fs.StringVar(&f.name, "name", "", "display name")
	}
	fs.StringVar(&f.address, "address", "", "street address")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.Float64Var(&f.budget, "budget", engine.DefaultLocationBudget, "budget")
	fs.Float64Var(&f.width, "width", engine.DefaultFloorWidth, "floor width in meters")
	fs.Float64Var(&f.depth, "depth", engine.DefaultFloorDepth, "floor depth in meters")
}

func (f *locationFlags) draft(name string, fs *pflag.FlagSet) engine.LocationDraft {
	d := engine.LocationDraft{Name: name, Address: f.address, Notes: f.notes}
	if fs.Changed("budget") {
		d.Budget = &f.budget
	}
	if fs.Changed("width") || fs.Changed("depth") {
		d.FloorPlan = &domain.FloorPlan{Width: f.width, Depth: f.depth}
	}
	return d
}

func (f *locationFlags) patch(cur domain.LocationProject, fs *pflag.FlagSet) engine.LocationPatch {
	var p engine.LocationPatch
	if fs.Changed("name") {
		p.Name = &f.name
	}
	if fs.Changed("address") {
		p.Address = &f.address
	}
	if fs.Changed("notes") {
		p.Notes = &f.notes
	}
	if fs.Changed("budget") {
		p.Budget = &f.budget
	}
	if fs.Changed("width") || fs.Changed("depth") {
		fp := cur.FloorPlan
		if fs.Changed("width") {
			fp.Width = f.width
		}
		if fs.Changed("depth") {
			fp.Depth = f.depth
		}
		p.FloorPlan = &fp
	}
	return p
}

func newLocationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage branch locations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(e *engine.Engine) error {
				st := e.State()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "\tID\tNAME\tADDRESS\tITEMS")
				for _, l := range st.Locations {
					mark := ""
					if l.ID == st.CurrentLocationID {
						mark = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", mark, l.ID, l.Name, l.Address, len(l.Items))
				}
				return w.Flush()
			})
		},
	}

	var addFlags locationFlags
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a location and make it current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.mutate(cmd, func(e *engine.Engine) error {
				id, err := e.AddLocation(addFlags.draft(name, cmd.Flags()))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	addFlags.register(add.Flags(), false)

	var updFlags locationFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a location's details or floor size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				cur, ok := e.State().FindLocation(args[0])
				if !ok {
					return notFound("location", args[0])
				}
				_, err := e.UpdateLocation(args[0], updFlags.patch(cur, cmd.Flags()))
				return err
			})
		},
	}
	updFlags.register(update.Flags(), true)

	dup := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a location with its placements and make the copy current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				id, ok := e.DuplicateLocation(args[0])
				if !ok {
					return notFound("location", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !e.DeleteLocation(args[0]) {
					return notFound("location", args[0])
				}
				return nil
			})
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the current location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !e.SetCurrentLocation(args[0]) {
					return notFound("location", args[0])
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, update, dup, del, use)
	return cmd
}
