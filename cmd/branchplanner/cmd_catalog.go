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

	"branchplanner/internal/engine"
)

// catalogFlags binds the editable catalog fields to command flags.
type catalogFlags struct {
	category, name, sku, notes, color string
	width, depth, price               float64
	active                            bool
}

func (f *catalogFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.category, "category", "", "category id")
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.sku, "sku", "", "stock keeping unit")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.color, "color", "#94a3b8", "CSS hex color")
	fs.Float64Var(&f.width, "width", 0, "width in meters")
	fs.Float64Var(&f.depth, "depth", 0, "depth in meters")
	fs.Float64Var(&f.price, "price", 0, "unit price")
}

func (f *catalogFlags) draft() engine.CatalogItemDraft {
	return engine.CatalogItemDraft{
		CategoryID: f.category,
		Name:       f.name,
		SKU:        f.sku,
		WidthM:     f.width,
		DepthM:     f.depth,
		Price:      f.price,
		Notes:      f.notes,
		Color:      f.color,
	}
}

// patch includes only the flags given on the command line.
func (f *catalogFlags) patch(fs *pflag.FlagSet) engine.CatalogItemPatch {
	var p engine.CatalogItemPatch
	if fs.Changed("category") {
		p.CategoryID = &f.category
	}
	if fs.Changed("name") {
		p.Name = &f.name
	}
	if fs.Changed("sku") {
		p.SKU = &f.sku
	}
	if fs.Changed("notes") {
		p.Notes = &f.notes
	}
	if fs.Changed("color") {
		p.Color = &f.color
	}
	if fs.Changed("width") {
		p.WidthM = &f.width
	}
	if fs.Changed("depth") {
		p.DepthM = &f.depth
	}
	if fs.Changed("price") {
		p.Price = &f.price
	}
	if fs.Changed("active") {
		p.IsActive = &f.active
	}
	return p
}

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the module catalog",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(e *engine.Engine) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSKU\tNAME\tCATEGORY\tSIZE\tPRICE\tUSED\tSTATE")
				st := e.State()
				for _, c := range st.Catalog {
					if !c.IsActive && !all {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f x %.2f m\t%s%.2f\t%d\t%s\n",
						c.ID, c.SKU, c.Name, engine.CategoryName(st.Categories, c.CategoryID),
						c.WidthM, c.DepthM, a.cfg.Export.Currency, c.Price, e.CatalogUsage(c.ID), c.Lifecycle())
				}
				return w.Flush()
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include deactivated items")

	var addFlags catalogFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				id, err := e.AddCatalogItem(addFlags.draft())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	addFlags.register(add.Flags())

	var (
		updFlags catalogFlags
		sync     bool
	)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a catalog item, optionally rewriting existing placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if _, found := e.FindCatalogItem(args[0]); !found {
					return notFound("catalog item", args[0])
				}
				ok, err := e.UpdateCatalogItem(args[0], updFlags.patch(cmd.Flags()), sync)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
				}
				return nil
			})
		},
	}
	updFlags.register(update.Flags())
	update.Flags().BoolVar(&updFlags.active, "active", true, "reactivate (true) or deactivate (false)")
	update.Flags().BoolVar(&sync, "sync", false, "apply the new values to every placement of this item")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a catalog item; items still placed are deactivated instead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				out := e.DeleteCatalogItem(args[0])
				if out == engine.DeleteNotFound {
					return notFound("catalog item", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	dup := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				id, ok := e.DuplicateCatalogItem(args[0])
				if !ok {
					return notFound("catalog item", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, update, del, dup)
	return cmd
}
