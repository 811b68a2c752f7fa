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
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"branchplanner/internal/domain"
	"branchplanner/internal/engine"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage catalog categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(e *engine.Engine) error {
				cats := e.State().Categories
				sort.SliceStable(cats, func(i, j int) bool { return cats[i].Order < cats[j].Order })
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ORDER\tID\tNAME")
				for _, c := range cats {
					fmt.Fprintf(w, "%d\t%s\t%s\n", c.Order, c.ID, c.Name)
				}
				return w.Flush()
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category at the end of the order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				id := e.AddCategory(args[0])
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !hasCategory(e.State().Categories, args[0]) {
					return notFound("category", args[0])
				}
				name := args[1]
				if !e.UpdateCategory(args[0], engine.CategoryPatch{Name: &name}) {
					fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category no catalog item refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !hasCategory(e.State().Categories, args[0]) {
					return notFound("category", args[0])
				}
				return e.DeleteCategory(args[0])
			})
		},
	}

	cmd.AddCommand(list, add, rename, del,
		newReorderCmd(a, engine.Up, "Move a category one rank up"),
		newReorderCmd(a, engine.Down, "Move a category one rank down"))
	return cmd
}

func newReorderCmd(a *app, dir engine.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir) + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !e.ReorderCategory(args[0], dir) {
					return notFound("category", args[0])
				}
				return nil
			})
		},
	}
}

func hasCategory(cats []domain.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}
