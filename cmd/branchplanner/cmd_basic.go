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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"branchplanner/internal/bom"
	"branchplanner/internal/engine"
	"branchplanner/internal/storage"
	"branchplanner/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "branchplanner %s\n", version.String())
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default categories, catalog and demo location to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			_, found, err := s.Load(cmd.Context())
			if err != nil && !force {
				return err
			}
			if found && !force {
				return errors.New("store already holds a planner document; use --force to overwrite")
			}
			e := engine.New(a.engineOptions()...)
			if err := s.Save(cmd.Context(), e.State()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized planner in %s (%s)\n", a.cfg.Storage.Dir, a.cfg.Storage.Driver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var items bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show locations, budgets and the history cursor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(e *engine.Engine) error {
				st := e.State()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "\tID\tNAME\tFLOOR\tITEMS\tCOST\tBUDGET\tUSED")
				for _, l := range st.Locations {
					mark := ""
					if l.ID == st.CurrentLocationID {
						mark = "*"
					}
					sum := bom.Summarize(l)
					over := ""
					if sum.OverBudget {
						over = " (over)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.1f x %.1f m\t%d\t%s%s%s\t%s%s\t%d%%\n",
						mark, l.ID, l.Name, l.FloorPlan.Width, l.FloorPlan.Depth, sum.ItemCount,
						a.cfg.Export.Currency, sum.TotalCost.StringFixed(2), over,
						a.cfg.Export.Currency, sum.Budget.StringFixed(2), sum.UtilizationPercent)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "History: entry %d of %d (undo: %s, redo: %s)\n",
					st.HistoryIndex+1, len(st.History), yesNo(e.CanUndo()), yesNo(e.CanRedo()))

				if !items {
					return nil
				}
				cur, ok := e.CurrentLocation()
				if !ok {
					return nil
				}
				w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "INSTANCE\tCATALOG\tNAME\tSKU\tX\tY\tROT")
				for _, p := range cur.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%d\n",
						p.InstanceID, p.CatalogItemID, p.NameSnapshot, p.SKUSnapshot, p.X, p.Y, p.Rotation)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&items, "items", false, "also list the placements of the current location")
	return cmd
}

func newRevisionsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "revisions",
		Short: "List saved revisions (sqlite store only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			sq, ok := s.(*storage.SQLiteStore)
			if !ok {
				return errors.New("revisions require storage.driver: sqlite")
			}
			revs, err := sq.Revisions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSAVED\tLOCATIONS\tHISTORY")
			for _, r := range revs {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d/%d\n", r.ID, r.TS.Local().Format("2006-01-02 15:04:05"),
					len(r.State.Locations), r.State.HistoryIndex+1, len(r.State.History))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of revisions")
	return cmd
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Step back one history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !e.Undo() {
					return errors.New("nothing to undo")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Undone")
				return nil
			})
		},
	}
}

func newRedoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the next history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(e *engine.Engine) error {
				if !e.Redo() {
					return errors.New("nothing to redo")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Redone")
				return nil
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
