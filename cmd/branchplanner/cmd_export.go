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
	"strings"

	"github.com/spf13/cobra"

	"branchplanner/internal/engine"
	"branchplanner/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		location string
		formats  []string
		outDir   string
		currency string
		noGrid   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the bill of materials and floor plan of a location",
		Long: "Write the bill of materials and floor plan of a location. Supported formats: " +
			strings.Join(export.AllFormats, ", ") + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(e *engine.Engine) error {
				locID, err := locationOrCurrent(e, location)
				if err != nil {
					return err
				}
				st := e.State()
				loc, _ := st.FindLocation(locID)

				r := export.NewReport(loc, st.Catalog)
				r.Currency = a.cfg.Export.Currency
				if cmd.Flags().Changed("currency") {
					r.Currency = currency
				}
				fs := a.cfg.Export.Formats
				if cmd.Flags().Changed("format") {
					fs = formats
				}
				dir := a.cfg.Export.Dir
				if cmd.Flags().Changed("out") {
					dir = outDir
				}
				png := export.DefaultPNGOptions()
				png.PixelsPerMeter = a.cfg.Editor.PixelsPerMeter
				png.Grid = !noGrid

				paths, err := export.Batch(cmd.Context(), r, export.BatchOptions{
					Formats: fs,
					OutDir:  dir,
					PNG:     png,
					SVG:     export.SVGOptions{PixelsPerMeter: a.cfg.Editor.PixelsPerMeter, Grid: !noGrid},
				})
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&location, "location", "", "location id (default: current)")
	f.StringSliceVar(&formats, "format", nil, "comma-separated formats (default from config)")
	f.StringVar(&outDir, "out", "", "output directory (default from config)")
	f.StringVar(&currency, "currency", "", "currency symbol (default from config)")
	f.BoolVar(&noGrid, "no-grid", false, "omit the grid in image exports")
	return cmd
}
