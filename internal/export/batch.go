/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	applog "branchplanner/internal/log"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// AllFormats lists every format in a stable order.
var AllFormats = []string{FormatCSV, FormatXLSX, FormatPDF, FormatPNG, FormatSVG}

// BatchOptions controls a multi-format export of one location.
//
// Path semantics: every file is written as OutDir/bom_<location>.<format>;
// OutDir is created when missing and defaults to the working directory.
type BatchOptions struct {
	Formats []string // empty means csv only
	OutDir  string
	PNG     PNGOptions
	SVG     SVGOptions
}

// Batch writes every requested format concurrently and returns the written
// paths in request order. The first failure cancels the remaining writers.
func Batch(ctx context.Context, r Report, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{FormatCSV}
	}
	norm := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatCSV, FormatXLSX, FormatPDF, FormatPNG, FormatSVG:
			norm = append(norm, f)
		default:
			return nil, fmt.Errorf("unknown format: %s", f)
		}
	}
	pngOpt := opt.PNG
	if pngOpt == (PNGOptions{}) {
		pngOpt = DefaultPNGOptions()
	}

	ctx = applog.WithLocation(ctx, r.Location.ID)
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	paths := make([]string, len(norm))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range norm {
		f := f
		out := filepath.Join(opt.OutDir, FileName(r.Location.Name, f))
		paths[i] = out
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			switch f {
			case FormatCSV:
				err = writeCSVFile(out, r)
			case FormatXLSX:
				err = WriteXLSX(out, r)
			case FormatPDF:
				err = WritePDF(out, r)
			case FormatPNG:
				err = WritePNG(out, r, pngOpt)
			case FormatSVG:
				err = WriteSVG(out, r, opt.SVG)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "export failed", slog.Any("err", err))
		return nil, err
	}
	l.InfoContext(ctx, "export complete", slog.Int("files", len(paths)), slog.String("dir", opt.OutDir))
	return paths, nil
}

func writeCSVFile(path string, r Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", cerr)
		}
	}()
	return WriteCSV(f, r.Rows)
}
