/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"branchplanner/internal/config"
	"branchplanner/internal/crash"
	"branchplanner/internal/engine"
	"branchplanner/internal/geometry"
	applog "branchplanner/internal/log"
	"branchplanner/internal/storage"
)

// saveTimeout bounds how long a command waits for its state to be written.
const saveTimeout = 10 * time.Second

// app carries what every command needs for one invocation.
type app struct {
	cfgPath string
	cfg     config.AppConfig
	out     io.Writer
	sess    *crash.Session
	store   storage.Store
	log     *slog.Logger
}

func newApp(out io.Writer) *app {
	return &app{out: out, sess: &crash.Session{}}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "branchplanner",
		Short: "Plan micro-branch floor layouts, module catalogs and budgets",
		Long: `branchplanner keeps a catalog of placeable modules, a set of branch
locations with their floor plans, and the modules placed on each floor.
Every change is recorded in an undo history and saved to the configured store.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return a.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.teardown(cmd) },
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default: per-user config dir or $BP_CONFIG)")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newShowCmd(a),
		newRevisionsCmd(a),
		newCategoryCmd(a),
		newCatalogCmd(a),
		newLocationCmd(a),
		newPlaceCmd(a),
		newMoveCmd(a),
		newRotateCmd(a),
		newRemoveCmd(a),
		newUndoCmd(a),
		newRedoCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg config.AppConfig
		err error
	)
	if a.cfgPath != "" {
		cfg, err = config.LoadFrom(a.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	applog.Init(cfg.Logging.LogOptions())
	a.log = applog.WithComponent("cli")
	a.sess.Dir = filepath.Join(cfg.Storage.Dir, storage.BackupsDirName)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(applog.WithCommand(ctx, cmd.CommandPath()))
	a.log.DebugContext(cmd.Context(), "command started",
		slog.String("driver", cfg.Storage.Driver), slog.String("dir", cfg.Storage.Dir))
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	a.log.DebugContext(cmd.Context(), "command finished")
	return errors.Join(err, applog.Close())
}

func (a *app) openStore() (storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithHistoryDepth(a.cfg.Editor.HistoryDepth),
		engine.WithGeometry(geometry.Resolver{
			PixelsPerMeter: a.cfg.Editor.PixelsPerMeter,
			GridSize:       a.cfg.Editor.GridSize,
		}),
	}
}

// loadEngine restores the stored document, or seeds a fresh engine when the
// store is empty.
func (a *app) loadEngine(ctx context.Context) (*engine.Engine, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	st, found, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	var e *engine.Engine
	if found {
		e = engine.Restore(st, a.engineOptions()...)
	} else {
		a.log.Info("no saved document, starting from defaults")
		e = engine.New(a.engineOptions()...)
	}
	a.sess.State = e.State
	return e, nil
}

// mutate runs fn against the stored document and waits until every change it
// made has been saved.
func (a *app) mutate(cmd *cobra.Command, fn func(e *engine.Engine) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := a.loadEngine(ctx)
	if err != nil {
		return err
	}
	saver := storage.NewAutosaver(a.store, a.cfg.Storage.AutosaveQueue)
	unsubscribe := e.Subscribe(saver.Enqueue)
	ferr := fn(e)
	unsubscribe()

	cctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	serr := saver.Close(cctx)
	if serr != nil {
		serr = fmt.Errorf("save: %w", serr)
	}
	return errors.Join(ferr, serr)
}

// view runs fn against the stored document without saving.
func (a *app) view(cmd *cobra.Command, fn func(e *engine.Engine) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := a.loadEngine(ctx)
	if err != nil {
		return err
	}
	return fn(e)
}

// locationOrCurrent resolves the --location flag, defaulting to the current location.
func locationOrCurrent(e *engine.Engine, id string) (string, error) {
	if id != "" {
		if _, ok := e.State().FindLocation(id); !ok {
			return "", notFound("location", id)
		}
		return id, nil
	}
	cur, ok := e.CurrentLocation()
	if !ok {
		return "", errors.New("no current location; create one with `location add`")
	}
	return cur.ID, nil
}

func notFound(kind, id string) error { return fmt.Errorf("%s %q not found", kind, id) }

// snapFlag returns --snap when given, otherwise the configured default.
func (a *app) snapFlag(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("snap") {
		v, _ := cmd.Flags().GetBool("snap")
		return v
	}
	return a.cfg.Editor.SnapEnabled
}
