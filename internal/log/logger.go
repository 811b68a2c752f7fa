/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the planner's slog logger. Records go to a console
// handler and, when a file is configured, to a rotating JSON log. Records
// logged with a context also carry the command and location it names.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"branchplanner/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// AppName is attached to every file record as the "app" attribute.
const AppName = "branchplanner"

// Rotation limits of the file log.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

// Options controls logger initialization. The CLI builds it from the
// logging section of the config file.
type Options struct {
	Level     string // debug, info, warn or error
	Format    string // "console" or "json"
	AddSource bool
	File      string    // rotated JSON log; empty disables it
	Console   io.Writer // nil means os.Stderr
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	file    *lj.Logger
)

// L returns the application logger. Before Init it is an info-level console
// logger on stderr.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(Options{})
}

// Init replaces the application logger and slog's default. A previously
// opened log file is closed.
func Init(opts Options) *slog.Logger {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	w := opts.Console
	if w == nil {
		w = os.Stderr
	}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource, ReplaceAttr: consoleAttr})
	}
	h := contextHandler{next: console}

	var lf *lj.Logger
	if path := strings.TrimSpace(opts.File); path != "" {
		lf = &lj.Logger{Filename: path, MaxSize: fileMaxSizeMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxAgeDays, Compress: true}
		fh := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}).
			WithAttrs([]slog.Attr{slog.String("app", AppName), slog.String("ver", version.String())})
		h = contextHandler{next: fanout{console, fh}}
	}

	l := slog.New(h)
	mu.Lock()
	prev := file
	current, file = l, lf
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(l)
	return l
}

// Close flushes and closes the log file, if one is open. Logging continues
// on the console; lumberjack reopens the file on the next file write.
func Close() error {
	mu.RLock()
	f := file
	mu.RUnlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// ParseLevel accepts debug, info, warn or error in any case. An empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type (
	commandKey  struct{}
	locationKey struct{}
)

// WithCommand returns a context whose log records carry the CLI command path.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey{}, command)
}

// WithLocation returns a context whose log records carry the given location id.
func WithLocation(ctx context.Context, locationID string) context.Context {
	return context.WithValue(ctx, locationKey{}, locationID)
}

// consoleAttr shortens the console timestamp.
func consoleAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format("15:04:05.000"))
	}
	return a
}

// contextHandler copies the command and location from the record's context.
type contextHandler struct{ next slog.Handler }

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if v, ok := ctx.Value(commandKey{}).(string); ok && v != "" {
			r.AddAttrs(slog.String("command", v))
		}
		if v, ok := ctx.Value(locationKey{}).(string); ok && v != "" {
			r.AddAttrs(slog.String("location", v))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name)}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
