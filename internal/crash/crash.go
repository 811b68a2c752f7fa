/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the CLI boundary into a crash report and an
// emergency copy of the planner state.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
	"branchplanner/internal/storage"
	"branchplanner/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session describes what Recover can rescue. Both fields are optional.
type Session struct {
	// Dir receives the crash report and state snapshot; empty means os.TempDir.
	Dir string
	// State returns the live planner state, usually Engine.State.
	State func() domain.AppState
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and writes the current state next to it.
//
// Usage: defer crash.Recover(sess)
func Recover(s *Session) {
	if r := recover(); r != nil {
		handle(s, r, debug.Stack())
	}
}

func handle(s *Session, panicVal any, stack []byte) {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", panicVal), slog.String("stack", string(stack)))

	now := time.Now()
	reportPath, err := writeReport(s, now, panicVal, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err), slog.String("path", reportPath))
	}
	if s != nil && s.State != nil {
		if path, err := writeStateSnapshot(s, now); err != nil {
			l.Error("crash state snapshot failed", slog.Any("err", err))
		} else {
			l.Info("crash state snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	// Exit with a non-zero code to indicate failure in CLI context.
	exitFn(2)
}

func reportDir(s *Session) string {
	if s != nil && s.Dir != "" {
		_ = os.MkdirAll(s.Dir, 0o755)
		return s.Dir
	}
	return os.TempDir()
}

func writeReport(s *Session, now time.Time, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(s), fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Branch Planner Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// writeStateSnapshot stores the state as a regular planner document so it can
// be copied over the main file by hand.
func writeStateSnapshot(s *Session, now time.Time) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read state: %v", r)
		}
	}()
	data, err := storage.Encode(s.State())
	if err != nil {
		return "", err
	}
	path = filepath.Join(reportDir(s), fmt.Sprintf("crash-%s.json", now.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, err
	}
	return path, nil
}
