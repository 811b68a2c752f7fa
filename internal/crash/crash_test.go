/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"branchplanner/internal/domain"
	"branchplanner/internal/engine"
	"branchplanner/internal/storage"
)

func silenceStderr(t *testing.T) {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, r)
		close(done)
	}()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = oldStderr
	})
}

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, time.Now(), "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Branch Planner Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportUsesSessionDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	path, err := writeReport(&Session{Dir: dir}, time.Now(), "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected crash report under %s, got %s", dir, path)
	}
}

func TestRecoverWritesReportAndState(t *testing.T) {
	silenceStderr(t)
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	e := engine.New()
	sess := &Session{Dir: dir, State: e.State}

	func() {
		defer Recover(sess)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	var report, snapshot string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(dir, f.Name())
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".json"):
			snapshot = filepath.Join(dir, f.Name())
		}
	}
	if report == "" || snapshot == "" {
		t.Fatalf("expected report and snapshot in %s, got %v", dir, files)
	}
	b, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	st, err := storage.Decode(b)
	if err != nil {
		t.Fatalf("snapshot is not a valid document: %v", err)
	}
	if len(st.Locations) != len(e.State().Locations) {
		t.Fatalf("snapshot lost locations: %d", len(st.Locations))
	}
}

func TestRecoverSurvivesPanickingStateFunc(t *testing.T) {
	silenceStderr(t)
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	sess := &Session{Dir: dir, State: func() domain.AppState { panic("state unavailable") }}
	func() {
		defer Recover(sess)
		panic("boom")
	}()
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".json") {
			t.Fatalf("no snapshot expected, found %s", f.Name())
		}
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}
