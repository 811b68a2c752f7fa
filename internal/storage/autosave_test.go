/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"branchplanner/internal/domain"
	"branchplanner/internal/engine"
)

type recordingStore struct {
	mu    sync.Mutex
	saved []domain.AppState
	err   error
	gate  chan struct{}
}

func (r *recordingStore) Load(context.Context) (domain.AppState, bool, error) {
	return domain.AppState{}, false, nil
}

func (r *recordingStore) Save(_ context.Context, s domain.AppState) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, s)
	return nil
}

func (r *recordingStore) Close() error { return nil }

func (r *recordingStore) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.saved))
	for _, s := range r.saved {
		out = append(out, s.CurrentLocationID)
	}
	return out
}

func TestAutosaverAlwaysSavesNewestState(t *testing.T) {
	defer goleak.VerifyNone(t)
	rs := &recordingStore{gate: make(chan struct{})}
	a := NewAutosaver(rs, 1)

	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		a.Enqueue(domain.AppState{CurrentLocationID: id})
	}
	close(rs.gate)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))

	names := rs.names()
	require.NotEmpty(t, names)
	require.Equal(t, "s4", names[len(names)-1])
	saved, dropped := a.Stats()
	require.Equal(t, len(names), saved)
	require.Equal(t, 4, saved+dropped)
}

func TestAutosaverIgnoresStatesAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	rs := &recordingStore{}
	a := NewAutosaver(rs, 0)
	require.NoError(t, a.Close(context.Background()))
	a.Enqueue(domain.AppState{CurrentLocationID: "late"})
	require.NoError(t, a.Close(context.Background()))
	require.Empty(t, rs.names())
}

func TestAutosaverReportsSaveErrorOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	boom := errors.New("disk full")
	a := NewAutosaver(&recordingStore{err: boom}, 1)
	a.Enqueue(domain.AppState{})
	err := a.Close(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, a.Err(), boom)
}

func TestAutosaverCloseHonoursDeadline(t *testing.T) {
	rs := &recordingStore{gate: make(chan struct{})}
	a := NewAutosaver(rs, 1)
	a.Enqueue(domain.AppState{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)
	close(rs.gate)
	require.NoError(t, a.Close(context.Background()))
	goleak.VerifyNone(t)
}

func TestAutosaverAsEngineListener(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir(), "plan", 0)
	require.NoError(t, err)
	a := NewAutosaver(fs, 1)

	e := engine.New()
	unsubscribe := e.Subscribe(a.Enqueue)
	id := e.AddCategory("Lighting")
	require.True(t, e.UpdateCategory(id, engine.CategoryPatch{Name: ptr("Lighting & Power")}))
	unsubscribe()
	require.NoError(t, a.Close(ctx))

	got, found, err := fs.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	want := e.State()
	require.Equal(t, want.Categories, got.Categories)
	require.Equal(t, want.HistoryIndex, got.HistoryIndex)
}

func ptr[T any](v T) *T { return &v }
