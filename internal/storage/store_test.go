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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"branchplanner/internal/config"
	"branchplanner/internal/domain"
	"branchplanner/internal/engine"
)

func sampleState(t *testing.T) domain.AppState {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	e := engine.New(engine.WithClock(clock))
	_, err := e.AddLocation(engine.LocationDraft{Name: "Harbour Kiosk"})
	require.NoError(t, err)
	return e.State()
}

func TestEncodeDecodeKeepsState(t *testing.T) {
	st := sampleState(t)
	data, err := Encode(st)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "state")
	require.EqualValues(t, DocumentVersion, raw["version"])

	got, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(st, got); diff != "" {
		t.Fatalf("decoded state differs (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing state":  `{"version":0}`,
		"bad rotation":   `{"state":{"locations":[{"id":"l","name":"n","floorPlan":{"width":1,"depth":1},"items":[{"instanceId":"i","catalogItemId":"c","x":0,"y":0,"rotation":45}]}],"categories":[],"catalog":[]}}`,
		"catalog shape":  `{"state":{"locations":[],"categories":[],"catalog":[{"id":"c"}]}}`,
		"not json":       `{"state":`,
		"future version": `{"state":{"locations":[],"categories":[],"catalog":[]},"version":99}`,
	}
	for name, doc := range cases {
		_, err := Decode([]byte(doc))
		require.Error(t, err, name)
		require.True(t, errors.Is(err, ErrInvalidDocument), "%s: %v", name, err)
	}
}

func TestDecodeAcceptsNullSelection(t *testing.T) {
	doc := `{"state":{"locations":[],"categories":[],"catalog":[],"currentLocationId":null,"selectedId":null,"history":[],"historyIndex":0},"version":0}`
	st, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Empty(t, st.SelectedID)
	require.Empty(t, st.CurrentLocationID)
}

func TestOpenPicksDriver(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(config.StorageConfig{Driver: config.DriverJSON, Dir: dir, Namespace: "ns"})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(config.StorageConfig{Driver: config.DriverSQLite, Dir: dir, Namespace: "ns", KeepRevisions: 3})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StorageConfig{Driver: "redis", Dir: dir, Namespace: "ns"})
	require.Error(t, err)
	_, err = Open(config.StorageConfig{Driver: config.DriverJSON, Dir: dir})
	require.Error(t, err)
}

func TestStoresRoundTrip(t *testing.T) {
	for _, driver := range []string{config.DriverJSON, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(config.StorageConfig{Driver: driver, Dir: t.TempDir(), Namespace: config.DefaultNamespace, KeepRevisions: 5})
			require.NoError(t, err)
			defer func() { _ = s.Close() }()

			_, found, err := s.Load(ctx)
			require.NoError(t, err)
			require.False(t, found)

			st := sampleState(t)
			require.NoError(t, s.Save(ctx, st))
			got, found, err := s.Load(ctx)
			require.NoError(t, err)
			require.True(t, found)
			if diff := cmp.Diff(st, got); diff != "" {
				t.Fatalf("loaded state differs (-want +got):\n%s", diff)
			}
		})
	}
}
