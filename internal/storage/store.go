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
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"branchplanner/internal/config"
	"branchplanner/internal/domain"
)

// DocumentVersion is written into every envelope. Documents with a newer
// version are refused rather than guessed at.
const DocumentVersion = 0

// ErrInvalidDocument is returned when a stored document fails schema validation or decoding.
var ErrInvalidDocument = errors.New("invalid planner document")

// Store persists one planner document per namespace.
type Store interface {
	// Load returns the stored state. found is false when nothing has been saved yet.
	Load(ctx context.Context) (state domain.AppState, found bool, err error)
	Save(ctx context.Context, state domain.AppState) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (Store, error) {
	if strings.TrimSpace(cfg.Namespace) == "" {
		return nil, errors.New("storage namespace is required")
	}
	switch cfg.Driver {
	case config.DriverJSON, "":
		return NewFileStore(cfg.Dir, cfg.Namespace, cfg.KeepRevisions)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Dir, cfg.Namespace, cfg.KeepRevisions)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type envelope struct {
	State   domain.AppState `json:"state"`
	Version int             `json:"version"`
}

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func documentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Validate checks raw document bytes against the embedded schema.
func Validate(data []byte) error {
	s, err := documentSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}

// Encode wraps state in the versioned envelope as indented JSON.
func Encode(state domain.AppState) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{State: state.Clone(), Version: DocumentVersion}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode validates and unwraps a stored document.
func Decode(data []byte) (domain.AppState, error) {
	if err := Validate(data); err != nil {
		return domain.AppState{}, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.AppState{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if env.Version > DocumentVersion {
		return domain.AppState{}, fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalidDocument, env.Version, DocumentVersion)
	}
	return env.State, nil
}
