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
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"branchplanner/internal/domain"
	applog "branchplanner/internal/log"
)

const BackupsDirName = "backups"

// FileStore keeps the document at <dir>/<namespace>.json.
// Every save replaces the file transactionally and first copies the previous
// version into <dir>/backups with a timestamp suffix.
type FileStore struct {
	Dir        string
	Namespace  string
	KeepBackup int // 0 keeps every backup

	now func() time.Time
	log *slog.Logger
}

// NewFileStore creates the directory layout if needed.
func NewFileStore(dir, namespace string, keepBackups int) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{
		Dir:        dir,
		Namespace:  namespace,
		KeepBackup: keepBackups,
		now:        time.Now,
		log:        applog.WithComponent("storage").With(slog.String("driver", "json")),
	}, nil
}

// Path is the main document file.
func (s *FileStore) Path() string { return filepath.Join(s.Dir, s.Namespace+".json") }

func (s *FileStore) backupPrefix() string { return s.Namespace + ".json." }

// Load reads the document. If the main file is unreadable or invalid it falls
// back to the newest backup that decodes.
func (s *FileStore) Load(ctx context.Context) (domain.AppState, bool, error) {
	l := applog.WithOperation(s.log, "load")
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) && len(s.backups()) == 0 {
		return domain.AppState{}, false, nil
	}
	if err == nil {
		st, derr := Decode(b)
		if derr == nil {
			return st, true, nil
		}
		err = derr
	}
	l.WarnContext(ctx, "document unusable, trying backups", slog.Any("err", err))
	st, berr := s.openFromLatestBackup(ctx)
	if berr != nil {
		return domain.AppState{}, false, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
	}
	l.InfoContext(ctx, "document recovered from backup")
	return st, true, nil
}

// Save writes the state with transactional semantics.
func (s *FileStore) Save(ctx context.Context, state domain.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(state)
	if err != nil {
		return err
	}
	path := s.Path()
	bdir := filepath.Join(s.Dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		stamp := s.now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s%s.bak", s.backupPrefix(), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
		s.pruneBackups()
	}

	// temp file in the same directory, then rename over the target
	temp := filepath.Join(s.Dir, fmt.Sprintf(".%s.tmp-%d-%d", s.Namespace, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	applog.WithOperation(s.log, "save").Debug("document saved", slog.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Close() error { return nil }

// backups lists backup files oldest first.
func (s *FileStore) backups() []string {
	bdir := filepath.Join(s.Dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, s.backupPrefix()) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (s *FileStore) pruneBackups() {
	if s.KeepBackup <= 0 {
		return
	}
	bs := s.backups()
	for len(bs) > s.KeepBackup {
		if err := os.Remove(bs[0]); err != nil {
			s.log.Warn("prune backup failed", slog.String("path", bs[0]), slog.Any("err", err))
		}
		bs = bs[1:]
	}
}

// openFromLatestBackup walks the backups newest first.
func (s *FileStore) openFromLatestBackup(ctx context.Context) (domain.AppState, error) {
	bs := s.backups()
	if len(bs) == 0 {
		return domain.AppState{}, errors.New("no backups found")
	}
	var last error
	for i := len(bs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return domain.AppState{}, err
		}
		b, err := os.ReadFile(bs[i])
		if err != nil {
			last = err
			continue
		}
		st, err := Decode(b)
		if err != nil {
			last = err
			continue
		}
		return st, nil
	}
	return domain.AppState{}, fmt.Errorf("no usable backup: %w", last)
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
