/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "branchplanner/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type StorageConfig struct {
	Driver        string `yaml:"driver"` // "json" | "sqlite"
	Dir           string `yaml:"dir"`
	Namespace     string `yaml:"namespace"`
	KeepRevisions int    `yaml:"keep_revisions"`
	AutosaveQueue int    `yaml:"autosave_queue"`
}

type EditorConfig struct {
	SnapEnabled    bool    `yaml:"snap_enabled"`
	GridSize       float64 `yaml:"grid_size"`        // meters
	PixelsPerMeter float64 `yaml:"pixels_per_meter"` // render scale
	HistoryDepth   int     `yaml:"history_depth"`
}

type ExportConfig struct {
	Dir      string   `yaml:"dir"`
	Currency string   `yaml:"currency"`
	Formats  []string `yaml:"formats"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Editor        EditorConfig  `yaml:"editor"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// DefaultNamespace is the key the planner document is stored under.
const DefaultNamespace = "micro-branch-planner-v2-storage"

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Storage: StorageConfig{
			Driver:        DriverJSON,
			Dir:           DataDir(),
			Namespace:     DefaultNamespace,
			KeepRevisions: 50,
			AutosaveQueue: 1,
		},
		Editor:  EditorConfig{SnapEnabled: false, GridSize: 0.5, PixelsPerMeter: 50, HistoryDepth: 50},
		Export:  ExportConfig{Dir: "exports", Currency: "$", Formats: []string{"csv"}},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "BP_CONFIG"
	EnvStorageDriver  = "BP_STORAGE_DRIVER"
	EnvStorageDir     = "BP_STORAGE_DIR"
	EnvSnap           = "BP_SNAP"
	EnvGridSize       = "BP_GRID_SIZE"
	EnvHistoryDepth   = "BP_HISTORY_DEPTH"
	EnvExportDir      = "BP_EXPORT_DIR"
	EnvExportCurrency = "BP_EXPORT_CURRENCY"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "BP_LOG_LEVEL"
	EnvLogFormat = "BP_LOG_FORMAT"
	EnvLogSource = "BP_LOG_SOURCE"
	EnvLogFile   = "BP_LOG_FILE"
)

func userBase() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "BranchPlanner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "BranchPlanner")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "branchplanner")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path. BP_CONFIG takes precedence.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := userBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir is the default storage directory next to the config file.
func DataDir() string {
	base, err := userBase()
	if err != nil {
		return "data"
	}
	return filepath.Join(base, "data")
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an
// error; a malformed one is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); v != "" {
		dst.Storage.Driver = v
	}
	if v := strings.TrimSpace(src.Storage.Dir); v != "" {
		dst.Storage.Dir = v
	}
	if v := strings.TrimSpace(src.Storage.Namespace); v != "" {
		dst.Storage.Namespace = v
	}
	if src.Storage.KeepRevisions > 0 {
		dst.Storage.KeepRevisions = src.Storage.KeepRevisions
	}
	if src.Storage.AutosaveQueue > 0 {
		dst.Storage.AutosaveQueue = src.Storage.AutosaveQueue
	}
	// editor; booleans are copied directly from the file so user preferences persist
	dst.Editor.SnapEnabled = src.Editor.SnapEnabled
	if src.Editor.GridSize > 0 {
		dst.Editor.GridSize = src.Editor.GridSize
	}
	if src.Editor.PixelsPerMeter > 0 {
		dst.Editor.PixelsPerMeter = src.Editor.PixelsPerMeter
	}
	if src.Editor.HistoryDepth > 0 {
		dst.Editor.HistoryDepth = src.Editor.HistoryDepth
	}
	// export
	if v := strings.TrimSpace(src.Export.Dir); v != "" {
		dst.Export.Dir = v
	}
	if src.Export.Currency != "" {
		dst.Export.Currency = src.Export.Currency
	}
	if len(src.Export.Formats) > 0 {
		dst.Export.Formats = append([]string(nil), src.Export.Formats...)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDir)); v != "" {
		cfg.Storage.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnap)); v != "" {
		cfg.Editor.SnapEnabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.GridSize = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv(EnvExportCurrency); v != "" {
		cfg.Export.Currency = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"storage.driver":       EnvStorageDriver,
	"storage.dir":          EnvStorageDir,
	"editor.snap_enabled":  EnvSnap,
	"editor.grid_size":     EnvGridSize,
	"editor.history_depth": EnvHistoryDepth,
	"export.dir":           EnvExportDir,
	"export.currency":      EnvExportCurrency,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// LogOptions converts the logging section for log.Init.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// Validate reports settings the planner cannot run with.
func (c AppConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		return errors.New("storage.namespace: must not be empty")
	}
	if c.Editor.GridSize <= 0 {
		return errors.New("editor.grid_size: must be positive")
	}
	if c.Editor.PixelsPerMeter <= 0 {
		return errors.New("editor.pixels_per_meter: must be positive")
	}
	if _, err := applog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported %q", c.Logging.Format)
	}
	return nil
}
