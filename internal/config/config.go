/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type CanvasConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Color    string  `yaml:"color"`     // default fill for new elements
	IDScheme string  `yaml:"id_scheme"` // "uuid" | "ulid" | "counter"
	Grid     bool    `yaml:"grid"`
	Zoom     int     `yaml:"zoom"` // percent
}

type HistoryConfig struct {
	MaxBytes   int `yaml:"max_bytes"`
	MaxDepth   int `yaml:"max_depth"`
	CoalesceMs int `yaml:"coalesce_ms"`
}

type ExportConfig struct {
	Dir        string  `yaml:"dir"`
	Background string  `yaml:"background"`
	Grid       bool    `yaml:"grid"`
	Scale      float64 `yaml:"scale"`
}

type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	KeepBackups int    `yaml:"keep_backups"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	History       HistoryConfig `yaml:"history"`
	Export        ExportConfig  `yaml:"export"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{Width: 800, Height: 600, Color: "#3B82F6", IDScheme: "uuid", Grid: true, Zoom: 100},
		History:       HistoryConfig{MaxBytes: 16 << 20, MaxDepth: 100, CoalesceMs: 0},
		Export:        ExportConfig{Dir: "", Background: "#1e293b", Grid: true, Scale: 1},
		Storage:       StorageConfig{DataDir: "", KeepBackups: 20},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile   = "DCV_CONFIG"
	EnvCanvasWidth  = "DCV_CANVAS_WIDTH"
	EnvCanvasHeight = "DCV_CANVAS_HEIGHT"
	EnvCanvasColor  = "DCV_CANVAS_COLOR"
	EnvIDScheme     = "DCV_ID_SCHEME"
	EnvHistoryDepth = "DCV_HISTORY_DEPTH"
	EnvExportDir    = "DCV_EXPORT_DIR"
	EnvDataDir      = "DCV_DATA_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "DCV_LOG_LEVEL"
	EnvLogFormat = "DCV_LOG_FORMAT"
	EnvLogSource = "DCV_LOG_SOURCE"
	EnvLogFile   = "DCV_LOG_FILE"
)

const appDirName = "designcanvas"

// configBase returns the per-user application directory for kind "config"
// or "data".
func configBase(kind string) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "DesignCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DesignCanvas")
	default: // linux and others
		if kind == "data" {
			if x := os.Getenv("XDG_DATA_HOME"); x != "" {
				return filepath.Join(x, appDirName), nil
			}
			base = filepath.Join(os.Getenv("HOME"), ".local", "share", appDirName)
		} else {
			if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
				return filepath.Join(x, appDirName), nil
			}
			base = filepath.Join(os.Getenv("HOME"), ".config", appDirName)
		}
	}
	if base == "" || base == appDirName {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path. DCV_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := configBase("config")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir is where the recent-designs index lives unless storage.data_dir is set.
func (c AppConfig) DataDir() (string, error) {
	if d := strings.TrimSpace(c.Storage.DataDir); d != "" {
		return d, nil
	}
	return configBase("data")
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A malformed file is reported but the defaults plus
// overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			fileErr = err
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, fileErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
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
	// canvas
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if strings.TrimSpace(src.Canvas.Color) != "" {
		dst.Canvas.Color = strings.TrimSpace(src.Canvas.Color)
	}
	if strings.TrimSpace(src.Canvas.IDScheme) != "" {
		dst.Canvas.IDScheme = strings.ToLower(strings.TrimSpace(src.Canvas.IDScheme))
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Canvas.Grid = src.Canvas.Grid
	if src.Canvas.Zoom > 0 {
		dst.Canvas.Zoom = src.Canvas.Zoom
	}
	// history
	if src.History.MaxBytes > 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	if src.History.MaxDepth > 0 {
		dst.History.MaxDepth = src.History.MaxDepth
	}
	if src.History.CoalesceMs > 0 {
		dst.History.CoalesceMs = src.History.CoalesceMs
	}
	// export
	if strings.TrimSpace(src.Export.Dir) != "" {
		dst.Export.Dir = strings.TrimSpace(src.Export.Dir)
	}
	if strings.TrimSpace(src.Export.Background) != "" {
		dst.Export.Background = strings.TrimSpace(src.Export.Background)
	}
	dst.Export.Grid = src.Export.Grid
	if src.Export.Scale > 0 {
		dst.Export.Scale = src.Export.Scale
	}
	// storage
	if strings.TrimSpace(src.Storage.DataDir) != "" {
		dst.Storage.DataDir = strings.TrimSpace(src.Storage.DataDir)
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
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

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Canvas.Width = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Canvas.Height = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasColor)); v != "" {
		cfg.Canvas.Color = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIDScheme)); v != "" {
		cfg.Canvas.IDScheme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.width":      EnvCanvasWidth,
	"canvas.height":     EnvCanvasHeight,
	"canvas.color":      EnvCanvasColor,
	"canvas.id_scheme":  EnvIDScheme,
	"history.max_depth": EnvHistoryDepth,
	"export.dir":        EnvExportDir,
	"storage.data_dir":  EnvDataDir,
	"logging.level":     EnvLogLevel,
	"logging.format":    EnvLogFormat,
	"logging.source":    EnvLogSource,
	"logging.file":      EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// CoalesceInterval is the history coalescing window.
func (h HistoryConfig) CoalesceInterval() time.Duration {
	if h.CoalesceMs <= 0 {
		return 0
	}
	return time.Duration(h.CoalesceMs) * time.Millisecond
}
