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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"gocropper/internal/geom"
	applog "gocropper/internal/log"
	"gocropper/internal/preview"
	"gocropper/internal/selection"
	"gocropper/internal/undo"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type RectConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CropperConfig struct {
	// AspectRatio is width/height; 0 leaves the selection free.
	AspectRatio float64 `yaml:"aspect_ratio"`
	MinWidth    int     `yaml:"min_width"`
	MinHeight   int     `yaml:"min_height"`

	// BorderSize is a pointer so an explicit 0 in the file is kept.
	BorderSize            *int        `yaml:"border_size,omitempty"`
	HandleSize            int         `yaml:"handle_size"`
	MaxWidth              int         `yaml:"max_width"`
	MaxHeight             int         `yaml:"max_height"`
	Initial               *RectConfig `yaml:"initial,omitempty"`
	KeepAspectFromInitial bool        `yaml:"keep_aspect_from_initial"`
}

type PreviewConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind,omitempty"` // "fixed" | "constrained"
	Side      string `yaml:"side,omitempty"` // "width" | "height"
	Value     int    `yaml:"value,omitempty"`
	MaxWidth  int    `yaml:"max_width,omitempty"`
	MaxHeight int    `yaml:"max_height,omitempty"`
}

type CacheConfig struct {
	// Path of the sqlite preview cache; empty uses the default next to the config file.
	Path     string `yaml:"path,omitempty"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type HistoryConfig struct {
	MaxEntries    int `yaml:"max_entries"`
	MaxPerImage   int `yaml:"max_per_image"`
	MinIntervalMs int `yaml:"min_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file,omitempty"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Cropper       CropperConfig   `yaml:"cropper"`
	Previews      []PreviewConfig `yaml:"previews"`
	Cache         CacheConfig     `yaml:"cache"`
	History       HistoryConfig   `yaml:"history"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	border := selection.DefaultBorderSize
	return AppConfig{
		ConfigVersion: 1,
		Cropper: CropperConfig{
			MinWidth:   selection.DefaultHandleSize,
			MinHeight:  selection.DefaultHandleSize,
			BorderSize: &border,
			HandleSize: selection.DefaultHandleSize,
		},
		Previews: []PreviewConfig{{Name: "thumbnail", Kind: "fixed", Side: "width", Value: 160}},
		Cache:    CacheConfig{MaxBytes: 64 << 20},
		History:  HistoryConfig{MaxEntries: 1024, MaxPerImage: 64, MinIntervalMs: 250},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvAspectRatio   = "GCR_ASPECT_RATIO"
	EnvMinWidth      = "GCR_MIN_WIDTH"
	EnvMinHeight     = "GCR_MIN_HEIGHT"
	EnvBorderSize    = "GCR_BORDER_SIZE"
	EnvCachePath     = "GCR_CACHE_PATH"
	EnvCacheMaxBytes = "GCR_CACHE_MAX_BYTES"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCR_LOG_LEVEL"
	EnvLogFormat = "GCR_LOG_FORMAT"
	EnvLogSource = "GCR_LOG_SOURCE"
	EnvLogFile   = "GCR_LOG_FILE"
)

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCropper")
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", "GoCropper")
	default:
		base = filepath.Join(home, ".config", "gocropper")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CachePath returns the configured preview cache path or the default beside the config file.
func (c AppConfig) CachePath() (string, error) {
	if p := strings.TrimSpace(c.Cache.Path); p != "" {
		return homedir.Expand(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "previews.db"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment
// overrides. A file that fails to parse or validate is reported together with the
// defaults-plus-environment configuration, so callers can warn and continue.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		envErr := applyEnvOverrides(&cfg)
		return cfg, errors.Join(err, envErr)
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file is not an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	var loadErr error
	if p, err := homedir.Expand(path); err == nil {
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		loadErr = fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := ValidateDocument(data); err != nil {
			loadErr = fmt.Errorf("config %s: %w", path, err)
			break
		}
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			loadErr = fmt.Errorf("parse config %s: %w", path, err)
			break
		}
		merged := cfg
		mergeInto(&merged, &fileCfg)
		if err := checkCropper(merged.Cropper); err != nil {
			loadErr = fmt.Errorf("config %s: cropper: %w", path, err)
			merged.Cropper = cfg.Cropper
		}
		cfg = merged
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		loadErr = errors.Join(loadErr, err)
	}
	return cfg, loadErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
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
	// cropper
	c := src.Cropper
	if c.AspectRatio != 0 {
		dst.Cropper.AspectRatio = c.AspectRatio
	}
	if c.MinWidth != 0 {
		dst.Cropper.MinWidth = c.MinWidth
	}
	if c.MinHeight != 0 {
		dst.Cropper.MinHeight = c.MinHeight
	}
	if c.BorderSize != nil {
		b := *c.BorderSize
		dst.Cropper.BorderSize = &b
	}
	if c.HandleSize != 0 {
		dst.Cropper.HandleSize = c.HandleSize
	}
	if c.MaxWidth != 0 {
		dst.Cropper.MaxWidth = c.MaxWidth
	}
	if c.MaxHeight != 0 {
		dst.Cropper.MaxHeight = c.MaxHeight
	}
	if c.Initial != nil {
		in := *c.Initial
		dst.Cropper.Initial = &in
	}
	dst.Cropper.KeepAspectFromInitial = c.KeepAspectFromInitial
	// a file that lists previews replaces the defaults
	if src.Previews != nil {
		dst.Previews = append([]PreviewConfig(nil), src.Previews...)
	}
	if strings.TrimSpace(src.Cache.Path) != "" {
		dst.Cache.Path = strings.TrimSpace(src.Cache.Path)
	}
	if src.Cache.MaxBytes != 0 {
		dst.Cache.MaxBytes = src.Cache.MaxBytes
	}
	if src.History.MaxEntries != 0 {
		dst.History.MaxEntries = src.History.MaxEntries
	}
	if src.History.MaxPerImage != 0 {
		dst.History.MaxPerImage = src.History.MaxPerImage
	}
	if src.History.MinIntervalMs != 0 {
		dst.History.MinIntervalMs = src.History.MinIntervalMs
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

// applyEnvOverrides merges the environment into cfg. Cropper overrides that would not
// make a usable selection.Options are skipped, keeping the previous value, and reported.
func applyEnvOverrides(cfg *AppConfig) error {
	var errs []error
	override := func(env string, set func(c *CropperConfig, v string) error) {
		v := strings.TrimSpace(os.Getenv(env))
		if v == "" {
			return
		}
		next := cfg.Cropper
		if err := set(&next, v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", env, v, err))
			return
		}
		if err := checkCropper(next); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", env, v, err))
			return
		}
		cfg.Cropper = next
	}
	override(EnvAspectRatio, func(c *CropperConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		c.AspectRatio = f
		return err
	})
	override(EnvMinWidth, func(c *CropperConfig, v string) (err error) {
		c.MinWidth, err = strconv.Atoi(v)
		return err
	})
	override(EnvMinHeight, func(c *CropperConfig, v string) (err error) {
		c.MinHeight, err = strconv.Atoi(v)
		return err
	})
	override(EnvBorderSize, func(c *CropperConfig, v string) error {
		n, err := strconv.Atoi(v)
		c.BorderSize = &n
		return err
	})
	if v := strings.TrimSpace(os.Getenv(EnvCachePath)); v != "" {
		cfg.Cache.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheMaxBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cache.MaxBytes = n
		}
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
	return errors.Join(errs...)
}

// checkCropper reports whether c converts into options selection.New accepts.
func checkCropper(c CropperConfig) error {
	_, err := selection.New(c.Options())
	return err
}

var envKeys = map[string]string{
	"cropper.aspect_ratio": EnvAspectRatio,
	"cropper.min_width":    EnvMinWidth,
	"cropper.min_height":   EnvMinHeight,
	"cropper.border_size":  EnvBorderSize,
	"cache.path":           EnvCachePath,
	"cache.max_bytes":      EnvCacheMaxBytes,
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

// Options converts the cropper section into selection options. Validation happens in
// selection.New.
func (c CropperConfig) Options() selection.Options {
	o := selection.Options{
		AspectRatio:                geom.AspectRatio(c.AspectRatio),
		MinWidth:                   c.MinWidth,
		MinHeight:                  c.MinHeight,
		BorderSize:                 selection.DefaultBorderSize,
		HandleSize:                 c.HandleSize,
		Canvas:                     geom.Sz(c.MaxWidth, c.MaxHeight),
		KeepAspectRatioFromInitial: c.KeepAspectFromInitial,
	}
	if c.BorderSize != nil {
		o.BorderSize = *c.BorderSize
	}
	if c.Initial != nil {
		r := geom.R(c.Initial.X, c.Initial.Y, c.Initial.Width, c.Initial.Height)
		o.Initial = &r
	}
	return o
}

// Binding converts a preview entry; unknown kinds or sides are errors.
func (p PreviewConfig) Binding() (preview.Binding, error) {
	kind, err := preview.ParseKind(strings.ToLower(p.Kind))
	if err != nil {
		return preview.Binding{}, err
	}
	b := preview.Binding{Name: p.Name, Kind: kind, Value: p.Value, MaxWidth: p.MaxWidth, MaxHeight: p.MaxHeight}
	if kind == preview.Fixed {
		side := p.Side
		if side == "" {
			side = "width"
		}
		if b.Side, err = geom.ParseDimension(strings.ToLower(side)); err != nil {
			return preview.Binding{}, err
		}
	}
	return b, b.Validate()
}

// Bindings converts all preview entries, stopping at the first invalid one.
func (c AppConfig) Bindings() ([]preview.Binding, error) {
	out := make([]preview.Binding, 0, len(c.Previews))
	for i, p := range c.Previews {
		b, err := p.Binding()
		if err != nil {
			return nil, fmt.Errorf("previews[%d]: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Config converts the history section.
func (h HistoryConfig) Config() undo.Config {
	return undo.Config{
		MaxEntries:  h.MaxEntries,
		MaxPerKey:   h.MaxPerImage,
		MinInterval: time.Duration(h.MinIntervalMs) * time.Millisecond,
	}
}

// Options converts the logging section.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
