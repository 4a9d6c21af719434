/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides the slog-based application logger. Console output is a compact
// one-line text format (or JSON), and an optional rotating JSON file receives the same records.
// Records logged with a context carrying an image path get an "image" attribute.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"gocropper/internal/version"
)

// Options controls logger initialization.
// Values can be provided directly, from the config file or via environment variables:
//   - GCR_LOG_LEVEL=debug|info|warn|error
//   - GCR_LOG_FORMAT=console|json
//   - GCR_LOG_FILE=<path> (enables file logging with rotation)
//   - GCR_LOG_SOURCE=true|false
//
// Defaults: INFO level, console format, no source, no file.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	// rotation of File; zero values use 10 MB, 3 backups, 28 days
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Writer replaces stderr for console output (tests).
	Writer io.Writer
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
	fileWriter      io.Closer
)

// L returns the default application logger, initializing from env if needed.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Init configures the global logger and sets slog.Default as well. A previously opened
// log file is closed.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &prettyTextHandler{opts: prettyOpts{Level: lvl, AddSource: opts.AddSource}, w: out}
	}
	h := withEnricher(console)

	var closer io.Closer
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lj.Logger{
			Filename:   path,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		closer = w
		fh := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
		h = multiHandler(h, withEnricher(fh))
	}

	logger := slog.New(h).With(
		slog.String("app", "gocropper"),
		slog.String("ver", version.Version),
	)

	defaultLoggerMu.Lock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = closer
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GCR_LOG_LEVEL", "info"),
		Format:    getenv("GCR_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("GCR_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("GCR_LOG_FILE"),
	}
}

// Merge overlays the non-empty fields of env onto o. Environment values win over the config file.
func (o Options) Merge(env Options) Options {
	if os.Getenv("GCR_LOG_LEVEL") != "" {
		o.Level = env.Level
	}
	if os.Getenv("GCR_LOG_FORMAT") != "" {
		o.Format = env.Format
	}
	if os.Getenv("GCR_LOG_SOURCE") != "" {
		o.AddSource = env.AddSource
	}
	if env.File != "" {
		o.File = env.File
	}
	return o
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type ctxKey struct{}

// ContextWithImage returns ctx carrying the path of the image being cropped.
func ContextWithImage(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ctxKey{}, path)
}

// ImageFromContext returns the image path stored by ContextWithImage.
func ImageFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	p, ok := ctx.Value(ctxKey{}).(string)
	return p, ok && p != ""
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// multiHandler fans out log records to multiple handlers.
func multiHandler(handlers ...slog.Handler) slog.Handler { return &multi{hs: handlers} }

type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}

// enrich copies context-carried fields onto each record.
func withEnricher(h slog.Handler) slog.Handler { return &enrich{next: h} }

type enrich struct{ next slog.Handler }

func (e *enrich) Enabled(ctx context.Context, level slog.Level) bool {
	return e.next.Enabled(ctx, level)
}

func (e *enrich) Handle(ctx context.Context, r slog.Record) error {
	if p, ok := ImageFromContext(ctx); ok {
		r.AddAttrs(slog.String("image", p))
	}
	return e.next.Handle(ctx, r)
}

func (e *enrich) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrich{next: e.next.WithAttrs(attrs)}
}
func (e *enrich) WithGroup(name string) slog.Handler { return &enrich{next: e.next.WithGroup(name)} }

// prettyTextHandler prints one line per record: ts level msg key=val...
// Groups become dotted key prefixes.
type prettyTextHandler struct {
	opts   prettyOpts
	w      io.Writer
	mu     sync.Mutex
	attrs  []slog.Attr
	groups []string
}

type prettyOpts struct {
	Level     slog.Leveler
	AddSource bool
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}
	return level >= floor
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	b := &strings.Builder{}
	b.Grow(256)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(levelString(r.Level))
	if r.Message != "" {
		b.WriteString(" ")
		b.WriteString(r.Message)
	}
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	write := func(a slog.Attr) bool {
		b.WriteString(" ")
		b.WriteString(prefix)
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(attrValueString(a.Value))
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)
	if h.opts.AddSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if f.File != "" {
			b.WriteString(" src=")
			b.WriteString(f.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(f.Line))
		}
	}
	b.WriteString("\n")
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	na := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	na = append(na, h.attrs...)
	na = append(na, attrs...)
	return &prettyTextHandler{opts: h.opts, w: h.w, attrs: na, groups: append([]string(nil), h.groups...)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	ng := append(append([]string(nil), h.groups...), name)
	return &prettyTextHandler{opts: h.opts, w: h.w, attrs: append([]slog.Attr(nil), h.attrs...), groups: ng}
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	default:
		return l.String()
	}
}

func attrValueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}
