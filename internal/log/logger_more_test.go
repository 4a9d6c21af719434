/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("GCR_LOG_LEVEL", "warn")
	t.Setenv("GCR_LOG_FORMAT", "json")
	t.Setenv("GCR_LOG_SOURCE", "true")
	t.Setenv("GCR_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("GCR_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestMergePrefersEnvironment(t *testing.T) {
	t.Setenv("GCR_LOG_LEVEL", "error")
	t.Setenv("GCR_LOG_FORMAT", "")
	t.Setenv("GCR_LOG_SOURCE", "")
	t.Setenv("GCR_LOG_FILE", "")
	fromFile := Options{Level: "debug", Format: "json", File: "/var/log/x.log"}
	got := fromFile.Merge(FromEnv())
	if got.Level != "error" || got.Format != "json" || got.File != "/var/log/x.log" {
		t.Fatalf("unexpected merge result: %+v", got)
	}
}

func TestPrettyTextHandler_Behavior(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &buf}

	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true))
	if err := h2.Handle(ctx, r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR boom", "k=v", "grp.n=42", "grp.pi=3.14", "grp.ok=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestImageFromContext(t *testing.T) {
	if _, ok := ImageFromContext(context.Background()); ok {
		t.Fatalf("expected no image on a bare context")
	}
	if p, ok := ImageFromContext(ContextWithImage(context.Background(), "a.jpg")); !ok || p != "a.jpg" {
		t.Fatalf("got %q ok=%v", p, ok)
	}
}
