/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocropper/internal/export"
	"gocropper/internal/geom"
	"gocropper/internal/imageio"
)

// testEnv points config and cache into a temp dir and writes a 400x250 source image.
func testEnv(t *testing.T) (dir, img, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("GCR_CACHE_PATH", filepath.Join(dir, "previews.db"))
	t.Setenv("GCR_LOG_LEVEL", "error")
	t.Setenv("GCR_LOG_FILE", "")
	cfgPath = filepath.Join(dir, "config.yaml")

	src := image.NewRGBA(image.Rect(0, 0, 400, 250))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.RGBA{R: 40, G: 120, B: 200, A: 255}}, image.Point{}, draw.Src)
	img = filepath.Join(dir, "src.png")
	if err := export.WritePNG(img, src); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return dir, img, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	_, _, cfg := testEnv(t)
	out, err := run(t, "--config", cfg, "version")
	if err != nil || !strings.HasPrefix(out, "gocropper ") {
		t.Fatalf("version: %q, %v", out, err)
	}
}

func TestMeasure(t *testing.T) {
	dir, img, cfg := testEnv(t)
	out, err := run(t, "--config", cfg, "measure", img)
	if err != nil || !strings.Contains(out, "400x250 (png)") {
		t.Fatalf("measure: %q, %v", out, err)
	}
	if _, err := run(t, "--config", cfg, "measure", img, filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected error for a missing image")
	}
}

func TestReplayExportsCrop(t *testing.T) {
	dir, img, cfg := testEnv(t)
	script := filepath.Join(dir, "drag.txt")
	body := "# drag the default box right and down\ndown move 100 60\nmove 100 60\nmove 120 80\nup\n"
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	crop := filepath.Join(dir, "crop.png")
	sheet := filepath.Join(dir, "sheet.pdf")
	presets := filepath.Join(dir, "presets")
	out, err := run(t, "--config", cfg, "replay", img, script,
		"--out", crop, "--pdf", sheet, "--preset", "thumb", "--preset-dir", presets)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	for _, want := range []string{"selection 101 71 80 50", "preview thumbnail 160x100", "src-thumb.png"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	size, _, err := imageio.Measure(crop)
	if err != nil || size != geom.Sz(80, 50) {
		t.Fatalf("crop size = %v, %v", size, err)
	}
	b, err := os.ReadFile(sheet)
	if err != nil || !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("crop sheet missing or not a PDF: %v", err)
	}
}

func TestReplayReportsMalformedScript(t *testing.T) {
	dir, img, cfg := testEnv(t)
	script := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(script, []byte("down sideways 1 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", cfg, "replay", img, script)
	if err == nil {
		t.Fatalf("expected an error for a malformed script")
	}
	if !strings.Contains(out, "line 1:") {
		t.Fatalf("parse error not reported: %q", out)
	}
}

func TestPreviewRendersThroughCache(t *testing.T) {
	dir, img, cfg := testEnv(t)
	outDir := filepath.Join(dir, "previews")
	args := []string{"--config", cfg, "preview", img, "--x", "100", "--y", "100", "--w", "50", "--h", "50",
		"--name", "box", "--max", "100x100", "--out-dir", outDir}
	for i := 0; i < 2; i++ {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("preview run %d: %v\n%s", i, err, out)
		}
		if !strings.Contains(out, "selection 101 101 50 50") || !strings.Contains(out, "preview box 100x100") {
			t.Fatalf("unexpected output:\n%s", out)
		}
	}
	size, _, err := imageio.Measure(filepath.Join(outDir, "src-box.png"))
	if err != nil || size != geom.Sz(100, 100) {
		t.Fatalf("rendered preview = %v, %v", size, err)
	}

	out, err := run(t, "--config", cfg, "cache", "stats")
	if err != nil || !strings.Contains(out, "entries: 1") {
		t.Fatalf("cache stats: %q, %v", out, err)
	}
	out, err = run(t, "--config", cfg, "cache", "purge", img)
	if err != nil || !strings.Contains(out, "removed 1 preview(s)") {
		t.Fatalf("cache purge: %q, %v", out, err)
	}
}

func TestPreviewRejectsBadBounds(t *testing.T) {
	_, img, cfg := testEnv(t)
	if _, err := run(t, "--config", cfg, "preview", img, "--max", "100"); err == nil {
		t.Fatalf("expected error for malformed --max")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	_, _, cfg := testEnv(t)
	out, err := run(t, "--config", cfg, "config", "init")
	if err != nil || !strings.Contains(out, "wrote") {
		t.Fatalf("config init: %q, %v", out, err)
	}
	if _, err := run(t, "--config", cfg, "config", "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	out, err = run(t, "--config", cfg, "config", "validate")
	if err != nil || !strings.Contains(out, ": ok") {
		t.Fatalf("config validate: %q, %v", out, err)
	}
	out, err = run(t, "--config", cfg, "config", "show")
	if err != nil || !strings.Contains(out, "config_version: 1") {
		t.Fatalf("config show: %q, %v", out, err)
	}
}
