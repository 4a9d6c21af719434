/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imageio

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gocropper/internal/geom"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	p := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p
}

func TestMeasureAndLoad(t *testing.T) {
	p := writePNG(t, 40, 25)
	size, format, err := Measure(p)
	if err != nil || size != geom.Sz(40, 25) || format != "png" {
		t.Fatalf("Measure = %v %q %v", size, format, err)
	}
	src, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Size() != size || src.Format != "png" {
		t.Fatalf("unexpected source: %v %q", src.Size(), src.Format)
	}
}

func TestLoadHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, writePNG(t, 2, 2)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMeasureMissingFile(t *testing.T) {
	if _, _, err := Measure(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestCropClipsBorderOverhang(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 25))
	img.SetRGBA(0, 0, color.RGBA{R: 9, A: 255})
	img.SetRGBA(12, 7, color.RGBA{G: 7, A: 255})
	out, err := Crop(img, geom.R(-1, -1, 5, 5))
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 4 || out.RGBAAt(0, 0).R != 9 {
		t.Fatalf("unexpected crop %v, origin %v", out.Bounds(), out.RGBAAt(0, 0))
	}
	out, _ = Crop(img, geom.R(10, 5, 10, 10))
	if out.RGBAAt(2, 2).G != 7 {
		t.Fatalf("crop is not aligned with the selection")
	}
	if _, err := Crop(img, geom.R(100, 100, 10, 10)); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}
