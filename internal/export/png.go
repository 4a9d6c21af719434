/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"gocropper/internal/geom"
	"gocropper/internal/textlayout"
)

// OverlayOptions controls how Annotate marks a selection on a source image.
// Zero colors fall back to a red outline and a translucent black shade.
type OverlayOptions struct {
	Stroke   color.RGBA
	Shade    color.RGBA
	Caption  bool
	Provider textlayout.Provider
}

// WritePNG encodes img as PNG at path, creating parent directories as needed.
func WritePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("write png %s: no image", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// EncodePNG returns the PNG bytes of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG is the inverse of EncodePNG, used for cached renders.
func DecodePNG(r io.Reader) (image.Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// Annotate copies src and marks sel on it: everything outside the selection is shaded
// and the selection is outlined. With Caption set the selection size is printed in its
// top-left corner.
func Annotate(src image.Image, sel geom.Rect, opt OverlayOptions) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	stroke := opt.Stroke
	if stroke == (color.RGBA{}) {
		stroke = color.RGBA{R: 255, A: 255}
	}
	shade := opt.Shade
	if shade == (color.RGBA{}) {
		shade = color.RGBA{A: 128}
	}
	w, h := b.Dx(), b.Dy()
	x0, y0 := geom.Clamp(sel.X, 0, w), geom.Clamp(sel.Y, 0, h)
	x1, y1 := geom.Clamp(sel.Right(), 0, w), geom.Clamp(sel.Bottom(), 0, h)
	u := image.NewUniform(shade)
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, w, y0),
		image.Rect(0, y1, w, h),
		image.Rect(0, y0, x0, y1),
		image.Rect(x1, y0, w, y1),
	} {
		draw.Draw(dst, r, u, image.Point{}, draw.Over)
	}
	strokeRect(dst, sel.X, sel.Y, sel.Right()-1, sel.Bottom()-1, stroke)

	if opt.Caption {
		st := textlayout.Style{Color: color.White, Background: color.RGBA{A: 160}, Padding: 2}
		_, _ = textlayout.Draw(dst, image.Pt(x0+2, y0+2), sel.Size().String(), st, opt.Provider)
	}
	return dst
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
// Pixels outside img are skipped.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
