/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imageio loads source images and cuts selections out of them.
package imageio

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gocropper/internal/geom"
	applog "gocropper/internal/log"
)

var ErrEmptySelection = errors.New("selection does not overlap the image")

// Source is a decoded image together with where it came from.
type Source struct {
	Path   string
	Format string
	Image  image.Image
}

// Size returns the pixel size of the image.
func (s *Source) Size() geom.Size {
	b := s.Image.Bounds()
	return geom.Sz(b.Dx(), b.Dy())
}

// Measure reads only the image header and returns its size.
func Measure(path string) (geom.Size, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.Size{}, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return MeasureReader(f)
}

// MeasureReader is Measure for an open stream.
func MeasureReader(r io.Reader) (geom.Size, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return geom.Size{}, "", fmt.Errorf("decode image header: %w", err)
	}
	return geom.Sz(cfg.Width, cfg.Height), format, nil
}

// Load decodes the image at path. Decoding checks ctx before starting.
func Load(ctx context.Context, path string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	b := img.Bounds()
	applog.WithComponent("imageio").DebugContext(applog.ContextWithImage(ctx, path), "image loaded",
		"format", format, "width", b.Dx(), "height", b.Dy())
	return &Source{Path: path, Format: format, Image: img}, nil
}

// Crop copies the part of img covered by sel into a new RGBA image. sel is in canvas
// coordinates with the origin at the image's top-left corner; parts outside the image
// (a selection may overhang by its border) are cut off.
func Crop(img image.Image, sel geom.Rect) (*image.RGBA, error) {
	b := img.Bounds()
	r := image.Rect(sel.X, sel.Y, sel.Right(), sel.Bottom()).Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, ErrEmptySelection
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}
