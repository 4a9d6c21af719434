/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// PresetName names an output preset for exported crops.
type PresetName string

const (
	PresetOriginal PresetName = "original"
	PresetWeb      PresetName = "web"
	PresetThumb    PresetName = "thumb"
	PresetAvatar   PresetName = "avatar"
)

// Preset bounds the longest side of an exported crop. Square presets first cut the
// largest centered square.
type Preset struct {
	Name    PresetName
	MaxSide int // 0 keeps the size
	Square  bool
}

var presets = map[PresetName]Preset{
	PresetOriginal: {Name: PresetOriginal},
	PresetWeb:      {Name: PresetWeb, MaxSide: 1600},
	PresetThumb:    {Name: PresetThumb, MaxSide: 320},
	PresetAvatar:   {Name: PresetAvatar, MaxSide: 256, Square: true},
}

// LookupPreset resolves a preset name, case-insensitively.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[PresetName(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (want one of %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for n := range presets {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

// Apply returns img resized for the preset. Images are never scaled up.
func (p Preset) Apply(img image.Image) image.Image {
	b := img.Bounds()
	if p.Square && b.Dx() != b.Dy() {
		side := min(b.Dx(), b.Dy())
		x := b.Min.X + (b.Dx()-side)/2
		y := b.Min.Y + (b.Dy()-side)/2
		sq := image.NewRGBA(image.Rect(0, 0, side, side))
		xdraw.Draw(sq, sq.Bounds(), img, image.Pt(x, y), xdraw.Src)
		img, b = sq, sq.Bounds()
	}
	long := max(b.Dx(), b.Dy())
	if p.MaxSide <= 0 || long <= p.MaxSide {
		return img
	}
	scale := float64(p.MaxSide) / float64(long)
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ExportPresets writes img once per preset as <outDir>/<base>-<preset>.png and returns
// the written paths in preset order.
func ExportPresets(outDir, base string, img image.Image, names []string) ([]string, error) {
	if len(names) == 0 {
		names = []string{string(PresetOriginal)}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		p, err := LookupPreset(n)
		if err != nil {
			return out, err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s-%s.png", base, p.Name))
		if err := WritePNG(path, p.Apply(img)); err != nil {
			return out, err
		}
		out = append(out, path)
	}
	return out, nil
}
