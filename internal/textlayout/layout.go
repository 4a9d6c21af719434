/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures, wraps and draws short captions onto raster images.
// Text measurement sits behind the Provider interface so tests can use the fixed
// 7x13 face while exports use the bundled Go font.
package textlayout

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSpec describes a requested font.
type FontSpec struct {
	SizePt float64
	DPI    float64 // 72 if zero
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap int
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() int { return m.Ascent + m.Descent + m.LineGap }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics, error)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics, error) {
	f := basicfont.Face7x13
	return f, metricsOf(f), nil
}

// GoProvider renders with the Go Regular font shipped in x/image.
type GoProvider struct{}

var (
	goFontOnce sync.Once
	goFont     *opentype.Font
	goFontErr  error
)

func (GoProvider) Resolve(spec FontSpec) (font.Face, Metrics, error) {
	goFontOnce.Do(func() {
		goFont, goFontErr = opentype.Parse(goregular.TTF)
	})
	if goFontErr != nil {
		return nil, Metrics{}, fmt.Errorf("parse go font: %w", goFontErr)
	}
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	if spec.DPI <= 0 {
		spec.DPI = 72
	}
	face, err := opentype.NewFace(goFont, &opentype.FaceOptions{Size: spec.SizePt, DPI: spec.DPI, Hinting: font.HintingFull})
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("new face: %w", err)
	}
	return face, metricsOf(face), nil
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  m.Ascent.Round(),
		Descent: m.Descent.Round(),
		LineGap: m.Height.Round() - m.Ascent.Round() - m.Descent.Round(),
	}
}

func advance(d *font.Drawer, s string) int {
	return d.MeasureString(s).Ceil()
}

// Measure returns the width of the widest line and the total height of text.
func Measure(p Provider, spec FontSpec, text string) (w, h int, err error) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met, err := p.Resolve(spec)
	if err != nil {
		return 0, 0, err
	}
	d := &font.Drawer{Face: face}
	lines := strings.Split(text, "\n")
	for _, ln := range lines {
		w = max(w, advance(d, ln))
	}
	h = len(lines)*met.LineHeight() - met.LineGap
	return w, h, nil
}

// Wrap breaks text on spaces so that no line exceeds maxWidth pixels. A single word
// wider than maxWidth keeps a line of its own. maxWidth <= 0 disables wrapping.
func Wrap(p Provider, spec FontSpec, text string, maxWidth int) ([]string, error) {
	if p == nil {
		p = BasicProvider{}
	}
	face, _, err := p.Resolve(spec)
	if err != nil {
		return nil, err
	}
	d := &font.Drawer{Face: face}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if maxWidth <= 0 {
			out = append(out, para)
			continue
		}
		cur := ""
		for _, word := range strings.Fields(para) {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if cur != "" && advance(d, next) > maxWidth {
				out = append(out, cur)
				next = word
			}
			cur = next
		}
		out = append(out, cur)
	}
	return out, nil
}
