/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Style controls how a caption is drawn.
type Style struct {
	Font       FontSpec
	Color      color.Color // black if nil
	Background color.Color // no box if nil
	Padding    int
}

// Draw renders text with its top-left corner at at and returns the painted bounds,
// background box included. The result is clipped to dst.
func Draw(dst draw.Image, at image.Point, text string, st Style, p Provider) (image.Rectangle, error) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met, err := p.Resolve(st.Font)
	if err != nil {
		return image.Rectangle{}, err
	}
	w, h, err := Measure(p, st.Font, text)
	if err != nil {
		return image.Rectangle{}, err
	}
	box := image.Rect(at.X, at.Y, at.X+w+2*st.Padding, at.Y+h+2*st.Padding)
	if st.Background != nil {
		draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(st.Background), image.Point{}, draw.Over)
	}
	fg := st.Color
	if fg == nil {
		fg = color.Black
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	y := at.Y + st.Padding + met.Ascent
	for _, ln := range splitLines(text) {
		d.Dot = fixed.P(at.X+st.Padding, y)
		d.DrawString(ln)
		y += met.LineHeight()
	}
	return box.Intersect(dst.Bounds()), nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
