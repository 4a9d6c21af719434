/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Integer pixel geometry shared by the selection engine and its collaborators.
// All coordinates are canvas-local pixels with the origin at the top-left corner.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a canvas-local cursor position.
type Point struct{ X, Y int }

func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Size is a width/height pair.
type Size struct{ W, H int }

func Sz(w, h int) Size { return Size{W: w, H: h} }

// Empty reports whether either side is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y int
	W, H int
}

func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Point  { return Point{r.X, r.Y} }
func (r Rect) Max() Point  { return Point{r.X + r.W, r.Y + r.H} }
func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }
func (r Rect) Size() Size  { return Size{W: r.W, H: r.H} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Translate returns r moved by dx,dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Dimension names one side of a rectangle.
type Dimension int

const (
	Width Dimension = iota
	Height
)

func (d Dimension) String() string {
	switch d {
	case Width:
		return "width"
	case Height:
		return "height"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// ParseDimension accepts "width"/"w" and "height"/"h".
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "width", "w", "WIDTH":
		return Width, nil
	case "height", "h", "HEIGHT":
		return Height, nil
	}
	return Width, fmt.Errorf("unknown dimension %q", s)
}

// AspectRatio is the width/height proportion enforced on a selection. Zero means free.
type AspectRatio float64

// Free is the unconstrained ratio.
const Free AspectRatio = 0

// Locked reports whether a ratio is enforced.
func (a AspectRatio) Locked() bool { return a != 0 }

// Valid reports whether a can be used in geometry math: zero or a finite positive number.
func (a AspectRatio) Valid() bool {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f >= 0
}

// HeightFor derives a height from w, truncating toward zero.
func (a AspectRatio) HeightFor(w int) int { return int(float64(w) / float64(a)) }

// WidthFor derives a width from h, truncating toward zero.
func (a AspectRatio) WidthFor(h int) int { return int(float64(h) * float64(a)) }

// Matches reports whether r honors a within one pixel of truncation on either axis.
func (a AspectRatio) Matches(r Rect) bool {
	if !a.Locked() {
		return true
	}
	return Abs(r.H-a.HeightFor(r.W)) <= 1 || Abs(r.W-a.WidthFor(r.H)) <= 1
}

// Ratio returns the aspect ratio of a size, or Free when the height is zero.
func Ratio(s Size) AspectRatio {
	if s.H == 0 {
		return Free
	}
	return AspectRatio(float64(s.W) / float64(s.H))
}

// ParseAspectRatio accepts "free", a decimal like "1.5" or a "W:H" pair like "16:9".
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "free" {
		return Free, nil
	}
	var a AspectRatio
	if w, h, ok := strings.Cut(s, ":"); ok {
		fw, err1 := strconv.ParseFloat(w, 64)
		fh, err2 := strconv.ParseFloat(h, 64)
		if err1 != nil || err2 != nil || fh <= 0 {
			return Free, fmt.Errorf("invalid aspect ratio %q", s)
		}
		a = AspectRatio(fw / fh)
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Free, fmt.Errorf("invalid aspect ratio %q", s)
		}
		a = AspectRatio(f)
	}
	if !a.Valid() {
		return Free, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return a, nil
}

// ParseSize accepts "WxH" with positive integer sides.
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	wi, err1 := strconv.Atoi(w)
	hi, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || wi <= 0 || hi <= 0 {
		return Size{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	return Sz(wi, hi), nil
}

// Clamp limits v to [lo, hi]. When hi < lo the lower bound wins.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Abs returns the absolute value of v.
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
