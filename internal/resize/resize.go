/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package resize computes new selection rectangles from a drag anchor and a cursor position.
//
// Every function here is pure: the same anchor, cursor, previous rectangle and constraints
// always yield the same result, so a held cursor never drifts the selection. Corner
// functions return ok=false together with the previous rectangle when the gesture would
// shrink the selection below its minimum size; callers keep the previous frame.
//
// Corner resizes keep the opposite corner fixed. The four corners are written out one by
// one because the canvas edges they can hit differ, and because under an aspect lock the
// derived side alternates with the dominant axis of the gesture.
package resize

import "gocropper/internal/geom"

// Constraints bound every computed rectangle.
type Constraints struct {
	Canvas      geom.Size
	AspectRatio geom.AspectRatio
	MinWidth    int
	MinHeight   int
	// BorderSize is how far a moved selection may overhang the canvas on each side.
	BorderSize int
}

// Anchor is captured once per gesture: X,Y is the dragged corner and W,H the selection
// size when the gesture started.
type Anchor struct {
	X, Y int
	W, H int
}

// NewAnchor captures the anchor for the corner of r selected by right/bottom.
func NewAnchor(r geom.Rect, right, bottom bool) Anchor {
	a := Anchor{X: r.X, Y: r.Y, W: r.W, H: r.H}
	if right {
		a.X += r.W
	}
	if bottom {
		a.Y += r.H
	}
	return a
}

// Grab is the cursor offset from the selection's top-left corner, captured once per move gesture.
type Grab struct{ DX, DY int }

// NewGrab captures the grab offset of cursor inside r.
func NewGrab(cursor geom.Point, r geom.Rect) Grab {
	return Grab{DX: cursor.X - r.X, DY: cursor.Y - r.Y}
}

// Move translates the selection so the grab point follows the cursor. The selection may
// overhang each canvas edge by at most the border size.
func Move(g Grab, cursor geom.Point, prev geom.Rect, c Constraints) geom.Rect {
	b := c.BorderSize
	x := geom.Clamp(cursor.X-g.DX, -b, c.Canvas.W-prev.W+b)
	y := geom.Clamp(cursor.Y-g.DY, -b, c.Canvas.H-prev.H+b)
	return geom.R(x, y, prev.W, prev.H)
}

// TopLeft resizes from the top-left corner; the bottom-right corner stays fixed.
func TopLeft(a Anchor, cursor geom.Point, prev geom.Rect, c Constraints) (geom.Rect, bool) {
	right, bottom := a.X+a.W, a.Y+a.H
	w := a.W + (a.X - cursor.X)
	h := a.H + (a.Y - cursor.Y)
	if w < c.MinWidth || h < c.MinHeight {
		return prev, false
	}
	ratio := c.AspectRatio
	switch {
	case !ratio.Locked():
		if right-w < 0 {
			w = right
		}
		if bottom-h < 0 {
			h = bottom
		}
	case widthDominates(a, cursor):
		h = ratio.HeightFor(w)
		// top edge
		if bottom-h < 0 {
			h = bottom
			w = ratio.WidthFor(h)
		}
		// left edge
		if right-w < 0 {
			w = right
			h = ratio.HeightFor(w)
		}
	default:
		w = ratio.WidthFor(h)
		if right-w < 0 {
			w = right
			h = ratio.HeightFor(w)
		}
		if bottom-h < 0 {
			h = bottom
			w = ratio.WidthFor(h)
		}
	}
	return finish(geom.R(right-w, bottom-h, w, h), prev, c)
}

// TopRight resizes from the top-right corner; the bottom-left corner stays fixed.
func TopRight(a Anchor, cursor geom.Point, prev geom.Rect, c Constraints) (geom.Rect, bool) {
	left, bottom := a.X-a.W, a.Y+a.H
	w := a.W + (cursor.X - a.X)
	h := a.H + (a.Y - cursor.Y)
	if w < c.MinWidth || h < c.MinHeight {
		return prev, false
	}
	maxW := c.Canvas.W - left
	ratio := c.AspectRatio
	switch {
	case !ratio.Locked():
		if w > maxW {
			w = maxW
		}
		if bottom-h < 0 {
			h = bottom
		}
	case widthDominates(a, cursor):
		h = ratio.HeightFor(w)
		// top edge
		if bottom-h < 0 {
			h = bottom
			w = ratio.WidthFor(h)
		}
		// right edge
		if w > maxW {
			w = maxW
			h = ratio.HeightFor(w)
		}
	default:
		w = ratio.WidthFor(h)
		if w > maxW {
			w = maxW
			h = ratio.HeightFor(w)
		}
		if bottom-h < 0 {
			h = bottom
			w = ratio.WidthFor(h)
		}
	}
	return finish(geom.R(left, bottom-h, w, h), prev, c)
}

// BottomLeft resizes from the bottom-left corner; the top-right corner stays fixed.
func BottomLeft(a Anchor, cursor geom.Point, prev geom.Rect, c Constraints) (geom.Rect, bool) {
	right, top := a.X+a.W, a.Y-a.H
	w := a.W + (a.X - cursor.X)
	h := a.H + (cursor.Y - a.Y)
	if w < c.MinWidth || h < c.MinHeight {
		return prev, false
	}
	maxH := c.Canvas.H - top
	ratio := c.AspectRatio
	switch {
	case !ratio.Locked():
		if right-w < 0 {
			w = right
		}
		if h > maxH {
			h = maxH
		}
	case widthDominates(a, cursor):
		h = ratio.HeightFor(w)
		// bottom edge
		if h > maxH {
			h = maxH
			w = ratio.WidthFor(h)
		}
		// left edge
		if right-w < 0 {
			w = right
			h = ratio.HeightFor(w)
		}
	default:
		w = ratio.WidthFor(h)
		if right-w < 0 {
			w = right
			h = ratio.HeightFor(w)
		}
		if h > maxH {
			h = maxH
			w = ratio.WidthFor(h)
		}
	}
	return finish(geom.R(right-w, top, w, h), prev, c)
}

// BottomRight resizes from the bottom-right corner; the top-left corner stays fixed.
func BottomRight(a Anchor, cursor geom.Point, prev geom.Rect, c Constraints) (geom.Rect, bool) {
	left, top := a.X-a.W, a.Y-a.H
	w := a.W + (cursor.X - a.X)
	h := a.H + (cursor.Y - a.Y)
	if w < c.MinWidth || h < c.MinHeight {
		return prev, false
	}
	maxW, maxH := c.Canvas.W-left, c.Canvas.H-top
	ratio := c.AspectRatio
	switch {
	case !ratio.Locked():
		if w > maxW {
			w = maxW
		}
		if h > maxH {
			h = maxH
		}
	case widthDominates(a, cursor):
		h = ratio.HeightFor(w)
		// bottom edge
		if h > maxH {
			h = maxH
			w = ratio.WidthFor(h)
		}
		// right edge
		if w > maxW {
			w = maxW
			h = ratio.HeightFor(w)
		}
	default:
		w = ratio.WidthFor(h)
		if w > maxW {
			w = maxW
			h = ratio.HeightFor(w)
		}
		if h > maxH {
			h = maxH
			w = ratio.WidthFor(h)
		}
	}
	return finish(geom.R(left, top, w, h), prev, c)
}

// widthDominates reports whether the gesture moved further horizontally than vertically.
// Ties go to height.
func widthDominates(a Anchor, cursor geom.Point) bool {
	return geom.Abs(a.X-cursor.X) > geom.Abs(a.Y-cursor.Y)
}

// finish trims r back inside the border-extended canvas and rejects it when an edge
// correction left it below the minimum size.
func finish(r, prev geom.Rect, c Constraints) (geom.Rect, bool) {
	b := c.BorderSize
	if r.X < -b {
		r.W -= -b - r.X
		r.X = -b
	}
	if r.Y < -b {
		r.H -= -b - r.Y
		r.Y = -b
	}
	if over := r.Right() - (c.Canvas.W + b); over > 0 {
		r.W -= over
	}
	if over := r.Bottom() - (c.Canvas.H + b); over > 0 {
		r.H -= over
	}
	if r.W < c.MinWidth || r.H < c.MinHeight {
		return prev, false
	}
	return r, true
}
