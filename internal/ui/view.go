/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"gocropper/internal/drag"
	"gocropper/internal/geom"
	"gocropper/internal/preview"
	"gocropper/internal/selection"
	"gocropper/internal/undo"
)

// Config is what the interactive host needs to open one image.
type Config struct {
	Image     string
	Selection selection.Options
	Previews  []preview.Binding
	History   undo.Config
	// CrashDir receives crash reports; the temp dir if empty.
	CrashDir string
	// OnSave is called with the reported selection when the user confirms the crop.
	OnSave func(geom.Rect) error
}

// View maps between widget coordinates and canvas pixels for an image drawn
// scaled to fit and centered in the widget.
type View struct {
	Scale      float64
	OffX, OffY float64
	Canvas     geom.Size
	WidgetW    float64
	WidgetH    float64
}

// Fit returns the view of canvas inside a w x h widget.
func Fit(canvas geom.Size, w, h float64) View {
	v := View{Canvas: canvas, WidgetW: w, WidgetH: h, Scale: 1}
	if canvas.Empty() || w <= 0 || h <= 0 {
		return v
	}
	v.Scale = math.Min(w/float64(canvas.W), h/float64(canvas.H))
	v.OffX = (w - float64(canvas.W)*v.Scale) / 2
	v.OffY = (h - float64(canvas.H)*v.Scale) / 2
	return v
}

// ToCanvas converts a widget position to canvas pixels. Positions outside the image
// map outside the canvas; the controller decides what to do with them.
func (v View) ToCanvas(x, y float64) geom.Point {
	return geom.Pt(int(math.Floor((x-v.OffX)/v.Scale)), int(math.Floor((y-v.OffY)/v.Scale)))
}

// ToWidget converts a canvas rectangle to widget coordinates.
func (v View) ToWidget(r geom.Rect) (x, y, w, h float64) {
	return v.OffX + float64(r.X)*v.Scale, v.OffY + float64(r.Y)*v.Scale, float64(r.W) * v.Scale, float64(r.H) * v.Scale
}

// ExitPoint estimates where the pointer crossed the canvas edge after the last two
// positions seen, prev then last. The motion is extended along prev->last until it
// reaches the first edge; without motion the nearest edge is used.
func ExitPoint(prev, last geom.Point, canvas geom.Size) geom.Point {
	dx, dy := last.X-prev.X, last.Y-prev.Y
	if dx == 0 && dy == 0 {
		left, right := last.X, canvas.W-last.X
		top, bottom := last.Y, canvas.H-last.Y
		switch min(left, right, top, bottom) {
		case left:
			return geom.Pt(0, last.Y)
		case right:
			return geom.Pt(canvas.W, last.Y)
		case top:
			return geom.Pt(last.X, 0)
		}
		return geom.Pt(last.X, canvas.H)
	}
	t := math.Inf(1)
	if dx > 0 {
		t = math.Min(t, float64(canvas.W-last.X)/float64(dx))
	} else if dx < 0 {
		t = math.Min(t, float64(-last.X)/float64(dx))
	}
	if dy > 0 {
		t = math.Min(t, float64(canvas.H-last.Y)/float64(dy))
	} else if dy < 0 {
		t = math.Min(t, float64(-last.Y)/float64(dy))
	}
	t = math.Max(t, 0)
	return geom.Pt(last.X+int(math.Round(t*float64(dx))), last.Y+int(math.Round(t*float64(dy))))
}

// HitTest resolves the drag action for a pointer-down at p. Corner handles are squares
// of side handle centered on the selection corners and win over the body; a press
// inside the selection moves it; anything else starts nothing.
func HitTest(sel geom.Rect, p geom.Point, handle int) drag.Action {
	half := max(handle/2, 1)
	near := func(cx, cy int) bool {
		return geom.Abs(p.X-cx) <= half && geom.Abs(p.Y-cy) <= half
	}
	switch {
	case near(sel.X, sel.Y):
		return drag.ResizeTopLeft
	case near(sel.Right(), sel.Y):
		return drag.ResizeTopRight
	case near(sel.X, sel.Bottom()):
		return drag.ResizeBottomLeft
	case near(sel.Right(), sel.Bottom()):
		return drag.ResizeBottomRight
	case sel.Contains(p):
		return drag.Move
	}
	return drag.None
}

// Handles returns the four handle squares in canvas pixels, in top-left, top-right,
// bottom-left, bottom-right order.
func Handles(sel geom.Rect, handle int) [4]geom.Rect {
	h := handle
	o := h / 2
	return [4]geom.Rect{
		geom.R(sel.X-o, sel.Y-o, h, h),
		geom.R(sel.Right()-o, sel.Y-o, h, h),
		geom.R(sel.X-o, sel.Bottom()-o, h, h),
		geom.R(sel.Right()-o, sel.Bottom()-o, h, h),
	}
}
