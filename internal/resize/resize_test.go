/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package resize

import (
	"testing"

	"gocropper/internal/geom"
)

func constraints(w, h int, ratio geom.AspectRatio) Constraints {
	return Constraints{Canvas: geom.Sz(w, h), AspectRatio: ratio, MinWidth: 30, MinHeight: 30, BorderSize: 1}
}

func TestMoveClampsToBorder(t *testing.T) {
	c := constraints(400, 250, geom.Free)
	prev := geom.R(50, 50, 100, 80)
	g := Grab{DX: 10, DY: 10}
	if got := Move(g, geom.Pt(-40, 20), prev, c); got != geom.R(-1, 10, 100, 80) {
		t.Fatalf("left clamp: got %v", got)
	}
	if got := Move(g, geom.Pt(460, 20), prev, c); got != geom.R(301, 10, 100, 80) {
		t.Fatalf("right clamp with border: got %v", got)
	}
	c.BorderSize = 0
	if got := Move(g, geom.Pt(460, 20), prev, c); got.X != 300 {
		t.Fatalf("right clamp without border: got x=%d, want 300", got.X)
	}
	if got := Move(g, geom.Pt(100, 400), prev, c); got.Y != 170 {
		t.Fatalf("bottom clamp: got y=%d, want 170", got.Y)
	}
}

func TestNewGrabIsOffsetFromTopLeft(t *testing.T) {
	g := NewGrab(geom.Pt(130, 95), geom.R(100, 80, 50, 50))
	if g.DX != 30 || g.DY != 15 {
		t.Fatalf("unexpected grab: %+v", g)
	}
	// the grab point keeps its place under the cursor
	r := Move(g, geom.Pt(200, 150), geom.R(100, 80, 50, 50), constraints(800, 600, geom.Free))
	if r.X != 170 || r.Y != 135 {
		t.Fatalf("unexpected move result: %v", r)
	}
}

func TestBottomRightAspectLockDerivesHeightFromDominantWidth(t *testing.T) {
	c := constraints(800, 600, 2)
	prev := geom.R(10, 10, 100, 50)
	a := NewAnchor(prev, true, true)
	got, ok := BottomRight(a, geom.Pt(a.X+100, a.Y+10), prev, c)
	if !ok {
		t.Fatalf("expected resize to be accepted")
	}
	if got != geom.R(10, 10, 200, 100) {
		t.Fatalf("got %v, want (10,10 200x100)", got)
	}
}

func TestAspectLockTieGoesToHeight(t *testing.T) {
	c := constraints(800, 600, 2)
	prev := geom.R(0, 0, 100, 50)
	a := NewAnchor(prev, true, true)
	got, _ := BottomRight(a, geom.Pt(110, 60), prev, c)
	if got != geom.R(0, 0, 120, 60) {
		t.Fatalf("got %v, want width derived from height (0,0 120x60)", got)
	}
}

func TestMinSizeRejectionKeepsPreviousFrame(t *testing.T) {
	c := constraints(800, 600, geom.Free)
	prev := geom.R(100, 100, 50, 50)
	a := NewAnchor(prev, false, false)
	got, ok := TopLeft(a, geom.Pt(130, 100), prev, c)
	if ok {
		t.Fatalf("expected rejection for width 20")
	}
	if got != prev {
		t.Fatalf("rejected frame must return previous rect, got %v", got)
	}
	for name, fn := range map[string]func(Anchor, geom.Point, geom.Rect, Constraints) (geom.Rect, bool){
		"top-right":    TopRight,
		"bottom-left":  BottomLeft,
		"bottom-right": BottomRight,
	} {
		right := name != "bottom-left"
		bottom := name != "top-right"
		a := NewAnchor(prev, right, bottom)
		cur := geom.Pt(prev.X+prev.W/2, prev.Y+prev.H/2)
		if got, ok := fn(a, cur, prev, c); ok || got != prev {
			t.Fatalf("%s: expected rejection, got %v ok=%v", name, got, ok)
		}
	}
}

func TestResizeIsIdempotentForHeldCursor(t *testing.T) {
	c := constraints(800, 600, 1.5)
	prev := geom.R(100, 100, 150, 100)
	a := NewAnchor(prev, false, true)
	cur := geom.Pt(40, 260)
	r1, ok1 := BottomLeft(a, cur, prev, c)
	r2, ok2 := BottomLeft(a, cur, r1, c)
	if !ok1 || !ok2 || r1 != r2 {
		t.Fatalf("expected identical frames, got %v (%v) and %v (%v)", r1, ok1, r2, ok2)
	}
}

func TestTopLeftAspectLockTopEdge(t *testing.T) {
	c := constraints(800, 600, 1)
	prev := geom.R(100, 50, 100, 100)
	a := NewAnchor(prev, false, false)
	got, ok := TopLeft(a, geom.Pt(0, 45), prev, c)
	if !ok || got != geom.R(50, 0, 150, 150) {
		t.Fatalf("got %v ok=%v, want (50,0 150x150)", got, ok)
	}
	if got.Right() != prev.Right() || got.Bottom() != prev.Bottom() {
		t.Fatalf("opposite corner moved: %v", got)
	}
}

func TestTopLeftAspectLockLeftEdge(t *testing.T) {
	c := constraints(800, 600, 1)
	prev := geom.R(20, 200, 100, 100)
	a := NewAnchor(prev, false, false)
	got, ok := TopLeft(a, geom.Pt(15, 50), prev, c)
	if !ok || got != geom.R(0, 180, 120, 120) {
		t.Fatalf("got %v ok=%v, want (0,180 120x120)", got, ok)
	}
}

func TestTopRightAspectLock(t *testing.T) {
	c := constraints(800, 600, 2)
	prev := geom.R(600, 300, 100, 50)
	a := NewAnchor(prev, true, false)
	got, ok := TopRight(a, geom.Pt(790, 295), prev, c)
	if !ok || got != geom.R(600, 255, 190, 95) {
		t.Fatalf("width-dominant: got %v ok=%v", got, ok)
	}
	// height dominates and the derived width would cross the right edge
	got, ok = TopRight(a, geom.Pt(790, 100), prev, c)
	if !ok || got != geom.R(600, 250, 200, 100) {
		t.Fatalf("right edge: got %v ok=%v", got, ok)
	}
}

func TestBottomLeftAspectLockBottomEdge(t *testing.T) {
	c := constraints(800, 600, 0.5)
	prev := geom.R(300, 400, 50, 100)
	a := NewAnchor(prev, false, true)
	got, ok := BottomLeft(a, geom.Pt(200, 510), prev, c)
	if !ok || got != geom.R(250, 400, 100, 200) {
		t.Fatalf("got %v ok=%v, want (250,400 100x200)", got, ok)
	}
}

func TestBottomRightFreeClampsToCanvas(t *testing.T) {
	c := constraints(400, 250, geom.Free)
	prev := geom.R(300, 200, 50, 30)
	a := NewAnchor(prev, true, true)
	got, ok := BottomRight(a, geom.Pt(420, 260), prev, c)
	if !ok || got != geom.R(300, 200, 100, 50) {
		t.Fatalf("got %v ok=%v, want (300,200 100x50)", got, ok)
	}
}

func TestTopLeftFreeStopsAtOrigin(t *testing.T) {
	c := constraints(400, 250, geom.Free)
	prev := geom.R(40, 40, 60, 60)
	a := NewAnchor(prev, false, false)
	got, ok := TopLeft(a, geom.Pt(-20, -10), prev, c)
	if !ok || got != geom.R(0, 0, 100, 100) {
		t.Fatalf("got %v ok=%v, want (0,0 100x100)", got, ok)
	}
}

func TestEdgeCorrectionBelowMinimumRejects(t *testing.T) {
	c := constraints(800, 600, 1)
	prev := geom.R(-1, 100, 30, 30)
	a := NewAnchor(prev, false, false)
	got, ok := TopLeft(a, geom.Pt(-10, 100), prev, c)
	if ok || got != prev {
		t.Fatalf("expected rejection after left-edge correction, got %v ok=%v", got, ok)
	}
}
