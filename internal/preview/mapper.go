/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview maps the current selection onto preview viewports.
//
// A fixed preview pins one side of its viewport to a pixel value and scales the other side
// with the selection. A constrained preview fits the selection into a bounding box. Both show
// the full image scaled uniformly and shifted so only the selected region is visible.
package preview

import (
	"errors"
	"fmt"

	"gocropper/internal/geom"
)

// Kind selects the mapping a Binding uses.
type Kind int

const (
	Fixed Kind = iota
	Constrained
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Constrained:
		return "constrained"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "fixed" and "constrained"; the empty string means fixed.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "fixed":
		return Fixed, nil
	case "constrained":
		return Constrained, nil
	}
	return Fixed, fmt.Errorf("unknown preview kind %q", s)
}

var ErrInvalidBinding = errors.New("invalid preview binding")

// Binding describes one preview viewport.
type Binding struct {
	Name string
	Kind Kind
	// Side and Value are used by fixed previews.
	Side  geom.Dimension
	Value int
	// MaxWidth and MaxHeight bound constrained previews.
	MaxWidth  int
	MaxHeight int
}

// Validate rejects bindings whose mapping would divide by zero.
func (b Binding) Validate() error {
	switch b.Kind {
	case Fixed:
		if b.Value <= 0 {
			return fmt.Errorf("%w %q: fixed value %d", ErrInvalidBinding, b.Name, b.Value)
		}
		if b.Side != geom.Width && b.Side != geom.Height {
			return fmt.Errorf("%w %q: side %v", ErrInvalidBinding, b.Name, b.Side)
		}
	case Constrained:
		if b.MaxWidth <= 0 || b.MaxHeight <= 0 {
			return fmt.Errorf("%w %q: bounds %dx%d", ErrInvalidBinding, b.Name, b.MaxWidth, b.MaxHeight)
		}
	default:
		return fmt.Errorf("%w %q: kind %v", ErrInvalidBinding, b.Name, b.Kind)
	}
	return nil
}

// Transform positions the scaled full image behind a viewport. OffsetX and OffsetY are
// applied as a negative translation of the image.
type Transform struct {
	ImageWidth     int
	ImageHeight    int
	OffsetX        float64
	OffsetY        float64
	ViewportWidth  int
	ViewportHeight int
	// Proportion is viewport pixels per canvas pixel.
	Proportion float64
}

// Viewport returns the viewport size.
func (t Transform) Viewport() geom.Size { return geom.Sz(t.ViewportWidth, t.ViewportHeight) }

// Map computes the transform of b for sel on canvas. square marks a cropper whose ratio is
// locked to 1; fixed previews then keep both viewport sides at the fixed value.
// Degenerate inputs yield the zero Transform.
func Map(sel geom.Rect, canvas geom.Size, square bool, b Binding) Transform {
	if sel.W <= 0 || sel.H <= 0 || canvas.Empty() {
		return Transform{}
	}
	if b.Kind == Constrained {
		return mapConstrained(sel, canvas, b.MaxWidth, b.MaxHeight)
	}
	return mapFixed(sel, canvas, square, b.Side, b.Value)
}

func mapFixed(sel geom.Rect, canvas geom.Size, square bool, side geom.Dimension, value int) Transform {
	var t Transform
	switch side {
	case geom.Height:
		t.Proportion = float64(value) / float64(sel.H)
		t.ImageHeight = int(float64(canvas.H) * t.Proportion)
		t.ImageWidth = t.ImageHeight * canvas.W / canvas.H
		t.ViewportHeight = value
		if square {
			t.ViewportWidth = value
		} else {
			t.ViewportWidth = int(float64(sel.W) * t.Proportion)
		}
	default:
		t.Proportion = float64(value) / float64(sel.W)
		t.ImageWidth = int(float64(canvas.W) * t.Proportion)
		t.ImageHeight = t.ImageWidth * canvas.H / canvas.W
		t.ViewportWidth = value
		if square {
			t.ViewportHeight = value
		} else {
			t.ViewportHeight = int(float64(sel.H) * t.Proportion)
		}
	}
	t.OffsetX = t.Proportion * float64(sel.X)
	t.OffsetY = t.Proportion * float64(sel.Y)
	return t
}

// mapConstrained scales the selection down (or up) until it touches the bounding box on
// the axis where it is relatively larger.
func mapConstrained(sel geom.Rect, canvas geom.Size, maxW, maxH int) Transform {
	selRatio := float64(sel.W) / float64(sel.H)
	boxRatio := float64(maxW) / float64(maxH)
	scale := float64(sel.W) / float64(maxW)
	if selRatio < boxRatio {
		scale = float64(sel.H) / float64(maxH)
	}
	vw := int(float64(sel.W) / scale)
	vh := int(float64(sel.H) / scale)
	if vw <= 0 || vh <= 0 {
		return Transform{}
	}
	posX := float64(sel.W) / float64(vw)
	posY := float64(sel.H) / float64(vh)
	return Transform{
		ImageWidth:     int(float64(vw) * float64(canvas.W) / float64(sel.W)),
		ImageHeight:    int(float64(vh) * float64(canvas.H) / float64(sel.H)),
		OffsetX:        float64(int(float64(sel.X) / posX)),
		OffsetY:        float64(int(float64(sel.Y) / posY)),
		ViewportWidth:  vw,
		ViewportHeight: vh,
		Proportion:     1 / scale,
	}
}
