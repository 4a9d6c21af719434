/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection owns the canvas size and the current selection rectangle and keeps
// the rectangle valid on every mutation.
//
// Invariants after Initialize and after every Apply:
//   - W >= minWidth, H >= minHeight
//   - X >= -border, Y >= -border
//   - X+W <= canvas.W+border, Y+H <= canvas.H+border
//   - W/H matches the aspect ratio within truncation when a ratio is locked
//
// A State is not safe for concurrent use; it is driven from a single UI event loop.
package selection

import (
	"errors"
	"fmt"

	"gocropper/internal/geom"
	"gocropper/internal/resize"
)

const (
	// DefaultHandleSize is the side of a corner handle in pixels and the default minimum selection size.
	DefaultHandleSize = 10
	// DefaultBorderSize is the selection border thickness in pixels.
	DefaultBorderSize = 1

	defaultFraction = 0.2
)

var (
	ErrInvalidAspectRatio = errors.New("aspect ratio must be zero or a finite positive number")
	ErrInvalidMinSize     = errors.New("minimum size must be positive and not below the handle size")
	ErrInvalidCanvas      = errors.New("canvas size must be positive")
	ErrInvalidBorder      = errors.New("border and handle sizes must not be negative")
)

// Options configures a State. Zero values fall back to defaults in New.
type Options struct {
	AspectRatio geom.AspectRatio
	MinWidth    int
	MinHeight   int
	BorderSize  int
	HandleSize  int
	// Canvas, when non-empty, replaces the measured image size.
	Canvas geom.Size
	// Initial is an explicit first selection; it is discarded as a whole if it does not fit.
	Initial *geom.Rect
	// KeepAspectRatioFromInitial locks the ratio of an accepted Initial rectangle.
	KeepAspectRatioFromInitial bool
}

// DefaultOptions returns a free-shape configuration with handle-sized minimums.
func DefaultOptions() Options {
	return Options{
		MinWidth:   DefaultHandleSize,
		MinHeight:  DefaultHandleSize,
		BorderSize: DefaultBorderSize,
		HandleSize: DefaultHandleSize,
	}
}

// Validate reports the first configuration value that cannot be used in geometry math.
func (o Options) Validate() error {
	if !o.AspectRatio.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidAspectRatio, float64(o.AspectRatio))
	}
	if o.BorderSize < 0 || o.HandleSize < 0 {
		return ErrInvalidBorder
	}
	if o.MinWidth <= 0 || o.MinHeight <= 0 || o.MinWidth < o.HandleSize || o.MinHeight < o.HandleSize {
		return fmt.Errorf("%w: %dx%d with handle %d", ErrInvalidMinSize, o.MinWidth, o.MinHeight, o.HandleSize)
	}
	if o.Canvas.W < 0 || o.Canvas.H < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCanvas, o.Canvas)
	}
	return nil
}

// Listener receives the selection after every accepted change.
type Listener func(geom.Rect)

type listenerEntry struct {
	id int
	fn Listener
}

// State is the single mutable owner of the selection.
type State struct {
	opts Options

	canvas geom.Size
	sel    geom.Rect
	ratio  geom.AspectRatio
	minW   int
	minH   int
	ready  bool

	listeners []listenerEntry
	nextID    int
}

// New validates opts and returns a State waiting for its canvas size.
func New(opts Options) (*State, error) {
	if opts.HandleSize == 0 {
		opts.HandleSize = DefaultHandleSize
	}
	if opts.MinWidth == 0 {
		opts.MinWidth = opts.HandleSize
	}
	if opts.MinHeight == 0 {
		opts.MinHeight = opts.HandleSize
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &State{opts: opts, ratio: opts.AspectRatio, minW: opts.MinWidth, minH: opts.MinHeight}, nil
}

// Initialize records the canvas size and computes the first selection: the explicit
// initial rectangle when it fits, otherwise a box of 20% of the canvas offset by 20%.
// Calling it again replaces the canvas and discards the previous selection.
func (s *State) Initialize(measured geom.Size) (geom.Rect, error) {
	canvas := measured
	if !s.opts.Canvas.Empty() {
		canvas = s.opts.Canvas
	}
	if canvas.Empty() {
		return geom.Rect{}, fmt.Errorf("%w: %v", ErrInvalidCanvas, canvas)
	}
	s.canvas = canvas
	s.ratio = s.opts.AspectRatio
	s.minW, s.minH = s.opts.MinWidth, s.opts.MinHeight

	r, ok := s.initialRect()
	if !ok {
		r = s.defaultRect()
	}
	// the minimum can never exceed the first selection
	if s.minW > r.W {
		s.minW = min(s.opts.HandleSize, r.W)
	}
	if s.minH > r.H {
		s.minH = min(s.opts.HandleSize, r.H)
	}
	s.sel = s.sanitize(r)
	s.ready = true
	s.notify()
	return s.sel, nil
}

func (s *State) initialRect() (geom.Rect, bool) {
	if s.opts.Initial == nil {
		return geom.Rect{}, false
	}
	r := *s.opts.Initial
	if r.X < 0 || r.Y < 0 || r.W < s.opts.HandleSize || r.H < s.opts.HandleSize {
		return geom.Rect{}, false
	}
	if r.X+r.W > s.canvas.W || r.Y+r.H > s.canvas.H {
		return geom.Rect{}, false
	}
	if s.opts.KeepAspectRatioFromInitial {
		s.ratio = geom.Ratio(r.Size())
	} else if !s.ratio.Matches(r) {
		return geom.Rect{}, false
	}
	return r, true
}

func (s *State) defaultRect() geom.Rect {
	cw, ch := s.canvas.W, s.canvas.H
	x := int(float64(cw) * defaultFraction)
	y := int(float64(ch) * defaultFraction)
	w := int(float64(cw) * defaultFraction)
	h := int(float64(ch) * defaultFraction)
	if s.ratio.Locked() {
		h = s.ratio.HeightFor(w)
		if y+h > ch {
			h = min(int(float64(ch)*defaultFraction), ch-y)
			w = s.ratio.WidthFor(h)
		}
	}
	// tiny canvases: keep at least a handle-sized box inside the canvas
	if w < s.opts.HandleSize {
		w = min(s.opts.HandleSize, cw)
		x = min(x, cw-w)
	}
	if h < s.opts.HandleSize {
		h = min(s.opts.HandleSize, ch)
		y = min(y, ch-h)
	}
	return geom.R(x, y, w, h)
}

// Apply validates candidate against the invariants, correcting rather than rejecting
// saturated results, stores it and notifies listeners when the selection changed.
// Before Initialize it is a no-op.
func (s *State) Apply(candidate geom.Rect) geom.Rect {
	if !s.ready {
		return s.sel
	}
	r := s.sanitize(candidate)
	if r == s.sel {
		return s.sel
	}
	s.sel = r
	s.notify()
	return s.sel
}

func (s *State) sanitize(r geom.Rect) geom.Rect {
	b := s.opts.BorderSize
	maxW, maxH := s.canvas.W+2*b, s.canvas.H+2*b
	r.W = geom.Clamp(r.W, s.minW, maxW)
	r.H = geom.Clamp(r.H, s.minH, maxH)
	if s.ratio.Locked() && !s.ratio.Matches(r) {
		if h := s.ratio.HeightFor(r.W); h >= s.minH && h <= maxH {
			r.H = h
		} else {
			r.W = geom.Clamp(s.ratio.WidthFor(r.H), s.minW, maxW)
		}
	}
	r.X = geom.Clamp(r.X, -b, s.canvas.W-r.W+b)
	r.Y = geom.Clamp(r.Y, -b, s.canvas.H-r.H+b)
	return r
}

// Reset forgets the canvas and the selection, e.g. when the source image is replaced.
func (s *State) Reset() {
	s.canvas = geom.Size{}
	s.sel = geom.Rect{}
	s.ready = false
}

// Ready reports whether the canvas size is known.
func (s *State) Ready() bool { return s.ready }

// Selection returns the current selection rectangle in canvas coordinates.
func (s *State) Selection() geom.Rect { return s.sel }

// Reported returns the selection as seen by collaborators: the position is shifted
// inward by the border thickness.
func (s *State) Reported() geom.Rect {
	b := s.opts.BorderSize
	return s.sel.Translate(b, b)
}

func (s *State) Canvas() geom.Size             { return s.canvas }
func (s *State) AspectRatio() geom.AspectRatio { return s.ratio }
func (s *State) MinSize() geom.Size            { return geom.Sz(s.minW, s.minH) }
func (s *State) BorderSize() int               { return s.opts.BorderSize }
func (s *State) HandleSize() int               { return s.opts.HandleSize }
func (s *State) Options() Options              { return s.opts }

// Constraints returns the bounds the resizer must honor for the current canvas.
func (s *State) Constraints() resize.Constraints {
	return resize.Constraints{
		Canvas:      s.canvas,
		AspectRatio: s.ratio,
		MinWidth:    s.minW,
		MinHeight:   s.minH,
		BorderSize:  s.opts.BorderSize,
	}
}

// SetAspectRatio changes the locked ratio. Invalid values are rejected and the previous
// ratio is kept. A ready selection is re-fitted to the new ratio.
func (s *State) SetAspectRatio(r geom.AspectRatio) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidAspectRatio, float64(r))
	}
	s.opts.AspectRatio = r
	s.ratio = r
	if s.ready {
		s.Apply(s.sel)
	}
	return nil
}

// SetMinWidth changes the minimum width. Values below the handle size are rejected.
func (s *State) SetMinWidth(w int) error {
	if w <= 0 || w < s.opts.HandleSize {
		return fmt.Errorf("%w: width %d", ErrInvalidMinSize, w)
	}
	s.opts.MinWidth = w
	s.minW = w
	return nil
}

// SetMinHeight changes the minimum height. Values below the handle size are rejected.
func (s *State) SetMinHeight(h int) error {
	if h <= 0 || h < s.opts.HandleSize {
		return fmt.Errorf("%w: height %d", ErrInvalidMinSize, h)
	}
	s.opts.MinHeight = h
	s.minH = h
	return nil
}

// Subscribe registers l for change notifications and returns a function that removes it.
// Listeners run synchronously, in registration order.
func (s *State) Subscribe(l Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	return func() {
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *State) notify() {
	for _, e := range s.listeners {
		e.fn(s.sel)
	}
}
