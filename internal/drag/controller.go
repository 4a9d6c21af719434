/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drag runs pointer gestures against a selection.State.
//
// The controller is either idle or dragging one session. A session remembers the action and,
// from its first pointer move on, the anchor the resizer measures against. Everything else
// is read from the selection state on every event.
package drag

import (
	"log/slog"

	"github.com/google/uuid"

	"gocropper/internal/geom"
	"gocropper/internal/resize"
	"gocropper/internal/selection"
)

// Session is one pointer-down to pointer-up gesture.
type Session struct {
	ID     uuid.UUID
	Action Action
	// Start is the selection when the gesture began.
	Start geom.Rect

	// captured is false until the first pointer move fills anchor or grab.
	captured bool
	anchor   resize.Anchor
	grab     resize.Grab
}

func newSession(a Action, start geom.Rect) *Session {
	return &Session{ID: uuid.New(), Action: a, Start: start}
}

// Captured reports whether the anchor has been taken.
func (s *Session) Captured() bool { return s.captured }

func (s *Session) capture(sel geom.Rect, cursor geom.Point) {
	if s.Action == Move {
		s.grab = resize.NewGrab(cursor, sel)
	} else {
		right, bottom := s.Action.corner()
		s.anchor = resize.NewAnchor(sel, right, bottom)
	}
	s.captured = true
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// OnGestureEnd registers fn to run when a session ends with a selection different from
// the one it started with.
func OnGestureEnd(fn func(start, final geom.Rect)) Option {
	return func(c *Controller) { c.onEnd = fn }
}

// Controller is the Idle/Dragging state machine. Like selection.State it expects
// events from a single goroutine in arrival order.
type Controller struct {
	state   *selection.State
	session *Session
	log     *slog.Logger
	onEnd   func(start, final geom.Rect)
}

func New(state *selection.State, opts ...Option) *Controller {
	c := &Controller{state: state, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dragging reports whether a session is active.
func (c *Controller) Dragging() bool { return c.session != nil }

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Selection returns the current selection.
func (c *Controller) Selection() geom.Rect { return c.state.Selection() }

// PointerDown starts a session for a. It is ignored while dragging, before the canvas is
// known, and for actions the controller does not know.
func (c *Controller) PointerDown(a Action, cursor geom.Point) bool {
	if c.session != nil || !c.state.Ready() || !a.Valid() {
		return false
	}
	c.session = newSession(a, c.state.Selection())
	c.log.Debug("drag started", "session", c.session.ID, "action", a, "x", cursor.X, "y", cursor.Y)
	return true
}

// PointerMove resizes or moves the selection for cursor. It returns the selection after the
// event and whether the candidate was accepted; rejected frames leave the selection as is.
func (c *Controller) PointerMove(cursor geom.Point) (geom.Rect, bool) {
	s := c.session
	if s == nil {
		return c.state.Selection(), false
	}
	prev := c.state.Selection()
	if !s.captured {
		s.capture(prev, cursor)
	}
	cons := c.state.Constraints()

	var next geom.Rect
	ok := true
	switch s.Action {
	case Move:
		next = resize.Move(s.grab, cursor, prev, cons)
	case ResizeTopLeft:
		next, ok = resize.TopLeft(s.anchor, cursor, prev, cons)
	case ResizeTopRight:
		next, ok = resize.TopRight(s.anchor, cursor, prev, cons)
	case ResizeBottomLeft:
		next, ok = resize.BottomLeft(s.anchor, cursor, prev, cons)
	case ResizeBottomRight:
		next, ok = resize.BottomRight(s.anchor, cursor, prev, cons)
	default:
		return prev, false
	}
	if !ok {
		return prev, false
	}
	return c.state.Apply(next), true
}

// TouchMove is PointerMove for touch input, where the finger may leave the canvas
// without ending the gesture: the cursor is clamped to the canvas first.
func (c *Controller) TouchMove(cursor geom.Point) (geom.Rect, bool) {
	return c.PointerMove(ClampToCanvas(cursor, c.state.Canvas()))
}

// PointerUp ends the session.
func (c *Controller) PointerUp() {
	c.end("up")
}

// PointerLeave snaps the selection to the canvas edge and ends the session: the cursor is
// clamped to the canvas, one final move is applied, and only then the session is dropped.
func (c *Controller) PointerLeave(cursor geom.Point) {
	if c.session == nil {
		return
	}
	c.PointerMove(ClampToCanvas(cursor, c.state.Canvas()))
	c.end("leave")
}

func (c *Controller) end(reason string) {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	final := c.state.Selection()
	if c.onEnd != nil && final != s.Start {
		c.onEnd(s.Start, final)
	}
	c.log.Debug("drag ended", "session", s.ID, "action", s.Action, "reason", reason, "selection", final.String())
}

// ClampToCanvas limits p to [0,W]x[0,H].
func ClampToCanvas(p geom.Point, canvas geom.Size) geom.Point {
	return geom.Pt(geom.Clamp(p.X, 0, canvas.W), geom.Clamp(p.Y, 0, canvas.H))
}
