/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"gocropper/internal/drag"
	"gocropper/internal/geom"
	"gocropper/internal/undo"
)

// Step is the outcome of one replayed event.
type Step struct {
	Event Event
	// Selection is the selection after the event.
	Selection geom.Rect
	// Accepted is false when the controller ignored the event or rejected the frame.
	Accepted bool
	Dragging bool
}

// Replay feeds the events of s to c in order and returns the final selection.
// Undo and redo events go to h and are ignored while dragging or when h is nil.
// observe, when non-nil, is called after every event.
func Replay(c *drag.Controller, h *undo.Tracker, s Script, observe func(Step)) geom.Rect {
	for _, e := range s.Events {
		st := Step{Event: e}
		switch e.Kind {
		case KindDown:
			st.Accepted = c.PointerDown(e.Action, e.Point)
		case KindMove:
			_, st.Accepted = c.PointerMove(e.Point)
		case KindTouch:
			_, st.Accepted = c.TouchMove(e.Point)
		case KindLeave:
			st.Accepted = c.Dragging()
			c.PointerLeave(e.Point)
		case KindUp:
			st.Accepted = c.Dragging()
			c.PointerUp()
		case KindUndo:
			if h != nil && !c.Dragging() {
				_, st.Accepted = h.Undo()
			}
		case KindRedo:
			if h != nil && !c.Dragging() {
				_, st.Accepted = h.Redo()
			}
		}
		st.Selection = c.Selection()
		st.Dragging = c.Dragging()
		if observe != nil {
			observe(st)
		}
	}
	return c.Selection()
}
