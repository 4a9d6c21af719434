/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"time"

	"gocropper/internal/geom"
	"gocropper/internal/selection"
)

// Tracker binds a History to the selection of one image. The host feeds it finished
// gestures through Record and drives Undo and Redo from its own commands.
type Tracker struct {
	h     *History
	key   string
	state *selection.State
	now   func() time.Time
}

func NewTracker(h *History, key string, state *selection.State) *Tracker {
	return &Tracker{h: h, key: key, state: state, now: time.Now}
}

// Record stores start as the undo point of a gesture that ended at final.
// It has the signature of drag.OnGestureEnd.
func (t *Tracker) Record(start, final geom.Rect) {
	if start == final {
		return
	}
	t.h.Push(Entry{Key: t.key, Rect: start, TS: t.now()})
}

// Undo restores the selection from before the last recorded gesture.
func (t *Tracker) Undo() (geom.Rect, bool) {
	r, ok := t.h.Undo(t.key, t.state.Selection())
	if !ok {
		return t.state.Selection(), false
	}
	return t.state.Apply(r), true
}

// Redo reverses the last Undo.
func (t *Tracker) Redo() (geom.Rect, bool) {
	r, ok := t.h.Redo(t.key, t.state.Selection())
	if !ok {
		return t.state.Selection(), false
	}
	return t.state.Apply(r), true
}

// History returns the underlying history.
func (t *Tracker) History() *History { return t.h }
