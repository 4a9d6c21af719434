/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gesture reads pointer-event scripts and replays them against a drag controller.
//
// A script is line oriented:
//
//	# comment
//	down <action> <x> <y>
//	move <x> <y>
//	touch <x> <y>
//	leave <x> <y>
//	up
//	undo
//	redo
//
// Coordinates are canvas pixels and may be separated by a space or a comma. Keywords and
// actions are case-insensitive; actions accept the names and aliases of drag.ParseAction.
package gesture

import (
	"fmt"

	"gocropper/internal/drag"
	"gocropper/internal/geom"
)

// Kind is the type of a script event.
type Kind int

const (
	KindDown Kind = iota + 1
	KindMove
	KindTouch
	KindLeave
	KindUp
	KindUndo
	KindRedo
)

var kindNames = map[Kind]string{
	KindDown:  "down",
	KindMove:  "move",
	KindTouch: "touch",
	KindLeave: "leave",
	KindUp:    "up",
	KindUndo:  "undo",
	KindRedo:  "redo",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one parsed script line.
type Event struct {
	Kind   Kind
	Action drag.Action // down only
	Point  geom.Point  // down, move, touch, leave
	LineNo int         // 1-based line in the source
}

func (e Event) String() string {
	switch e.Kind {
	case KindDown:
		return fmt.Sprintf("down %s %d %d", e.Action, e.Point.X, e.Point.Y)
	case KindMove, KindTouch, KindLeave:
		return fmt.Sprintf("%s %d %d", e.Kind, e.Point.X, e.Point.Y)
	default:
		return e.Kind.String()
	}
}

// Script is a parsed sequence of events.
type Script struct {
	Events []Event
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}
