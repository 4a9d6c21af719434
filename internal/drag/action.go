/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package drag

import (
	"fmt"
	"strings"
)

// Action is the gesture a pointer-down started. The host resolves which handle was hit.
type Action int

const (
	None Action = iota
	Move
	ResizeTopLeft
	ResizeTopRight
	ResizeBottomLeft
	ResizeBottomRight
)

var actionNames = [...]string{
	None:              "none",
	Move:              "move",
	ResizeTopLeft:     "top-left",
	ResizeTopRight:    "top-right",
	ResizeBottomLeft:  "bottom-left",
	ResizeBottomRight: "bottom-right",
}

// Valid reports whether a names a gesture the controller can run.
func (a Action) Valid() bool { return a > None && int(a) < len(actionNames) }

func (a Action) String() string {
	if a < None || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// corner reports which corner a resize action drags.
func (a Action) corner() (right, bottom bool) {
	switch a {
	case ResizeTopRight:
		return true, false
	case ResizeBottomLeft:
		return false, true
	case ResizeBottomRight:
		return true, true
	}
	return false, false
}

// ParseAction accepts the names printed by String plus a few short aliases, in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move", "m":
		return Move, nil
	case "top-left", "tl", "nw":
		return ResizeTopLeft, nil
	case "top-right", "tr", "ne":
		return ResizeTopRight, nil
	case "bottom-left", "bl", "sw":
		return ResizeBottomLeft, nil
	case "bottom-right", "br", "se":
		return ResizeBottomRight, nil
	}
	return None, fmt.Errorf("unknown drag action %q", s)
}
