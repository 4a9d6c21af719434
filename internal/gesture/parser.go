/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gocropper/internal/drag"
	"gocropper/internal/geom"
)

var (
	reDown  = regexp.MustCompile(`^(?i)down\s+(\S+)\s+(-?\d+)\s*[,\s]\s*(-?\d+)$`)
	rePoint = regexp.MustCompile(`^(?i)(move|touch|leave)\s+(-?\d+)\s*[,\s]\s*(-?\d+)$`)
	reBare  = regexp.MustCompile(`^(?i)(up|undo|redo)$`)
)

// Parse parses a script. Lines that cannot be parsed are reported in the returned errors
// and skipped; the remaining events are still returned.
func Parse(input string) (Script, []Error) {
	return ParseReader(strings.NewReader(input))
}

// ParseReader is Parse for a stream.
func ParseReader(r io.Reader) (Script, []Error) {
	var s Script
	var errs []Error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		col := len(line) - len(strings.TrimLeft(line, " \t")) + 1
		trim := strings.TrimSpace(line)
		if trim == "" {
			continue
		}

		if m := reDown.FindStringSubmatch(trim); m != nil {
			a, err := drag.ParseAction(m[1])
			if err != nil {
				errs = append(errs, Error{Line: lineNo, Column: col + strings.Index(trim, m[1]), Message: err.Error()})
				continue
			}
			p, perr := point(m[2], m[3])
			if perr != "" {
				errs = append(errs, Error{Line: lineNo, Column: col, Message: perr})
				continue
			}
			s.Events = append(s.Events, Event{Kind: KindDown, Action: a, Point: p, LineNo: lineNo})
			continue
		}
		if m := rePoint.FindStringSubmatch(trim); m != nil {
			p, perr := point(m[2], m[3])
			if perr != "" {
				errs = append(errs, Error{Line: lineNo, Column: col, Message: perr})
				continue
			}
			s.Events = append(s.Events, Event{Kind: keyword(m[1]), Point: p, LineNo: lineNo})
			continue
		}
		if m := reBare.FindStringSubmatch(trim); m != nil {
			s.Events = append(s.Events, Event{Kind: keyword(m[1]), LineNo: lineNo})
			continue
		}
		word := strings.Fields(trim)[0]
		msg := "malformed " + strings.ToLower(word) + " event"
		if keyword(word) == 0 {
			msg = "unknown event " + strconv.Quote(word)
		}
		errs = append(errs, Error{Line: lineNo, Column: col, Message: msg})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

func keyword(s string) Kind {
	s = strings.ToLower(s)
	for k, n := range kindNames {
		if n == s {
			return k
		}
	}
	return 0
}

func point(xs, ys string) (geom.Point, string) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return geom.Point{}, "bad x coordinate " + strconv.Quote(xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return geom.Point{}, "bad y coordinate " + strconv.Quote(ys)
	}
	return geom.Pt(x, y), ""
}
