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
	"testing"
	"time"

	"gocropper/internal/geom"
)

func TestUndoRedoBasic(t *testing.T) {
	h := NewHistory(Config{MaxPerKey: 10})
	t0 := time.Now()
	h.Push(Entry{Key: "a.png", Rect: geom.R(0, 0, 10, 10), TS: t0})
	h.Push(Entry{Key: "a.png", Rect: geom.R(5, 5, 10, 10), TS: t0.Add(time.Second)})
	if n, keys := h.Stats(); n != 2 || keys != 1 {
		t.Fatalf("expected 2 entries on 1 key, got %d on %d", n, keys)
	}
	cur := geom.R(9, 9, 10, 10)
	r, ok := h.Undo("a.png", cur)
	if !ok || r != geom.R(5, 5, 10, 10) {
		t.Fatalf("undo: got %v ok=%v", r, ok)
	}
	r, ok = h.Redo("a.png", r)
	if !ok || r != cur {
		t.Fatalf("redo: got %v ok=%v, want %v", r, ok, cur)
	}
	if _, ok := h.Redo("a.png", r); ok {
		t.Fatalf("redo stack should be empty")
	}
}

func TestCoalesceKeepsEarlierEntry(t *testing.T) {
	h := NewHistory(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	h.Push(Entry{Key: "k", Rect: geom.R(1, 1, 10, 10), TS: t0})
	h.Push(Entry{Key: "k", Rect: geom.R(2, 2, 10, 10), TS: t0.Add(10 * time.Millisecond)})
	if n, _ := h.Stats(); n != 1 {
		t.Fatalf("expected coalesced to 1 entry, got %d", n)
	}
	r, ok := h.Undo("k", geom.R(3, 3, 10, 10))
	if !ok || r != geom.R(1, 1, 10, 10) {
		t.Fatalf("expected the earliest selection, got %v ok=%v", r, ok)
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Push(Entry{Key: "k", Rect: geom.R(1, 1, 10, 10), TS: t0})
	if _, ok := h.Undo("k", geom.R(2, 2, 10, 10)); !ok {
		t.Fatalf("undo failed")
	}
	h.Push(Entry{Key: "k", Rect: geom.R(4, 4, 10, 10), TS: t0.Add(time.Second)})
	if _, ok := h.Redo("k", geom.R(5, 5, 10, 10)); ok {
		t.Fatalf("redo must be invalidated by a new push")
	}
}

func TestCaps(t *testing.T) {
	h := NewHistory(Config{MaxEntries: 3, MaxPerKey: 2})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		h.Push(Entry{Key: "a", Rect: geom.R(i, 0, 10, 10), TS: t0.Add(time.Duration(i) * time.Millisecond)})
	}
	if n, _ := h.Stats(); n != 2 {
		t.Fatalf("expected per-key cap to limit to 2, got %d", n)
	}
	for i := 0; i < 2; i++ {
		h.Push(Entry{Key: "b", Rect: geom.R(i, 0, 10, 10), TS: t0.Add(time.Duration(20+i) * time.Millisecond)})
	}
	if n, _ := h.Stats(); n != 3 {
		t.Fatalf("expected global cap of 3, got %d", n)
	}
	// the oldest entry of key a was pruned
	r, ok := h.Undo("a", geom.Rect{})
	if !ok || r.X != 9 {
		t.Fatalf("expected newest entry of a to survive, got %v ok=%v", r, ok)
	}
	if _, ok := h.Undo("a", geom.Rect{}); ok {
		t.Fatalf("expected a single entry left on key a")
	}
	h.Clear("b")
	if n, keys := h.Stats(); n != 0 || keys != 0 {
		t.Fatalf("expected empty history, got %d entries on %d keys", n, keys)
	}
}
