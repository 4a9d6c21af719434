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
	"sync"
	"time"

	"gocropper/internal/geom"
)

// Entry is a selection as it was before a finished gesture changed it.
// Key identifies the image the selection belongs to.
type Entry struct {
	Key  string
	Rect geom.Rect
	TS   time.Time
}

// Config controls depth caps and coalescing behavior.
type Config struct {
	// MaxEntries caps the entries kept across all keys; the oldest are pruned first.
	MaxEntries int
	// MaxPerKey limits the depth of one key's stack (0 means unlimited).
	MaxPerKey int
	// MinInterval coalesces gestures finished in quick succession for the same key:
	// the earlier entry is kept so one undo returns to the state before the burst.
	MinInterval time.Duration
}

// History is an in-memory undo/redo stack of selections per image.
// It is safe for concurrent use.
type History struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Entry
	redo map[string][]Entry
	// accounting
	total int
}

func NewHistory(cfg Config) *History {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &History{cfg: cfg, undo: make(map[string][]Entry), redo: make(map[string][]Entry)}
}

// Push records the selection a gesture started from. Any new change invalidates redo for the key.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropRedoLocked(e.Key)
	stack := h.undo[e.Key]
	if n := len(stack); n > 0 && e.TS.Sub(stack[n-1].TS) < h.cfg.MinInterval {
		// coalesce into the earlier entry but extend its window
		stack[n-1].TS = e.TS
		return
	}
	h.undo[e.Key] = append(stack, e)
	h.total++
	h.enforceCapsLocked(e.Key)
}

// Undo pops the last recorded selection for key. current is kept for Redo.
func (h *History) Undo(key string, current geom.Rect) (geom.Rect, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := h.undo[key]
	if len(stack) == 0 {
		return geom.Rect{}, false
	}
	e := stack[len(stack)-1]
	h.undo[key] = stack[:len(stack)-1]
	if len(h.undo[key]) == 0 {
		delete(h.undo, key)
	}
	h.total--
	h.redo[key] = append(h.redo[key], Entry{Key: key, Rect: current, TS: e.TS})
	return e.Rect, true
}

// Redo reverses the last Undo for key. current is pushed back onto the undo stack.
func (h *History) Redo(key string, current geom.Rect) (geom.Rect, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.redo[key]
	if len(r) == 0 {
		return geom.Rect{}, false
	}
	e := r[len(r)-1]
	h.redo[key] = r[:len(r)-1]
	h.undo[key] = append(h.undo[key], Entry{Key: key, Rect: current, TS: e.TS})
	h.total++
	h.enforceCapsLocked(key)
	return e.Rect, true
}

// Clear drops both stacks for key, e.g. when its image is closed.
func (h *History) Clear(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total -= len(h.undo[key])
	delete(h.undo, key)
	delete(h.redo, key)
	if h.total < 0 {
		h.total = 0
	}
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (entries int, keys int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total, len(h.undo)
}

func (h *History) dropRedoLocked(key string) {
	delete(h.redo, key)
}

func (h *History) enforceCapsLocked(key string) {
	if h.cfg.MaxPerKey > 0 {
		stack := h.undo[key]
		if len(stack) > h.cfg.MaxPerKey {
			toDrop := len(stack) - h.cfg.MaxPerKey
			h.total -= toDrop
			h.undo[key] = append([]Entry{}, stack[toDrop:]...)
		}
	}
	// global cap: prune the oldest bottom entry across all keys
	for h.total > h.cfg.MaxEntries {
		oldestKey := ""
		found := false
		var oldestTS time.Time
		for k, stack := range h.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestKey, oldestTS, found = k, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := h.undo[oldestKey]
		h.total--
		h.undo[oldestKey] = stack[1:]
		if len(h.undo[oldestKey]) == 0 {
			delete(h.undo, oldestKey)
		}
	}
}
