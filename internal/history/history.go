/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history implements the global document undo/redo: bounded stacks
// of whole-document snapshots, distinct from the per-element content undo
// kept by each editable surface.
package history

import (
	"sync"

	"sitecanvas/internal/domain"
)

// DefaultDepth is the undo stack capacity; the oldest snapshot is evicted
// when it is exceeded.
const DefaultDepth = 50

// History is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	undo  []domain.Snapshot
	redo  []domain.Snapshot
	depth int
}

// New creates a history with the given capacity; values <= 0 use
// DefaultDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// Checkpoint records the pre-mutation state. Any new mutation invalidates
// the redo stack.
func (h *History) Checkpoint(pre domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, pre)
	if len(h.undo) > h.depth {
		h.undo = append(h.undo[:0:0], h.undo[len(h.undo)-h.depth:]...)
	}
	h.redo = nil
}

// Undo pops the latest snapshot, pushing current onto the redo stack.
// Returns false when nothing can be undone.
func (h *History) Undo(current domain.Snapshot) (domain.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return domain.Snapshot{}, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return snap, true
}

// Redo pops the latest redo snapshot, pushing current onto the undo stack.
// The undo push bypasses Checkpoint so the redo stack survives.
func (h *History) Redo(current domain.Snapshot) (domain.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return domain.Snapshot{}, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return snap, true
}

// Depths reports current stack sizes for diagnostics.
func (h *History) Depths() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}
