/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"sitecanvas/internal/history"
	"sitecanvas/internal/store"
)

// Keystroke is a normalized keyboard event.
type Keystroke struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

// Primary reports whether the platform primary modifier is held.
func (k Keystroke) Primary() bool { return k.Ctrl || k.Meta }

// Dispatcher routes keyboard shortcuts between the two undo systems: while
// focus sits inside an editable surface the element's own content history
// handles undo/redo and the global document history is suppressed;
// otherwise undo/redo operate on whole-document snapshots.
type Dispatcher struct {
	store   *store.Store
	history *history.History
	focus   *Element
}

// NewDispatcher wires the shortcut router to the store and global history.
func NewDispatcher(st *store.Store, h *history.History) *Dispatcher {
	return &Dispatcher{store: st, history: h}
}

// Focus marks e as the element owning keyboard focus.
func (d *Dispatcher) Focus(e *Element) { d.focus = e }

// Unfocus clears editable focus (focus moved to a non-editable surface).
func (d *Dispatcher) Unfocus() { d.focus = nil }

// KeyDown handles a keystroke. Returns true when it was consumed.
func (d *Dispatcher) KeyDown(k Keystroke) bool {
	if d.focus != nil && d.focus.EditMode() {
		return d.focus.KeyDown(k)
	}
	if !k.Primary() {
		return false
	}
	switch {
	case k.Key == "z" && !k.Shift:
		return d.GlobalUndo()
	case k.Key == "y" || (k.Key == "z" && k.Shift):
		return d.GlobalRedo()
	}
	return false
}

// GlobalUndo restores the previous whole-document snapshot.
func (d *Dispatcher) GlobalUndo() bool {
	snap, ok := d.history.Undo(d.store.Snapshot())
	if !ok {
		return false
	}
	d.store.Restore(snap)
	return true
}

// GlobalRedo restores the most recently undone snapshot.
func (d *Dispatcher) GlobalRedo() bool {
	snap, ok := d.history.Redo(d.store.Snapshot())
	if !ok {
		return false
	}
	d.store.Restore(snap)
	return true
}
