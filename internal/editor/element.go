/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor implements the in-place editing state machines: the
// editable element with its floating toolbar, selection-scoped formatting,
// the drag/transform engine, and keyboard shortcut routing between the
// element-local and the global undo systems.
package editor

import (
	"fmt"

	"sitecanvas/internal/domain"
	"sitecanvas/internal/store"
)

// localUndoDepth caps the per-element content undo stack.
const localUndoDepth = 50

// ComputedStyler resolves the currently rendered (computed) style values of
// an element, used to seed toolbar controls for properties the operator has
// not set explicitly. In the browser this is getComputedStyle; tests supply
// a map-backed fake.
type ComputedStyler interface {
	Computed(id string) domain.StyleMap
}

// RenderState is what a surface needs to draw one element.
type RenderState struct {
	Content string
	Style   domain.StyleMap
}

// Element binds one page fragment to one store record. It has two modes:
// locked (static display of the stored record) and edit (an editable
// surface with toolbar, local undo, and drag positioning).
//
// The live surface content is authoritative while editing: an explicit
// commit step writes it to the store on blur/input, and an explicit seed
// step initializes it from the store once per mount. The seeded guard stops
// re-seeding from stomping in-progress edits on re-render; it re-arms only
// when edit mode toggles.
type Element struct {
	id             string
	store          *store.Store
	defaultContent string
	computed       ComputedStyler

	editMode bool
	seeded   bool
	content  string
	style    domain.StyleMap

	Toolbar   Toolbar
	selection Selection

	localUndo []string
	localRedo []string

	drag *DragGesture
}

// ElementID derives a stable element id from its page and slot when the
// caller does not supply one.
func ElementID(page, slot string) string {
	return fmt.Sprintf("editable-%s-%s", page, slot)
}

// NewElement binds an element to the store. defaultContent is the authored
// markup used when no record exists yet.
func NewElement(st *store.Store, id, defaultContent string) *Element {
	return &Element{id: id, store: st, defaultContent: defaultContent, style: domain.StyleMap{}}
}

// SetComputedStyler installs the computed-style source for toolbar seeding.
func (e *Element) SetComputedStyler(cs ComputedStyler) { e.computed = cs }

// ID returns the element's record id.
func (e *Element) ID() string { return e.id }

// EditMode reports whether the element is currently editable.
func (e *Element) EditMode() bool { return e.editMode }

// Content returns the live surface content.
func (e *Element) Content() string { return e.content }

// Style returns a copy of the live style.
func (e *Element) Style() domain.StyleMap { return e.style.Clone() }

// SetEditMode toggles between locked and edit mode. Entering edit mode
// seeds the surface from the store, so edits survive mode toggles instead
// of reverting to the authored default. Toggling re-arms the seed guard;
// within one mode the surface is seeded at most once.
func (e *Element) SetEditMode(on bool) {
	if e.editMode == on {
		return
	}
	e.editMode = on
	e.seeded = false
	e.Toolbar.Close()
	e.drag = nil
	if on {
		e.mount()
	}
}

// mount seeds the live surface from the store exactly once per edit-mode
// entry.
func (e *Element) mount() {
	if e.seeded {
		return
	}
	rec := e.store.Register(e.id, domain.ElementRecord{Content: e.defaultContent})
	e.content = rec.Content
	e.style = rec.Style.Clone()
	if e.style == nil {
		e.style = domain.StyleMap{}
	}
	e.seeded = true
}

// RenderLocked returns the static view-mode state: stored content and style
// verbatim, with transient device properties forced to non-interactive
// defaults.
func (e *Element) RenderLocked() RenderState {
	rec := e.store.Register(e.id, domain.ElementRecord{Content: e.defaultContent, Style: e.style.Clone()})
	st := rec.Style.Clone()
	if st == nil {
		st = domain.StyleMap{}
	}
	st["resize"] = "none"
	st["overflow"] = "visible"
	return RenderState{Content: rec.Content, Style: st}
}

// RenderEdit returns the editable-surface state. The transform is excluded
// (it applies to the element's wrapper, see Transform) and the surface is
// made resizable.
func (e *Element) RenderEdit() RenderState {
	st := e.style.Clone()
	if st == nil {
		st = domain.StyleMap{}
	}
	delete(st, "transform")
	st["resize"] = "both"
	st["overflow"] = "hidden"
	return RenderState{Content: e.content, Style: st}
}

// Transform returns the element's current translate() value, if any.
func (e *Element) Transform() string { return e.style["transform"] }

// Click handles a click on the element: it opens the toolbar and seeds any
// unset style control from the element's computed values.
func (e *Element) Click() {
	if !e.editMode {
		return
	}
	e.Toolbar.OpenPanel()
	if e.computed != nil {
		e.style = SeedFromComputed(e.style, e.computed.Computed(e.id))
	}
}

// ClickToolbar handles a click inside the open toolbar. It must not
// propagate, so the panel stays open.
func (e *Element) ClickToolbar() {}

// ClickOutside handles a click outside both the element and its toolbar.
func (e *Element) ClickOutside() {
	e.Toolbar.Close()
}

// Input commits new raw surface content: it pushes the content onto the
// local undo stack (deduplicated against the top) and writes through to the
// store.
func (e *Element) Input(content string) {
	if !e.editMode {
		return
	}
	e.content = content
	e.pushLocalUndo(content)
	e.commit()
}

// Blur commits the surface content and style on focus loss.
func (e *Element) Blur() {
	if !e.editMode {
		return
	}
	e.pushLocalUndo(e.content)
	e.commit()
}

// Paste intercepts a paste and returns the plain text to insert instead of
// the clipboard's rich markup. The resulting content change arrives through
// Input once the surface has inserted the text.
func (e *Element) Paste(clip string) string {
	return PlainText(clip)
}

// SaveSelection captures the current text selection for later
// selection-scoped formatting.
func (e *Element) SaveSelection(r Range) {
	if !e.editMode {
		return
	}
	e.selection.Save(r)
}

// HasSelection reports whether a selection is saved.
func (e *Element) HasSelection() bool { return e.selection.Active() }

// ApplyColor colors the saved selection range if one exists (restoring it
// first and consuming it), otherwise applies the color to the whole
// element's style.
func (e *Element) ApplyColor(color string) {
	if !e.editMode {
		return
	}
	if r, ok := e.selection.Take(); ok {
		out, err := ApplyColorToRange(e.content, r, color)
		if err == nil {
			e.content = out
			e.pushLocalUndo(out)
			e.commit()
			return
		}
		// fall through: a fragment we cannot parse gets whole-element color
	}
	e.SetStyle("color", color)
}

// SetStyle updates one style property and writes through to the store.
// An empty value removes the property.
func (e *Element) SetStyle(key, value string) {
	if !e.editMode {
		return
	}
	e.style = e.style.Merge(domain.StyleMap{key: value})
	// The patch (not the merged map) goes to the store so that deletions
	// propagate: a merged map simply lacks the key and would leave the
	// stored value behind.
	e.commitStyle(domain.StyleMap{key: value})
}

// SetVerticalMargin sets the coupled top/bottom outer margins, snapped.
func (e *Element) SetVerticalMargin(px int) {
	e.setCoupled(px, "marginTop", "marginBottom")
}

// SetHorizontalMargin sets the coupled left/right outer margins, snapped.
func (e *Element) SetHorizontalMargin(px int) {
	e.setCoupled(px, "marginLeft", "marginRight")
}

// SetPadding sets the inner padding, snapped.
func (e *Element) SetPadding(px int) {
	e.setCoupled(px, "padding")
}

func (e *Element) setCoupled(px int, keys ...string) {
	if !e.editMode {
		return
	}
	v := fmt.Sprintf("%dpx", SnapPx(px))
	patch := domain.StyleMap{}
	for _, k := range keys {
		patch[k] = v
	}
	e.style = e.style.Merge(patch)
	e.commitStyle(patch)
}

// PointerDown starts a reposition drag when the box tab is active; any
// press inside the box then moves the element instead of editing text.
// Returns true when a drag gesture started.
func (e *Element) PointerDown(p Point) bool {
	if !e.editMode || !e.Toolbar.Open || e.Toolbar.Tab != TabBox {
		return false
	}
	e.drag = StartDrag(e.style["transform"], p)
	return true
}

// PointerMove updates the live display transform during a drag. No store
// write happens here; moves are display-only.
func (e *Element) PointerMove(p Point) {
	if e.drag == nil {
		return
	}
	e.style["transform"] = e.drag.Move(p)
}

// PointerUp finishes a drag, committing the snapped final transform to the
// store exactly once per gesture.
func (e *Element) PointerUp(p Point) {
	if e.drag == nil {
		return
	}
	final := e.drag.End(p)
	e.drag = nil
	e.style = e.style.Merge(domain.StyleMap{"transform": final})
	e.commitStyle(domain.StyleMap{"transform": final})
}

// Dragging reports whether a reposition gesture is in flight.
func (e *Element) Dragging() bool { return e.drag != nil }

// KeyDown routes element-local shortcuts. Returns true when the keystroke
// was consumed.
func (e *Element) KeyDown(k Keystroke) bool {
	if !e.editMode || !k.Primary() {
		return false
	}
	switch {
	case k.Key == "z" && !k.Shift:
		e.Undo()
		return true
	case k.Key == "y" || (k.Key == "z" && k.Shift):
		e.Redo()
		return true
	}
	return false
}

// Undo steps the element's own content history back one entry. This is
// independent of the global document history.
func (e *Element) Undo() bool {
	if len(e.localUndo) == 0 {
		return false
	}
	// The stack top usually equals the live content (pushed by the last
	// input); skip it so undo moves backward, not in place.
	if e.localUndo[len(e.localUndo)-1] == e.content {
		if len(e.localUndo) == 1 {
			return false
		}
		e.localUndo = e.localUndo[:len(e.localUndo)-1]
	}
	prev := e.localUndo[len(e.localUndo)-1]
	e.localUndo = e.localUndo[:len(e.localUndo)-1]
	e.localRedo = append(e.localRedo, e.content)
	e.content = prev
	e.commit()
	return true
}

// Redo re-applies the most recently undone content entry.
func (e *Element) Redo() bool {
	if len(e.localRedo) == 0 {
		return false
	}
	next := e.localRedo[len(e.localRedo)-1]
	e.localRedo = e.localRedo[:len(e.localRedo)-1]
	e.localUndo = append(e.localUndo, e.content)
	e.content = next
	e.commit()
	return true
}

// LocalHistoryDepths reports the local stack sizes for diagnostics.
func (e *Element) LocalHistoryDepths() (undo, redo int) {
	return len(e.localUndo), len(e.localRedo)
}

func (e *Element) pushLocalUndo(content string) {
	if n := len(e.localUndo); n > 0 && e.localUndo[n-1] == content {
		return
	}
	e.localUndo = append(e.localUndo, content)
	if len(e.localUndo) > localUndoDepth {
		e.localUndo = append(e.localUndo[:0:0], e.localUndo[len(e.localUndo)-localUndoDepth:]...)
	}
	e.localRedo = nil
}

func (e *Element) commit() {
	c := e.content
	e.store.Update(e.id, store.RecordPatch{Content: &c, Style: e.style.Clone()})
}

func (e *Element) commitStyle(patch domain.StyleMap) {
	c := e.content
	e.store.Update(e.id, store.RecordPatch{Content: &c, Style: patch})
}
