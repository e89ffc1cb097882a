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

import "sitecanvas/internal/domain"

// Tab selects which toolbar pane is active.
type Tab int

const (
	TabText Tab = iota
	TabBox
)

// Fixed control choices exposed by the text tab.
var (
	FontFamilies = []string{
		"Pretendard",
		`"Nanum Myeongjo", serif`,
		`"Nanum Gothic Coding", monospace`,
	}
	FontWeights = []string{"100", "300", "400", "500", "700", "900"}
	TextAligns  = []string{"left", "center", "right"}

	// ColorPalette is the fixed 8-swatch palette; the free picker accepts
	// any value on top of these.
	ColorPalette = []string{
		"#000000", "#EF4444", "#F97316", "#EAB308",
		"#22C55E", "#3B82F6", "#8B5CF6", "#EC4899",
	}
)

// Toolbar is the floating style panel attached to one editable element.
// The panel is anchored at a fixed fractional viewport position plus a drag
// offset; the offset resets every time the panel is (re)opened.
type Toolbar struct {
	Open   bool
	Tab    Tab
	Offset Point

	drag *ToolbarDrag
}

// OpenPanel opens the toolbar, resetting the drag offset.
func (tb *Toolbar) OpenPanel() {
	tb.Open = true
	tb.Offset = Point{}
	tb.drag = nil
}

// Close closes the panel and abandons any drag in flight.
func (tb *Toolbar) Close() {
	tb.Open = false
	tb.drag = nil
}

// StartDrag begins dragging the panel from the given pointer position.
func (tb *Toolbar) StartDrag(pointer Point) {
	if !tb.Open {
		return
	}
	tb.drag = StartToolbarDrag(pointer, tb.Offset)
}

// DragMove updates the panel offset for the current pointer position.
func (tb *Toolbar) DragMove(pointer Point) {
	if tb.drag == nil {
		return
	}
	tb.Offset = tb.drag.Move(pointer)
}

// DragEnd finalizes the panel position.
func (tb *Toolbar) DragEnd(pointer Point) {
	if tb.drag == nil {
		return
	}
	tb.Offset = tb.drag.Move(pointer)
	tb.drag = nil
}

// Dragging reports whether a panel drag is in flight.
func (tb *Toolbar) Dragging() bool { return tb.drag != nil }

// seedKeys are the style properties the toolbar pre-fills from the
// element's computed values so its controls never open blank for a visually
// non-default element.
var seedKeys = []string{"fontSize", "color", "fontWeight", "textAlign"}

// SeedFromComputed fills any unset seed key of style from computed values.
// Transparent computed colors are skipped (an unset color control is more
// honest than "rgba(0, 0, 0, 0)").
func SeedFromComputed(style, computed domain.StyleMap) domain.StyleMap {
	out := style.Clone()
	if out == nil {
		out = domain.StyleMap{}
	}
	for _, k := range seedKeys {
		if _, set := out[k]; set {
			continue
		}
		v, ok := computed[k]
		if !ok || v == "" {
			continue
		}
		if k == "color" && v == "rgba(0, 0, 0, 0)" {
			continue
		}
		out[k] = v
	}
	return out
}
