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

// Point is a pointer position or offset in CSS pixels.
type Point struct {
	X, Y float64
}

// DragGesture repositions a content element: it parses the element's
// existing translate() into a base offset at press, accumulates pointer
// deltas, and snaps each axis to the grid. Move only yields a display
// transform; the single store write happens on End.
type DragGesture struct {
	start Point
	base  Point
	live  string
}

// StartDrag begins a gesture from the element's current transform value and
// the press position.
func StartDrag(transform string, pointer Point) *DragGesture {
	bx, by := ParseTranslate(transform)
	return &DragGesture{start: pointer, base: Point{X: bx, Y: by}, live: transform}
}

// Move returns the snapped display transform for the current pointer
// position. Callers apply it to the element directly for live feedback.
func (g *DragGesture) Move(pointer Point) string {
	x := Snap(g.base.X + pointer.X - g.start.X)
	y := Snap(g.base.Y + pointer.Y - g.start.Y)
	g.live = FormatTranslate(x, y)
	return g.live
}

// End finalizes the gesture and returns the transform to commit.
func (g *DragGesture) End(pointer Point) string {
	return g.Move(pointer)
}

// ToolbarDrag moves the floating toolbar panel. Pure delta accumulation:
// no snapping, no bounds clamping (the panel may be dragged off-screen).
type ToolbarDrag struct {
	start       Point
	startOffset Point
}

// StartToolbarDrag records the press position and the panel offset at press.
func StartToolbarDrag(pointer, offset Point) *ToolbarDrag {
	return &ToolbarDrag{start: pointer, startOffset: offset}
}

// Move returns the new panel offset for the current pointer position.
func (d *ToolbarDrag) Move(pointer Point) Point {
	return Point{
		X: d.startOffset.X + pointer.X - d.start.X,
		Y: d.startOffset.Y + pointer.Y - d.start.Y,
	}
}
