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

import "testing"

func TestSnapIdempotentAndOnGrid(t *testing.T) {
	for x := -200; x <= 200; x++ {
		s := Snap(float64(x))
		if s%GridStep != 0 {
			t.Fatalf("snap(%d) = %d is not a multiple of %d", x, s, GridStep)
		}
		if again := Snap(float64(s)); again != s {
			t.Fatalf("snap not idempotent: snap(%d)=%d, snap(%d)=%d", x, s, s, again)
		}
	}
}

func TestSnapMidpointsRoundTowardZero(t *testing.T) {
	cases := map[float64]int{
		10:  8,
		-10: -8,
		11:  12,
		-11: -12,
		2:   4,
		1:   0,
		0:   0,
	}
	for in, want := range cases {
		if got := Snap(in); got != want {
			t.Fatalf("Snap(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestParseTranslate(t *testing.T) {
	x, y := ParseTranslate("translate(8px, -12px)")
	if x != 8 || y != -12 {
		t.Fatalf("got (%v, %v)", x, y)
	}
	x, y = ParseTranslate("translate(1.5px, 2.25px)")
	if x != 1.5 || y != 2.25 {
		t.Fatalf("got (%v, %v)", x, y)
	}
	// malformed values degrade to a zero offset
	for _, bad := range []string{"", "rotate(45deg)", "translate(a, b)"} {
		if x, y = ParseTranslate(bad); x != 0 || y != 0 {
			t.Fatalf("ParseTranslate(%q) = (%v, %v), want zero", bad, x, y)
		}
	}
}

func TestDragCommitSnapsToGrid(t *testing.T) {
	g := StartDrag("translate(0px, 0px)", Point{X: 100, Y: 100})
	final := g.End(Point{X: 110, Y: 110})
	if final != "translate(8px, 8px)" {
		t.Fatalf("committed transform = %q, want translate(8px, 8px)", final)
	}
}

func TestDragAccumulatesFromExistingTransform(t *testing.T) {
	g := StartDrag("translate(16px, -4px)", Point{})
	if got := g.Move(Point{X: 5, Y: 5}); got != "translate(20px, 0px)" {
		t.Fatalf("live transform = %q", got)
	}
}

func TestToolbarDragPureDeltaAccumulation(t *testing.T) {
	d := StartToolbarDrag(Point{X: 40, Y: 40}, Point{X: 10, Y: -5})
	off := d.Move(Point{X: 43, Y: 30})
	if off.X != 13 || off.Y != -15 {
		t.Fatalf("offset = %+v", off)
	}
	// no clamping: large negative offsets are legal
	off = d.Move(Point{X: -1000, Y: -1000})
	if off.X != -1030 || off.Y != -1045 {
		t.Fatalf("offset = %+v", off)
	}
}

func TestPixelValue(t *testing.T) {
	if PixelValue("24px") != 24 || PixelValue("") != 0 || PixelValue("auto") != 0 {
		t.Fatalf("PixelValue parsing broken")
	}
}
