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

func TestApplyColorToRangeWrapsSelectedText(t *testing.T) {
	out, err := ApplyColorToRange("hello world", Range{Start: 0, End: 5}, "#3B82F6")
	if err != nil {
		t.Fatal(err)
	}
	want := `<span style="color: #3B82F6">hello</span> world`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestApplyColorToRangeSpansExistingMarkup(t *testing.T) {
	// range crosses an element boundary: each text node gets its own span
	out, err := ApplyColorToRange("<b>ab</b>cd", Range{Start: 1, End: 3}, "red")
	if err != nil {
		t.Fatal(err)
	}
	want := `<b>a<span style="color: red">b</span></b><span style="color: red">c</span>d`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestApplyColorToRangePreservesOutsideFormatting(t *testing.T) {
	out, err := ApplyColorToRange(`<i>pre</i> mid <u>post</u>`, Range{Start: 4, End: 7}, "#000000")
	if err != nil {
		t.Fatal(err)
	}
	want := `<i>pre</i> <span style="color: #000000">mid</span> <u>post</u>`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestApplyColorToRangeCollapsedIsNoop(t *testing.T) {
	out, err := ApplyColorToRange("abc", Range{Start: 2, End: 2}, "red")
	if err != nil || out != "abc" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestApplyColorToRangeMultibyteOffsets(t *testing.T) {
	// offsets are rune-based, not byte-based
	out, err := ApplyColorToRange("héllo", Range{Start: 1, End: 2}, "red")
	if err != nil {
		t.Fatal(err)
	}
	want := `h<span style="color: red">é</span>llo`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSelectionSaveTake(t *testing.T) {
	var s Selection
	s.Save(Range{Start: 2, End: 6})
	s.Save(Range{Start: 4, End: 4}) // collapsed, ignored
	r, ok := s.Take()
	if !ok || r != (Range{Start: 2, End: 6}) {
		t.Fatalf("took %+v, %v", r, ok)
	}
	if _, ok := s.Take(); ok {
		t.Fatal("selection must be single-use")
	}
}

func TestFragmentText(t *testing.T) {
	if got := FragmentText(`<b>a</b>b<span>c</span>`); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
