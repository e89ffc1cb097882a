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
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Range addresses a span of the element's visible text in rune offsets,
// counted across all text nodes of the fragment in document order.
type Range struct {
	Start, End int
}

// Collapsed reports whether the range selects no text.
func (r Range) Collapsed() bool { return r.End <= r.Start }

// Selection decouples capture (on selection change) from application (on a
// later toolbar interaction); the two events are never synchronous.
type Selection struct {
	saved *Range
}

// Save captures a range for later formatting. Collapsed ranges are ignored,
// matching the platform behavior of only keeping real selections.
func (s *Selection) Save(r Range) {
	if r.Collapsed() {
		return
	}
	cp := r
	s.saved = &cp
}

// Take returns the saved range and clears it; formatting consumes the
// selection.
func (s *Selection) Take() (Range, bool) {
	if s.saved == nil {
		return Range{}, false
	}
	r := *s.saved
	s.saved = nil
	return r, true
}

// Active reports whether a selection is saved.
func (s *Selection) Active() bool { return s.saved != nil }

// ApplyColorToRange re-renders fragment with the selected text wrapped in a
// colored span, splitting text nodes at the range boundaries. Existing
// markup outside the range is untouched, so coloring a sub-string never
// loses the rest of the element's formatting.
func ApplyColorToRange(fragment string, r Range, color string) (string, error) {
	if r.Collapsed() {
		return fragment, nil
	}
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	type textSpan struct {
		node  *html.Node
		start int
	}
	var texts []textSpan
	offset := 0
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			texts = append(texts, textSpan{node: n, start: offset})
			offset += len([]rune(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}

	for _, ts := range texts {
		runes := []rune(ts.node.Data)
		end := ts.start + len(runes)
		lo := max(r.Start, ts.start)
		hi := min(r.End, end)
		if hi <= lo {
			continue
		}
		pre := string(runes[:lo-ts.start])
		mid := string(runes[lo-ts.start : hi-ts.start])
		post := string(runes[hi-ts.start:])

		parent := ts.node.Parent
		span := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Span,
			Data:     "span",
			Attr:     []html.Attribute{{Key: "style", Val: "color: " + color}},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: mid})

		if pre != "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: pre}, ts.node)
		}
		parent.InsertBefore(span, ts.node)
		if post != "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: post}, ts.node)
		}
		parent.RemoveChild(ts.node)
	}

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return b.String(), nil
}

// FragmentText returns the visible text of a fragment, the coordinate space
// Range offsets are counted in.
func FragmentText(fragment string) string {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}
