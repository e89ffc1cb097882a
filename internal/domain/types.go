/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model for the page editor: element
// records (content plus inline style), the portfolio project collection, and
// whole-document snapshots used by the global undo history.
package domain

import (
	"github.com/google/uuid"
)

// StyleMap is an open mapping of CSS property name to value. Absence of a
// key means "inherit visual default". Values are carried in their CSS string
// form ("16px", "700", "translate(8px, 8px)").
type StyleMap map[string]string

// Clone returns an independent copy of the map. A nil receiver yields nil.
func (s StyleMap) Clone() StyleMap {
	if s == nil {
		return nil
	}
	out := make(StyleMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge folds patch into a copy of s. An empty-string value deletes the key
// rather than storing an empty property. The receiver is not modified.
func (s StyleMap) Merge(patch StyleMap) StyleMap {
	out := s.Clone()
	if out == nil {
		out = make(StyleMap, len(patch))
	}
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// ElementRecord is the persisted state of one editable page fragment.
// The record id doubles as the key in the persisted element mapping.
type ElementRecord struct {
	ID      string   `json:"id,omitempty"`
	Content string   `json:"content"`
	Style   StyleMap `json:"style,omitempty"`
}

// Clone returns a deep copy of the record.
func (r ElementRecord) Clone() ElementRecord {
	r.Style = r.Style.Clone()
	return r
}

// MediaKind values for PortfolioItem.Type.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// PortfolioItem is one media entry owned by a project. Items are addressed
// by id within their parent project only.
type PortfolioItem struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Title          string   `json:"title,omitempty"`
	Highlight      string   `json:"highlight,omitempty"`
	HighlightStyle StyleMap `json:"highlightStyle,omitempty"`
}

// Clone returns a deep copy of the item.
func (it PortfolioItem) Clone() PortfolioItem {
	it.HighlightStyle = it.HighlightStyle.Clone()
	return it
}

// Project groups an ordered sequence of portfolio items under a title.
// A project exclusively owns its items; deleting the project deletes them.
type Project struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Items       []PortfolioItem `json:"items"`
}

// Clone returns a deep copy of the project and its items.
func (p Project) Clone() Project {
	if p.Items != nil {
		items := make([]PortfolioItem, len(p.Items))
		for i, it := range p.Items {
			items[i] = it.Clone()
		}
		p.Items = items
	}
	return p
}

// NewProject mints an empty project with a fresh id.
func NewProject(title string) Project {
	return Project{ID: uuid.NewString(), Title: title, Items: []PortfolioItem{}}
}

// NewItemID mints an id for a portfolio item created from an upload.
func NewItemID() string { return uuid.NewString() }

// CloneProjects deep-copies a project slice.
func CloneProjects(ps []Project) []Project {
	if ps == nil {
		return nil
	}
	out := make([]Project, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

// Snapshot is a full copy of the element mapping plus the project
// collection, used by the global undo history. Snapshots never alias live
// state.
type Snapshot struct {
	Elements map[string]ElementRecord `json:"elements"`
	Projects []Project                `json:"projects"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Projects: CloneProjects(s.Projects)}
	if s.Elements != nil {
		out.Elements = make(map[string]ElementRecord, len(s.Elements))
		for id, rec := range s.Elements {
			out.Elements[id] = rec.Clone()
		}
	}
	return out
}
