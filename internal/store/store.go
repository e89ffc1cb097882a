/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store holds the single authoritative mapping of element id to
// {content, style} plus the portfolio project collection. Every editable
// element reads and writes through this store; none keeps its own
// authoritative copy.
package store

import (
	"sync"

	"sitecanvas/internal/domain"
)

// RecordPatch is a partial element update. A nil Content leaves content
// untouched; Style entries merge per key, with empty-string values deleting
// the key.
type RecordPatch struct {
	Content *string
	Style   domain.StyleMap
}

// ProjectPatch is a partial project update.
type ProjectPatch struct {
	Title       *string
	Description *string
	Thumbnail   *string
}

// Store is safe for concurrent use. Structural mutations invoke the
// checkpoint hook with a deep pre-mutation snapshot before applying, then
// mark the document dirty.
type Store struct {
	mu         sync.Mutex
	elements   map[string]domain.ElementRecord
	projects   []domain.Project
	dirty      bool
	checkpoint func(domain.Snapshot)
	onMutate   func()
}

// New creates an empty store.
func New() *Store {
	return &Store{elements: make(map[string]domain.ElementRecord)}
}

// OnCheckpoint installs the pre-mutation snapshot hook (the global history).
func (s *Store) OnCheckpoint(fn func(domain.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = fn
}

// OnMutate installs a hook called after every structural mutation (the
// persistence coordinator's auto-save trigger).
func (s *Store) OnMutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutate = fn
}

// Register returns the stored record for id if present, otherwise initial
// verbatim. It is a pure read with fallback: rendering code may call it
// freely without causing store mutations.
func (s *Store) Register(id string, initial domain.ElementRecord) domain.ElementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.elements[id]; ok {
		return rec.Clone()
	}
	return initial
}

// Element returns the stored record for id, if any.
func (s *Store) Element(id string) (domain.ElementRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.elements[id]
	if !ok {
		return domain.ElementRecord{}, false
	}
	return rec.Clone(), true
}

// Update merges patch into the record for id, creating it if absent.
// The pre-mutation state is checkpointed first; later writes win per field.
func (s *Store) Update(id string, patch RecordPatch) {
	s.mu.Lock()
	s.checkpointLocked()
	rec := s.elements[id]
	rec.ID = id
	if patch.Content != nil {
		rec.Content = *patch.Content
	}
	if patch.Style != nil {
		rec.Style = rec.Style.Merge(patch.Style)
	}
	s.elements[id] = rec
	s.dirty = true
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Elements returns a deep copy of the element mapping.
func (s *Store) Elements() map[string]domain.ElementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.ElementRecord, len(s.elements))
	for id, rec := range s.elements {
		out[id] = rec.Clone()
	}
	return out
}

// SeedElements replaces the element mapping without checkpointing or
// dirty-marking. Used when loading persisted state at startup.
func (s *Store) SeedElements(m map[string]domain.ElementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = make(map[string]domain.ElementRecord, len(m))
	for id, rec := range m {
		rec.ID = id
		s.elements[id] = rec.Clone()
	}
}

// Projects returns a deep copy of the project collection.
func (s *Store) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneProjects(s.projects)
}

// SeedProjects replaces the project collection without checkpointing or
// dirty-marking. Used when loading persisted state at startup.
func (s *Store) SeedProjects(ps []domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = domain.CloneProjects(ps)
}

// CreateProject appends a new empty project and returns it.
func (s *Store) CreateProject(title string) domain.Project {
	s.mu.Lock()
	s.checkpointLocked()
	p := domain.NewProject(title)
	s.projects = append(s.projects, p)
	s.dirty = true
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return p.Clone()
}

// UpdateProject merges patch into the project with the given id.
func (s *Store) UpdateProject(id string, patch ProjectPatch) {
	s.mu.Lock()
	s.checkpointLocked()
	for i := range s.projects {
		if s.projects[i].ID != id {
			continue
		}
		if patch.Title != nil {
			s.projects[i].Title = *patch.Title
		}
		if patch.Description != nil {
			s.projects[i].Description = *patch.Description
		}
		if patch.Thumbnail != nil {
			s.projects[i].Thumbnail = *patch.Thumbnail
		}
		s.dirty = true
		break
	}
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// UpdateProjectItems replaces the item list of the project with the given id.
func (s *Store) UpdateProjectItems(id string, items []domain.PortfolioItem) {
	s.mu.Lock()
	s.checkpointLocked()
	for i := range s.projects {
		if s.projects[i].ID != id {
			continue
		}
		copied := make([]domain.PortfolioItem, len(items))
		for j, it := range items {
			copied[j] = it.Clone()
		}
		s.projects[i].Items = copied
		s.dirty = true
		break
	}
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// AddProjectItem appends an item, typically a fresh upload, to the project
// with the given id, minting an item id when the caller left it empty.
// Returns the stored item; the zero value when the project does not exist.
func (s *Store) AddProjectItem(id string, item domain.PortfolioItem) domain.PortfolioItem {
	s.mu.Lock()
	s.checkpointLocked()
	var stored domain.PortfolioItem
	for i := range s.projects {
		if s.projects[i].ID != id {
			continue
		}
		if item.ID == "" {
			item.ID = domain.NewItemID()
		}
		s.projects[i].Items = append(s.projects[i].Items, item.Clone())
		stored = item
		s.dirty = true
		break
	}
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return stored
}

// DeleteProject removes the project with the given id and, with it, all of
// its items. No orphan items survive.
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	s.checkpointLocked()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		} else {
			s.dirty = true
		}
	}
	s.projects = kept
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore replaces the whole document with snap. Restores mark the document
// dirty (the restored state still needs persisting) but do not checkpoint;
// the history manages its own stacks around restores.
func (s *Store) Restore(snap domain.Snapshot) {
	s.mu.Lock()
	c := snap.Clone()
	s.elements = c.Elements
	if s.elements == nil {
		s.elements = make(map[string]domain.ElementRecord)
	}
	s.projects = c.Projects
	s.dirty = true
	fn := s.onMutate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Dirty reports whether unsaved changes exist.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ClearDirty marks the document as saved.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

func (s *Store) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Elements: make(map[string]domain.ElementRecord, len(s.elements)),
		Projects: domain.CloneProjects(s.projects),
	}
	for id, rec := range s.elements {
		snap.Elements[id] = rec.Clone()
	}
	return snap
}

func (s *Store) checkpointLocked() {
	if s.checkpoint != nil {
		s.checkpoint(s.snapshotLocked())
	}
}
