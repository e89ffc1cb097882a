/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"

	"sitecanvas/internal/domain"
	"sitecanvas/internal/store"
)

func content(s string) *string { return &s }

// wire builds a store with the history checkpointing every mutation,
// mirroring the production wiring.
func wire(t *testing.T) (*store.Store, *History) {
	t.Helper()
	s := store.New()
	h := New(DefaultDepth)
	s.OnCheckpoint(h.Checkpoint)
	return s, h
}

func TestUndoRedoSymmetry(t *testing.T) {
	s, h := wire(t)
	s.SeedElements(map[string]domain.ElementRecord{"hero": {Content: "v0"}})
	initial := s.Snapshot()

	const n = 20
	for i := 1; i <= n; i++ {
		s.Update("hero", store.RecordPatch{Content: content(fmt.Sprintf("v%d", i))})
	}
	final := s.Snapshot()

	for i := 0; i < n; i++ {
		snap, ok := h.Undo(s.Snapshot())
		if !ok {
			t.Fatalf("undo %d unavailable", i)
		}
		s.Restore(snap)
	}
	if got := s.Snapshot().Elements["hero"].Content; got != initial.Elements["hero"].Content {
		t.Fatalf("after %d undos expected initial state, got %q", n, got)
	}

	for i := 0; i < n; i++ {
		snap, ok := h.Redo(s.Snapshot())
		if !ok {
			t.Fatalf("redo %d unavailable", i)
		}
		s.Restore(snap)
	}
	if got := s.Snapshot().Elements["hero"].Content; got != final.Elements["hero"].Content {
		t.Fatalf("after %d redos expected final state, got %q", n, got)
	}
}

func TestRedoInvalidatedByNewMutation(t *testing.T) {
	s, h := wire(t)
	s.Update("hero", store.RecordPatch{Content: content("a")})
	s.Update("hero", store.RecordPatch{Content: content("b")})

	snap, ok := h.Undo(s.Snapshot())
	if !ok {
		t.Fatalf("undo unavailable")
	}
	s.Restore(snap)
	if !h.CanRedo() {
		t.Fatalf("redo should be available right after undo")
	}

	s.Update("hero", store.RecordPatch{Content: content("c")})
	if h.CanRedo() {
		t.Fatalf("new mutation must clear the redo stack")
	}
	if _, ok := h.Redo(s.Snapshot()); ok {
		t.Fatalf("redo must be unavailable after a fresh mutation")
	}
}

func TestHistoryCapAt50(t *testing.T) {
	s, h := wire(t)
	for i := 0; i < 60; i++ {
		s.Update("hero", store.RecordPatch{Content: content(fmt.Sprintf("v%d", i))})
	}
	undo, _ := h.Depths()
	if undo != DefaultDepth {
		t.Fatalf("undo depth = %d, want %d", undo, DefaultDepth)
	}
	// Walking all the way back lands on the oldest retained snapshot
	// (pre-state of mutation 11), not the initial empty document.
	var last domain.Snapshot
	for {
		snap, ok := h.Undo(s.Snapshot())
		if !ok {
			break
		}
		s.Restore(snap)
		last = snap
	}
	if got := last.Elements["hero"].Content; got != "v9" {
		t.Fatalf("oldest recoverable state = %q, want %q (snapshots 1-10 evicted)", got, "v9")
	}
}

func TestUndoOnEmptyHistory(t *testing.T) {
	h := New(0)
	if _, ok := h.Undo(domain.Snapshot{}); ok {
		t.Fatalf("undo on empty history must report false")
	}
	if _, ok := h.Redo(domain.Snapshot{}); ok {
		t.Fatalf("redo on empty history must report false")
	}
}
