/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingFlusher struct {
	called bool
	err    error
}

func (r *recordingFlusher) Flush(context.Context) error {
	r.called = true
	return r.err
}

func TestRecoverWritesReportAndFlushes(t *testing.T) {
	dir := t.TempDir()
	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	t.Cleanup(func() { exitFn = os.Exit })

	f := &recordingFlusher{}
	func() {
		defer Recover(f, dir)
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
	if !f.called {
		t.Fatal("flusher not called")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "crash-") {
		t.Fatalf("report files = %v", entries)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Panic: boom") {
		t.Fatalf("report missing panic value: %s", data)
	}
	if !strings.Contains(string(data), "Stack:") {
		t.Fatal("report missing stack trace")
	}
}

func TestRecoverNoPanicIsNoop(t *testing.T) {
	exitFn = func(int) { t.Fatal("exit called without a panic") }
	t.Cleanup(func() { exitFn = os.Exit })
	func() {
		defer Recover(nil, t.TempDir())
	}()
}
