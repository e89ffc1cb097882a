/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cache

import (
	"context"
	"errors"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	payload := []byte(`{"editable-home-hero":{"content":"<p>hi</p>"}}`)
	if err := c.Put(ctx, ProjectDataKey, payload); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, ProjectDataKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.Get(context.Background(), PortfolioDataKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPutReplaces(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	if err := c.Put(ctx, ProjectDataKey, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, ProjectDataKey, []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, ProjectDataKey)
	if err != nil || string(got) != "v2" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestQuotaExceededLeavesEntryIntact(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	if err := c.Put(ctx, ProjectDataKey, []byte("small")); err != nil {
		t.Fatal(err)
	}
	c.SetQuota(8)
	err := c.Put(ctx, ProjectDataKey, []byte("way too large for quota"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	got, err := c.Get(ctx, ProjectDataKey)
	if err != nil || string(got) != "small" {
		t.Fatalf("previous entry lost: %q, %v", got, err)
	}
}

func TestQuotaCountsAllKeys(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	c.SetQuota(10)
	if err := c.Put(ctx, ProjectDataKey, []byte("12345678")); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, PortfolioDataKey, []byte("12345678")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	if err := c.Put(ctx, ProjectDataKey, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, PortfolioDataKey, []byte("b")); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, ProjectDataKey); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, ProjectDataKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if n, err := c.Size(ctx); err != nil || n != 0 {
		t.Fatalf("size after clear = %d, %v", n, err)
	}
	// deleting a missing key is fine
	if err := c.Delete(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(context.Background(), ProjectDataKey, []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()
	got, err := c2.Get(context.Background(), ProjectDataKey)
	if err != nil || string(got) != "persisted" {
		t.Fatalf("got %q, %v", got, err)
	}
}
