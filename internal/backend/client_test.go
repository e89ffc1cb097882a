/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sitecanvas/internal/domain"
)

func TestLoadElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/load-data" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		io.WriteString(w, `{"editable-home-hero":{"content":"<p>hi</p>","style":{"color":"#000000"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	els, err := c.LoadElements(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rec := els["editable-home-hero"]
	if rec.Content != "<p>hi</p>" || rec.Style["color"] != "#000000" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestLoadElementsEmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	els, err := NewClient(srv.URL, "").LoadElements(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(els) != 0 {
		t.Fatalf("elements = %v", els)
	}
}

func TestLoadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.LoadElements(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("elements err = %v, want ErrNotFound", err)
	}
	if _, err := c.LoadPortfolio(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("portfolio err = %v, want ErrNotFound", err)
	}
}

func TestLoadPortfolioMigratesLegacy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"a","url":"https://img/a.png","type":"image"}]`)
	}))
	defer srv.Close()

	projects, err := NewClient(srv.URL, "").LoadPortfolio(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].ID != domain.LegacyProjectID {
		t.Fatalf("projects = %+v", projects)
	}
	if len(projects[0].Items) != 1 || projects[0].Items[0].URL != "https://img/a.png" {
		t.Fatalf("items = %+v", projects[0].Items)
	}
}

func TestSaveElements(t *testing.T) {
	var gotBody map[string]domain.ElementRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/save-data" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		io.WriteString(w, `{"success":true,"url":"https://blob/data/project-data.json"}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, "").SaveElements(context.Background(), map[string]domain.ElementRecord{
		"id": {Content: "c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.URL == "" {
		t.Fatalf("result = %+v", res)
	}
	if gotBody["id"].Content != "c" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestSaveReportsBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").SavePortfolio(context.Background(), nil); err == nil {
		t.Fatal("want error on success=false")
	}
}

func TestSavePortfolioNilBecomesEmptyArray(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").SavePortfolio(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("body = %q, want []", raw)
	}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("filename"); got != "a b.png" {
			t.Errorf("filename = %q", got)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "bytes" {
			t.Errorf("body = %q", b)
		}
		io.WriteString(w, `{"url":"https://blob/uploads/a-b.png"}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, "").Upload(context.Background(), "a b.png", "image/png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "https://blob/uploads/a-b.png" {
		t.Fatalf("url = %q", res.URL)
	}
}
