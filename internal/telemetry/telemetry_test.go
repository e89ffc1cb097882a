/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatal("telemetry enabled without opt-in")
	}
	// opt-in without a URL still drops events
	c2 := New(Config{OptIn: true})
	defer c2.Close()
	if c2.Enabled() {
		t.Fatal("telemetry enabled without an endpoint")
	}
}

func TestEventDelivery(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.SaveCompleted(3, 1)
	c.Flush(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("%d events delivered, want 1", len(got))
	}
	if got[0]["name"] != "save" {
		t.Fatalf("event = %+v", got[0])
	}
	if got[0]["elements"] != float64(3) || got[0]["projects"] != float64(1) {
		t.Fatalf("event counts = %+v", got[0])
	}
	if _, ok := got[0]["version"]; !ok {
		t.Fatal("event missing version field")
	}
}

func TestEventDroppedWhenDisabled(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL})
	defer c.Close()
	c.SaveCompleted(1, 0)
	c.ResetPerformed()
	c.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)
	if hit {
		t.Fatal("event sent without opt-in")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SC_TELEMETRY_OPT_IN", "yes")
	t.Setenv("SC_TELEMETRY_URL", "https://t.example.com")
	t.Setenv("SC_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "https://t.example.com" || cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
}
