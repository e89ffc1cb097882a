/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry reports anonymous editor lifecycle events (document
// saves, resets, portfolio exports) and optional crash uploads. Strictly
// opt-in and disabled by default; events carry document counts, never
// content.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "sitecanvas/internal/log"
	"sitecanvas/internal/version"
)

// Config holds runtime configuration.
//
// Environment variables (read by FromEnv):
//   - SC_TELEMETRY_OPT_IN: "1", "true", "yes" to enable metrics
//   - SC_TELEMETRY_URL: URL to POST JSON events to
//   - SC_CRASH_UPLOAD_URL: URL to POST crash reports to
//   - SC_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
//   - SC_TELEMETRY_DEBUG: if set, logs event send attempts
//
// If no URLs are set, events are dropped even if opt-in is true.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("SC_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("SC_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("SC_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("SC_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("SC_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Event is one editor lifecycle report. Counts describe the document shape
// at the time of the event; zero-valued counts are omitted on the wire.
type Event struct {
	Name     string `json:"name"`
	Time     string `json:"ts"`
	Version  string `json:"version"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Elements int    `json:"elements,omitempty"`
	Projects int    `json:"projects,omitempty"`
}

// queueDepth bounds the in-flight event queue; overflow drops the newest
// event rather than blocking an editor operation.
const queueDepth = 64

// Client delivers events asynchronously. Failed sends are dropped; the
// editor never waits on telemetry.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	q      chan Event
	once   sync.Once
	closed chan struct{}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the package-level client, creating it from env on first
// use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault replaces the package-level client; tests use this. Passing nil
// re-arms creation from env.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

// New constructs a client.
func New(cfg Config) *Client {
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan Event, queueDepth),
		closed: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether telemetry is enabled and an endpoint configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// SaveCompleted reports a successful document save.
func (c *Client) SaveCompleted(elements, projects int) {
	c.emit(Event{Name: "save", Elements: elements, Projects: projects})
}

// ResetPerformed reports a confirmed content reset.
func (c *Client) ResetPerformed() { c.emit(Event{Name: "reset"}) }

// ExportCompleted reports a portfolio PDF export.
func (c *Client) ExportCompleted(projects int) {
	c.emit(Event{Name: "export", Projects: projects})
}

func (c *Client) emit(e Event) {
	if !c.Enabled() {
		return
	}
	e.Time = time.Now().UTC().Format(time.RFC3339Nano)
	e.Version = version.String()
	e.OS = runtime.GOOS
	e.Arch = runtime.GOARCH
	select {
	case c.q <- e:
	default:
		// queue full, drop
	}
}

// Flush waits briefly for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if len(c.q) == 0 || time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the background goroutine.
func (c *Client) Close() { c.once.Do(func() { close(c.closed) }) }

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case e := <-c.q:
			c.send(e)
		}
	}
}

func (c *Client) send(e Event) {
	buf, err := json.Marshal(e)
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("event send failed", slog.String("event", e.Name), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
}

// SaveCompleted reports on the default client.
func SaveCompleted(elements, projects int) { Default().SaveCompleted(elements, projects) }

// ResetPerformed reports on the default client.
func ResetPerformed() { Default().ResetPerformed() }

// ExportCompleted reports on the default client.
func ExportCompleted(projects int) { Default().ExportCompleted(projects) }

// UploadCrash posts an already-serialized crash report to the configured
// crash URL if opt-in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.cli.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
	}(append([]byte(nil), report...))
}

// UploadCrash posts on the default client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }
