/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package persist coordinates the three persistence tiers: static seed
// files, the remote storage API, and the durable local cache. It seeds the
// store on startup, debounces auto-saves after mutations, and runs the
// confirmed reset flow.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"sitecanvas/internal/backend"
	"sitecanvas/internal/cache"
	"sitecanvas/internal/domain"
	applog "sitecanvas/internal/log"
	"sitecanvas/internal/store"
	"sitecanvas/internal/telemetry"
)

// DefaultDebounce is the auto-save quiet period: bursts of edits coalesce
// into one save.
const DefaultDebounce = time.Second

// Static seed file names under the configured static directory.
const (
	ElementsSeedFile  = "project-data.json"
	PortfolioSeedFile = "portfolio-data.json"
)

// Persisted payloads are shape-checked before use; a payload that fails
// validation counts as absent for its tier.
const (
	elementsSchema = `{
		"type": "object",
		"additionalProperties": {
			"type": "object",
			"properties": {
				"content": {"type": "string"},
				"style": {"type": "object", "additionalProperties": {"type": "string"}}
			}
		}
	}`
	portfolioSchema = `{
		"type": "array",
		"items": {"type": "object"}
	}`
)

// KV is the durable local cache tier.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

// Remote is the storage API tier.
type Remote interface {
	LoadElements(ctx context.Context) (map[string]domain.ElementRecord, error)
	LoadPortfolio(ctx context.Context) ([]domain.Project, error)
	SaveElements(ctx context.Context, elements map[string]domain.ElementRecord) (*backend.SaveResult, error)
	SavePortfolio(ctx context.Context, projects []domain.Project) (*backend.SaveResult, error)
}

// Notifier surfaces actionable warnings to the operator.
type Notifier interface {
	Warn(msg string)
}

// Confirmer asks the operator before destructive flows.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Options configures a Coordinator.
type Options struct {
	StaticDir string        // directory holding the seed files, may be empty
	DevMode   bool          // skip the cache on element load, clear remote on reset
	Debounce  time.Duration // auto-save quiet period; <= 0 means DefaultDebounce
}

// Coordinator wires one store to the three tiers. Saves always write the
// local cache; remote writes are best-effort and never fail a save.
type Coordinator struct {
	store    *store.Store
	kv       KV
	remote   Remote
	notifier Notifier
	opts     Options
	log      *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a coordinator. remote and notifier may be nil (local-only
// operation, warnings dropped).
func New(st *store.Store, kv KV, remote Remote, notifier Notifier, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Coordinator{
		store:    st,
		kv:       kv,
		remote:   remote,
		notifier: notifier,
		opts:     opts,
		log:      applog.WithComponent("persist"),
	}
}

// Start hooks the coordinator into the store's mutation stream so edits
// auto-save after the quiet period.
func (c *Coordinator) Start() {
	c.store.OnMutate(c.Changed)
}

// Changed (re)arms the auto-save debounce timer.
func (c *Coordinator) Changed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.opts.Debounce, func() {
		if err := c.Save(context.Background()); err != nil {
			applog.WithOperation(c.log, "autosave").Error("save failed", slog.Any("err", err))
		}
	})
}

// Flush cancels any pending auto-save and saves immediately if the document
// is dirty.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	if !c.store.Dirty() {
		return nil
	}
	return c.Save(ctx)
}

// Load seeds the store from the first tier that yields a valid, non-empty
// document. Elements: static file, then remote, then cache (cache skipped
// in dev mode). Portfolio: remote, then static file, then cache. A document
// missing from every tier starts empty; that is not an error.
func (c *Coordinator) Load(ctx context.Context) error {
	l := applog.WithOperation(c.log, "load")

	elements, src := c.loadElements(ctx)
	if elements != nil {
		c.store.SeedElements(elements)
		l.Info("elements loaded", slog.String("source", src), slog.Int("count", len(elements)))
	} else {
		l.Info("no persisted elements, starting empty")
	}

	projects, src := c.loadPortfolio(ctx)
	if projects != nil {
		c.store.SeedProjects(projects)
		l.Info("portfolio loaded", slog.String("source", src), slog.Int("projects", len(projects)))
	} else {
		l.Info("no persisted portfolio, starting empty")
	}
	return nil
}

// A tier counts as absent when it errors, is missing, fails validation, or
// holds an empty document. The remote returns `{}`/`[]` before the first
// save; that must not shadow the static seed or the local cache.
func (c *Coordinator) loadElements(ctx context.Context) (map[string]domain.ElementRecord, string) {
	if m := c.staticElements(); len(m) > 0 {
		return m, "static"
	}
	if c.remote != nil {
		m, err := c.remote.LoadElements(ctx)
		if err == nil && len(m) > 0 {
			return m, "remote"
		}
		if err != nil {
			c.tierMiss("remote elements", err)
		}
	}
	if c.opts.DevMode {
		return nil, ""
	}
	if b := c.cached(ctx, cache.ProjectDataKey, elementsSchema); b != nil {
		m, err := domain.DecodeElements(b)
		if err == nil && len(m) > 0 {
			return m, "cache"
		}
		if err != nil {
			c.tierMiss("cached elements", err)
		}
	}
	return nil, ""
}

func (c *Coordinator) loadPortfolio(ctx context.Context) ([]domain.Project, string) {
	if c.remote != nil {
		ps, err := c.remote.LoadPortfolio(ctx)
		if err == nil && len(ps) > 0 {
			return ps, "remote"
		}
		if err != nil {
			c.tierMiss("remote portfolio", err)
		}
	}
	if ps := c.staticPortfolio(); len(ps) > 0 {
		return ps, "static"
	}
	if b := c.cached(ctx, cache.PortfolioDataKey, portfolioSchema); b != nil {
		ps, err := domain.DecodePortfolio(b)
		if err == nil && len(ps) > 0 {
			return ps, "cache"
		}
		if err != nil {
			c.tierMiss("cached portfolio", err)
		}
	}
	return nil, ""
}

func (c *Coordinator) staticElements() map[string]domain.ElementRecord {
	b := c.staticFile(ElementsSeedFile, elementsSchema)
	if b == nil {
		return nil
	}
	m, err := domain.DecodeElements(b)
	if err != nil {
		c.tierMiss("static elements", err)
		return nil
	}
	return m
}

func (c *Coordinator) staticPortfolio() []domain.Project {
	b := c.staticFile(PortfolioSeedFile, portfolioSchema)
	if b == nil {
		return nil
	}
	ps, err := domain.DecodePortfolio(b)
	if err != nil {
		c.tierMiss("static portfolio", err)
		return nil
	}
	return ps
}

func (c *Coordinator) staticFile(name, schema string) []byte {
	if c.opts.StaticDir == "" {
		return nil
	}
	b, err := os.ReadFile(filepath.Join(c.opts.StaticDir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			c.tierMiss("static "+name, err)
		}
		return nil
	}
	if err := validate(schema, b); err != nil {
		c.tierMiss("static "+name, err)
		return nil
	}
	return b
}

func (c *Coordinator) cached(ctx context.Context, key, schema string) []byte {
	if c.kv == nil {
		return nil
	}
	b, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.tierMiss("cache "+key, err)
		}
		return nil
	}
	if err := validate(schema, b); err != nil {
		c.tierMiss("cache "+key, err)
		return nil
	}
	return b
}

func (c *Coordinator) tierMiss(what string, err error) {
	applog.WithOperation(c.log, "load").Warn("tier unavailable",
		slog.String("tier", what), slog.Any("err", err))
}

func validate(schema string, doc []byte) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !res.Valid() {
		return fmt.Errorf("document shape invalid: %v", res.Errors())
	}
	return nil
}

// Save writes the current document: the local cache first and always, the
// remote tier best-effort. A cache quota failure raises exactly one
// operator warning and aborts the save; the in-memory document is left
// untouched and stays dirty.
func (c *Coordinator) Save(ctx context.Context) error {
	l := applog.WithOperation(c.log, "save")
	snap := c.store.Snapshot()

	elb, err := json.Marshal(snap.Elements)
	if err != nil {
		return fmt.Errorf("encode elements: %w", err)
	}
	if snap.Projects == nil {
		snap.Projects = []domain.Project{}
	}
	pfb, err := json.Marshal(snap.Projects)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}

	if c.kv != nil {
		if err := c.putLocal(ctx, elb, pfb); err != nil {
			return err
		}
	}

	if c.remote != nil {
		if _, err := c.remote.SaveElements(ctx, snap.Elements); err != nil {
			l.Warn("remote element save failed, local copy is current", slog.Any("err", err))
		}
		if _, err := c.remote.SavePortfolio(ctx, snap.Projects); err != nil {
			l.Warn("remote portfolio save failed, local copy is current", slog.Any("err", err))
		}
	}

	c.store.ClearDirty()
	l.Info("saved", slog.Int("elements_bytes", len(elb)), slog.Int("portfolio_bytes", len(pfb)))
	telemetry.SaveCompleted(len(snap.Elements), len(snap.Projects))
	return nil
}

func (c *Coordinator) putLocal(ctx context.Context, elb, pfb []byte) error {
	err := c.kv.Put(ctx, cache.ProjectDataKey, elb)
	if err == nil {
		err = c.kv.Put(ctx, cache.PortfolioDataKey, pfb)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, cache.ErrQuotaExceeded) {
		if c.notifier != nil {
			c.notifier.Warn("Local storage is full. Free up space or export your work; changes are kept in memory only.")
		}
		return err
	}
	return fmt.Errorf("local save: %w", err)
}

// Reset asks for confirmation, then clears the local cache. In dev mode the
// remote document is cleared too. Returns true when the reset ran.
func (c *Coordinator) Reset(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm != nil && !confirm.Confirm("Reset all saved content? This cannot be undone.") {
		return false, nil
	}
	l := applog.WithOperation(c.log, "reset")
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if c.kv != nil {
		if err := c.kv.Clear(ctx); err != nil {
			return false, fmt.Errorf("clear cache: %w", err)
		}
	}
	if c.opts.DevMode && c.remote != nil {
		if _, err := c.remote.SaveElements(ctx, map[string]domain.ElementRecord{}); err != nil {
			l.Warn("remote element clear failed", slog.Any("err", err))
		}
		if _, err := c.remote.SavePortfolio(ctx, []domain.Project{}); err != nil {
			l.Warn("remote portfolio clear failed", slog.Any("err", err))
		}
	}
	l.Info("reset complete")
	return true, nil
}
