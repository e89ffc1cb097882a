/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sitecanvas/internal/domain"
	applog "sitecanvas/internal/log"
	"sitecanvas/internal/media"
	"sitecanvas/internal/version"
)

// DefaultMaxUploadBytes caps upload request bodies.
const DefaultMaxUploadBytes = 32 << 20

// Options configures the service.
type Options struct {
	Addr           string // bind address, e.g. ":8080"
	Token          string // optional bearer token required on /api routes
	PublicBaseURL  string // prefix for returned blob URLs, "" means relative
	MaxUploadBytes int64  // <= 0 means DefaultMaxUploadBytes
}

// Server serves the storage contract over a BlobStore.
type Server struct {
	store BlobStore
	opts  Options
	log   *slog.Logger
}

// New creates a server.
func New(store BlobStore, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Server{store: store, opts: opts, log: applog.WithComponent("server")}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(version.String()))
	})

	r.Route("/api", func(r chi.Router) {
		if s.opts.Token != "" {
			r.Use(s.bearerAuth)
		}
		r.Get("/load-data", s.handleLoadData)
		r.Get("/load-portfolio", s.handleLoadPortfolio)
		r.Post("/save-data", s.handleSaveData)
		r.Post("/save-portfolio", s.handleSavePortfolio)
		r.Post("/upload", s.handleUpload)
	})

	r.Get("/blob/*", s.handleBlob)
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", s.opts.Addr))

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(context.Context) error }
	if p, ok := s.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) || strings.TrimSpace(auth[len(prefix):]) != s.opts.Token {
			writeError(w, http.StatusUnauthorized, errors.New("missing or invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLoadData returns the saved element map, or an empty object when
// nothing has been saved yet.
func (s *Server) handleLoadData(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Get(r.Context(), DataBlobKey)
	if errors.Is(err, ErrNoBlob) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte("{}"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(b.Data)
}

// handleLoadPortfolio returns the saved portfolio verbatim, legacy shape
// included; migration happens client-side. Absence is a 404.
func (s *Server) handleLoadPortfolio(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Get(r.Context(), PortfolioBlobKey)
	if errors.Is(err, ErrNoBlob) {
		writeError(w, http.StatusNotFound, errors.New("no portfolio saved"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(b.Data)
}

func (s *Server) handleSaveData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := domain.DecodeElements(body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid element document: %w", err))
		return
	}
	if err := s.store.Put(r.Context(), DataBlobKey, "application/json", body); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": s.blobURL(DataBlobKey)})
}

func (s *Server) handleSavePortfolio(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := domain.DecodePortfolio(body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid portfolio document: %w", err))
		return
	}
	if err := s.store.Put(r.Context(), PortfolioBlobKey, "application/json", body); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": s.blobURL(PortfolioBlobKey)})
}

// handleUpload stores raw media bytes under a unique blob name and returns
// the public URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if strings.TrimSpace(filename) == "" {
		writeError(w, http.StatusBadRequest, errors.New("filename query parameter is required"))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty upload body"))
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = media.ContentType(filename)
	}
	key := "uploads/" + media.UniqueName(filename)
	if err := s.store.Put(r.Context(), key, ct, body); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	applog.WithOperation(s.log, "upload").Info("stored",
		slog.String("key", key), slog.String("type", media.Kind(filename, ct)), slog.Int("bytes", len(body)))
	writeJSON(w, http.StatusOK, map[string]any{"url": s.blobURL(key)})
}

// handleBlob serves stored blobs (uploads and the raw documents).
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	b, err := s.store.Get(r.Context(), key)
	if errors.Is(err, ErrNoBlob) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", b.ContentType)
	_, _ = w.Write(b.Data)
}

func (s *Server) blobURL(key string) string {
	return s.opts.PublicBaseURL + "/blob/" + key
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
