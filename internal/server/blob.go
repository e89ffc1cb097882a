/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package server implements the storage API service: load/save endpoints
// for the element map and the portfolio plus binary media upload, backed by
// a pluggable blob store (filesystem or Postgres).
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sitecanvas/internal/media"
)

func contentTypeForKey(key string) string { return media.ContentType(key) }

// Blob keys of the two persisted documents.
const (
	DataBlobKey      = "data/project-data.json"
	PortfolioBlobKey = "data/portfolio-data.json"
)

// ErrNoBlob marks an absent blob.
var ErrNoBlob = errors.New("server: blob not found")

// Blob is one stored object.
type Blob struct {
	ContentType string
	Data        []byte
}

// BlobStore is the persistence backend of the service. Keys are
// slash-separated paths ("data/project-data.json", "uploads/x.png").
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*Blob, error)
	Delete(ctx context.Context, key string) error
}

// FSStore keeps blobs as files under a root directory, with a sidecar-free
// content-type resolution from the key's extension at read time.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root string) (*FSStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("blob root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes the blob, creating parent directories as needed.
func (s *FSStore) Put(_ context.Context, key, _ string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("publish blob: %w", err)
	}
	return nil
}

// Get reads the blob or returns ErrNoBlob.
func (s *FSStore) Get(_ context.Context, key string) (*Blob, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNoBlob)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return &Blob{ContentType: contentTypeForKey(key), Data: b}, nil
}

// Delete removes the blob. Missing blobs are not an error.
func (s *FSStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
