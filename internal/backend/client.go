/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend is the HTTP client for the remote storage contract: load
// and save endpoints for the element map and the portfolio, plus binary
// media upload. It is the remote tier of the persistence coordinator.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitecanvas/internal/domain"
)

// ErrNotFound marks an absent remote document (HTTP 404). First-run
// deployments have no saved data yet; callers fall through to the next tier.
var ErrNotFound = errors.New("backend: not found")

// Client talks to the storage API. Zero-value timeouts are replaced with a
// 10s default.
type Client struct {
	BaseURL string
	Token   string // bearer token, optional
	client  *http.Client
}

// NewClient creates a backend client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SaveResult is the response envelope of the save endpoints.
type SaveResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
}

// UploadResult is the response envelope of the upload endpoint.
type UploadResult struct {
	URL string `json:"url"`
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}

// LoadElements fetches the saved element map. An empty document ({}) is a
// valid result distinct from ErrNotFound.
func (c *Client) LoadElements(ctx context.Context) (map[string]domain.ElementRecord, error) {
	b, err := c.do(ctx, http.MethodGet, "/api/load-data", "", nil)
	if err != nil {
		return nil, err
	}
	return domain.DecodeElements(b)
}

// LoadPortfolio fetches the saved portfolio, migrating the legacy flat
// format when the backend still holds one.
func (c *Client) LoadPortfolio(ctx context.Context) ([]domain.Project, error) {
	b, err := c.do(ctx, http.MethodGet, "/api/load-portfolio", "", nil)
	if err != nil {
		return nil, err
	}
	return domain.DecodePortfolio(b)
}

// SaveElements writes the whole element map.
func (c *Client) SaveElements(ctx context.Context, elements map[string]domain.ElementRecord) (*SaveResult, error) {
	return c.save(ctx, "/api/save-data", elements)
}

// SavePortfolio writes the whole project collection.
func (c *Client) SavePortfolio(ctx context.Context, projects []domain.Project) (*SaveResult, error) {
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.save(ctx, "/api/save-portfolio", projects)
}

func (c *Client) save(ctx context.Context, path string, payload any) (*SaveResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	b, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var res SaveResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("decode save response: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("save %s: backend reported failure", path)
	}
	return &res, nil
}

// Upload stores a binary media asset and returns its public URL. The
// filename travels as a query parameter; the body is the raw bytes.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data io.Reader) (*UploadResult, error) {
	path := "/api/upload?filename=" + url.QueryEscape(filename)
	b, err := c.do(ctx, http.MethodPost, path, contentType, data)
	if err != nil {
		return nil, err
	}
	var res UploadResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if res.URL == "" {
		return nil, errors.New("upload: empty url in response")
	}
	return &res, nil
}
