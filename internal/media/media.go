/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package media classifies and names uploaded portfolio assets.
package media

import (
	"fmt"
	"image"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sitecanvas/internal/domain"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var videoExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
}

// Kind classifies an upload as image or video from its content type, then
// its extension. Everything unrecognized counts as an image; the portfolio
// grid renders unknown assets through the image path.
func Kind(filename, contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return domain.MediaVideo
	}
	if strings.HasPrefix(contentType, "image/") {
		return domain.MediaImage
	}
	if videoExts[strings.ToLower(filepath.Ext(filename))] {
		return domain.MediaVideo
	}
	return domain.MediaImage
}

// ContentType resolves a MIME type from the filename extension, defaulting
// to application/octet-stream.
func ContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeFilename reduces a client-supplied filename to a safe blob name:
// the base name only, spaces collapsed to dashes, anything outside
// [a-zA-Z0-9._-] dropped. Empty results become "file".
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// UniqueName prefixes a sanitized filename with a random id so repeated
// uploads of the same file never overwrite each other.
func UniqueName(filename string) string {
	return fmt.Sprintf("%s-%s", uuid.NewString()[:8], SanitizeFilename(filename))
}

// ImageDims probes the pixel dimensions of an encoded image (PNG, JPEG,
// GIF, WebP) without decoding the full bitmap.
func ImageDims(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("probe image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
