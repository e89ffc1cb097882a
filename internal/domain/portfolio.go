/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
)

// Legacy portfolio payloads were a flat item list rather than a project
// list. They are detected by the presence of a "url" field on the first
// element and wrapped into one synthetic project on load.
const (
	LegacyProjectID    = "default"
	LegacyProjectTitle = "Untitled Project"
)

// DecodePortfolio parses a persisted portfolio payload, migrating the legacy
// flat-item format to the project-grouped one. The payload must be a JSON
// array; anything else is an error so callers can fall through to the next
// storage tier.
func DecodePortfolio(data []byte) ([]Project, error) {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	if len(probe) > 0 {
		if _, legacy := probe[0]["url"]; legacy {
			var items []PortfolioItem
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, fmt.Errorf("decode legacy portfolio items: %w", err)
			}
			return []Project{{ID: LegacyProjectID, Title: LegacyProjectTitle, Items: items}}, nil
		}
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decode portfolio projects: %w", err)
	}
	return projects, nil
}

// DecodeElements parses a persisted element mapping.
func DecodeElements(data []byte) (map[string]ElementRecord, error) {
	var m map[string]ElementRecord
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return m, nil
}
