/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// GridStep is the snap grid for element positioning and box spacing.
const GridStep = 4

var translateRe = regexp.MustCompile(`translate\((-?[\d.]+)px,\s*(-?[\d.]+)px\)`)

// Snap quantizes v to the nearest multiple of GridStep. Exact midpoints
// round toward zero, so a +10px drag commits at 8px, not 12px.
func Snap(v float64) int {
	q := v / GridStep
	whole := math.Trunc(q)
	if math.Abs(q-whole) > 0.5 {
		whole += math.Copysign(1, q)
	}
	return int(whole) * GridStep
}

// SnapPx snaps an integer pixel value. Used by the box-tab spacing controls.
func SnapPx(v int) int { return Snap(float64(v)) }

// ParseTranslate extracts the X/Y offset from a "translate(Xpx, Ypx)"
// transform value. Unparseable or absent transforms yield a zero offset,
// never an error: malformed saved styles degrade to "no offset".
func ParseTranslate(transform string) (x, y float64) {
	m := translateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0, 0
	}
	x, _ = strconv.ParseFloat(m[1], 64)
	y, _ = strconv.ParseFloat(m[2], 64)
	return x, y
}

// FormatTranslate renders a snapped offset back into its CSS form.
func FormatTranslate(x, y int) string {
	return fmt.Sprintf("translate(%dpx, %dpx)", x, y)
}

// PixelValue parses the leading integer out of a CSS pixel value ("24px"
// -> 24). Anything unparseable is 0, matching how the box controls treat
// unset spacing.
func PixelValue(v string) int {
	i := 0
	start := 0
	if len(v) > 0 && (v[0] == '-' || v[0] == '+') {
		i = 1
	}
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(v[start:i])
	if err != nil {
		return 0
	}
	return n
}
