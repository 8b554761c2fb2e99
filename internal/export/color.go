/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts #rgb and #rrggbb hex colours.
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimSpace(hex)
	if len(s) != 4 && len(s) != 7 {
		return color.RGBA{}, fmt.Errorf("color %q: expected #rgb or #rrggbb", hex)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// colorOr parses hex and falls back to def (then to black) on bad input.
func colorOr(hex, def string) color.RGBA {
	if c, err := ParseColor(hex); err == nil {
		return c
	}
	if c, err := ParseColor(def); err == nil {
		return c
	}
	return color.RGBA{A: 255}
}

// NormalizeHex returns the lowercase #rrggbb form of a valid colour.
func NormalizeHex(hex string) (string, error) {
	c, err := ParseColor(hex)
	if err != nil {
		return "", err
	}
	return hexOf(c), nil
}

func hexOf(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
