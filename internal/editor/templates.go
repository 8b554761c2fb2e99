/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"strings"

	"designcanvas/internal/canvas"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Template is a canvas-size preset.
type Template struct {
	Name     string
	Category string
	Width    float64
	Height   float64
}

// CanvasSize is the working size: half the template's output size.
func (t Template) CanvasSize() canvas.Size {
	return canvas.Size{W: t.Width / 2, H: t.Height / 2}
}

var templates = []Template{
	{Name: "Social Media Post", Category: "Social", Width: 1080, Height: 1080},
	{Name: "Instagram Story", Category: "Social", Width: 1080, Height: 1920},
	{Name: "Business Card", Category: "Print", Width: 1050, Height: 600},
	{Name: "Flyer", Category: "Print", Width: 2480, Height: 3508},
	{Name: "Web Banner", Category: "Web", Width: 1200, Height: 400},
	{Name: "Presentation Slide", Category: "Presentation", Width: 1920, Height: 1080},
}

// Templates returns the built-in templates.
func Templates() []Template { return append([]Template(nil), templates...) }

// FindTemplate looks a template up by name, ignoring case and surrounding space.
func FindTemplate(name string) (Template, error) {
	n := strings.TrimSpace(name)
	for _, t := range templates {
		if strings.EqualFold(t.Name, n) {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}
