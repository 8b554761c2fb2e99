/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"strings"

	"designcanvas/internal/canvas"
)

// Tool is the active toolbar tool. Every tool except ToolSelect places an
// element of its kind when the empty canvas is clicked.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolTriangle  Tool = "triangle"
	ToolText      Tool = "text"
	ToolImage     Tool = "image"
)

// Tools lists the toolbar in display order.
func Tools() []Tool {
	return []Tool{ToolSelect, ToolRectangle, ToolCircle, ToolTriangle, ToolText, ToolImage}
}

// ParseTool accepts a tool name, case-insensitive.
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Tools() {
		if k == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Kind returns the element kind a placing tool creates.
func (t Tool) Kind() (canvas.Kind, bool) {
	if t == ToolSelect {
		return 0, false
	}
	k, err := canvas.ParseKind(string(t))
	return k, err == nil
}

// Palette holds the colour swatches offered next to the toolbar.
var Palette = []string{
	"#EF4444", "#F97316", "#F59E0B", "#EAB308",
	"#84CC16", "#22C55E", "#10B981", "#14B8A6",
	"#06B6D4", "#0EA5E9", "#3B82F6", "#6366F1",
	"#8B5CF6", "#A855F7", "#C084FC", "#E879F9",
	"#EC4899", "#F43F5E", "#374151", "#6B7280",
}

// Zoom bounds and step, in percent.
const (
	MinZoom     = 25
	MaxZoom     = 200
	ZoomStep    = 25
	DefaultZoom = 100
)

func clampZoom(z int) int {
	return min(MaxZoom, max(MinZoom, z))
}
