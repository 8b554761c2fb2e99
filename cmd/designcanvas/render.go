/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"designcanvas/internal/canvas"
	"designcanvas/internal/editor"
	"designcanvas/internal/storage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(0, 1)
)

// swatch renders a colour sample followed by its hex value.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■") + " " + hex
}

func layerFlags(e canvas.Element) string {
	var f []string
	if !e.Visible {
		f = append(f, "hidden")
	}
	if e.Locked {
		f = append(f, "locked")
	}
	return strings.Join(f, ",")
}

func layerLabel(e canvas.Element) string {
	if t, ok := e.Text(); ok {
		return fmt.Sprintf("%q", t.Content)
	}
	if im, ok := e.Image(); ok && im.Src != "" {
		return im.Src
	}
	return ""
}

// renderInfo prints a design summary with its layers, top-most first.
func renderInfo(path string, size canvas.Size, layers []canvas.Element) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(path))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%g × %g, %d elements", size.W, size.H, len(layers))))
	b.WriteString("\n")
	if len(layers) == 0 {
		return b.String()
	}
	kindCol := lipgloss.NewStyle().Width(10)
	posCol := lipgloss.NewStyle().Width(22)
	rows := []string{headerStyle.Render(kindCol.Render("KIND") + posCol.Render("BOX") + "FILL")}
	for _, e := range layers {
		box := fmt.Sprintf("%g,%g %gx%g", e.Position.X, e.Position.Y, e.Size.W, e.Size.H)
		if e.Rotation != 0 {
			box += fmt.Sprintf(" ↻%g", e.DisplayRotation())
		}
		line := kindCol.Render(e.Kind().String()) + posCol.Render(box) + swatch(e.Fill)
		if extra := strings.TrimSpace(layerLabel(e) + " " + layerFlags(e)); extra != "" {
			line += "  " + faintStyle.Render(extra)
		}
		rows = append(rows, line)
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")
	return b.String()
}

func renderTemplates(ts []editor.Template) string {
	nameCol := lipgloss.NewStyle().Width(22)
	catCol := lipgloss.NewStyle().Width(14)
	var b strings.Builder
	b.WriteString(headerStyle.Render(nameCol.Render("TEMPLATE")+catCol.Render("CATEGORY")+"SIZE") + "\n")
	for _, t := range ts {
		cs := t.CanvasSize()
		fmt.Fprintf(&b, "%s%s%g × %g %s\n", nameCol.Render(t.Name), catCol.Render(t.Category), t.Width, t.Height,
			faintStyle.Render(fmt.Sprintf("(canvas %g × %g)", cs.W, cs.H)))
	}
	return b.String()
}

func renderRecent(docs []storage.RecentDocument) string {
	if len(docs) == 0 {
		return faintStyle.Render("No recent designs.") + "\n"
	}
	var b strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&b, "%s  %s\n    %s\n", titleStyle.Render(d.Name),
			faintStyle.Render(fmt.Sprintf("%g × %g, %d elements, saved %s", d.Width, d.Height, d.Elements, d.SavedAt.Format("2006-01-02 15:04"))),
			d.Path)
	}
	return b.String()
}
