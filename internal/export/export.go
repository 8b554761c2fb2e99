/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the visible elements of a canvas to PNG, SVG and PDF.
//
// Renderers receive a Scene, never the model itself, so exporting cannot
// mutate the canvas. Elements are painted in slice order, each rotated about
// its own centre. Elements with a non-positive width or height are skipped.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"designcanvas/internal/canvas"
)

// ErrUnknownFormat is returned for output formats other than png, svg and pdf.
var ErrUnknownFormat = errors.New("unknown export format")

// ErrEmptyCanvas is returned when the scene has no drawable area.
var ErrEmptyCanvas = errors.New("canvas has no area")

// GridSpacing is the distance between background grid lines in canvas pixels.
const GridSpacing = 20.0

// Scene is what gets exported: the canvas bounds and the visible elements in
// paint order.
type Scene struct {
	Size     canvas.Size
	Elements []canvas.Element
}

// SceneOf captures the model's visible elements.
func SceneOf(m *canvas.Model) Scene {
	return Scene{Size: m.CanvasSize(), Elements: m.VisibleInPaintOrder()}
}

// Options controls the look of exported files.
type Options struct {
	Background string
	Grid       bool
	GridColor  string
	// Scale multiplies the output size; 2 gives a double-resolution PNG.
	Scale float64
}

// DefaultOptions matches the on-screen canvas.
func DefaultOptions() Options {
	return Options{Background: "#1e293b", Grid: true, GridColor: "#334155", Scale: 1}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{PNG, SVG, PDF} }

// ParseFormat accepts a format name, case-insensitive, with or without a dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case PNG, SVG, PDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Write renders scene in format f to w.
func Write(w io.Writer, f Format, scene Scene, opt Options) error {
	if scene.Size.W < 1 || scene.Size.H < 1 {
		return ErrEmptyCanvas
	}
	switch f {
	case PNG:
		return WritePNG(w, scene, opt)
	case SVG:
		return WriteSVG(w, scene, opt)
	case PDF:
		return WritePDF(w, scene, opt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ExportFile renders scene to path; the format follows the extension.
// Parent directories are created. The file is written only when rendering
// succeeded, so a failed export never leaves a truncated file behind.
func ExportFile(path string, scene Scene, opt Options) (Format, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, scene, opt); err != nil {
		return f, fmt.Errorf("render %s: %w", f, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return f, fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return f, fmt.Errorf("write %s: %w", f, err)
	}
	return f, nil
}

// textLine is the single line a Text element paints; newlines collapse to spaces.
func textLine(e canvas.Element) (string, float64, bool) {
	t, ok := e.Text()
	if !ok {
		return "", 0, false
	}
	s := strings.Join(strings.Fields(t.Content), " ")
	size := t.FontSize
	if size <= 0 {
		size = canvas.DefaultFontSize
	}
	return s, size, s != ""
}
