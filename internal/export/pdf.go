/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"designcanvas/internal/canvas"
	"designcanvas/internal/vector"
)

// pdfImageScale oversamples embedded images so they stay sharp when zoomed.
const pdfImageScale = 2

// WritePDF writes the scene as a single-page PDF. One canvas pixel maps to
// one point, times Scale. Text uses the built-in Helvetica, so only
// characters in the cp1252 code page survive.
func WritePDF(w io.Writer, scene Scene, opt Options) error {
	s := opt.scale()
	pw, ph := scene.Size.W*s, scene.Size.H*s
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetTitle("Design canvas", true)
	pdf.SetCreator("designcanvas", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.TransformBegin()
	pdf.TransformScale(s*100, s*100, 0, 0)

	setFillColor(pdf, colorOr(opt.Background, DefaultOptions().Background))
	pdf.Rect(0, 0, scene.Size.W, scene.Size.H, "F")
	if opt.Grid {
		setDrawColor(pdf, colorOr(opt.GridColor, DefaultOptions().GridColor))
		pdf.SetLineWidth(1)
		for x := 0.0; x < scene.Size.W; x += GridSpacing {
			pdf.Line(x, 0, x, scene.Size.H)
		}
		for y := 0.0; y < scene.Size.H; y += GridSpacing {
			pdf.Line(0, y, scene.Size.W, y)
		}
	}

	for _, e := range scene.Elements {
		if !e.Paintable() {
			continue
		}
		drawElementPDF(pdf, e, tr)
		if pdf.Err() {
			break
		}
	}
	pdf.TransformEnd()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawElementPDF(pdf *gofpdf.Fpdf, e canvas.Element, tr func(string) string) {
	c := e.Center()
	r := e.Rect()
	if e.Rotation != 0 {
		pdf.TransformBegin()
		// gofpdf rotates counter-clockwise
		pdf.TransformRotate(-e.Rotation, c.X, c.Y)
		defer pdf.TransformEnd()
	}
	fill := colorOr(e.Fill, canvas.DefaultFill)
	setFillColor(pdf, fill)

	switch e.Kind() {
	case canvas.Rectangle:
		pdf.Rect(r.X, r.Y, r.W, r.H, "F")
	case canvas.Circle:
		cr := e.CircleRect()
		pdf.Ellipse(c.X, c.Y, cr.W/2, cr.H/2, 0, "F")
	case canvas.Triangle:
		tri := vector.TriangleIn(r)
		pts := make([]gofpdf.PointType, len(tri))
		for i, p := range tri {
			pts[i] = gofpdf.PointType{X: p.X, Y: p.Y}
		}
		pdf.Polygon(pts, "F")
	case canvas.Text:
		line, size, ok := textLine(e)
		if !ok {
			return
		}
		pdf.SetFont("Helvetica", "", size)
		pdf.SetTextColor(int(fill.R), int(fill.G), int(fill.B))
		// baseline so that the x-height sits on the box centre line
		pdf.Text(r.X, r.Y+r.H/2+size*0.35, tr(line))
	case canvas.Image:
		if !embedImagePDF(pdf, e) {
			setDrawColor(pdf, fill)
			pdf.SetLineWidth(2)
			pdf.Rect(r.X+1, r.Y+1, r.W-2, r.H-2, "D")
			pdf.Line(r.X, r.Y, r.X+r.W, r.Y+r.H)
			pdf.Line(r.X+r.W, r.Y, r.X, r.Y+r.H)
		}
	}
}

// embedImagePDF re-encodes the fitted image as PNG so gofpdf only ever sees
// a format it can parse, whatever the source file was.
func embedImagePDF(pdf *gofpdf.Fpdf, e canvas.Element) bool {
	f, err := loadFitted(e, pdfImageScale)
	if err != nil {
		return false
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, f.img, imaging.PNG); err != nil {
		return false
	}
	name := "img-" + string(e.ID())
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	if pdf.Err() {
		return false
	}
	pdf.ImageOptions(name, f.x, f.y, f.w, f.h, false, opts, 0, "")
	return true
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
