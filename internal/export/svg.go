/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"path/filepath"

	svg "github.com/ajstarks/svgo/float"

	"designcanvas/internal/canvas"
	"designcanvas/internal/vector"
)

// WriteSVG writes the scene as an SVG document. The viewBox is in canvas
// pixels; Scale only affects the width and height attributes. Image elements
// link their source file rather than embedding it.
func WriteSVG(w io.Writer, scene Scene, opt Options) error {
	bw := bufio.NewWriter(w)
	s := opt.scale()
	doc := svg.New(bw)
	doc.Startview(scene.Size.W*s, scene.Size.H*s, 0, 0, scene.Size.W, scene.Size.H)
	doc.Title("Design canvas")

	bg := hexOf(colorOr(opt.Background, DefaultOptions().Background))
	doc.Rect(0, 0, scene.Size.W, scene.Size.H, fmt.Sprintf(`fill="%s"`, bg))
	if opt.Grid {
		gc := hexOf(colorOr(opt.GridColor, DefaultOptions().GridColor))
		doc.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1", gc))
		for x := 0.0; x < scene.Size.W; x += GridSpacing {
			doc.Line(x, 0, x, scene.Size.H)
		}
		for y := 0.0; y < scene.Size.H; y += GridSpacing {
			doc.Line(0, y, scene.Size.W, y)
		}
		doc.Gend()
	}

	for _, e := range scene.Elements {
		if !e.Paintable() {
			continue
		}
		drawElementSVG(doc, e)
	}
	doc.End()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func drawElementSVG(doc *svg.SVG, e canvas.Element) {
	c := e.Center()
	r := e.Rect()
	if e.Rotation != 0 {
		doc.Gtransform(fmt.Sprintf("rotate(%g %g %g)", e.Rotation, c.X, c.Y))
		defer doc.Gend()
	}
	fill := fmt.Sprintf(`fill="%s"`, hexOf(colorOr(e.Fill, canvas.DefaultFill)))
	id := fmt.Sprintf(`id="%s"`, svgID(e.ID()))

	switch e.Kind() {
	case canvas.Rectangle:
		doc.Rect(r.X, r.Y, r.W, r.H, id, fill)
	case canvas.Circle:
		cr := e.CircleRect()
		doc.Ellipse(c.X, c.Y, cr.W/2, cr.H/2, id, fill)
	case canvas.Triangle:
		pts := vector.TriangleIn(r)
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i], ys[i] = p.X, p.Y
		}
		doc.Polygon(xs, ys, id, fill)
	case canvas.Text:
		line, size, ok := textLine(e)
		if !ok {
			return
		}
		doc.Text(r.X, r.Y+r.H/2, line, id, fill,
			fmt.Sprintf(`font-size="%g"`, size),
			`font-family="Go, Helvetica, Arial, sans-serif"`,
			`dominant-baseline="central"`)
	case canvas.Image:
		p, _ := e.Image()
		if p.Src == "" {
			stroke := fmt.Sprintf(`stroke="%s"`, hexOf(colorOr(e.Fill, canvas.DefaultFill)))
			doc.Rect(r.X+1, r.Y+1, r.W-2, r.H-2, id, `fill="none"`, stroke, `stroke-width="2"`)
			doc.Line(r.X, r.Y, r.X+r.W, r.Y+r.H, stroke, `stroke-width="2"`)
			doc.Line(r.X+r.W, r.Y, r.X, r.Y+r.H, stroke, `stroke-width="2"`)
			return
		}
		doc.Image(r.X, r.Y, int(r.W), int(r.H), html.EscapeString(filepath.ToSlash(p.Src)), id, `preserveAspectRatio="xMidYMid meet"`)
	}
}

// svgID makes an element id usable as an XML id attribute.
func svgID(id canvas.ID) string {
	out := make([]byte, 0, len(id)+3)
	out = append(out, "el-"...)
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
