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
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"designcanvas/internal/canvas"
	"designcanvas/internal/vector"
)

var (
	fontOnce  sync.Once
	fontTTF   *truetype.Font
	fontErr   error
	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
)

// faceFor returns the Go Regular face at size points. Faces are cached per
// size since text elements usually share a handful of sizes.
func faceFor(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f, nil
	}
	f := truetype.NewFace(fontTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faceCache[size] = f
	return f, nil
}

// WritePNG rasterises the scene.
func WritePNG(w io.Writer, scene Scene, opt Options) error {
	s := opt.scale()
	pw := int(math.Round(scene.Size.W * s))
	ph := int(math.Round(scene.Size.H * s))
	if pw < 1 || ph < 1 {
		return ErrEmptyCanvas
	}
	dc := gg.NewContext(pw, ph)
	dc.Scale(s, s)

	dc.SetColor(colorOr(opt.Background, DefaultOptions().Background))
	dc.Clear()
	if opt.Grid {
		dc.SetColor(colorOr(opt.GridColor, DefaultOptions().GridColor))
		dc.SetLineWidth(1)
		for x := 0.0; x < scene.Size.W; x += GridSpacing {
			dc.DrawLine(x, 0, x, scene.Size.H)
		}
		for y := 0.0; y < scene.Size.H; y += GridSpacing {
			dc.DrawLine(0, y, scene.Size.W, y)
		}
		dc.Stroke()
	}

	for _, e := range scene.Elements {
		if !e.Paintable() {
			continue
		}
		if err := drawElementPNG(dc, e); err != nil {
			return err
		}
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawElementPNG(dc *gg.Context, e canvas.Element) error {
	dc.Push()
	defer dc.Pop()
	c := e.Center()
	if e.Rotation != 0 {
		dc.RotateAbout(gg.Radians(e.Rotation), c.X, c.Y)
	}
	dc.SetColor(colorOr(e.Fill, canvas.DefaultFill))
	r := e.Rect()

	switch e.Kind() {
	case canvas.Rectangle:
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
	case canvas.Circle:
		cr := e.CircleRect()
		dc.DrawEllipse(c.X, c.Y, cr.W/2, cr.H/2)
		dc.Fill()
	case canvas.Triangle:
		for i, p := range vector.TriangleIn(r) {
			if i == 0 {
				dc.MoveTo(p.X, p.Y)
			} else {
				dc.LineTo(p.X, p.Y)
			}
		}
		dc.ClosePath()
		dc.Fill()
	case canvas.Text:
		line, size, ok := textLine(e)
		if !ok {
			return nil
		}
		face, err := faceFor(size)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.DrawStringAnchored(line, r.X, r.Y+r.H/2, 0, 0.5)
	case canvas.Image:
		f, err := loadFitted(e, 1)
		if err != nil {
			placeholderPNG(dc, r)
			return nil
		}
		dc.DrawImage(f.img, int(math.Round(f.x)), int(math.Round(f.y)))
	}
	return nil
}

// placeholderPNG draws the crossed frame shown for images that cannot be loaded.
func placeholderPNG(dc *gg.Context, r vector.Rect) {
	dc.SetLineWidth(2)
	dc.DrawRectangle(r.X+1, r.Y+1, r.W-2, r.H-2)
	dc.DrawLine(r.X, r.Y, r.X+r.W, r.Y+r.H)
	dc.DrawLine(r.X+r.W, r.Y, r.X, r.Y+r.H)
	dc.Stroke()
}
