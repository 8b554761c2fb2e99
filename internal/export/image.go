/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"designcanvas/internal/canvas"
)

var errNoSource = errors.New("image element has no source")

// fitted is an image scaled to fit an element box, keeping its aspect
// ratio, together with the box it occupies in canvas coordinates.
type fitted struct {
	img        image.Image
	x, y, w, h float64
}

// loadFitted decodes the element's source and fits it into the element box
// at the given output scale. EXIF orientation is honoured.
func loadFitted(e canvas.Element, scale float64) (fitted, error) {
	p, ok := e.Image()
	if !ok || p.Src == "" {
		return fitted{}, errNoSource
	}
	src, err := imaging.Open(p.Src, imaging.AutoOrientation(true))
	if err != nil {
		return fitted{}, err
	}
	pw := max(1, int(math.Round(e.Size.W*scale)))
	ph := max(1, int(math.Round(e.Size.H*scale)))
	img := imaging.Fit(src, pw, ph, imaging.Lanczos)
	b := img.Bounds()
	w := float64(b.Dx()) / scale
	h := float64(b.Dy()) / scale
	return fitted{
		img: img,
		x:   e.Position.X + (e.Size.W-w)/2,
		y:   e.Position.Y + (e.Size.H-h)/2,
		w:   w,
		h:   h,
	}, nil
}
