/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "designcanvas/internal/vector"

// ID identifies an element. It is assigned once and never reused by a model.
type ID string

// None is the empty selection.
const None ID = ""

// Point is a position in canvas pixel space.
type Point struct{ X, Y float64 }

func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Size is a width/height pair in pixels.
type Size struct{ W, H float64 }

const (
	DefaultFill     = "#3B82F6"
	DefaultText     = "Sample Text"
	DefaultFontSize = 24.0
)

var (
	defaultShapeSize = Size{W: 100, H: 100}
	defaultTextSize  = Size{W: 200, H: 50}
)

// DefaultSize returns the size a new element of kind k is created with.
func DefaultSize(k Kind) Size {
	if k == Text {
		return defaultTextSize
	}
	return defaultShapeSize
}

// TextProps is the payload carried only by Text elements.
type TextProps struct {
	Content  string
	FontSize float64
}

// ImageProps is the payload carried only by Image elements.
// Src is a local file path; an empty Src renders as a placeholder frame.
type ImageProps struct {
	Src string
}

// Element is a placed object. Values handed out by the Model are copies;
// changes go through Model.Update.
type Element struct {
	id   ID
	kind Kind

	Position Point
	Size     Size
	// Rotation in degrees, stored as given.
	Rotation float64
	Fill     string
	Locked   bool
	Visible  bool

	text  *TextProps
	image *ImageProps
}

func (e Element) ID() ID     { return e.id }
func (e Element) Kind() Kind { return e.kind }

// Text returns the text payload; ok is false for every kind but Text.
func (e Element) Text() (TextProps, bool) {
	if e.text == nil {
		return TextProps{}, false
	}
	return *e.text, true
}

// Image returns the image payload; ok is false for every kind but Image.
func (e Element) Image() (ImageProps, bool) {
	if e.image == nil {
		return ImageProps{}, false
	}
	return *e.image, true
}

// DisplayRotation is Rotation normalised to [0,360). Display only.
func (e Element) DisplayRotation() float64 { return vector.NormalizeDeg(e.Rotation) }

// Rect is the unrotated box of the element.
func (e Element) Rect() vector.Rect {
	return vector.R(e.Position.X, e.Position.Y, e.Size.W, e.Size.H)
}

// Center of the unrotated box; rotation pivots around it.
func (e Element) Center() Point {
	c := e.Rect().Center()
	return Point{c.X, c.Y}
}

// Node builds the vector node for the element's shape, rotated about its centre.
// Text and Image elements hit-test against their box.
func (e Element) Node() vector.Node {
	r := e.Rect()
	var n vector.Node
	switch e.kind {
	case Circle:
		n = vector.NewEllipse(circleRect(r))
	case Triangle:
		n = vector.NewPolygon(vector.TriangleIn(r)...)
	default:
		n = vector.NewRect(r)
	}
	if e.Rotation != 0 {
		n.SetTransform(vector.RotateAbout(e.Rotation, r.Center()))
	}
	return n
}

// Bounds is the axis-aligned box enclosing the rotated element.
func (e Element) Bounds() vector.Rect { return e.Node().Bounds() }

// Hit reports whether p lies on the element's painted shape.
func (e Element) Hit(p Point) bool { return e.Node().Hit(vector.Pt{X: p.X, Y: p.Y}) }

// Paintable is false for degenerate sizes; renderers skip such elements.
func (e Element) Paintable() bool { return !e.Rect().Empty() }

// circleRect is the square centred in r with side min(w,h); circles are painted
// with radius min(w,h)/2.
func circleRect(r vector.Rect) vector.Rect {
	d := r.W
	if r.H < d {
		d = r.H
	}
	c := r.Center()
	return vector.R(c.X-d/2, c.Y-d/2, d, d)
}

// CircleRect exposes the painted circle's square for renderers.
func (e Element) CircleRect() vector.Rect { return circleRect(e.Rect()) }

// clone deep-copies the kind payloads.
func (e Element) clone() Element {
	c := e
	if e.text != nil {
		t := *e.text
		c.text = &t
	}
	if e.image != nil {
		im := *e.image
		c.image = &im
	}
	return c
}

// Style is the toolbar state used when creating an element.
type Style struct {
	Fill     string
	Text     string
	FontSize float64
	Src      string
}

// Patch is a partial update. Nil fields are left untouched; Text, FontSize and
// Src only apply to the kinds that carry them.
type Patch struct {
	Position *Point
	Size     *Size
	Rotation *float64
	Fill     *string
	Text     *string
	FontSize *float64
	Src      *string
	Locked   *bool
	Visible  *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Position == nil && p.Size == nil && p.Rotation == nil && p.Fill == nil &&
		p.Text == nil && p.FontSize == nil && p.Src == nil && p.Locked == nil && p.Visible == nil
}

func (p Patch) apply(e *Element) {
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.Size != nil {
		e.Size = *p.Size
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.Fill != nil {
		e.Fill = *p.Fill
	}
	if p.Locked != nil {
		e.Locked = *p.Locked
	}
	if p.Visible != nil {
		e.Visible = *p.Visible
	}
	if e.text != nil {
		if p.Text != nil {
			e.text.Content = *p.Text
		}
		if p.FontSize != nil {
			e.text.FontSize = *p.FontSize
		}
	}
	if e.image != nil && p.Src != nil {
		e.image.Src = *p.Src
	}
}

// Ptr is a small helper for building patches: canvas.Patch{Rotation: canvas.Ptr(45.0)}.
func Ptr[T any](v T) *T { return &v }
