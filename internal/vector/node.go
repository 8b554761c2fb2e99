/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a shape that can report its transformed bounds and answer hit tests.
// Canvas elements build one on demand; exporters use the same geometry.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Hit(p Pt) bool
}

type baseNode struct {
	xf Affine2D
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }

// local maps p into the node's untransformed space.
func (b *baseNode) local(p Pt) Pt { return b.xf.Invert().Apply(p) }

// boundsOf transforms the given points and returns their bounding box.
func boundsOf(xf Affine2D, pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	first := xf.Apply(pts[0])
	minX, minY, maxX, maxY := first.X, first.Y, first.X, first.Y
	for _, c := range pts[1:] {
		p := xf.Apply(c)
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RectNode is an axis-aligned rectangle before transform.
type RectNode struct {
	baseNode
	rect Rect
}

func NewRect(r Rect) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity}, rect: r}
}

func (n *RectNode) Bounds() Rect {
	c := n.rect.Corners()
	return boundsOf(n.xf, c[:])
}

func (n *RectNode) Hit(p Pt) bool {
	if n.rect.Empty() {
		return false
	}
	return n.rect.Contains(n.local(p))
}

// EllipseNode is an ellipse inscribed in rect.
type EllipseNode struct {
	baseNode
	rect Rect
}

func NewEllipse(r Rect) *EllipseNode {
	return &EllipseNode{baseNode: baseNode{xf: Identity}, rect: r}
}

func (n *EllipseNode) Bounds() Rect {
	c := n.rect.Corners()
	return boundsOf(n.xf, c[:])
}

func (n *EllipseNode) Hit(p Pt) bool {
	q := n.local(p)
	rx, ry := n.rect.W/2, n.rect.H/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := n.rect.Center()
	dx := (q.X - c.X) / rx
	dy := (q.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// PolygonNode is a closed polygon given by its vertices.
type PolygonNode struct {
	baseNode
	pts []Pt
}

func NewPolygon(pts ...Pt) *PolygonNode {
	return &PolygonNode{baseNode: baseNode{xf: Identity}, pts: append([]Pt(nil), pts...)}
}

// Points returns the untransformed vertices.
func (n *PolygonNode) Points() []Pt { return append([]Pt(nil), n.pts...) }

func (n *PolygonNode) Bounds() Rect { return boundsOf(n.xf, n.pts) }

// Hit uses the even-odd ray casting rule.
func (n *PolygonNode) Hit(p Pt) bool {
	if len(n.pts) < 3 {
		return false
	}
	q := n.local(p)
	in := false
	for i, j := 0, len(n.pts)-1; i < len(n.pts); j, i = i, i+1 {
		a, b := n.pts[i], n.pts[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) + a.X
			if q.X < x {
				in = !in
			}
		}
	}
	return in
}

// TriangleIn returns the isosceles triangle used for triangle elements:
// apex at the top centre, base along the bottom edge of r.
func TriangleIn(r Rect) []Pt {
	return []Pt{{r.X + r.W/2, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
}
