/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if !R(0, 0, -5, 10).Empty() || R(0, 0, 1, 1).Empty() {
		t.Fatalf("Empty() mismatch")
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
	back := m.Invert().Apply(p)
	if Round(back.X, 6) != 1 || Round(back.Y, 6) != 1 {
		t.Fatalf("inverse did not round-trip: %+v", back)
	}
}

func TestRotateAboutCenter(t *testing.T) {
	// 90° clockwise about (50,50) maps the top-left corner to the top-right corner.
	m := RotateAbout(90, Pt{50, 50})
	p := m.Apply(Pt{0, 0})
	if Round(p.X, 6) != 100 || Round(p.Y, 6) != 0 {
		t.Fatalf("unexpected rotation: %+v", p)
	}
}

func TestNormalizeDeg(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0}, {45, 45}, {360, 0}, {370, 10}, {-90, 270}, {-720, 0},
	}
	for _, c := range cases {
		if got := NormalizeDeg(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("NormalizeDeg(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRectNode_HitAndBounds(t *testing.T) {
	n := NewRect(R(0, 0, 100, 50))
	n.SetTransform(Translate(10, 20))
	if !n.Hit(Pt{50 + 10, 25 + 20}) {
		t.Fatalf("expected hit after translation")
	}
	b := n.Bounds()
	if b.X != 10 || b.Y != 20 || b.W != 100 || b.H != 50 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestRectNode_RotatedBounds(t *testing.T) {
	n := NewRect(R(0, 0, 100, 100))
	n.SetTransform(RotateAbout(45, Pt{50, 50}))
	b := n.Bounds()
	diag := 100 * math.Sqrt2
	if math.Abs(b.W-diag) > 1e-6 || math.Abs(b.H-diag) > 1e-6 {
		t.Fatalf("rotated bounds should be the square's diagonal, got %+v", b)
	}
	// the original corner is outside the rotated square
	if n.Hit(Pt{2, 2}) {
		t.Fatalf("corner should miss after 45° rotation")
	}
}

func TestEllipseNode_Hit(t *testing.T) {
	n := NewEllipse(R(0, 0, 100, 100))
	if !n.Hit(Pt{50, 50}) {
		t.Fatalf("center should hit")
	}
	if n.Hit(Pt{5, 5}) {
		t.Fatalf("bounding-box corner should not hit")
	}
	if NewEllipse(R(0, 0, 0, 10)).Hit(Pt{0, 5}) {
		t.Fatalf("degenerate ellipse should never hit")
	}
}

func TestPolygonNode_Triangle(t *testing.T) {
	n := NewPolygon(TriangleIn(R(0, 0, 100, 100))...)
	if !n.Hit(Pt{50, 90}) {
		t.Fatalf("point near base should hit")
	}
	if n.Hit(Pt{5, 5}) {
		t.Fatalf("top-left corner is outside the triangle")
	}
	b := n.Bounds()
	if b.W != 100 || b.H != 100 {
		t.Fatalf("unexpected triangle bounds: %+v", b)
	}
}
