/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"testing"
)

func newTestModel(opts ...Option) *Model {
	opts = append([]Option{WithIDGenerator(&CounterGenerator{})}, opts...)
	return New(Size{W: 800, H: 600}, opts...)
}

func ids(els []Element) []ID {
	out := make([]ID, len(els))
	for i, e := range els {
		out[i] = e.ID()
	}
	return out
}

func sameIDs(a, b []ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddDefaults(t *testing.T) {
	m := newTestModel()
	id := m.Add(Rectangle, Point{10, 20}, Style{Fill: "#7c3aed"})
	e, ok := m.Element(id)
	if !ok {
		t.Fatalf("added element not found")
	}
	if e.Kind() != Rectangle || e.Position != (Point{10, 20}) || e.Size != (Size{100, 100}) {
		t.Fatalf("unexpected element: %+v", e)
	}
	if e.Rotation != 0 || e.Fill != "#7c3aed" || e.Locked || !e.Visible {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if _, ok := e.Text(); ok {
		t.Fatalf("rectangle must not carry a text payload")
	}
	if m.SelectedID() != id {
		t.Fatalf("new element should be selected, got %q", m.SelectedID())
	}
}

func TestAddTextDefaults(t *testing.T) {
	m := newTestModel()
	id := m.Add(Text, Point{}, Style{})
	e, _ := m.Element(id)
	if e.Size != (Size{200, 50}) {
		t.Fatalf("text size = %+v, want 200x50", e.Size)
	}
	tp, ok := e.Text()
	if !ok || tp.Content != DefaultText || tp.FontSize != DefaultFontSize {
		t.Fatalf("unexpected text payload: %+v ok=%v", tp, ok)
	}
	if e.Fill != DefaultFill {
		t.Fatalf("empty style fill should fall back to default, got %q", e.Fill)
	}
}

func TestAddInvalidKindPanics(t *testing.T) {
	m := newTestModel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid kind")
		}
		if m.Len() != 0 {
			t.Fatalf("model must be unchanged after rejected add")
		}
	}()
	m.Add(Kind(42), Point{}, Style{})
}

func TestAddEmitsEvents(t *testing.T) {
	var got []Event
	m := newTestModel(WithListener(func(e Event) { got = append(got, e) }))
	id := m.Add(Circle, Point{}, Style{})
	if len(got) != 2 || got[0] != (Event{ElementAdded, id}) || got[1] != (Event{SelectionChanged, id}) {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestUniqueIDsOnRapidAdds(t *testing.T) {
	m := New(Size{800, 600})
	seen := map[ID]bool{}
	for i := 0; i < 500; i++ {
		id := m.Add(Rectangle, Point{}, Style{})
		if seen[id] {
			t.Fatalf("duplicate id %q after %d adds", id, i)
		}
		seen[id] = true
	}
}

type constGen struct{}

func (constGen) NewID() ID { return "same" }

func TestMisbehavingGeneratorStillUnique(t *testing.T) {
	m := New(Size{800, 600}, WithIDGenerator(constGen{}))
	a := m.Add(Rectangle, Point{}, Style{})
	b := m.Add(Rectangle, Point{}, Style{})
	if a == b {
		t.Fatalf("ids must be unique even with a constant generator")
	}
}

func TestPaintOrderFollowsAddAndDuplicate(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	b := m.Add(Circle, Point{}, Style{})
	c, ok := m.Duplicate(a)
	if !ok {
		t.Fatalf("duplicate failed")
	}
	d := m.Add(Text, Point{}, Style{})
	e, _ := m.Duplicate(b)
	want := []ID{a, b, c, d, e}
	if got := ids(m.VisibleInPaintOrder()); !sameIDs(got, want) {
		t.Fatalf("paint order = %v, want %v", got, want)
	}
}

func TestVisibleInPaintOrderSkipsHiddenKeepsLocked(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	b := m.Add(Circle, Point{}, Style{})
	c := m.Add(Triangle, Point{}, Style{})
	m.Update(b, Patch{Visible: Ptr(false)})
	m.Update(c, Patch{Locked: Ptr(true)})
	if got := ids(m.VisibleInPaintOrder()); !sameIDs(got, []ID{a, c}) {
		t.Fatalf("visible = %v", got)
	}
	// hidden elements stay in the model and the layer list
	if m.Len() != 3 || len(m.Elements()) != 3 {
		t.Fatalf("hidden element must remain in the model")
	}
	if !m.Select(b) {
		t.Fatalf("hidden element must stay selectable")
	}
	// restartable: a second call yields the same sequence
	if got := ids(m.VisibleInPaintOrder()); !sameIDs(got, []ID{a, c}) {
		t.Fatalf("second call = %v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	b := m.Add(Circle, Point{}, Style{})
	if !m.Delete(a) {
		t.Fatalf("first delete should report removal")
	}
	before := ids(m.Elements())
	if m.Delete(a) {
		t.Fatalf("second delete should be a no-op")
	}
	if after := ids(m.Elements()); !sameIDs(before, after) || !sameIDs(after, []ID{b}) {
		t.Fatalf("second delete changed the model: %v", after)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	if m.SelectedID() != a {
		t.Fatalf("precondition: a selected")
	}
	m.Delete(a)
	if m.SelectedID() != None {
		t.Fatalf("selection should be cleared, got %q", m.SelectedID())
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("Selected() should report nothing")
	}
}

func TestDeleteOtherKeepsSelection(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	b := m.Add(Rectangle, Point{}, Style{})
	m.Delete(a)
	if m.SelectedID() != b {
		t.Fatalf("deleting another element must not touch selection")
	}
}

func TestDuplicateOffset(t *testing.T) {
	m := newTestModel()
	src := m.Add(Rectangle, Point{100, 100}, Style{Fill: "#F97316"})
	m.Update(src, Patch{Rotation: Ptr(30.0)})
	dup, ok := m.Duplicate(src)
	if !ok || dup == src {
		t.Fatalf("duplicate returned %q ok=%v", dup, ok)
	}
	o, _ := m.Element(src)
	d, _ := m.Element(dup)
	if d.Position != (Point{120, 120}) {
		t.Fatalf("duplicate position = %+v, want (120,120)", d.Position)
	}
	if d.Kind() != o.Kind() || d.Fill != o.Fill || d.Size != o.Size || d.Rotation != o.Rotation {
		t.Fatalf("duplicate fields differ: %+v vs %+v", d, o)
	}
	if m.SelectedID() != dup {
		t.Fatalf("duplicate should be selected")
	}
}

func TestDuplicateClampsToCanvas(t *testing.T) {
	m := newTestModel()
	src := m.Add(Rectangle, Point{690, 495}, Style{})
	dup, _ := m.Duplicate(src)
	d, _ := m.Element(dup)
	if d.Position != (Point{700, 500}) {
		t.Fatalf("duplicate should clamp to (700,500), got %+v", d.Position)
	}
}

func TestDuplicateTextCopiesPayloadIndependently(t *testing.T) {
	m := newTestModel()
	src := m.Add(Text, Point{}, Style{Text: "Hello"})
	dup, _ := m.Duplicate(src)
	m.Update(dup, Patch{Text: Ptr("Changed")})
	o, _ := m.Element(src)
	if tp, _ := o.Text(); tp.Content != "Hello" {
		t.Fatalf("editing the copy changed the source: %q", tp.Content)
	}
}

func TestDuplicateAbsent(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	if id, ok := m.Duplicate("missing"); ok || id != None {
		t.Fatalf("duplicate of missing id should return none")
	}
	if m.Len() != 1 || m.SelectedID() != a {
		t.Fatalf("model changed on missing duplicate")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	m := newTestModel()
	id := m.Add(Triangle, Point{5, 6}, Style{Fill: "#10B981"})
	before, _ := m.Element(id)
	if !m.Update(id, Patch{Rotation: Ptr(45.0)}) {
		t.Fatalf("update failed")
	}
	after, _ := m.Element(id)
	if after.Rotation != 45 {
		t.Fatalf("rotation = %v, want 45", after.Rotation)
	}
	after.Rotation = before.Rotation
	if after.Position != before.Position || after.Size != before.Size || after.Fill != before.Fill ||
		after.Locked != before.Locked || after.Visible != before.Visible || after.Kind() != before.Kind() {
		t.Fatalf("other fields changed: %+v vs %+v", after, before)
	}
}

func TestUpdateKindGatedFields(t *testing.T) {
	m := newTestModel()
	r := m.Add(Rectangle, Point{}, Style{})
	m.Update(r, Patch{Text: Ptr("ignored"), FontSize: Ptr(40.0), Src: Ptr("x.png")})
	e, _ := m.Element(r)
	if _, ok := e.Text(); ok {
		t.Fatalf("rectangle gained a text payload")
	}
	if _, ok := e.Image(); ok {
		t.Fatalf("rectangle gained an image payload")
	}
	img := m.Add(Image, Point{}, Style{})
	m.Update(img, Patch{Src: Ptr("logo.png")})
	ie, _ := m.Element(img)
	if p, ok := ie.Image(); !ok || p.Src != "logo.png" {
		t.Fatalf("image src = %+v ok=%v", p, ok)
	}
}

func TestUpdateAcceptsNegativeSize(t *testing.T) {
	m := newTestModel()
	id := m.Add(Rectangle, Point{}, Style{})
	m.Update(id, Patch{Size: &Size{-10, 20}})
	e, _ := m.Element(id)
	if e.Size.W != -10 {
		t.Fatalf("negative width should be stored as given")
	}
	if e.Paintable() {
		t.Fatalf("negative width must not be paintable")
	}
}

func TestUpdateAbsentIsNoop(t *testing.T) {
	m := newTestModel()
	if m.Update("nope", Patch{Rotation: Ptr(1.0)}) {
		t.Fatalf("update of missing id should report false")
	}
}

func TestRotationStoredAsGiven(t *testing.T) {
	m := newTestModel()
	id := m.Add(Rectangle, Point{}, Style{})
	m.Update(id, Patch{Rotation: Ptr(-450.0)})
	e, _ := m.Element(id)
	if e.Rotation != -450 {
		t.Fatalf("rotation must be stored unnormalised, got %v", e.Rotation)
	}
	if e.DisplayRotation() != 270 {
		t.Fatalf("display rotation = %v, want 270", e.DisplayRotation())
	}
}

func TestSelectRejectsUnknown(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	if m.Select("ghost") {
		t.Fatalf("selecting an unknown id should be rejected")
	}
	if m.SelectedID() != a {
		t.Fatalf("prior selection should be kept")
	}
	if !m.Select(None) || m.SelectedID() != None {
		t.Fatalf("None should clear the selection")
	}
}

func TestReturnedElementsAreCopies(t *testing.T) {
	m := newTestModel()
	id := m.Add(Rectangle, Point{1, 1}, Style{})
	e, _ := m.Element(id)
	e.Position = Point{500, 500}
	again, _ := m.Element(id)
	if again.Position != (Point{1, 1}) {
		t.Fatalf("mutating a returned element leaked into the model")
	}
}

func TestClear(t *testing.T) {
	m := newTestModel()
	m.Add(Rectangle, Point{}, Style{})
	m.Add(Circle, Point{}, Style{})
	m.Clear()
	if m.Len() != 0 || m.SelectedID() != None {
		t.Fatalf("clear left state behind")
	}
}

func TestHitTestTopMostSkipsLockedAndHidden(t *testing.T) {
	m := newTestModel()
	bottom := m.Add(Rectangle, Point{0, 0}, Style{})
	top := m.Add(Rectangle, Point{50, 50}, Style{})
	if id, ok := m.HitTest(Point{60, 60}); !ok || id != top {
		t.Fatalf("expected top element, got %q", id)
	}
	m.Update(top, Patch{Locked: Ptr(true)})
	if id, _ := m.HitTest(Point{60, 60}); id != bottom {
		t.Fatalf("locked element should be skipped, got %q", id)
	}
	m.Update(bottom, Patch{Visible: Ptr(false)})
	if _, ok := m.HitTest(Point{60, 60}); ok {
		t.Fatalf("hidden element should be skipped")
	}
}

func TestHitTestCircleCorner(t *testing.T) {
	m := newTestModel()
	m.Add(Circle, Point{0, 0}, Style{})
	if _, ok := m.HitTest(Point{3, 3}); ok {
		t.Fatalf("circle bounding-box corner should miss")
	}
	if _, ok := m.HitTest(Point{50, 50}); !ok {
		t.Fatalf("circle centre should hit")
	}
}

func TestResizeDoesNotMoveElements(t *testing.T) {
	m := newTestModel()
	id := m.Add(Rectangle, Point{650, 450}, Style{})
	m.Resize(Size{400, 300})
	e, _ := m.Element(id)
	if e.Position != (Point{650, 450}) {
		t.Fatalf("resize must not re-clamp existing elements")
	}
	if m.CanvasSize() != (Size{400, 300}) {
		t.Fatalf("canvas size not updated")
	}
}
