/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"designcanvas/internal/canvas"
	"designcanvas/internal/history"
)

type recorder struct{ notes []Notice }

func (r *recorder) Notify(n Notice) { r.notes = append(r.notes, n) }

func (r *recorder) last() string {
	if len(r.notes) == 0 {
		return ""
	}
	return r.notes[len(r.notes)-1].Message
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEditor(t *testing.T, mutate ...func(*Options)) (*Editor, *recorder, *fakeClock) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	opt := Options{
		Size:      canvas.Size{W: 800, H: 600},
		IDs:       &canvas.CounterGenerator{},
		Notifier:  rec,
		Clipboard: &MemoryClipboard{},
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Now:       clock.now,
		Grid:      true,
	}
	for _, m := range mutate {
		m(&opt)
	}
	return New(opt), rec, clock
}

func pos(t *testing.T, e *Editor, id canvas.ID) canvas.Point {
	t.Helper()
	el, ok := e.Model().Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	return el.Position
}

func TestNewDefaults(t *testing.T) {
	e := New(Options{Color: "not-a-colour"})
	if e.Model().CanvasSize() != (canvas.Size{W: 800, H: 600}) {
		t.Fatalf("default canvas size = %+v", e.Model().CanvasSize())
	}
	if e.Color() != canvas.DefaultFill || e.Tool() != ToolSelect || e.Zoom() != DefaultZoom {
		t.Fatalf("unexpected defaults: %s %s %d", e.Color(), e.Tool(), e.Zoom())
	}
	if e.Dirty() {
		t.Fatalf("a new editor has no changes")
	}
}

func TestQuickAddStaysOnCanvas(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	for _, k := range canvas.Kinds() {
		id := e.QuickAdd(k)
		el, _ := e.Model().Element(id)
		cs := e.Model().CanvasSize()
		if el.Position.X < 0 || el.Position.Y < 0 || el.Position.X+el.Size.W > cs.W || el.Position.Y+el.Size.H > cs.H {
			t.Fatalf("%s placed off canvas at %+v", k, el.Position)
		}
		if e.Model().SelectedID() != id {
			t.Fatalf("new element should be selected")
		}
	}
	if rec.last() != "Image added to canvas" {
		t.Fatalf("toast = %q", rec.last())
	}
	if !e.Dirty() {
		t.Fatalf("adding should mark the design dirty")
	}
}

func TestQuickAddUsesToolbarColour(t *testing.T) {
	e, _, _ := newTestEditor(t)
	if err := e.SetColor("#zzz"); err == nil {
		t.Fatalf("invalid colour should be rejected")
	}
	if err := e.SetColor(Palette[0]); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	id := e.QuickAdd(canvas.Circle)
	el, _ := e.Model().Element(id)
	if el.Fill != Palette[0] {
		t.Fatalf("fill = %s, want %s", el.Fill, Palette[0])
	}
}

func TestPointerPlacesElementWithShapeTool(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	if err := e.SetTool("Rectangle"); err != nil {
		t.Fatalf("SetTool: %v", err)
	}
	id := e.PointerDown(canvas.MousePointer, canvas.Point{X: 200, Y: 200})
	if id == canvas.None || pos(t, e, id) != (canvas.Point{X: 150, Y: 150}) {
		t.Fatalf("element should be centred on the click")
	}
	if rec.last() != "Rectangle added to canvas" {
		t.Fatalf("toast = %q", rec.last())
	}
	// near the corner the element is clamped inside
	e.Model().Select(canvas.None)
	id = e.PointerDown(canvas.MousePointer, canvas.Point{X: 795, Y: 5})
	if id == canvas.None {
		t.Fatalf("expected a new element")
	}
	if p := pos(t, e, id); p != (canvas.Point{X: 700, Y: 0}) {
		t.Fatalf("clamped placement = %+v", p)
	}
	if err := e.SetTool("lasso"); err == nil {
		t.Fatalf("unknown tool should fail")
	}
}

func TestPointerOnEmptyCanvasClearsSelection(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.QuickAdd(canvas.Rectangle)
	e.Model().Update(e.Model().SelectedID(), canvas.Patch{Position: &canvas.Point{X: 0, Y: 0}})
	if got := e.PointerDown(canvas.MousePointer, canvas.Point{X: 500, Y: 500}); got != canvas.None {
		t.Fatalf("click on empty canvas returned %s", got)
	}
	if e.Model().SelectedID() != canvas.None {
		t.Fatalf("selection should be cleared")
	}
}

func TestDragIsOneUndoStep(t *testing.T) {
	e, _, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Rectangle)
	e.Model().Update(id, canvas.Patch{Position: &canvas.Point{X: 100, Y: 100}})

	if got := e.PointerDown(canvas.MousePointer, canvas.Point{X: 110, Y: 110}); got != id {
		t.Fatalf("pointer down should hit the element, got %s", got)
	}
	for _, p := range []canvas.Point{{X: 150, Y: 120}, {X: 210, Y: 160}, {X: 310, Y: 210}} {
		e.PointerMove(canvas.MousePointer, p)
	}
	e.PointerUp(canvas.MousePointer)
	if p := pos(t, e, id); p != (canvas.Point{X: 300, Y: 200}) {
		t.Fatalf("dragged to %+v", p)
	}
	if !e.Undo() {
		t.Fatalf("undo should succeed")
	}
	if p := pos(t, e, id); p != (canvas.Point{X: 100, Y: 100}) {
		t.Fatalf("undo should restore the pre-drag position, got %+v", p)
	}
	if !e.Redo() {
		t.Fatalf("redo should succeed")
	}
	if p := pos(t, e, id); p != (canvas.Point{X: 300, Y: 200}) {
		t.Fatalf("redo should restore the drag, got %+v", p)
	}
}

func TestClickWithoutMoveAddsNoHistory(t *testing.T) {
	e, _, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Rectangle)
	e.Undo() // back to empty
	e.Redo()
	if e.CanRedo() {
		t.Fatalf("redo stack should be empty")
	}
	p := pos(t, e, id)
	e.PointerDown(canvas.MousePointer, canvas.Point{X: p.X + 1, Y: p.Y + 1})
	e.PointerUp(canvas.MousePointer)
	if !e.Undo() || e.Model().Len() != 0 {
		t.Fatalf("a click should not create an undo step of its own")
	}
}

func TestLockedElementIsNotDragged(t *testing.T) {
	e, _, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Rectangle)
	e.Model().Update(id, canvas.Patch{Position: &canvas.Point{X: 0, Y: 0}})
	if !e.ToggleLocked(id) {
		t.Fatalf("toggle locked failed")
	}
	e.PointerDown(canvas.MousePointer, canvas.Point{X: 10, Y: 10})
	e.PointerMove(canvas.MousePointer, canvas.Point{X: 300, Y: 300})
	e.PointerUp(canvas.MousePointer)
	if p := pos(t, e, id); p != (canvas.Point{}) {
		t.Fatalf("locked element moved to %+v", p)
	}
}

func TestMultiTouchDrags(t *testing.T) {
	e, _, _ := newTestEditor(t)
	a := e.QuickAdd(canvas.Rectangle)
	b := e.QuickAdd(canvas.Rectangle)
	e.Model().Update(a, canvas.Patch{Position: &canvas.Point{X: 0, Y: 0}})
	e.Model().Update(b, canvas.Patch{Position: &canvas.Point{X: 400, Y: 400}})

	e.PointerDown(1, canvas.Point{X: 10, Y: 10})
	e.PointerDown(2, canvas.Point{X: 410, Y: 410})
	e.PointerMove(1, canvas.Point{X: 60, Y: 10})
	e.PointerMove(2, canvas.Point{X: 410, Y: 460})
	e.PointerUp(2)
	e.PointerUp(1)
	if pos(t, e, a) != (canvas.Point{X: 50, Y: 0}) || pos(t, e, b) != (canvas.Point{X: 400, Y: 450}) {
		t.Fatalf("unexpected positions %+v %+v", pos(t, e, a), pos(t, e, b))
	}
}

func TestDuplicateDeleteClear(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	if _, ok := e.DuplicateSelected(); ok {
		t.Fatalf("duplicate without selection should fail")
	}
	id := e.QuickAdd(canvas.Triangle)
	dup, ok := e.DuplicateSelected()
	if !ok || dup == id || rec.last() != "Element duplicated" {
		t.Fatalf("duplicate failed: %v %q", ok, rec.last())
	}
	if !e.DeleteSelected() || rec.last() != "Element deleted" {
		t.Fatalf("delete failed")
	}
	if e.DeleteSelected() {
		t.Fatalf("nothing is selected after delete")
	}
	e.Clear()
	if e.Model().Len() != 0 || rec.last() != "Canvas cleared" {
		t.Fatalf("clear failed")
	}
	if !e.Undo() || e.Model().Len() != 1 {
		t.Fatalf("undo of clear should bring the element back")
	}
}

func TestUpdateAndToggles(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Text)
	if !e.Update(id, canvas.Patch{Text: canvas.Ptr("Hello"), Rotation: canvas.Ptr(30.0)}) {
		t.Fatalf("update failed")
	}
	el, _ := e.Model().Element(id)
	if tp, _ := el.Text(); tp.Content != "Hello" || el.Rotation != 30 {
		t.Fatalf("update not applied: %+v", el)
	}
	if e.Update(id, canvas.Patch{Fill: canvas.Ptr("purple")}) {
		t.Fatalf("invalid fill should be rejected")
	}
	if rec.notes[len(rec.notes)-1].Level != LevelError {
		t.Fatalf("invalid fill should raise an error notice")
	}
	if e.Update("missing", canvas.Patch{Rotation: canvas.Ptr(1.0)}) {
		t.Fatalf("update of missing element should fail")
	}
	e.ToggleVisible(id)
	el, _ = e.Model().Element(id)
	if el.Visible || len(e.Model().VisibleInPaintOrder()) != 0 {
		t.Fatalf("element should be hidden")
	}
	if !e.SelectLayer(id) {
		t.Fatalf("hidden element should stay selectable from the layers panel")
	}
	e.Undo()
	el, _ = e.Model().Element(id)
	if !el.Visible {
		t.Fatalf("undo should show the element again")
	}
}

func TestLayersTopMostFirst(t *testing.T) {
	e, _, _ := newTestEditor(t)
	a := e.QuickAdd(canvas.Rectangle)
	b := e.QuickAdd(canvas.Circle)
	l := e.Layers()
	if len(l) != 2 || l[0].ID() != b || l[1].ID() != a {
		t.Fatalf("layers order wrong")
	}
}

func TestTemplatesAndView(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	if err := e.ApplyTemplate("business card"); err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	if e.Model().CanvasSize() != (canvas.Size{W: 525, H: 300}) {
		t.Fatalf("canvas size = %+v", e.Model().CanvasSize())
	}
	if rec.last() != `Template "Business Card" loaded` {
		t.Fatalf("toast = %q", rec.last())
	}
	if err := e.ApplyTemplate("poster"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if len(Templates()) != 6 {
		t.Fatalf("expected 6 templates")
	}
	e.Undo()
	if e.Model().CanvasSize() != (canvas.Size{W: 800, H: 600}) {
		t.Fatalf("undo should restore the canvas size")
	}

	for range 10 {
		e.ZoomIn()
	}
	if e.Zoom() != MaxZoom {
		t.Fatalf("zoom should cap at %d, got %d", MaxZoom, e.Zoom())
	}
	if got := e.ScreenToCanvas(canvas.Point{X: 200, Y: 100}); got != (canvas.Point{X: 100, Y: 50}) {
		t.Fatalf("ScreenToCanvas = %+v", got)
	}
	for range 10 {
		e.ZoomOut()
	}
	if e.Zoom() != MinZoom {
		t.Fatalf("zoom should floor at %d, got %d", MinZoom, e.Zoom())
	}
	if e.ToggleGrid() || e.Grid() {
		t.Fatalf("grid should toggle off")
	}
}

func TestCopyPaste(t *testing.T) {
	e, _, _ := newTestEditor(t)
	if err := e.Copy(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("copy without selection: %v", err)
	}
	if _, err := e.Paste(); !errors.Is(err, ErrEmptyClipboard) {
		t.Fatalf("paste from empty clipboard: %v", err)
	}
	id := e.QuickAdd(canvas.Text)
	e.Update(id, canvas.Patch{Text: canvas.Ptr("copy me"), Position: &canvas.Point{X: 10, Y: 10}})
	if err := e.Copy(); err != nil {
		t.Fatalf("copy: %v", err)
	}
	pid, err := e.Paste()
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	if pid == id {
		t.Fatalf("paste must use a fresh id")
	}
	pe, _ := e.Model().Element(pid)
	if tp, _ := pe.Text(); tp.Content != "copy me" || pe.Position != (canvas.Point{X: 30, Y: 30}) {
		t.Fatalf("pasted element wrong: %+v %+v", tp, pe.Position)
	}
	if e.Model().SelectedID() != pid {
		t.Fatalf("pasted element should be selected")
	}
}

func TestPasteForeignText(t *testing.T) {
	clip := &MemoryClipboard{}
	_ = clip.WriteAll("just some text")
	e, _, _ := newTestEditor(t, func(o *Options) { o.Clipboard = clip })
	if _, err := e.Paste(); !errors.Is(err, ErrEmptyClipboard) {
		t.Fatalf("foreign clipboard text should not paste: %v", err)
	}
}

type failingClipboard struct{}

func (failingClipboard) ReadAll() (string, error) { return "", errors.New("no display") }
func (failingClipboard) WriteAll(string) error    { return errors.New("no display") }

func TestClipboardErrorsPropagate(t *testing.T) {
	e, _, _ := newTestEditor(t, func(o *Options) { o.Clipboard = failingClipboard{} })
	e.QuickAdd(canvas.Rectangle)
	if err := e.Copy(); err == nil {
		t.Fatalf("copy should report the clipboard error")
	}
	if _, err := e.Paste(); err == nil || errors.Is(err, ErrEmptyClipboard) {
		t.Fatalf("paste should report the read error, got %v", err)
	}
}

func TestHistoryCoalescesRapidEdits(t *testing.T) {
	e, _, clock := newTestEditor(t, func(o *Options) {
		o.History = history.Config{MinInterval: time.Second}
	})
	id := e.QuickAdd(canvas.Rectangle)
	clock.advance(2 * time.Second)
	for i := 1; i <= 5; i++ {
		clock.advance(100 * time.Millisecond)
		e.Update(id, canvas.Patch{Rotation: canvas.Ptr(float64(i * 10))})
	}
	if !e.Undo() {
		t.Fatalf("undo failed")
	}
	el, _ := e.Model().Element(id)
	if el.Rotation != 0 {
		t.Fatalf("rapid edits should undo together, rotation = %v", el.Rotation)
	}
	if !e.Undo() || e.Model().Len() != 0 {
		t.Fatalf("second undo should remove the element")
	}
	if e.Undo() {
		t.Fatalf("nothing left to undo")
	}
}

func TestUpdateRejectsNonFiniteNumbers(t *testing.T) {
	e, rec, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Text)
	before, _ := e.Model().Element(id)
	nan, inf := math.NaN(), math.Inf(1)
	patches := []canvas.Patch{
		{Rotation: &nan},
		{Position: &canvas.Point{X: inf, Y: 0}},
		{Size: &canvas.Size{W: 10, H: math.Inf(-1)}},
		{FontSize: &nan},
	}
	for _, p := range patches {
		if e.Update(id, p) {
			t.Fatalf("patch %+v should be rejected", p)
		}
		if rec.notes[len(rec.notes)-1].Level != LevelError {
			t.Fatalf("rejection should raise an error notice, got %q", rec.last())
		}
	}
	after, _ := e.Model().Element(id)
	if after.Rotation != before.Rotation || after.Position != before.Position || after.Size != before.Size {
		t.Fatalf("element changed by rejected patches: %+v", after)
	}
	// later edits and history keep working
	e.QuickAdd(canvas.Circle)
	if !e.Undo() || e.Model().Len() != 1 {
		t.Fatalf("undo after rejected patches failed, len=%d", e.Model().Len())
	}
}

func TestNonFiniteModelStateDoesNotPanic(t *testing.T) {
	e, _, _ := newTestEditor(t)
	id := e.QuickAdd(canvas.Rectangle)
	// bypass the panel and write straight into the model
	e.Model().Update(id, canvas.Patch{Rotation: canvas.Ptr(math.NaN())})
	e.QuickAdd(canvas.Circle)
	if e.Model().Len() != 2 {
		t.Fatalf("edit after an unencodable state should still apply")
	}
	if e.Undo() {
		t.Fatalf("undo cannot snapshot an unencodable state")
	}
}

func TestToolKinds(t *testing.T) {
	if _, ok := ToolSelect.Kind(); ok {
		t.Fatalf("select tool places nothing")
	}
	for _, tool := range Tools()[1:] {
		k, ok := tool.Kind()
		if !ok || k.String() != string(tool) {
			t.Fatalf("tool %s maps to %v", tool, k)
		}
	}
	if len(Palette) != 20 {
		t.Fatalf("palette should have 20 swatches")
	}
}
