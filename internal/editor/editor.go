/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor drives a canvas.Model the way the design page does: a
// toolbar, pointer input, layer and property panels, templates, undo,
// clipboard, notifications and persistence.
//
// An Editor is not safe for concurrent use; it is meant to be owned by the
// UI goroutine.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"designcanvas/internal/canvas"
	"designcanvas/internal/export"
	"designcanvas/internal/history"
	applog "designcanvas/internal/log"
	"designcanvas/internal/storage"
)

// historyKey identifies the single canvas in the history manager.
const historyKey = "canvas"

// Options configures New. Zero values fall back to sensible defaults.
type Options struct {
	Size      canvas.Size
	Color     string
	IDs       canvas.IDGenerator
	History   history.Config
	Clipboard Clipboard
	Notifier  Notifier
	Index     *storage.Index
	Export    export.Options
	Grid      bool
	Zoom      int
	// KeepBackups limits backups per design on save; 0 keeps all.
	KeepBackups int

	Rand *rand.Rand
	Now  func() time.Time
}

// Editor owns one canvas and the page state around it.
type Editor struct {
	model  *canvas.Model
	tool   Tool
	color  string
	zoom   int
	grid   bool
	dirty  bool
	hist   *history.Manager
	clip   Clipboard
	notify Notifier
	index  *storage.Index
	handle *storage.Handle
	expOpt export.Options
	keep   int
	rnd    *rand.Rand
	now    func() time.Time
	// state captured when a drag began, keyed by pointer
	pending map[canvas.PointerID][]byte
	log     *slog.Logger
}

// New returns an editor with an empty canvas.
func New(opt Options) *Editor {
	size := opt.Size
	if size.W <= 0 || size.H <= 0 {
		size = canvas.Size{W: 800, H: 600}
	}
	e := &Editor{
		tool:    ToolSelect,
		color:   canvas.DefaultFill,
		zoom:    DefaultZoom,
		grid:    opt.Grid,
		hist:    history.NewManager(opt.History),
		clip:    opt.Clipboard,
		notify:  opt.Notifier,
		index:   opt.Index,
		expOpt:  opt.Export,
		keep:    opt.KeepBackups,
		rnd:     opt.Rand,
		now:     opt.Now,
		pending: make(map[canvas.PointerID][]byte),
		log:     applog.WithComponent("editor"),
	}
	if _, err := export.ParseColor(opt.Color); err == nil {
		e.color = strings.TrimSpace(opt.Color)
	}
	if opt.Zoom > 0 {
		e.zoom = clampZoom(opt.Zoom)
	}
	if e.clip == nil {
		e.clip = &MemoryClipboard{}
	}
	if e.notify == nil {
		e.notify = LogNotifier{}
	}
	if e.expOpt == (export.Options{}) {
		e.expOpt = export.DefaultOptions()
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.model = canvas.New(size, canvas.WithIDGenerator(opt.IDs), canvas.WithListener(e.onEvent))
	return e
}

func (e *Editor) onEvent(ev canvas.Event) {
	if ev.Type != canvas.SelectionChanged {
		e.dirty = true
	}
	e.log.Debug("model event", slog.String("type", ev.Type.String()), slog.String("id", string(ev.ID)))
}

// Model exposes the canvas for read-only use such as painting. Mutations
// should go through the editor so that history stays consistent.
func (e *Editor) Model() *canvas.Model { return e.model }

// Document returns the current canvas state.
func (e *Editor) Document() canvas.Document { return e.model.Snapshot() }

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

func (e *Editor) toast(l Level, format string, args ...any) {
	e.notify.Notify(Notice{Level: l, Message: fmt.Sprintf(format, args...)})
}

// ---- toolbar ----

func (e *Editor) Tool() Tool { return e.tool }

func (e *Editor) SetTool(t Tool) error {
	t, err := ParseTool(string(t))
	if err != nil {
		return err
	}
	e.tool = t
	return nil
}

// Color is the fill used for new elements.
func (e *Editor) Color() string { return e.color }

// SetColor validates and sets the fill for new elements.
func (e *Editor) SetColor(hex string) error {
	if _, err := export.ParseColor(hex); err != nil {
		return err
	}
	e.color = strings.TrimSpace(hex)
	return nil
}

func (e *Editor) style() canvas.Style { return canvas.Style{Fill: e.color} }

// QuickAdd adds an element of kind at a random position that keeps it fully
// on the canvas.
func (e *Editor) QuickAdd(kind canvas.Kind) canvas.ID {
	size := canvas.DefaultSize(kind)
	cs := e.model.CanvasSize()
	origin := canvas.Point{
		X: e.randIn(cs.W - size.W),
		Y: e.randIn(cs.H - size.H),
	}
	e.checkpoint()
	id := e.model.Add(kind, origin, e.style())
	e.toast(LevelSuccess, "%s added to canvas", kind.Title())
	return id
}

func (e *Editor) randIn(limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return e.rnd.Float64() * limit
}

// DuplicateSelected copies the selected element.
func (e *Editor) DuplicateSelected() (canvas.ID, bool) {
	sel := e.model.SelectedID()
	if _, ok := e.model.Element(sel); !ok {
		return canvas.None, false
	}
	e.checkpoint()
	id, ok := e.model.Duplicate(sel)
	if ok {
		e.toast(LevelSuccess, "Element duplicated")
	}
	return id, ok
}

// DeleteSelected removes the selected element.
func (e *Editor) DeleteSelected() bool {
	return e.Delete(e.model.SelectedID())
}

// Delete removes an element, for example from the layers panel.
func (e *Editor) Delete(id canvas.ID) bool {
	if _, ok := e.model.Element(id); !ok {
		return false
	}
	e.checkpoint()
	e.model.Delete(id)
	e.toast(LevelSuccess, "Element deleted")
	return true
}

// Clear removes every element.
func (e *Editor) Clear() {
	e.checkpoint()
	e.model.Clear()
	e.pending = make(map[canvas.PointerID][]byte)
	e.toast(LevelSuccess, "Canvas cleared")
}

// ---- pointer input ----

// PointerDown handles a press at p in canvas coordinates. On an element it
// selects it and starts a drag. On empty canvas a placing tool adds an
// element centred on p; the select tool clears the selection. The returned
// id is the element selected afterwards, or None.
func (e *Editor) PointerDown(pointer canvas.PointerID, p canvas.Point) canvas.ID {
	if id, ok := e.model.HitTest(p); ok {
		e.model.Select(id)
		before, err := e.snapshotBytes()
		if s := e.model.BeginDrag(pointer, id, p); s != nil && err == nil {
			e.pending[pointer] = before
		}
		return id
	}
	if kind, ok := e.tool.Kind(); ok {
		size := canvas.DefaultSize(kind)
		origin := e.model.ClampPosition(canvas.Point{X: p.X - size.W/2, Y: p.Y - size.H/2}, size)
		e.checkpoint()
		id := e.model.Add(kind, origin, e.style())
		e.toast(LevelSuccess, "%s added to canvas", kind.Title())
		return id
	}
	e.model.Select(canvas.None)
	return canvas.None
}

// PointerMove forwards a move to the pointer's drag, if any.
func (e *Editor) PointerMove(pointer canvas.PointerID, p canvas.Point) {
	if s, ok := e.model.DragFor(pointer); ok {
		e.model.DragTo(s, p)
	}
}

// PointerUp ends the pointer's drag. A drag that moved its element becomes
// one undo step.
func (e *Editor) PointerUp(pointer canvas.PointerID) {
	before, hadPending := e.pending[pointer]
	delete(e.pending, pointer)
	s, ok := e.model.DragFor(pointer)
	if !ok {
		return
	}
	el, exists := e.model.Element(s.Target())
	e.model.EndDrag(s)
	if hadPending && exists && el.Position != s.Origin() {
		e.pushBlob(before)
	}
}

// ---- layers and properties ----

// Layers lists every element top-most first, as the layers panel shows them.
func (e *Editor) Layers() []canvas.Element {
	els := e.model.Elements()
	for i, j := 0, len(els)-1; i < j; i, j = i+1, j-1 {
		els[i], els[j] = els[j], els[i]
	}
	return els
}

// SelectLayer selects an element regardless of lock or visibility.
func (e *Editor) SelectLayer(id canvas.ID) bool { return e.model.Select(id) }

// Update applies a property change as one undo step.
func (e *Editor) Update(id canvas.ID, p canvas.Patch) bool {
	if _, ok := e.model.Element(id); !ok {
		return false
	}
	if p.Empty() {
		return true
	}
	if p.Fill != nil {
		if _, err := export.ParseColor(*p.Fill); err != nil {
			e.toast(LevelError, "Invalid colour %q", *p.Fill)
			return false
		}
	}
	if field, ok := nonFinite(p); ok {
		e.toast(LevelError, "Invalid %s value", field)
		return false
	}
	e.checkpoint()
	return e.model.Update(id, p)
}

// nonFinite names the first numeric field of p holding NaN or an infinity.
func nonFinite(p canvas.Patch) (string, bool) {
	bad := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
		return false
	}
	switch {
	case p.Position != nil && bad(p.Position.X, p.Position.Y):
		return "position", true
	case p.Size != nil && bad(p.Size.W, p.Size.H):
		return "size", true
	case p.Rotation != nil && bad(*p.Rotation):
		return "rotation", true
	case p.FontSize != nil && bad(*p.FontSize):
		return "font size", true
	}
	return "", false
}

// ToggleVisible flips the element's visibility.
func (e *Editor) ToggleVisible(id canvas.ID) bool {
	el, ok := e.model.Element(id)
	if !ok {
		return false
	}
	return e.Update(id, canvas.Patch{Visible: canvas.Ptr(!el.Visible)})
}

// ToggleLocked flips the element's lock.
func (e *Editor) ToggleLocked(id canvas.ID) bool {
	el, ok := e.model.Element(id)
	if !ok {
		return false
	}
	return e.Update(id, canvas.Patch{Locked: canvas.Ptr(!el.Locked)})
}

// ---- view ----

// ApplyTemplate resizes the canvas to the template's working size.
func (e *Editor) ApplyTemplate(name string) error {
	t, err := FindTemplate(name)
	if err != nil {
		return err
	}
	e.checkpoint()
	e.model.Resize(t.CanvasSize())
	e.toast(LevelSuccess, "Template %q loaded", t.Name)
	return nil
}

func (e *Editor) Zoom() int { return e.zoom }

func (e *Editor) ZoomIn() int {
	e.zoom = clampZoom(e.zoom + ZoomStep)
	return e.zoom
}

func (e *Editor) ZoomOut() int {
	e.zoom = clampZoom(e.zoom - ZoomStep)
	return e.zoom
}

// ScreenToCanvas converts a point in the zoomed view to canvas coordinates.
func (e *Editor) ScreenToCanvas(p canvas.Point) canvas.Point {
	f := float64(e.zoom) / 100
	return canvas.Point{X: p.X / f, Y: p.Y / f}
}

func (e *Editor) Grid() bool { return e.grid }

func (e *Editor) ToggleGrid() bool {
	e.grid = !e.grid
	return e.grid
}

// ---- history ----

func (e *Editor) snapshotBytes() ([]byte, error) {
	b, err := json.Marshal(e.model.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal canvas: %w", err)
	}
	return b, nil
}

func (e *Editor) pushBlob(b []byte) {
	e.hist.Push(history.Snapshot{Key: historyKey, Blob: b, TS: e.now()})
}

// checkpoint records the state before a mutation. A state that cannot be
// encoded is logged and left out of the history.
func (e *Editor) checkpoint() {
	b, err := e.snapshotBytes()
	if err != nil {
		e.log.Error("history checkpoint skipped", slog.Any("err", err))
		return
	}
	e.pushBlob(b)
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo(historyKey) }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo(historyKey) }

// Undo reverts the last change. Active drags are cancelled.
func (e *Editor) Undo() bool {
	b, err := e.snapshotBytes()
	if err != nil {
		e.log.Error("undo skipped", slog.Any("err", err))
		return false
	}
	cur := history.Snapshot{Key: historyKey, Blob: b, TS: e.now()}
	s, ok := e.hist.Undo(historyKey, cur)
	if !ok {
		return false
	}
	return e.restoreBlob(s.Blob)
}

// Redo re-applies the last undone change.
func (e *Editor) Redo() bool {
	b, err := e.snapshotBytes()
	if err != nil {
		e.log.Error("redo skipped", slog.Any("err", err))
		return false
	}
	cur := history.Snapshot{Key: historyKey, Blob: b, TS: e.now()}
	s, ok := e.hist.Redo(historyKey, cur)
	if !ok {
		return false
	}
	return e.restoreBlob(s.Blob)
}

func (e *Editor) restoreBlob(b []byte) bool {
	var doc canvas.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		e.log.Error("history snapshot unreadable", slog.Any("err", err))
		return false
	}
	if err := e.model.Restore(doc); err != nil {
		e.log.Error("history snapshot rejected", slog.Any("err", err))
		return false
	}
	e.pending = make(map[canvas.PointerID][]byte)
	return true
}

// ---- clipboard ----

// Copy puts the selected element on the clipboard.
func (e *Editor) Copy() error {
	el, ok := e.model.Selected()
	if !ok {
		return ErrNothingSelected
	}
	text, err := encodeClip(el)
	if err != nil {
		return fmt.Errorf("encode clipboard: %w", err)
	}
	if err := e.clip.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	e.toast(LevelInfo, "Element copied")
	return nil
}

// Paste adds the clipboard element with a fresh id, offset like a duplicate.
func (e *Editor) Paste() (canvas.ID, error) {
	text, err := e.clip.ReadAll()
	if err != nil {
		return canvas.None, fmt.Errorf("read clipboard: %w", err)
	}
	el, err := decodeClip(text)
	if err != nil {
		return canvas.None, err
	}
	e.checkpoint()
	id := e.model.AddCopy(el, el.Position.Add(canvas.DuplicateOffset))
	e.toast(LevelSuccess, "Element pasted")
	return id, nil
}
