/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas holds the design canvas element model: the ordered list of
// placed elements, the current selection and pointer drag sessions.
//
// Slice order is paint order; later elements paint on top. Every operation is
// total: unknown ids are ignored and reported through boolean results, never
// through panics or errors. The only panic is an invalid Kind passed to Add,
// which is a programming error.
//
// A Model is not safe for concurrent use. It is meant to be driven from a
// single UI event loop, which also gives in-order delivery of drag moves.
package canvas

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DuplicateOffset is added to a duplicated element's position.
var DuplicateOffset = Point{X: 20, Y: 20}

// Model is the aggregate root of a canvas.
type Model struct {
	elements  []Element
	selected  ID
	size      Size
	ids       IDGenerator
	listeners []Listener
	drags     map[PointerID]*DragSession
}

// Option configures a Model at construction.
type Option func(*Model)

// WithIDGenerator injects the id source. Defaults to UUIDGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Model) {
		if g != nil {
			m.ids = g
		}
	}
}

// WithListener subscribes l before any operation runs.
func WithListener(l Listener) Option {
	return func(m *Model) { m.Subscribe(l) }
}

// New returns an empty canvas of the given size.
func New(size Size, opts ...Option) *Model {
	m := &Model{
		size:  nonNegative(size),
		ids:   UUIDGenerator{},
		drags: make(map[PointerID]*DragSession),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Subscribe registers l for all subsequent events.
func (m *Model) Subscribe(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

func (m *Model) emit(t EventType, id ID) {
	ev := Event{Type: t, ID: id}
	for _, l := range m.listeners {
		l(ev)
	}
}

func (m *Model) indexOf(id ID) int {
	if id == None {
		return -1
	}
	for i := range m.elements {
		if m.elements[i].id == id {
			return i
		}
	}
	return -1
}

// newID asks the generator for an id not yet in use. A misbehaving generator
// falls back to random UUIDs rather than producing a duplicate.
func (m *Model) newID() ID {
	for range 8 {
		id := m.ids.NewID()
		if id != None && m.indexOf(id) < 0 {
			return id
		}
	}
	for {
		id := ID(uuid.New().String())
		if m.indexOf(id) < 0 {
			return id
		}
	}
}

// Add places a new element of kind on top of the canvas at origin and selects it.
// Defaults: 100×100 (200×50 for Text), rotation 0, visible, unlocked.
func (m *Model) Add(kind Kind, origin Point, style Style) ID {
	mustValid(kind)
	fill := strings.TrimSpace(style.Fill)
	if fill == "" {
		fill = DefaultFill
	}
	e := Element{
		id:       m.newID(),
		kind:     kind,
		Position: origin,
		Size:     DefaultSize(kind),
		Fill:     fill,
		Visible:  true,
	}
	switch kind {
	case Text:
		content := style.Text
		if content == "" {
			content = DefaultText
		}
		fs := style.FontSize
		if fs <= 0 {
			fs = DefaultFontSize
		}
		e.text = &TextProps{Content: content, FontSize: fs}
	case Image:
		e.image = &ImageProps{Src: style.Src}
	}
	m.elements = append(m.elements, e)
	m.emit(ElementAdded, e.id)
	m.setSelected(e.id)
	return e.id
}

// AddCopy places a copy of e (kind, size, style, payload) with a fresh id at
// origin, clamped into the canvas, and selects it. Used for paste.
func (m *Model) AddCopy(e Element, origin Point) ID {
	mustValid(e.kind)
	c := e.clone()
	c.id = m.newID()
	c.Position = m.clampPosition(origin, c.Size)
	m.elements = append(m.elements, c)
	m.emit(ElementAdded, c.id)
	m.setSelected(c.id)
	return c.id
}

// Delete removes the element. Deleting an absent id is a no-op returning false.
// A drag session on the element is cancelled and the selection is cleared if
// it pointed at the element.
func (m *Model) Delete(id ID) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.elements = slices.Delete(m.elements, i, i+1)
	m.cancelDragsOn(id)
	m.emit(ElementDeleted, id)
	if m.selected == id {
		m.setSelected(None)
	}
	return true
}

// Duplicate appends a copy of the element offset by DuplicateOffset (clamped
// to the canvas) and selects it. Absent ids return (None, false).
func (m *Model) Duplicate(id ID) (ID, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return None, false
	}
	c := m.elements[i].clone()
	c.id = m.newID()
	c.Position = m.clampPosition(c.Position.Add(DuplicateOffset), c.Size)
	m.elements = append(m.elements, c)
	m.emit(ElementDuplicated, c.id)
	m.setSelected(c.id)
	return c.id, true
}

// Update applies the patch to the element. It is the single mutation path for
// property panels and drags. Returns false if the element does not exist.
func (m *Model) Update(id ID, p Patch) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	if p.Empty() {
		return true
	}
	p.apply(&m.elements[i])
	m.emit(ElementUpdated, id)
	return true
}

// Select sets the selection. None clears it; ids not on the canvas are
// rejected and the previous selection is kept.
func (m *Model) Select(id ID) bool {
	if id != None && m.indexOf(id) < 0 {
		return false
	}
	m.setSelected(id)
	return true
}

func (m *Model) setSelected(id ID) {
	if m.selected == id {
		return
	}
	m.selected = id
	m.emit(SelectionChanged, id)
}

// SelectedID returns the selected id or None.
func (m *Model) SelectedID() ID { return m.selected }

// Selected returns a copy of the selected element for property panels.
func (m *Model) Selected() (Element, bool) { return m.Element(m.selected) }

// Element returns a copy of the element with the given id.
func (m *Model) Element(id ID) (Element, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return Element{}, false
	}
	return m.elements[i].clone(), true
}

// Elements returns every element, hidden ones included, in paint order.
// This is what a layer list shows.
func (m *Model) Elements() []Element {
	out := make([]Element, len(m.elements))
	for i := range m.elements {
		out[i] = m.elements[i].clone()
	}
	return out
}

// VisibleInPaintOrder returns the visible elements bottom to top. Locked
// elements are included; locking only affects interaction.
func (m *Model) VisibleInPaintOrder() []Element {
	out := make([]Element, 0, len(m.elements))
	for i := range m.elements {
		if m.elements[i].Visible {
			out = append(out, m.elements[i].clone())
		}
	}
	return out
}

// Len is the number of elements, hidden ones included.
func (m *Model) Len() int { return len(m.elements) }

// CanvasSize returns the drag bounds.
func (m *Model) CanvasSize() Size { return m.size }

// Resize changes the canvas bounds. Existing elements keep their positions;
// the new bounds apply to the next drag or duplicate.
func (m *Model) Resize(size Size) {
	size = nonNegative(size)
	if size == m.size {
		return
	}
	m.size = size
	m.emit(CanvasResized, None)
}

// Clear removes every element, the selection and all drag sessions.
func (m *Model) Clear() {
	m.elements = nil
	m.endAllDrags()
	m.selected = None
	m.emit(CanvasCleared, None)
}

// HitTest returns the top-most visible, unlocked element whose shape contains p.
func (m *Model) HitTest(p Point) (ID, bool) {
	for i := len(m.elements) - 1; i >= 0; i-- {
		e := m.elements[i]
		if !e.Visible || e.Locked {
			continue
		}
		if e.Hit(p) {
			return e.id, true
		}
	}
	return None, false
}

// ClampPosition keeps an element of size s inside the canvas, per axis.
func (m *Model) ClampPosition(pos Point, s Size) Point { return m.clampPosition(pos, s) }

func (m *Model) clampPosition(pos Point, s Size) Point {
	return Point{
		X: clamp(pos.X, 0, m.size.W-s.W),
		Y: clamp(pos.Y, 0, m.size.H-s.H),
	}
}

// clamp limits v to [lo, hi]. When the element is larger than the canvas
// (hi < lo) it pins to lo.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(s Size) Size {
	if s.W < 0 {
		s.W = 0
	}
	if s.H < 0 {
		s.H = 0
	}
	return s
}
