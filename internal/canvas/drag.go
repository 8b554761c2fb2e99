/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// PointerID identifies an input pointer. The mouse is MousePointer; touch
// input uses one id per finger.
type PointerID int

const MousePointer PointerID = 0

// DragSession tracks one pointer moving one element. It stays valid until
// EndDrag, a new BeginDrag on the same pointer, or removal of the element.
type DragSession struct {
	pointer PointerID
	target  ID
	offset  Point
	start   Point
	ended   bool
}

func (s *DragSession) Pointer() PointerID { return s.pointer }
func (s *DragSession) Target() ID         { return s.target }

// Origin is the element position when the drag began.
func (s *DragSession) Origin() Point { return s.start }

// Active is false once the session ended or was cancelled.
func (s *DragSession) Active() bool { return s != nil && !s.ended }

// BeginDrag starts moving the element under pointer. It returns nil when the
// element is absent, locked, or already being dragged by another pointer.
// A pointer that still owns a session (a lost pointer-up) has it replaced.
func (m *Model) BeginDrag(pointer PointerID, id ID, start Point) *DragSession {
	i := m.indexOf(id)
	if i < 0 || m.elements[i].Locked {
		return nil
	}
	for p, s := range m.drags {
		if s.target == id && p != pointer {
			return nil
		}
	}
	if old, ok := m.drags[pointer]; ok {
		old.ended = true
		delete(m.drags, pointer)
	}
	pos := m.elements[i].Position
	s := &DragSession{pointer: pointer, target: id, offset: start.Sub(pos), start: pos}
	m.drags[pointer] = s
	return s
}

// DragTo moves the session's element so the grab point follows p, clamped
// per axis to the canvas using the element's current size. Ended, nil or
// orphaned sessions are ignored, as is an element locked mid-drag.
func (m *Model) DragTo(s *DragSession, p Point) {
	if !m.live(s) {
		return
	}
	i := m.indexOf(s.target)
	if i < 0 {
		m.endSession(s)
		return
	}
	e := m.elements[i]
	if e.Locked {
		return
	}
	pos := m.clampPosition(p.Sub(s.offset), e.Size)
	if pos == e.Position {
		return
	}
	m.Update(s.target, Patch{Position: &pos})
}

// EndDrag finishes the session. The model state does not change; callers use
// it as the "interaction finished" signal.
func (m *Model) EndDrag(s *DragSession) {
	if !m.live(s) {
		return
	}
	m.endSession(s)
}

// DragFor returns the active session owned by pointer.
func (m *Model) DragFor(pointer PointerID) (*DragSession, bool) {
	s, ok := m.drags[pointer]
	return s, ok
}

// Dragging reports whether any pointer is dragging the element.
func (m *Model) Dragging(id ID) bool {
	for _, s := range m.drags {
		if s.target == id {
			return true
		}
	}
	return false
}

func (m *Model) live(s *DragSession) bool {
	return s != nil && !s.ended && m.drags[s.pointer] == s
}

func (m *Model) endSession(s *DragSession) {
	s.ended = true
	if m.drags[s.pointer] == s {
		delete(m.drags, s.pointer)
	}
}

func (m *Model) cancelDragsOn(id ID) {
	for _, s := range m.drags {
		if s.target == id {
			m.endSession(s)
		}
	}
}

func (m *Model) endAllDrags() {
	for _, s := range m.drags {
		m.endSession(s)
	}
}
