/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"fmt"
)

// DocumentVersion is bumped on incompatible changes to Document.
const DocumentVersion = 1

// Document is the serialisable state of a Model. Undo history, storage and
// the clipboard all exchange it as JSON.
type Document struct {
	Version  int             `json:"version"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Selected ID              `json:"selected,omitempty"`
	Elements []ElementRecord `json:"elements"`
}

// ElementRecord is the flat form of an Element. Kind-specific fields are
// omitted for kinds that do not carry them.
type ElementRecord struct {
	ID       ID       `json:"id"`
	Kind     Kind     `json:"kind"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation float64  `json:"rotation"`
	Fill     string   `json:"fill"`
	Locked   bool     `json:"locked,omitempty"`
	Visible  bool     `json:"visible"`
	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Src      *string  `json:"src,omitempty"`
}

// RecordOf flattens e.
func RecordOf(e Element) ElementRecord {
	r := ElementRecord{
		ID:       e.id,
		Kind:     e.kind,
		X:        e.Position.X,
		Y:        e.Position.Y,
		Width:    e.Size.W,
		Height:   e.Size.H,
		Rotation: e.Rotation,
		Fill:     e.Fill,
		Locked:   e.Locked,
		Visible:  e.Visible,
	}
	if t, ok := e.Text(); ok {
		r.Text = Ptr(t.Content)
		r.FontSize = Ptr(t.FontSize)
	}
	if im, ok := e.Image(); ok {
		r.Src = Ptr(im.Src)
	}
	return r
}

// ElementFromRecord rebuilds an Element, validating the kind.
func ElementFromRecord(r ElementRecord) (Element, error) {
	if !r.Kind.Valid() {
		return Element{}, fmt.Errorf("element %q: invalid kind %d", r.ID, uint8(r.Kind))
	}
	e := Element{
		id:       r.ID,
		kind:     r.Kind,
		Position: Point{r.X, r.Y},
		Size:     Size{r.Width, r.Height},
		Rotation: r.Rotation,
		Fill:     r.Fill,
		Locked:   r.Locked,
		Visible:  r.Visible,
	}
	switch r.Kind {
	case Text:
		t := TextProps{Content: DefaultText, FontSize: DefaultFontSize}
		if r.Text != nil {
			t.Content = *r.Text
		}
		if r.FontSize != nil {
			t.FontSize = *r.FontSize
		}
		e.text = &t
	case Image:
		im := ImageProps{}
		if r.Src != nil {
			im.Src = *r.Src
		}
		e.image = &im
	}
	return e, nil
}

// Snapshot captures the model state. Drag sessions are not part of it.
func (m *Model) Snapshot() Document {
	d := Document{
		Version:  DocumentVersion,
		Width:    m.size.W,
		Height:   m.size.H,
		Selected: m.selected,
		Elements: make([]ElementRecord, 0, len(m.elements)),
	}
	for _, e := range m.elements {
		d.Elements = append(d.Elements, RecordOf(e))
	}
	return d
}

var errDuplicateID = errors.New("duplicate element id")

// Restore replaces the model state with d. The model is unchanged when d is
// invalid. Active drags are cancelled; a dangling selection is dropped.
func (m *Model) Restore(d Document) error {
	if d.Version > DocumentVersion {
		return fmt.Errorf("document version %d is newer than supported %d", d.Version, DocumentVersion)
	}
	elems := make([]Element, 0, len(d.Elements))
	seen := make(map[ID]struct{}, len(d.Elements))
	for _, r := range d.Elements {
		if r.ID == None {
			return errors.New("element without id")
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %s", errDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
		e, err := ElementFromRecord(r)
		if err != nil {
			return err
		}
		elems = append(elems, e)
	}
	m.endAllDrags()
	m.elements = elems
	m.size = nonNegative(Size{d.Width, d.Height})
	m.selected = None
	if _, ok := seen[d.Selected]; ok {
		m.selected = d.Selected
	}
	m.emit(CanvasRestored, None)
	return nil
}
