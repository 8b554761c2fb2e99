/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSnapshotRestore(t *testing.T) {
	m := newTestModel()
	r := m.Add(Rectangle, Point{1, 2}, Style{Fill: "#EF4444"})
	tx := m.Add(Text, Point{3, 4}, Style{Text: "Hi", FontSize: 32})
	img := m.Add(Image, Point{5, 6}, Style{Src: "a.png"})
	m.Update(r, Patch{Rotation: Ptr(15.0), Locked: Ptr(true)})
	m.Select(tx)

	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"text"`) {
		t.Fatalf("kinds should serialise by name: %s", data)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	n := New(Size{1, 1})
	if err := n.Restore(doc); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if n.CanvasSize() != (Size{800, 600}) || n.SelectedID() != tx {
		t.Fatalf("canvas size/selection not restored: %+v %q", n.CanvasSize(), n.SelectedID())
	}
	if got := ids(n.Elements()); !sameIDs(got, []ID{r, tx, img}) {
		t.Fatalf("order not restored: %v", got)
	}
	re, _ := n.Element(r)
	if re.Rotation != 15 || !re.Locked || re.Fill != "#EF4444" {
		t.Fatalf("rectangle not restored: %+v", re)
	}
	te, _ := n.Element(tx)
	if tp, ok := te.Text(); !ok || tp.Content != "Hi" || tp.FontSize != 32 {
		t.Fatalf("text payload not restored: %+v", tp)
	}
	ie, _ := n.Element(img)
	if ip, ok := ie.Image(); !ok || ip.Src != "a.png" {
		t.Fatalf("image payload not restored: %+v", ip)
	}
}

func TestRestoreRejectsInvalidAndKeepsState(t *testing.T) {
	m := newTestModel()
	a := m.Add(Rectangle, Point{}, Style{})
	bad := Document{Version: 1, Width: 10, Height: 10, Elements: []ElementRecord{
		{ID: "x", Kind: Circle, Visible: true},
		{ID: "x", Kind: Circle, Visible: true},
	}}
	if err := m.Restore(bad); err == nil {
		t.Fatalf("duplicate ids should be rejected")
	}
	if m.Len() != 1 || m.SelectedID() != a {
		t.Fatalf("model changed by a rejected restore")
	}
	if err := m.Restore(Document{Version: 99}); err == nil {
		t.Fatalf("newer version should be rejected")
	}
	var k Kind
	if err := json.Unmarshal([]byte(`"hexagon"`), &k); err == nil {
		t.Fatalf("unknown kind should fail to decode")
	}
}

func TestRestoreDropsDanglingSelection(t *testing.T) {
	m := newTestModel()
	doc := Document{Version: 1, Width: 100, Height: 100, Selected: "gone", Elements: []ElementRecord{
		{ID: "a", Kind: Rectangle, Width: 10, Height: 10, Visible: true},
	}}
	if err := m.Restore(doc); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if m.SelectedID() != None {
		t.Fatalf("selection pointing at a missing element must be dropped")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(strings.ToUpper(k.String()))
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("shape"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if Rectangle.Title() != "Rectangle" {
		t.Fatalf("Title() = %q", Rectangle.Title())
	}
}

func TestGeneratorFor(t *testing.T) {
	for _, scheme := range []string{"", "uuid", "ulid", "counter"} {
		g, err := GeneratorFor(scheme)
		if err != nil {
			t.Fatalf("GeneratorFor(%q): %v", scheme, err)
		}
		if a, b := g.NewID(), g.NewID(); a == b || a == None {
			t.Fatalf("%q generator produced %q then %q", scheme, a, b)
		}
	}
	if _, err := GeneratorFor("timestamp"); err == nil {
		t.Fatalf("unknown scheme should fail")
	}
}
