/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// EventType names a model change a collaborator may react to (repaint, toast).
type EventType uint8

const (
	ElementAdded EventType = iota + 1
	ElementDuplicated
	ElementUpdated
	ElementDeleted
	SelectionChanged
	CanvasCleared
	CanvasResized
	CanvasRestored
)

func (t EventType) String() string {
	switch t {
	case ElementAdded:
		return "element_added"
	case ElementDuplicated:
		return "element_duplicated"
	case ElementUpdated:
		return "element_updated"
	case ElementDeleted:
		return "element_deleted"
	case SelectionChanged:
		return "selection_changed"
	case CanvasCleared:
		return "canvas_cleared"
	case CanvasResized:
		return "canvas_resized"
	case CanvasRestored:
		return "canvas_restored"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously after the change is applied.
// ID is the affected element, or None for canvas-wide events.
type Event struct {
	Type EventType
	ID   ID
}

// Listener receives model events. It runs on the caller's goroutine and must
// not block.
type Listener func(Event)
