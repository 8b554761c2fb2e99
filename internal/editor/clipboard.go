/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"designcanvas/internal/canvas"
)

var (
	ErrEmptyClipboard  = errors.New("clipboard holds no element")
	ErrNothingSelected = errors.New("no element selected")
)

// Clipboard is the text clipboard used by Copy and Paste.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard returns the OS clipboard, or an in-process one when the
// platform has no clipboard utility available.
func SystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return &MemoryClipboard{}
	}
	return systemClipboard{}
}

// MemoryClipboard keeps the clipboard inside the process.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *MemoryClipboard) WriteAll(text string) error {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return nil
}

const clipFormat = "designcanvas/element"

type clipPayload struct {
	Format  string               `json:"format"`
	Element canvas.ElementRecord `json:"element"`
}

func encodeClip(e canvas.Element) (string, error) {
	b, err := json.Marshal(clipPayload{Format: clipFormat, Element: canvas.RecordOf(e)})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeClip(text string) (canvas.Element, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return canvas.Element{}, ErrEmptyClipboard
	}
	var p clipPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil || p.Format != clipFormat {
		return canvas.Element{}, ErrEmptyClipboard
	}
	return canvas.ElementFromRecord(p.Element)
}
