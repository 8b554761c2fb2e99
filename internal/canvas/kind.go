/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"strings"
)

// Kind is the closed set of element variants. The zero value is invalid.
type Kind uint8

const (
	Rectangle Kind = iota + 1
	Circle
	Triangle
	Text
	Image
)

var kindNames = [...]string{
	Rectangle: "rectangle",
	Circle:    "circle",
	Triangle:  "triangle",
	Text:      "text",
	Image:     "image",
}

// Kinds lists every valid kind in toolbar order.
func Kinds() []Kind { return []Kind{Rectangle, Circle, Triangle, Text, Image} }

func (k Kind) Valid() bool { return k >= Rectangle && k <= Image }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Title returns the capitalised name used in user-facing messages.
func (k Kind) Title() string {
	s := k.String()
	if !k.Valid() {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseKind resolves a kind name (case-insensitive). It is meant for text
// boundaries such as the CLI and JSON documents.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid element kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// mustValid enforces the closed variant set at the call boundary.
func mustValid(k Kind) {
	if !k.Valid() {
		panic(fmt.Sprintf("canvas: invalid element kind %d", uint8(k)))
	}
}
