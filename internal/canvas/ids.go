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
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator hands out element ids. Implementations must never return the
// same id twice within a process.
type IDGenerator interface {
	NewID() ID
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() ID { return ID(uuid.New().String()) }

// ULIDGenerator issues lexically sortable ULIDs; ids created in the same
// millisecond stay ordered.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() ID { return ID(ulid.Make().String()) }

// CounterGenerator issues prefix-1, prefix-2, ... Deterministic; handy in tests.
type CounterGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func (g *CounterGenerator) NewID() ID {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "el"
	}
	return ID(prefix + "-" + strconv.FormatUint(g.n.Add(1), 10))
}

// GeneratorFor maps a configured id scheme ("uuid", "ulid", "counter") to a generator.
func GeneratorFor(scheme string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "uuid":
		return UUIDGenerator{}, nil
	case "ulid":
		return ULIDGenerator{}, nil
	case "counter":
		return &CounterGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}
