/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Presets lists the built-in presets.
func Presets() []PresetName { return []PresetName{PresetWeb, PresetPrint} }

// BatchOptions controls a batch export of one scene into several formats.
//
// Files are named <Name>.<ext> inside OutDir. A preset picks the formats and
// the raster scale unless Formats or Scale are set explicitly.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format // empty means preset defaults
	OutDir  string
	Name    string
	Scale   float64 // when > 0 overrides the preset's scale
	Grid    *bool   // when set, overrides the preset's grid default
}

// BatchExport writes the scene once per format and returns the written paths.
func BatchExport(scene Scene, base Options, opt BatchOptions) ([]string, error) {
	if strings.TrimSpace(opt.Name) == "" {
		return nil, fmt.Errorf("batch export: empty name")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	o := base
	o.Scale = presetScale(opt.Preset)
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	o.Grid = presetGrid(opt.Preset, base.Grid)
	if opt.Grid != nil {
		o.Grid = *opt.Grid
	}

	var out []string
	for _, f := range formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return out, err
		}
		path := filepath.Join(opt.OutDir, fmt.Sprintf("%s.%s", opt.Name, f))
		if _, err := ExportFile(path, scene, o); err != nil {
			return out, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, path)
	}
	return out, nil
}

// ParsePreset accepts a preset name, case-insensitive.
func ParsePreset(s string) (PresetName, error) {
	p := PresetName(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Presets() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q", s)
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetWeb:
		return []Format{PNG, SVG}
	case PresetPrint:
		return []Format{PDF, PNG}
	default:
		return []Format{PNG}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}

// presetGrid: print output never carries the editing grid.
func presetGrid(p PresetName, def bool) bool {
	if p == PresetPrint {
		return false
	}
	return def
}
