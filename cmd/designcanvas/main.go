/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"designcanvas/internal/canvas"
	"designcanvas/internal/config"
	"designcanvas/internal/crash"
	"designcanvas/internal/editor"
	"designcanvas/internal/export"
	"designcanvas/internal/history"
	applog "designcanvas/internal/log"
	"designcanvas/internal/storage"
	"designcanvas/internal/version"
)

func usage() {
	fmt.Println("Design Canvas")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  designcanvas version|-v|--version          Show version")
	fmt.Println("  designcanvas new <file> [template]          Create an empty design, optionally sized by a template")
	fmt.Println("  designcanvas info <file>                    Print the layers of a design")
	fmt.Println("  designcanvas export <file> <out>            Render to <out>.png|.svg|.pdf")
	fmt.Println("  designcanvas batch <file> <preset> <dir>    Render with an export preset (web, print)")
	fmt.Println("  designcanvas demo <file>                    Build a sample design and export it as PNG")
	fmt.Println("  designcanvas templates                      List canvas templates")
	fmt.Println("  designcanvas recent [n]                     List recently saved designs")
	fmt.Println("  designcanvas search <words...>              Find designs by their text")
}

var errUsage = errors.New("usage")

// app bundles what every command needs.
type app struct {
	cfg   config.AppConfig
	index *storage.Index
	ed    *editor.Editor
	log   *slog.Logger
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config file ignored", slog.Any("err", cfgErr))
	}

	a := &app{cfg: cfg, log: l}
	defer crash.Recover(a.crashHandle)

	args := os.Args[1:]
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage()
		return
	}
	ctx := context.Background()
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "templates":
		fmt.Print(renderTemplates(editor.Templates()))
		return
	case "new":
		err = a.cmdNew(ctx, args[1:])
	case "info":
		err = a.cmdInfo(ctx, args[1:])
	case "export":
		err = a.cmdExport(ctx, args[1:])
	case "batch":
		err = a.cmdBatch(ctx, args[1:])
	case "demo":
		err = a.cmdDemo(ctx, args[1:])
	case "recent":
		err = a.cmdRecent(ctx, args[1:])
	case "search":
		err = a.cmdSearch(ctx, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	a.close()
	if errors.Is(err, errUsage) {
		fmt.Println(err)
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func (a *app) crashHandle() *storage.Handle {
	if a.ed == nil {
		return nil
	}
	return a.ed.CrashHandle()
}

func (a *app) close() {
	if a.index != nil {
		_ = a.index.Close()
	}
}

// openIndex is best effort: without an index the commands still work.
func (a *app) openIndex(ctx context.Context) *storage.Index {
	if a.index != nil {
		return a.index
	}
	dir, err := a.cfg.DataDir()
	if err == nil {
		a.index, err = storage.OpenIndex(ctx, dir)
	}
	if err != nil {
		a.log.Warn("recent designs index unavailable", slog.Any("err", err))
		return nil
	}
	return a.index
}

func (a *app) newEditor(ctx context.Context) (*editor.Editor, error) {
	ids, err := canvas.GeneratorFor(a.cfg.Canvas.IDScheme)
	if err != nil {
		return nil, err
	}
	exp := export.DefaultOptions()
	if bg := strings.TrimSpace(a.cfg.Export.Background); bg != "" {
		exp.Background = bg
	}
	exp.Grid = a.cfg.Export.Grid
	if a.cfg.Export.Scale > 0 {
		exp.Scale = a.cfg.Export.Scale
	}
	a.ed = editor.New(editor.Options{
		Size:  canvas.Size{W: a.cfg.Canvas.Width, H: a.cfg.Canvas.Height},
		Color: a.cfg.Canvas.Color,
		IDs:   ids,
		History: history.Config{
			MaxBytes:    a.cfg.History.MaxBytes,
			MaxDepth:    a.cfg.History.MaxDepth,
			MinInterval: a.cfg.History.CoalesceInterval(),
		},
		Clipboard:   editor.SystemClipboard(),
		Index:       a.openIndex(ctx),
		Export:      exp,
		Grid:        a.cfg.Canvas.Grid,
		Zoom:        a.cfg.Canvas.Zoom,
		KeepBackups: a.cfg.Storage.KeepBackups,
	})
	return a.ed, nil
}

func designPath(p string) string {
	if strings.HasSuffix(p, ".json") {
		return p
	}
	return p + storage.FileExt
}

func (a *app) cmdNew(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: new requires <file>", errUsage)
	}
	path := designPath(args[0])
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	ed, err := a.newEditor(ctx)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		if err := ed.ApplyTemplate(strings.Join(args[1:], " ")); err != nil {
			return err
		}
	}
	if err := ed.Save(ctx, path); err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	fmt.Println("Created design at", abs)
	return nil
}

func (a *app) cmdInfo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: info requires <file>", errUsage)
	}
	ed, err := a.newEditor(ctx)
	if err != nil {
		return err
	}
	if err := ed.Open(ctx, args[0]); err != nil {
		return err
	}
	fmt.Print(renderInfo(ed.Path(), ed.Model().CanvasSize(), ed.Layers()))
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: export requires <file> and <out>", errUsage)
	}
	ed, err := a.newEditor(ctx)
	if err != nil {
		return err
	}
	if err := ed.Open(ctx, args[0]); err != nil {
		return err
	}
	out := args[1]
	if dir := strings.TrimSpace(a.cfg.Export.Dir); dir != "" && !filepath.IsAbs(out) && filepath.Dir(out) == "." {
		out = filepath.Join(dir, out)
	}
	f, err := ed.Export(ctx, out)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s\n", strings.ToUpper(string(f)), out)
	return nil
}

func (a *app) cmdBatch(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: batch requires <file>, <preset> and <dir>", errUsage)
	}
	preset, err := export.ParsePreset(args[1])
	if err != nil {
		return err
	}
	ed, err := a.newEditor(ctx)
	if err != nil {
		return err
	}
	if err := ed.Open(ctx, args[0]); err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), storage.FileExt)
	paths, err := ed.ExportPreset(ctx, preset, args[2], name)
	for _, p := range paths {
		fmt.Println("Wrote", p)
	}
	return err
}

func (a *app) cmdDemo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: demo requires <file>", errUsage)
	}
	path := designPath(args[0])
	ed, err := a.newEditor(ctx)
	if err != nil {
		return err
	}
	buildDemo(ed)
	if err := ed.Save(ctx, path); err != nil {
		return err
	}
	png := strings.TrimSuffix(path, storage.FileExt) + ".png"
	if _, err := ed.Export(ctx, png); err != nil {
		return err
	}
	fmt.Print(renderInfo(path, ed.Model().CanvasSize(), ed.Layers()))
	fmt.Println("Preview:", png)
	return nil
}

// buildDemo drives the editor the way a user would: template, tools, drags.
func buildDemo(ed *editor.Editor) {
	_ = ed.ApplyTemplate("Web Banner")
	_ = ed.SetColor(editor.Palette[12])
	_ = ed.SetTool(editor.ToolRectangle)
	bg := ed.PointerDown(canvas.MousePointer, canvas.Point{X: 60, Y: 60})
	ed.Update(bg, canvas.Patch{Size: &canvas.Size{W: 560, H: 160}, Position: &canvas.Point{X: 20, Y: 20}})
	// locked, so the next clicks place shapes on top of it
	ed.ToggleLocked(bg)

	_ = ed.SetColor(editor.Palette[2])
	_ = ed.SetTool(editor.ToolCircle)
	ed.PointerDown(canvas.MousePointer, canvas.Point{X: 110, Y: 100})

	_ = ed.SetColor(editor.Palette[5])
	_ = ed.SetTool(editor.ToolTriangle)
	tri := ed.PointerDown(canvas.MousePointer, canvas.Point{X: 480, Y: 100})
	ed.Update(tri, canvas.Patch{Rotation: canvas.Ptr(15.0)})

	_ = ed.SetColor("#F9FAFB")
	txt := ed.QuickAdd(canvas.Text)
	ed.Update(txt, canvas.Patch{Text: canvas.Ptr("Design Canvas"), FontSize: canvas.Ptr(28.0)})

	// drag the heading into place
	_ = ed.SetTool(editor.ToolSelect)
	el, _ := ed.Model().Element(txt)
	grab := canvas.Point{X: el.Position.X + 10, Y: el.Position.Y + 10}
	ed.PointerDown(canvas.MousePointer, grab)
	ed.PointerMove(canvas.MousePointer, canvas.Point{X: 210, Y: 85})
	ed.PointerUp(canvas.MousePointer)
}

func (a *app) cmdRecent(ctx context.Context, args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: recent takes a number", errUsage)
		}
		limit = n
	}
	ix := a.openIndex(ctx)
	if ix == nil {
		return errors.New("recent designs index unavailable")
	}
	docs, err := ix.Recent(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Print(renderRecent(docs))
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: search requires words", errUsage)
	}
	ix := a.openIndex(ctx)
	if ix == nil {
		return errors.New("recent designs index unavailable")
	}
	hits, err := ix.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No designs found.")
	}
	for _, h := range hits {
		fmt.Println(h)
	}
	return nil
}
