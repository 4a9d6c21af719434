//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gocropper/internal/crash"
	"gocropper/internal/drag"
	"gocropper/internal/geom"
	"gocropper/internal/imageio"
	applog "gocropper/internal/log"
	"gocropper/internal/preview"
	"gocropper/internal/selection"
	"gocropper/internal/undo"
)

// Run opens cfg.Image in a cropper window and blocks until the window is closed.
func Run(cfg Config) error {
	l := applog.WithComponent("ui")
	var state *selection.State
	defer crash.Recover(&crash.Info{Dir: cfg.CrashDir, Image: cfg.Image, Selection: func() geom.Rect {
		if state == nil {
			return geom.Rect{}
		}
		return state.Selection()
	}})

	ctx := applog.ContextWithImage(context.Background(), cfg.Image)
	src, err := imageio.Load(ctx, cfg.Image)
	if err != nil {
		return err
	}
	state, err = selection.New(cfg.Selection)
	if err != nil {
		return err
	}
	reg := preview.NewRegistry(state)
	defer reg.Close()
	for _, b := range cfg.Previews {
		if err := reg.Add(b); err != nil {
			return err
		}
	}
	if _, err := state.Initialize(src.Size()); err != nil {
		return err
	}
	tracker := undo.NewTracker(undo.NewHistory(cfg.History), cfg.Image, state)
	ctrl := drag.New(state, drag.WithLogger(l), drag.OnGestureEnd(tracker.Record))
	l.InfoContext(ctx, "starting UI", "canvas", state.Canvas().String())

	fyneApp := app.NewWithID("gocropper")
	w := fyneApp.NewWindow("gocropper - " + filepath.Base(cfg.Image))
	w.Resize(fyne.NewSize(1200, 800))

	cc := NewCropCanvas(src.Image, state, ctrl)
	// gestures in flight are never undone
	undoSel := func() {
		if !ctrl.Dragging() {
			tracker.Undo()
		}
		cc.Refresh()
	}
	redoSel := func() {
		if !ctrl.Dragging() {
			tracker.Redo()
		}
		cc.Refresh()
	}
	status := widget.NewLabel(statusText(state))
	state.Subscribe(func(geom.Rect) { status.SetText(statusText(state)) })

	panes := container.NewVBox()
	views := map[string]*canvas.Image{}
	for _, b := range reg.Bindings() {
		img := canvas.NewImageFromImage(nil)
		img.FillMode = canvas.ImageFillOriginal
		views[b.Name] = img
		panes.Add(widget.NewLabel(b.Name))
		panes.Add(img)
		if t, ok := reg.Transform(b.Name); ok {
			showPreview(img, src.Image, t)
		}
	}
	reg.OnUpdate(func(u preview.Update) {
		if img := views[u.Binding.Name]; img != nil {
			showPreview(img, src.Image, u.Transform)
		}
	})

	undoBtn := widget.NewButton("Undo", undoSel)
	redoBtn := widget.NewButton("Redo", redoSel)
	saveBtn := widget.NewButton("Save", func() {
		if cfg.OnSave == nil {
			return
		}
		if err := cfg.OnSave(state.Reported()); err != nil {
			l.Error("save failed", "err", err)
			dialog.ShowError(err, w)
			return
		}
		status.SetText("saved " + statusText(state))
	})
	saveBtn.Importance = widget.HighImportance
	toolbar := container.NewHBox(undoBtn, redoBtn, saveBtn)

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { undoSel() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { redoSel() })

	side := container.NewVScroll(panes)
	side.SetMinSize(fyne.NewSize(220, 0))
	w.SetContent(container.NewBorder(toolbar, status, nil, side, cc))
	w.ShowAndRun()
	return nil
}

func statusText(s *selection.State) string {
	r := s.Reported()
	return fmt.Sprintf("x=%d y=%d  %dx%d  canvas %v", r.X, r.Y, r.W, r.H, s.Canvas())
}

func showPreview(img *canvas.Image, src image.Image, t preview.Transform) {
	img.Image = preview.Render(src, t)
	img.SetMinSize(fyne.NewSize(float32(t.ViewportWidth), float32(t.ViewportHeight)))
	img.Refresh()
}

// CropCanvas shows an image with the selection, its shade and four corner handles,
// and turns pointer input into drag controller events.
type CropCanvas struct {
	widget.BaseWidget
	img   image.Image
	state *selection.State
	ctrl  *drag.Controller

	// last two pointer positions in canvas pixels; fyne reports no position on exit
	prev, last geom.Point
}

var (
	_ fyne.Draggable    = (*CropCanvas)(nil)
	_ desktop.Mouseable = (*CropCanvas)(nil)
	_ desktop.Hoverable = (*CropCanvas)(nil)
)

func NewCropCanvas(img image.Image, state *selection.State, ctrl *drag.Controller) *CropCanvas {
	c := &CropCanvas{img: img, state: state, ctrl: ctrl}
	c.ExtendBaseWidget(c)
	state.Subscribe(func(geom.Rect) { c.Refresh() })
	return c
}

func (c *CropCanvas) fit() View {
	sz := c.Size()
	return Fit(c.state.Canvas(), float64(sz.Width), float64(sz.Height))
}

func (c *CropCanvas) toCanvas(p fyne.Position) geom.Point {
	return c.fit().ToCanvas(float64(p.X), float64(p.Y))
}

// MouseDown starts a gesture on the handle or body under the pointer.
func (c *CropCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := c.toCanvas(e.Position)
	c.track(p)
	if a := HitTest(c.state.Selection(), p, c.handleSize()); a != drag.None {
		c.ctrl.PointerDown(a, p)
	}
}

func (c *CropCanvas) MouseUp(*desktop.MouseEvent) { c.ctrl.PointerUp() }

func (c *CropCanvas) Dragged(e *fyne.DragEvent) {
	p := c.toCanvas(e.Position)
	c.track(p)
	if fyne.CurrentDevice().IsMobile() {
		c.ctrl.TouchMove(p)
		return
	}
	c.ctrl.PointerMove(p)
}

func (c *CropCanvas) DragEnd() { c.ctrl.PointerUp() }

func (c *CropCanvas) MouseIn(e *desktop.MouseEvent) {
	p := c.toCanvas(e.Position)
	c.prev, c.last = p, p
}

func (c *CropCanvas) MouseMoved(e *desktop.MouseEvent) {
	c.track(c.toCanvas(e.Position))
	if c.ctrl.Dragging() {
		c.ctrl.PointerMove(c.last)
	}
}

func (c *CropCanvas) track(p geom.Point) {
	if p != c.last {
		c.prev, c.last = c.last, p
	}
}

// MouseOut snaps an active gesture to the canvas edge and ends it. The exit position is
// extrapolated from the last motion since a fast pointer leaves between two events.
func (c *CropCanvas) MouseOut() {
	c.ctrl.PointerLeave(ExitPoint(c.prev, c.last, c.state.Canvas()))
}

// handleSize is the handle side in canvas pixels for the current zoom, so handles keep
// their on-screen size.
func (c *CropCanvas) handleSize() int {
	s := c.fit().Scale
	if s <= 0 {
		return c.state.HandleSize()
	}
	return max(int(float64(c.state.HandleSize())/s), 1)
}

func (c *CropCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (c *CropCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &cropRenderer{c: c}
	r.bg = canvas.NewRectangle(color.RGBA{R: 40, G: 40, B: 40, A: 255})
	r.img = canvas.NewImageFromImage(c.img)
	r.img.FillMode = canvas.ImageFillStretch
	shade := color.RGBA{A: 128}
	for i := range r.shades {
		r.shades[i] = canvas.NewRectangle(shade)
	}
	r.sel = canvas.NewRectangle(color.Transparent)
	r.sel.StrokeColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	r.sel.StrokeWidth = float32(max(c.state.BorderSize(), 1))
	for i := range r.handles {
		h := canvas.NewRectangle(color.RGBA{R: 255, G: 255, B: 255, A: 255})
		h.StrokeColor = color.Black
		h.StrokeWidth = 1
		r.handles[i] = h
	}
	r.objects = []fyne.CanvasObject{r.bg, r.img}
	for _, s := range r.shades {
		r.objects = append(r.objects, s)
	}
	r.objects = append(r.objects, r.sel)
	for _, h := range r.handles {
		r.objects = append(r.objects, h)
	}
	return r
}

type cropRenderer struct {
	c       *CropCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	img     *canvas.Image
	shades  [4]*canvas.Rectangle
	sel     *canvas.Rectangle
	handles [4]*canvas.Rectangle
}

func (r *cropRenderer) Destroy()                     {}
func (r *cropRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *cropRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *cropRenderer) Refresh()                     { r.Layout(r.c.Size()); canvas.Refresh(r.c) }

func (r *cropRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	v := Fit(r.c.state.Canvas(), float64(size.Width), float64(size.Height))
	cv := r.c.state.Canvas()
	ix, iy, iw, ih := v.ToWidget(geom.R(0, 0, cv.W, cv.H))
	place(r.img, ix, iy, iw, ih)

	sel := r.c.state.Selection()
	sx, sy, sw, sh := v.ToWidget(sel)
	// shades clipped to the image: above, below, left, right of the selection
	top := max(sy, iy)
	bottom := min(sy+sh, iy+ih)
	left := max(sx, ix)
	right := min(sx+sw, ix+iw)
	place(r.shades[0], ix, iy, iw, top-iy)
	place(r.shades[1], ix, bottom, iw, iy+ih-bottom)
	place(r.shades[2], ix, top, left-ix, bottom-top)
	place(r.shades[3], right, top, ix+iw-right, bottom-top)
	place(r.sel, sx, sy, sw, sh)

	hs := float64(r.c.state.HandleSize())
	for i, h := range Handles(sel, 0) {
		hx, hy, _, _ := v.ToWidget(h)
		place(r.handles[i], hx-hs/2, hy-hs/2, hs, hs)
	}
}

func place(o fyne.CanvasObject, x, y, w, h float64) {
	o.Move(fyne.NewPos(float32(x), float32(y)))
	o.Resize(fyne.NewSize(float32(max(w, 0)), float32(max(h, 0))))
}
