/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocropper/internal/export"
	"gocropper/internal/geom"
	"gocropper/internal/imageio"
	applog "gocropper/internal/log"
	"gocropper/internal/preview"
	"gocropper/internal/selection"
	"gocropper/internal/storage"
)

type previewFlags struct {
	x, y, w, h int
	aspect     string
	name       string
	side       string
	value      int
	max        string
	outDir     string
	noCache    bool
}

func newPreviewCmd(a *app) *cobra.Command {
	f := &previewFlags{}
	cmd := &cobra.Command{
		Use:   "preview <image>",
		Short: "Compute and render preview viewports for a selection",
		Long: `Computes the preview transforms of a selection. Without --value or --max the previews
from the config file are used. With --out-dir every preview is rendered to
<out-dir>/<image>-<name>.png through the preview cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.preview(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.x, "x", 0, "selection left")
	fl.IntVar(&f.y, "y", 0, "selection top")
	fl.IntVar(&f.w, "w", 0, "selection width (0 uses the default selection)")
	fl.IntVar(&f.h, "h", 0, "selection height (0 uses the default selection)")
	fl.StringVarP(&f.aspect, "aspect", "a", "", `aspect ratio, "free", "1.5" or "16:9"`)
	fl.StringVar(&f.name, "name", "preview", "preview name")
	fl.StringVar(&f.side, "side", "width", "fixed side: width|height")
	fl.IntVar(&f.value, "value", 0, "fixed side length in pixels")
	fl.StringVar(&f.max, "max", "", "constrained bounds WxH")
	fl.StringVar(&f.outDir, "out-dir", "", "render previews as PNG into this directory")
	fl.BoolVar(&f.noCache, "no-cache", false, "render without the preview cache")
	return cmd
}

func (f *previewFlags) bindings(a *app) ([]preview.Binding, error) {
	switch {
	case f.value > 0:
		side, err := geom.ParseDimension(strings.ToLower(f.side))
		if err != nil {
			return nil, err
		}
		b := preview.Binding{Name: f.name, Kind: preview.Fixed, Side: side, Value: f.value}
		return []preview.Binding{b}, b.Validate()
	case f.max != "":
		size, err := geom.ParseSize(f.max)
		if err != nil {
			return nil, err
		}
		b := preview.Binding{Name: f.name, Kind: preview.Constrained, MaxWidth: size.W, MaxHeight: size.H}
		return []preview.Binding{b}, b.Validate()
	}
	return a.cfg.Bindings()
}

func (a *app) preview(cmd *cobra.Command, imagePath string, f *previewFlags) error {
	ctx := applog.ContextWithImage(cmd.Context(), imagePath)
	l := applog.WithOperation(a.log, "preview")
	out := cmd.OutOrStdout()

	size, _, err := imageio.Measure(imagePath)
	if err != nil {
		return err
	}
	opts, err := a.selectionOptions(f.aspect)
	if err != nil {
		return err
	}
	if f.w > 0 && f.h > 0 {
		r := geom.R(f.x, f.y, f.w, f.h)
		opts.Initial = &r
	}
	state, err := selection.New(opts)
	if err != nil {
		return err
	}
	bindings, err := f.bindings(a)
	if err != nil {
		return err
	}
	reg := preview.NewRegistry(state)
	defer reg.Close()
	for _, b := range bindings {
		if err := reg.Add(b); err != nil {
			return err
		}
	}
	sel, err := state.Initialize(size)
	if err != nil {
		return err
	}
	if opts.Initial != nil && sel != *opts.Initial {
		l.WarnContext(ctx, "selection does not fit, using the default", "requested", opts.Initial.String(), "used", sel.String())
	}
	rep := state.Reported()
	fmt.Fprintf(out, "selection %d %d %d %d\n", rep.X, rep.Y, rep.W, rep.H)
	for _, b := range reg.Bindings() {
		t, _ := reg.Transform(b.Name)
		fmt.Fprintf(out, "preview %s %v image=%dx%d offset=%.1f,%.1f scale=%.4f\n",
			b.Name, t.Viewport(), t.ImageWidth, t.ImageHeight, t.OffsetX, t.OffsetY, t.Proportion)
	}
	if f.outDir == "" {
		return nil
	}

	r := &previewRenderer{path: imagePath}
	if !f.noCache {
		cache, err := a.openCache(ctx)
		if err != nil {
			return err
		}
		defer cache.Close()
		if r.fingerprint, err = storage.Fingerprint(imagePath); err != nil {
			return err
		}
		r.cache = cache
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	for _, b := range reg.Bindings() {
		t, _ := reg.Transform(b.Name)
		blob, err := r.render(ctx, b, rep, t)
		if err != nil {
			return err
		}
		p := filepath.Join(f.outDir, fmt.Sprintf("%s-%s.png", base, b.Name))
		if err := os.WriteFile(p, blob, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", p)
	}
	return nil
}

// previewRenderer renders PNG previews, going through the cache when one is set.
// The source image is decoded on the first cache miss only.
type previewRenderer struct {
	path        string
	fingerprint string
	cache       *storage.Cache
	src         *imageio.Source
}

func (r *previewRenderer) render(ctx context.Context, b preview.Binding, sel geom.Rect, t preview.Transform) ([]byte, error) {
	gen := func(ctx context.Context) ([]byte, error) {
		if r.src == nil {
			src, err := imageio.Load(ctx, r.path)
			if err != nil {
				return nil, err
			}
			r.src = src
		}
		img := preview.Render(r.src.Image, t)
		if img == nil {
			return nil, fmt.Errorf("preview %q: empty viewport", b.Name)
		}
		return export.EncodePNG(img)
	}
	if r.cache == nil {
		return gen(ctx)
	}
	k := storage.Key{Image: r.fingerprint, Binding: bindingKey(b), Selection: sel, W: t.ViewportWidth, H: t.ViewportHeight}
	blob, err := r.cache.GetOrCreate(ctx, k, gen)
	if err != nil {
		return nil, err
	}
	// a damaged entry is rendered again
	if _, err := export.DecodePNG(bytes.NewReader(blob)); err != nil {
		return gen(ctx)
	}
	return blob, nil
}

func bindingKey(b preview.Binding) string {
	if b.Kind == preview.Constrained {
		return fmt.Sprintf("%s/%v/%dx%d", b.Name, b.Kind, b.MaxWidth, b.MaxHeight)
	}
	return fmt.Sprintf("%s/%v/%v/%d", b.Name, b.Kind, b.Side, b.Value)
}
