/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"gocropper/internal/drag"
	"gocropper/internal/export"
	"gocropper/internal/gesture"
	"gocropper/internal/imageio"
	applog "gocropper/internal/log"
	"gocropper/internal/preview"
	"gocropper/internal/selection"
	"gocropper/internal/undo"
)

type replayFlags struct {
	aspect    string
	out       string
	presets   []string
	presetDir string
	pdf       string
	copy      bool
	quiet     bool
}

func newReplayCmd(a *app) *cobra.Command {
	f := &replayFlags{}
	cmd := &cobra.Command{
		Use:   "replay <image> <script>",
		Short: "Run a recorded gesture script against an image and export the crop",
		Long: `Replays a gesture script (down/move/touch/leave/up/undo/redo, one per line) through the
selection engine and prints every step. The final selection can be written as a PNG,
as preset renditions, or as a PDF crop sheet.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.replay(cmd, args[0], args[1], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.aspect, "aspect", "a", "", `aspect ratio, "free", "1.5" or "16:9"`)
	fl.StringVarP(&f.out, "out", "o", "", "write the crop as PNG")
	fl.StringSliceVar(&f.presets, "preset", nil, "export presets: "+strings.Join(export.PresetNames(), ","))
	fl.StringVar(&f.presetDir, "preset-dir", ".", "directory for preset files")
	fl.StringVar(&f.pdf, "pdf", "", "write a PDF crop sheet")
	fl.BoolVar(&f.copy, "copy", false, "copy the final selection to the clipboard")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "print only the final selection")
	return cmd
}

func (a *app) replay(cmd *cobra.Command, imagePath, scriptPath string, f *replayFlags) error {
	ctx := applog.ContextWithImage(cmd.Context(), imagePath)
	l := applog.WithOperation(a.log, "replay")
	out := cmd.OutOrStdout()

	sf, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	script, perrs := gesture.ParseReader(sf)
	sf.Close()
	if len(perrs) > 0 {
		for _, e := range perrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%s\n", scriptPath, e.Error())
		}
		return fmt.Errorf("%s: %d malformed event(s)", scriptPath, len(perrs))
	}

	src, err := imageio.Load(ctx, imagePath)
	if err != nil {
		return err
	}
	opts, err := a.selectionOptions(f.aspect)
	if err != nil {
		return err
	}
	state, err := selection.New(opts)
	if err != nil {
		return err
	}
	session.Image = imagePath
	session.Selection = state.Selection

	reg := preview.NewRegistry(state)
	defer reg.Close()
	bindings, err := a.cfg.Bindings()
	if err != nil {
		return err
	}
	for _, b := range bindings {
		if err := reg.Add(b); err != nil {
			return err
		}
	}
	if _, err := state.Initialize(src.Size()); err != nil {
		return err
	}

	tracker := undo.NewTracker(undo.NewHistory(a.cfg.History.Config()), src.Path, state)
	ctrl := drag.New(state, drag.OnGestureEnd(tracker.Record), drag.WithLogger(l))
	final := gesture.Replay(ctrl, tracker, script, func(st gesture.Step) {
		if f.quiet {
			return
		}
		mark := "ok"
		if !st.Accepted {
			mark = "ignored"
		}
		fmt.Fprintf(out, "%4d  %-26s %-8s %v\n", st.Event.LineNo, st.Event, mark, st.Selection)
	})
	l.InfoContext(ctx, "replay finished", "events", len(script.Events), "selection", final.String())

	rep := state.Reported()
	fmt.Fprintf(out, "selection %d %d %d %d\n", rep.X, rep.Y, rep.W, rep.H)
	var sheet []export.SheetPreview
	for _, b := range reg.Bindings() {
		t, _ := reg.Transform(b.Name)
		fmt.Fprintf(out, "preview %s %v image=%dx%d offset=%.1f,%.1f scale=%.4f\n",
			b.Name, t.Viewport(), t.ImageWidth, t.ImageHeight, t.OffsetX, t.OffsetY, t.Proportion)
		if f.pdf == "" {
			continue
		}
		if img := preview.Render(src.Image, t); img != nil {
			sheet = append(sheet, export.SheetPreview{Name: b.Name, Transform: t, Image: img})
		}
	}

	if f.copy {
		if err := clipboard.WriteAll(fmt.Sprintf("%d,%d,%d,%d", rep.X, rep.Y, rep.W, rep.H)); err != nil {
			l.WarnContext(ctx, "clipboard unavailable", "err", err)
		}
	}
	if f.out == "" && len(f.presets) == 0 && f.pdf == "" {
		return nil
	}

	crop, err := imageio.Crop(src.Image, rep)
	if err != nil {
		return err
	}
	if f.out != "" {
		if err := export.WritePNG(f.out, crop); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", f.out)
	}
	if len(f.presets) > 0 {
		base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
		paths, err := export.ExportPresets(f.presetDir, base, crop, f.presets)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(out, "wrote", p)
		}
	}
	if f.pdf != "" {
		opt := export.SheetOptions{Title: filepath.Base(imagePath), Previews: sheet}
		if err := export.WriteCropSheetPDF(f.pdf, src, rep, crop, opt); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", f.pdf)
	}
	return nil
}
