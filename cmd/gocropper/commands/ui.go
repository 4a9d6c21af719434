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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocropper/internal/export"
	"gocropper/internal/geom"
	"gocropper/internal/imageio"
	applog "gocropper/internal/log"
	"gocropper/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	var aspect, out string
	cmd := &cobra.Command{
		Use:   "ui <image>",
		Short: "Open the interactive cropper (build with -tags fyne)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := args[0]
			opts, err := a.selectionOptions(aspect)
			if err != nil {
				return err
			}
			bindings, err := a.cfg.Bindings()
			if err != nil {
				return err
			}
			if out == "" {
				base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
				out = base + "-crop.png"
			}
			ctx := applog.ContextWithImage(cmd.Context(), imagePath)
			l := applog.WithOperation(a.log, "ui")
			session.Image = imagePath
			return ui.Run(ui.Config{
				Image:     imagePath,
				Selection: opts,
				Previews:  bindings,
				History:   a.cfg.History.Config(),
				OnSave: func(sel geom.Rect) error {
					src, err := imageio.Load(ctx, imagePath)
					if err != nil {
						return err
					}
					crop, err := imageio.Crop(src.Image, sel)
					if err != nil {
						return err
					}
					if err := export.WritePNG(out, crop); err != nil {
						return err
					}
					l.InfoContext(ctx, "crop saved", "out", out, "selection", sel.String())
					fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
					return nil
				},
			})
		},
	}
	cmd.Flags().StringVarP(&aspect, "aspect", "a", "", `aspect ratio, "free", "1.5" or "16:9"`)
	cmd.Flags().StringVarP(&out, "out", "o", "", "crop file written on save (default <image>-crop.png)")
	return cmd
}
