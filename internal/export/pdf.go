/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"gocropper/internal/geom"
	"gocropper/internal/imageio"
	"gocropper/internal/preview"
)

// SheetPreview is one rendered preview placed on a crop sheet.
type SheetPreview struct {
	Name      string
	Transform preview.Transform
	Image     image.Image
}

// SheetOptions controls the crop sheet layout. Units are points (pt).
//
// Layout of the single A4 page (more pages only when previews overflow):
//   - title line
//   - annotated source image with the selection outlined
//   - selection metadata
//   - the cropped image
//   - the previews in a row, each with its name and viewport size
type SheetOptions struct {
	Title    string
	Stroke   color.RGBA
	Previews []SheetPreview
}

const (
	sheetW      = 595.0
	sheetH      = 842.0
	sheetMargin = 36.0
	previewBox  = 120.0
)

// WriteCropSheetPDF writes a one-page proof of a crop: source, selection, crop and previews.
func WriteCropSheetPDF(outPath string, src *imageio.Source, sel geom.Rect, crop image.Image, opt SheetOptions) error {
	if src == nil || src.Image == nil {
		return fmt.Errorf("crop sheet: source image is nil")
	}
	if crop == nil {
		return fmt.Errorf("crop sheet: crop image is nil")
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: sheetW, Ht: sheetH},
	})
	title := opt.Title
	if title == "" {
		title = filepath.Base(src.Path)
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("gocropper", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	contentW := sheetW - 2*sheetMargin
	y := sheetMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(sheetMargin, y+12, title)
	y += 28

	// Source with the selection marked
	annotated := Annotate(src.Image, sel, OverlayOptions{Stroke: opt.Stroke})
	size := src.Size()
	w, h := fit(float64(size.W), float64(size.H), contentW, 340)
	if err := placeImage(pdf, "source", annotated, sheetMargin, y, w, h); err != nil {
		return err
	}
	y += h + 18

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Source: %s (%s, %v)", filepath.Base(src.Path), src.Format, size),
		fmt.Sprintf("Selection: x=%d y=%d %v", sel.X, sel.Y, sel.Size()),
		fmt.Sprintf("Aspect: %.4f", float64(geom.Ratio(sel.Size()))),
	}
	for _, ln := range lines {
		pdf.Text(sheetMargin, y, ln)
		y += 13
	}
	y += 6

	cb := crop.Bounds()
	w, h = fit(float64(cb.Dx()), float64(cb.Dy()), contentW, 220)
	if err := placeImage(pdf, "crop", crop, sheetMargin, y, w, h); err != nil {
		return err
	}
	y += h + 18

	x := sheetMargin
	for i, p := range opt.Previews {
		if p.Image == nil {
			continue
		}
		if x+previewBox > sheetW-sheetMargin {
			x = sheetMargin
			y += previewBox + 24
		}
		if y+previewBox+14 > sheetH-sheetMargin {
			pdf.AddPage()
			y = sheetMargin
		}
		pb := p.Image.Bounds()
		w, h := fit(float64(pb.Dx()), float64(pb.Dy()), previewBox, previewBox)
		if err := placeImage(pdf, fmt.Sprintf("preview-%d", i), p.Image, x, y, w, h); err != nil {
			return err
		}
		pdf.SetDrawColor(int(opt.Stroke.R), int(opt.Stroke.G), int(opt.Stroke.B))
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, w, h, "D")
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(x, y+h+10, fmt.Sprintf("%s %v", p.Name, p.Transform.Viewport()))
		x += previewBox + 12
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func placeImage(pdf *gofpdf.Fpdf, name string, img image.Image, x, y, w, h float64) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
	if pdf.Err() {
		return fmt.Errorf("register %s: %w", name, pdf.Error())
	}
	pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
	return nil
}

// fit scales w x h down to the box, never up.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	s := min(maxW/w, maxH/h, 1)
	return w * s, h * s
}
