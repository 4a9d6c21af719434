/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Render draws what a viewport shows: src scaled to the transform's image size and shifted
// by its offsets, clipped to the viewport. It returns nil for an empty viewport.
func Render(src image.Image, t Transform) *image.RGBA {
	if t.ViewportWidth <= 0 || t.ViewportHeight <= 0 || t.ImageWidth <= 0 || t.ImageHeight <= 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, t.ViewportWidth, t.ViewportHeight))
	ox := int(math.Round(t.OffsetX))
	oy := int(math.Round(t.OffsetY))
	dr := image.Rect(-ox, -oy, -ox+t.ImageWidth, -oy+t.ImageHeight)
	draw.CatmullRom.Scale(dst, dr, src, src.Bounds(), draw.Src, nil)
	return dst
}
