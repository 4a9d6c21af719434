/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset(" Avatar ")
	if err != nil || p.Name != PresetAvatar || !p.Square {
		t.Fatalf("got %+v, %v", p, err)
	}
	if _, err := LookupPreset("poster"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
	if names := PresetNames(); len(names) != 4 || names[0] != "avatar" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestPresetApply(t *testing.T) {
	img := solid(2000, 1000, white)
	if b := presets[PresetWeb].Apply(img).Bounds(); b.Dx() != 1600 || b.Dy() != 800 {
		t.Fatalf("web: %v", b)
	}
	if b := presets[PresetAvatar].Apply(img).Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("avatar: %v", b)
	}
	small := solid(100, 60, white)
	if got := presets[PresetThumb].Apply(small); got != small {
		t.Fatalf("small images must pass through unchanged")
	}
	if b := presets[PresetAvatar].Apply(small).Bounds(); b.Dx() != 60 || b.Dy() != 60 {
		t.Fatalf("avatar of small image: %v", b)
	}
}

func TestExportPresets(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportPresets(dir, "cat", solid(500, 400, white), []string{"original", "thumb"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []string{filepath.Join(dir, "cat-original.png"), filepath.Join(dir, "cat-thumb.png")}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("path %d: got %s want %s", i, paths[i], p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
	if _, err := ExportPresets(dir, "cat", solid(5, 5, white), []string{"nope"}); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}
