/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt(10, 20)) || !r.Contains(Pt(110, 70)) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in != R(15, 25, 90, 40) {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if r.Right() != 110 || r.Bottom() != 70 {
		t.Fatalf("unexpected far edges: right=%d bottom=%d", r.Right(), r.Bottom())
	}
}

func TestAspectRatioDerivationTruncates(t *testing.T) {
	a := AspectRatio(1.5)
	if got := a.HeightFor(100); got != 66 {
		t.Fatalf("HeightFor(100) = %d, want 66", got)
	}
	if got := a.WidthFor(33); got != 49 {
		t.Fatalf("WidthFor(33) = %d, want 49", got)
	}
}

func TestAspectRatioValid(t *testing.T) {
	for _, bad := range []AspectRatio{AspectRatio(math.NaN()), AspectRatio(math.Inf(1)), -1} {
		if bad.Valid() {
			t.Fatalf("expected %v to be invalid", bad)
		}
	}
	if !Free.Valid() || !AspectRatio(2).Valid() {
		t.Fatalf("expected free and 2 to be valid")
	}
}

func TestAspectRatioMatches(t *testing.T) {
	a := AspectRatio(2)
	if !a.Matches(R(0, 0, 200, 100)) {
		t.Fatalf("200x100 should match ratio 2")
	}
	if a.Matches(R(0, 0, 200, 150)) {
		t.Fatalf("200x150 should not match ratio 2")
	}
	if !Free.Matches(R(0, 0, 3, 700)) {
		t.Fatalf("free ratio matches everything")
	}
}

func TestClampPrefersLowerBound(t *testing.T) {
	if got := Clamp(5, 10, 0); got != 10 {
		t.Fatalf("Clamp with inverted range = %d, want 10", got)
	}
	if got := Clamp(-3, -1, 4); got != -1 {
		t.Fatalf("Clamp(-3,-1,4) = %d", got)
	}
}

func TestParseDimension(t *testing.T) {
	if d, err := ParseDimension("h"); err != nil || d != Height {
		t.Fatalf("ParseDimension(h) = %v, %v", d, err)
	}
	if _, err := ParseDimension("depth"); err == nil {
		t.Fatalf("expected error for unknown dimension")
	}
}

func TestParseAspectRatio(t *testing.T) {
	cases := map[string]AspectRatio{"free": Free, "": Free, "2": 2, "16:9": AspectRatio(16.0 / 9.0), " 1:1 ": 1}
	for in, want := range cases {
		got, err := ParseAspectRatio(in)
		if err != nil || got != want {
			t.Fatalf("ParseAspectRatio(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"-1", "4:0", "wide", "nan"} {
		if _, err := ParseAspectRatio(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseSize(t *testing.T) {
	if s, err := ParseSize("320x200"); err != nil || s != Sz(320, 200) {
		t.Fatalf("ParseSize = %v, %v", s, err)
	}
	for _, bad := range []string{"320", "0x10", "axb", "10x-1"} {
		if _, err := ParseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
