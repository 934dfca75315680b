// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

import "testing"

func TestGenerateMipmaps(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantLevels int
	}{
		{"64x64 square", 64, 64, 7},
		{"128x64 rectangle", 128, 64, 8},
		{"1x1 minimum", 1, 1, 1},
		{"1920x1080", 1920, 1080, 11},
		{"100x50 odd dimensions", 100, 50, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewImageBuf(tt.width, tt.height, FormatRGBA8)
			if err != nil {
				t.Fatalf("NewImageBuf() error = %v", err)
			}
			chain := GenerateMipmaps(src)
			if got := chain.NumLevels(); got != tt.wantLevels {
				t.Fatalf("NumLevels() = %d, want %d", got, tt.wantLevels)
			}
			if chain.Level(0) != src {
				t.Error("level 0 should be the source buffer")
			}
			for i := range chain.NumLevels() {
				w, h := LevelSize(tt.width, tt.height, i)
				lvl := chain.Level(i)
				if lvl.Width() != w || lvl.Height() != h {
					t.Errorf("level %d = %dx%d, want %dx%d", i, lvl.Width(), lvl.Height(), w, h)
				}
			}
		})
	}
}

func TestGenerateMipmapsBoxFilter(t *testing.T) {
	src, _ := NewImageBuf(2, 2, FormatBGRA8)
	_ = src.SetRGBA(0, 0, 0, 0, 0, 255)
	_ = src.SetRGBA(1, 0, 200, 0, 0, 255)
	_ = src.SetRGBA(0, 1, 0, 100, 0, 255)
	_ = src.SetRGBA(1, 1, 0, 0, 40, 255)

	chain := GenerateMipmaps(src)
	r, g, b, a := chain.Level(1).GetRGBA(0, 0)
	if r != 50 || g != 25 || b != 10 || a != 255 {
		t.Errorf("level 1 = (%d,%d,%d,%d), want (50,25,10,255)", r, g, b, a)
	}
}

func TestGenerateMipmapsNil(t *testing.T) {
	if GenerateMipmaps(nil) != nil {
		t.Error("GenerateMipmaps(nil) should return nil")
	}
	var chain *MipmapChain
	if chain.NumLevels() != 0 || chain.Level(0) != nil {
		t.Error("nil chain should report no levels")
	}
}

func TestLevelCount(t *testing.T) {
	tests := []struct{ w, h, want int }{
		{1, 1, 1}, {2, 1, 2}, {3, 3, 2}, {4, 4, 3}, {2181, 1908, 12}, {0, 0, 0},
	}
	for _, tt := range tests {
		if got := LevelCount(tt.w, tt.h); got != tt.want {
			t.Errorf("LevelCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}
