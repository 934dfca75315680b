// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

import (
	"errors"
	"testing"
)

func TestNewImageBuf(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		format  Format
		wantErr error
	}{
		{"valid rgba", 16, 8, FormatRGBA8, nil},
		{"valid bgra", 1, 1, FormatBGRA8, nil},
		{"zero width", 0, 8, FormatRGBA8, ErrInvalidDimensions},
		{"negative height", 8, -1, FormatRGBA8, ErrInvalidDimensions},
		{"bad format", 8, 8, Format(99), ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewImageBuf(tt.width, tt.height, tt.format)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewImageBuf() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got, want := buf.ByteSize(), tt.width*tt.height*4; got != want {
				t.Errorf("ByteSize() = %d, want %d", got, want)
			}
		})
	}
}

func TestFormatByteOrder(t *testing.T) {
	tests := []struct {
		format Format
		want   [4]byte
	}{
		{FormatRGBA8, [4]byte{10, 20, 30, 40}},
		{FormatBGRA8, [4]byte{30, 20, 10, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			buf, _ := NewImageBuf(1, 1, tt.format)
			if err := buf.SetRGBA(0, 0, 10, 20, 30, 40); err != nil {
				t.Fatal(err)
			}
			var got [4]byte
			copy(got[:], buf.Data())
			if got != tt.want {
				t.Errorf("bytes = %v, want %v", got, tt.want)
			}
			r, g, b, a := buf.GetRGBA(0, 0)
			if r != 10 || g != 20 || b != 30 || a != 40 {
				t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (10,20,30,40)", r, g, b, a)
			}
		})
	}
}

func TestFill(t *testing.T) {
	buf, _ := NewImageBuf(7, 5, FormatBGRA8)
	buf.Fill(255, 128, 0, 255)
	for y := range 5 {
		for x := range 7 {
			r, g, b, a := buf.GetRGBA(x, y)
			if r != 255 || g != 128 || b != 0 || a != 255 {
				t.Fatalf("pixel (%d,%d) = (%d,%d,%d,%d), want (255,128,0,255)", x, y, r, g, b, a)
			}
		}
	}
}

func TestSetRGBAOutOfBounds(t *testing.T) {
	buf, _ := NewImageBuf(2, 2, FormatRGBA8)
	if err := buf.SetRGBA(2, 0, 1, 1, 1, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetRGBA() error = %v, want ErrOutOfBounds", err)
	}
	if r, g, b, a := buf.GetRGBA(-1, 0); r|g|b|a != 0 {
		t.Error("GetRGBA() out of range should return zero")
	}
}

func TestConvertAndEqual(t *testing.T) {
	src, _ := NewImageBuf(3, 2, FormatRGBA8)
	src.Fill(1, 2, 3, 4)

	bgra, err := src.Convert(FormatBGRA8)
	if err != nil {
		t.Fatal(err)
	}
	if bgra.Equal(src) {
		t.Error("buffers in different formats should not be Equal")
	}
	back, _ := bgra.Convert(FormatRGBA8)
	if !back.Equal(src) {
		t.Error("round trip through BGRA8 changed the bytes")
	}
	clone := src.Clone()
	clone.Data()[0] = 99
	if src.Data()[0] == 99 {
		t.Error("Clone shares storage with the original")
	}
}

func TestFromRaw(t *testing.T) {
	if _, err := FromRaw(make([]byte, 15), 2, 2, FormatRGBA8); !errors.Is(err, ErrDataTooSmall) {
		t.Errorf("FromRaw() error = %v, want ErrDataTooSmall", err)
	}
	buf, err := FromRaw(make([]byte, 20), 2, 2, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	if buf.ByteSize() != 16 {
		t.Errorf("ByteSize() = %d, want 16", buf.ByteSize())
	}
}
