// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when no decoder accepts the data.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// decoders are matched by magic prefix; '?' matches any byte.
//
// TGA has no magic and the tga package registers itself with an empty
// prefix, which image.Decode would try before anything registered later.
// Decoding therefore never goes through the image.Decode registry; TGA is
// chosen by file extension in Load.
var decoders = []struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"bmp", "BM", bmp.Decode},
	{"tiff", "II*\x00", tiff.Decode},
	{"tiff", "MM\x00*", tiff.Decode},
	{"webp", "RIFF????WEBP", webp.Decode},
}

func matchMagic(magic string, b []byte) bool {
	if len(b) < len(magic) {
		return false
	}
	for i := range len(magic) {
		if magic[i] != '?' && magic[i] != b[i] {
			return false
		}
	}
	return true
}

// Decode decodes PNG, JPEG, BMP, TIFF or WebP data into a buffer in
// format f. The format is detected from the leading bytes.
func Decode(r io.Reader, f Format) (*ImageBuf, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if len(head) == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("image: decode: %w", err)
		}
		return nil, ErrEmptyData
	}
	for _, d := range decoders {
		if !matchMagic(d.magic, head) {
			continue
		}
		img, err := d.decode(br)
		if err != nil {
			return nil, fmt.Errorf("image: decode %s: %w", d.name, err)
		}
		return FromStdImage(img, f)
	}
	return nil, ErrUnsupportedFormat
}

// DecodeTGA decodes Truevision TGA data into a buffer in format f.
func DecodeTGA(r io.Reader, f Format) (*ImageBuf, error) {
	img, err := tga.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode tga: %w", err)
	}
	return FromStdImage(img, f)
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte, f Format) (*ImageBuf, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data), f)
}

// Load opens name in fsys and decodes it. Names ending in .tga are decoded
// as TGA; everything else is detected from its content.
func Load(fsys fs.FS, name string, f Format) (*ImageBuf, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if strings.EqualFold(path.Ext(name), ".tga") {
		return DecodeTGA(file, f)
	}
	return Decode(file, f)
}

// FromStdImage converts any image.Image into a buffer in format f.
// Colors are un-premultiplied so the stored bytes are straight alpha.
func FromStdImage(img image.Image, f Format) (*ImageBuf, error) {
	bounds := img.Bounds()
	buf, err := NewImageBuf(bounds.Dx(), bounds.Dy(), f)
	if err != nil {
		return nil, err
	}

	// Fast path for the common NRGBA/RGBA sources.
	if src, ok := img.(*image.NRGBA); ok && f == FormatRGBA8 {
		for y := range buf.height {
			off := (y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride + (bounds.Min.X-src.Rect.Min.X)*4
			copy(buf.RowBytes(y), src.Pix[off:off+buf.stride])
		}
		return buf, nil
	}

	for y := range buf.height {
		for x := range buf.width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			_ = buf.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}
	return buf, nil
}

// ToStdImage returns the buffer as an *image.NRGBA copy.
func (b *ImageBuf) ToStdImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := range b.height {
		row := img.Pix[y*img.Stride : y*img.Stride+b.width*4]
		if b.format == FormatRGBA8 {
			copy(row, b.RowBytes(y))
			continue
		}
		src := b.RowBytes(y)
		for x := 0; x < len(src); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = b.format.Decode(src[x : x+4])
		}
	}
	return img
}

// EncodePNG writes the buffer as PNG.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode png: %w", err)
	}
	return nil
}
