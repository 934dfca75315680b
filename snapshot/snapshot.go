// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package snapshot dumps the mip levels of a drawable to image files.
package snapshot

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/internal/logging"
)

// ErrUnreadable is returned for textures that cannot be read back.
var ErrUnreadable = errors.New("snapshot: texture is not readable")

// Format is the output file format.
type Format uint8

const (
	PNG Format = iota
	WebP
)

// ParseFormat parses "png" or "webp".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	default:
		return 0, fmt.Errorf("snapshot: unknown format %q", s)
	}
}

func (f Format) String() string {
	if f == WebP {
		return "webp"
	}
	return "png"
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + f.String() }

// Encode writes buf to w. WebP output is lossless.
func Encode(w io.Writer, buf *image.ImageBuf, f Format) error {
	img := buf.ToStdImage()
	if f == WebP {
		return nativewebp.Encode(w, img, nil)
	}
	return png.Encode(w, img)
}

// Write saves every level of tex to dir as level-NN.<ext> and returns the
// paths written, in level order. Levels are read back in order and encoded
// concurrently. On error no paths are returned.
func Write(dir string, tex compositor.Texture, f Format) ([]string, error) {
	reader, ok := tex.(compositor.LevelReader)
	if !ok {
		return nil, ErrUnreadable
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	paths := make([]string, tex.LevelCount())
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for level := range tex.LevelCount() {
		buf, err := reader.ReadLevel(level)
		if err != nil {
			_ = eg.Wait()
			return nil, fmt.Errorf("snapshot: read level %d: %w", level, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("level-%02d%s", level, f.Ext()))
		eg.Go(func() error {
			if err := writeFile(path, buf, f); err != nil {
				return err
			}
			paths[level] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	logging.Logger().Info("snapshot: written", "dir", dir, "levels", len(paths), "format", f)
	return paths, nil
}

func writeFile(path string, buf *image.ImageBuf, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := Encode(out, buf, f); err != nil {
		_ = out.Close()
		return fmt.Errorf("snapshot: encode %s: %w", filepath.Base(path), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
