// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mip

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/gogpu/vrrbench/internal/image"
)

// ErrAssetLoad wraps every failure to produce the test assets. It is fatal
// at startup.
var ErrAssetLoad = errors.New("mip: asset load failed")

// errNotFound tells a MultiLoader to try the next loader.
var errNotFound = errors.New("mip: asset not found")

// Loader resolves a test image by asset name.
type Loader interface {
	LoadImage(name string, f image.Format) (*image.ImageBuf, error)
}

// assetExts are tried, in order, when name has no extension.
var assetExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp", ".tga"}

// FSLoader loads images from a file system.
type FSLoader struct {
	FS fs.FS
}

// LoadImage opens name, or name with one of the supported extensions
// appended.
func (l FSLoader) LoadImage(name string, f image.Format) (*image.ImageBuf, error) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range assetExts {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		if _, err := fs.Stat(l.FS, c); err != nil {
			continue
		}
		return image.Load(l.FS, c, f)
	}
	return nil, fmt.Errorf("%w: %s", errNotFound, name)
}

// MultiLoader tries each loader in turn until one knows the asset.
type MultiLoader []Loader

// LoadImage returns the first hit. A loader that finds the asset but fails
// to decode it ends the search.
func (m MultiLoader) LoadImage(name string, f image.Format) (*image.ImageBuf, error) {
	for _, l := range m {
		img, err := l.LoadImage(name, f)
		if errors.Is(err, errNotFound) {
			continue
		}
		return img, err
	}
	return nil, fmt.Errorf("%w: %s", errNotFound, name)
}
