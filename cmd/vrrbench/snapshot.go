// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/vrrbench"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/sim"
	"github.com/gogpu/vrrbench/snapshot"
)

// handleSnapshot renders one frame on the software device and writes its
// levels, plus an optional filtered preview at a given on-screen size.
func handleSnapshot(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	cf := registerConfig(fs)
	var (
		dir      = fs.String("o", "snapshot", "output directory")
		previewW = fs.Int("preview-width", 0, "also write a preview this many pixels wide")
		previewH = fs.Int("preview-height", 0, "preview height (default keeps the aspect ratio)")
	)
	format := snapshot.PNG
	fs.TextVar(&format, "format", snapshot.PNG, "image format: png, webp")
	script := sim.Static
	fs.TextVar(&script, "script", sim.Static, "pose script: static, yaw, nod, roll, figure8")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setupLogger(*cf.verbose)
	_, cfg, err := cf.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	sys, err := vrrbench.New(ctx, cfg,
		vrrbench.WithPoseSource(sim.NewPoseSource(script, 1)),
		vrrbench.WithSignals(host.LogSignals{}))
	if err != nil {
		return err
	}
	defer func() { _ = sys.Close() }()

	if _, err := sys.Update(ctx, host.NewTick(0, 1/host.DefaultRate)); err != nil {
		return err
	}
	tex, _, ok := sys.Surface().Current()
	if !ok {
		return errors.New("snapshot: no frame presented")
	}

	paths, err := snapshot.Write(*dir, tex, format)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}

	if *previewW <= 0 {
		return nil
	}
	h := *previewH
	if h <= 0 {
		w, th := tex.Size()
		h = max(1, *previewW*th/w)
	}
	preview, err := material.Sampler{Filter: cfg.Filter}.Render(tex, *previewW, h)
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, fmt.Sprintf("preview-%dx%d-%s%s", *previewW, h, cfg.Filter, format.Ext()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := snapshot.Encode(f, preview, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	fmt.Fprintln(stdout, path)
	return nil
}
