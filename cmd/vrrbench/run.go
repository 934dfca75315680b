// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/vrrbench"
	"github.com/gogpu/vrrbench/backend"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/host/window"
	"github.com/gogpu/vrrbench/journal"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/sim"
	"github.com/gogpu/vrrbench/snapshot"
)

func handleRun(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cf := registerConfig(fs)
	var (
		frames      = fs.Int("frames", 0, "frames to run headless (0 runs until interrupted)")
		rate        = fs.Float64("rate", host.DefaultRate, "headless refresh rate in Hz")
		realtime    = fs.Bool("realtime", false, "pace headless ticks with the wall clock")
		useWindow   = fs.Bool("window", false, "show a desktop preview window")
		device      = fs.String("device", backend.BackendSoftware, "drawable device: software, wgpu, auto")
		seed        = fs.Uint64("seed", 1, "pose script random seed")
		dropout     = fs.Float64("dropout", 0, "fraction of pose queries that return nothing")
		planes      = fs.Bool("planes", false, "stream a scripted room of plane anchors")
		deny        = fs.Bool("deny", false, "deny hand tracking and world sensing")
		journalPath = fs.String("journal", "", "record frames into this SQLite file")
		label       = fs.String("label", "", "journal session label")
		snapDir     = fs.String("snapshot", "", "write the last presented drawable's levels here")
	)
	script := sim.Static
	fs.TextVar(&script, "script", sim.Static, "pose script: static, yaw, nod, roll, figure8")
	snapFormat := snapshot.PNG
	fs.TextVar(&snapFormat, "snapshot-format", snapshot.PNG, "snapshot format: png, webp")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setupLogger(*cf.verbose)
	_, cfg, err := cf.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := sim.NewPoseSource(script, *seed)
	src.DropoutRate = *dropout
	opts := []vrrbench.Option{
		vrrbench.WithPoseSource(src),
		vrrbench.WithSignals(host.LogSignals{}),
	}
	if *deny {
		opts = append(opts, vrrbench.WithTracking(sim.DenyAll(), &sim.Runner{}))
	}
	if *planes {
		opts = append(opts, vrrbench.WithPlanes(sim.Stream(ctx, sim.Room(), 250*time.Millisecond)))
	}

	b, err := backend.Open(*device)
	if err != nil {
		return &vrrbench.StartupError{Stage: vrrbench.StageDevice, Err: err}
	}
	defer b.Close()
	opts = append(opts, vrrbench.WithDevice(b.Device()))

	var j *journal.Journal
	if *journalPath != "" {
		if j, err = journal.Open(*journalPath); err != nil {
			return &vrrbench.StartupError{Stage: vrrbench.StageJournal, Err: err}
		}
		defer func() { _ = j.Close() }()
		if *label == "" {
			*label = fmt.Sprintf("%s %s %s", script, cfg.Filter, cfg.Headlock)
		}
		opts = append(opts, vrrbench.WithJournal(j, *label))
	}

	sys, err := vrrbench.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sys.Close() }()

	if err := b.AttachSurface(sys.Surface(), cfg.PixelFormat); err != nil {
		return &vrrbench.StartupError{Stage: vrrbench.StageMaterial, Err: err}
	}

	var driver host.Driver = host.Headless{Rate: *rate, Frames: *frames, Realtime: *realtime}
	if *useWindow {
		driver = &window.Window{
			Title:   "vrrbench " + cfg.Filter.String(),
			Surface: sys.Surface(),
			Sampler: material.Sampler{Filter: cfg.Filter},
		}
	}

	start := time.Now()
	runErr := sys.Run(ctx, driver)
	st := sys.Stats()
	fmt.Fprintf(stdout, "frames %d presented %d no-drawable %d command-buffer %d in %v\n",
		st.Frames, st.Presented, st.NoDrawable, st.CommandBuffer, time.Since(start).Round(time.Millisecond))

	if *snapDir != "" {
		if tex, _, ok := sys.Surface().Current(); ok {
			paths, err := snapshot.Write(*snapDir, tex, snapFormat)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %d levels to %s\n", len(paths), *snapDir)
		}
	}

	if j != nil {
		records, err := j.Records(j.Session())
		if err != nil {
			return err
		}
		printSummary(stdout, journal.Summarize(records))
	}
	return runErr
}

func printSummary(w io.Writer, s journal.Summary) {
	fmt.Fprintf(w, "frames      %d\n", s.Frames)
	fmt.Fprintf(w, "presented   %d (drop rate %.2f%%)\n", s.Presented, s.DropRate()*100)
	for _, o := range []journal.Outcome{journal.OutcomeNoPose, journal.OutcomeNoDrawable, journal.OutcomeCommandBuffer, journal.OutcomePresentError} {
		if n := s.Dropped[o]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", o, n)
		}
	}
	fmt.Fprintf(w, "gpu wait    mean %v stddev %v\n", s.WaitMean, s.WaitStdDev)
	fmt.Fprintf(w, "            p50 %v p95 %v p99 %v\n", s.WaitP50, s.WaitP95, s.WaitP99)
	fmt.Fprintf(w, "populate    mean %v\n", s.PopulateMean)
	fmt.Fprintf(w, "interval    mean %v\n", s.IntervalMean)
}
