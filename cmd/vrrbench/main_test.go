// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/vrrbench"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/journal"
)

func TestHandleConfig(t *testing.T) {
	var out bytes.Buffer
	err := handleConfig([]string{"-filter", "nearest", "-depth", "40", "-width", "100", "-height", "50"}, &out)
	if err != nil {
		t.Fatalf("handleConfig() error = %v", err)
	}

	o, err := config.Parse(out.Bytes())
	if err != nil {
		t.Fatalf("output does not load back: %v\n%s", err, out.String())
	}
	if o.Filter != config.FilterNearest {
		t.Errorf("Filter = %v, want nearest", o.Filter)
	}
	if want := 40 * config.Inch; o.DepthMeters != want {
		t.Errorf("DepthMeters = %v, want %v", o.DepthMeters, want)
	}
	if !strings.Contains(out.String(), "render 100x50") {
		t.Errorf("output lacks render size:\n%s", out.String())
	}
}

func TestHandleConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.hujson")
	data := `{
		// headset A
		"headlock": "full",
		"filter": "bilinear",
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := handleConfig([]string{"-config", path, "-filter", "bicubic"}, &out); err != nil {
		t.Fatalf("handleConfig() error = %v", err)
	}
	o, err := config.Parse(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if o.Headlock != config.HeadlockFull {
		t.Errorf("Headlock = %v, want full from the file", o.Headlock)
	}
	if o.Filter != config.FilterBicubic {
		t.Errorf("Filter = %v, want bicubic from the flag", o.Filter)
	}
}

func TestHandleConfigInvalid(t *testing.T) {
	err := handleConfig([]string{"-buffers", "0"}, &bytes.Buffer{})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("handleConfig() error = %v, want ErrInvalid", err)
	}
}

func TestHandleReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "frames.db")

	j, err := journal.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	id, err := j.Begin("fixture")
	if err != nil {
		t.Fatal(err)
	}
	for i := range 6 {
		r := journal.FrameRecord{
			Now:      float64(i) / 90,
			Interval: 1.0 / 90,
			Outcome:  journal.OutcomePresented,
			Wait:     time.Duration(i+1) * time.Millisecond,
		}
		if i == 3 {
			r.Outcome = journal.OutcomeNoDrawable
		}
		if err := j.Record(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	html := filepath.Join(dir, "pacing.html")
	var out bytes.Buffer
	if err := handleReport([]string{"-journal", dbPath, "-o", html}, &out); err != nil {
		t.Fatalf("handleReport() error = %v", err)
	}
	for _, want := range []string{id, "frames      6", "presented   5", "no_drawable"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, out.String())
		}
	}
	if fi, err := os.Stat(html); err != nil || fi.Size() == 0 {
		t.Errorf("report file not written: %v", err)
	}

	out.Reset()
	if err := handleReport([]string{"-journal", dbPath, "-list"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "fixture") {
		t.Errorf("session list lacks label:\n%s", out.String())
	}
}

func TestHandleReportRequiresJournal(t *testing.T) {
	if err := handleReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("handleReport() error = nil without -journal")
	}
}

func TestHandleSnapshot(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	err := handleSnapshot([]string{
		"-o", dir, "-width", "64", "-height", "32", "-filter", "nearest",
		"-image", "builtin:grid", "-preview-width", "16",
	}, &out)
	var se *vrrbench.StartupError
	if errors.As(err, &se) && se.Stage == vrrbench.StageMaterial {
		t.Skipf("surface material unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("handleSnapshot() error = %v", err)
	}

	cfg := config.MustNew(func() config.Options {
		o := config.Default()
		o.Width, o.Height = 64, 32
		return o
	}())
	for level := range cfg.LevelCount() {
		if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("level-%02d.png", level))); err != nil {
			t.Errorf("level %d not written: %v", level, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "preview-16x8-nearest.png")); err != nil {
		t.Errorf("preview not written: %v", err)
	}
}

func TestHandleRunHeadless(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "frames.db")
	var out bytes.Buffer
	err := handleRun([]string{
		"-frames", "5", "-width", "64", "-height", "32", "-filter", "nearest",
		"-image", "builtin:grid", "-script", "yaw", "-journal", dbPath,
		"-snapshot", filepath.Join(dir, "levels"), "-snapshot-format", "webp",
	}, &out)
	var se *vrrbench.StartupError
	if errors.As(err, &se) && se.Stage == vrrbench.StageMaterial {
		t.Skipf("surface material unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("handleRun() error = %v", err)
	}
	for _, want := range []string{"frames 5 presented 5", "frames      5", "wrote 7 levels"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "levels", "level-00.webp")); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestHandleRunUnknownDevice(t *testing.T) {
	err := handleRun([]string{"-frames", "1", "-device", "nope"}, &bytes.Buffer{})
	var se *vrrbench.StartupError
	if !errors.As(err, &se) || se.Stage != vrrbench.StageDevice {
		t.Errorf("handleRun() error = %v, want a device StartupError", err)
	}
}
