// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vrrbench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"image/png"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/vrrbench/anchors"
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/journal"
	"github.com/gogpu/vrrbench/mip"
	"github.com/gogpu/vrrbench/placement"
	"github.com/gogpu/vrrbench/pose"
	"github.com/gogpu/vrrbench/sim"
	"github.com/gogpu/vrrbench/tracking"
)

const chartName = "chart"

func chartColor(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x * 4), G: 90, B: uint8(y * 8), A: 255}
}

func chartLoader(t *testing.T, w, h int) mip.Loader {
	t.Helper()
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, chartColor(x, y))
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return mip.FSLoader{FS: fstest.MapFS{chartName + ".png": {Data: buf.Bytes()}}}
}

func testConfig(t *testing.T, mod func(*config.Options)) config.RenderConfig {
	t.Helper()
	o := config.Default()
	o.Width, o.Height = 64, 32
	o.TestImage = chartName
	o.Filter = config.FilterNearest
	o.DrawableTimeout = 0
	o.MaxPlanes = 16
	if mod != nil {
		mod(&o)
	}
	c, err := config.New(o)
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}
	return c
}

// newTestSystem starts a system on the software device. It skips when the
// shader compiler cannot build the surface material on this platform.
func newTestSystem(t *testing.T, cfg config.RenderConfig, opts ...Option) *System {
	t.Helper()
	base := []Option{
		WithLoader(chartLoader(t, cfg.Width, cfg.Height)),
		WithSignals(&recordingSignals{}),
	}
	s, err := New(context.Background(), cfg, append(base, opts...)...)
	if err != nil {
		var se *StartupError
		if errors.As(err, &se) && se.Stage == StageMaterial &&
			(strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported")) {
			t.Skipf("surface material unavailable: %v", err)
		}
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type recordingSignals struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingSignals) OpenImmersiveSpace(id string) error {
	r.add("open " + id)
	return r.err
}

func (r *recordingSignals) DismissWindow(id string) { r.add("dismiss " + id) }
func (r *recordingSignals) DismissImmersiveSpace()  { r.add("close space") }

func (r *recordingSignals) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingSignals) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// presentedLevels renders one frame and reads back every level of the
// texture the surface latched.
func presentedLevels(t *testing.T, s *System) []levelPixels {
	t.Helper()
	if _, err := s.Update(context.Background(), host.NewTick(0, 1.0/90)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	tex, _, ok := s.Surface().Current()
	if !ok {
		t.Fatal("surface has no texture after Update")
	}
	r, ok := tex.(compositor.LevelReader)
	if !ok {
		t.Fatalf("texture %T is not readable", tex)
	}
	out := make([]levelPixels, tex.LevelCount())
	for level := range out {
		buf, err := r.ReadLevel(level)
		if err != nil {
			t.Fatalf("ReadLevel(%d) error = %v", level, err)
		}
		out[level] = levelPixels{level: level, read: buf.GetRGBA, w: buf.Width(), h: buf.Height()}
		if !buf.Equal(s.Compositor().Source(level)) {
			out[level].differs = true
		}
	}
	return out
}

type levelPixels struct {
	level   int
	w, h    int
	read    func(x, y int) (r, g, b, a uint8)
	differs bool
}

// solid reports whether every texel of l is c.
func (l levelPixels) solid(c color.RGBA) bool {
	for y := range l.h {
		for x := range l.w {
			r, g, b, a := l.read(x, y)
			if (color.RGBA{R: r, G: g, B: b, A: a}) != c {
				return false
			}
		}
	}
	return true
}

func TestColorMipLevelsFromOne(t *testing.T) {
	cfg := testConfig(t, func(o *config.Options) {
		o.ColorMipLevels = true
		o.ColorMipLevelStart = 1
		o.MipChain = true
	})
	s := newTestSystem(t, cfg)

	levels := presentedLevels(t, s)
	if len(levels) != cfg.LevelCount() {
		t.Fatalf("levels = %d, want %d", len(levels), cfg.LevelCount())
	}
	for _, l := range levels {
		if l.differs {
			t.Errorf("level %d does not match its source", l.level)
		}
	}

	base := levels[0]
	for _, p := range [][2]int{{0, 0}, {13, 7}, {63, 31}} {
		r, g, b, a := base.read(p[0], p[1])
		want := chartColor(p[0], p[1])
		if got := (color.NRGBA{R: r, G: g, B: b, A: a}); got != want {
			t.Errorf("level 0 at %v = %v, want test image %v", p, got, want)
		}
	}
	for _, l := range levels[1:] {
		want := mip.ColorForLevel(l.level).RGBA8()
		if !l.solid(want) {
			t.Errorf("level %d is not solid %v", l.level, want)
		}
	}

	// The color assets cover the whole table even past the drawable's
	// own chain.
	for i := 1; i < mip.MinColorLevels; i++ {
		r, g, b, a := s.Assets().ColorLevel(i).GetRGBA(0, 0)
		if got, want := (color.RGBA{R: r, G: g, B: b, A: a}), mip.ColorTable[i].RGBA8(); got != want {
			t.Errorf("color level %d = %v, want %v", i, got, want)
		}
	}
}

func TestOnlyColors(t *testing.T) {
	cfg := testConfig(t, func(o *config.Options) {
		o.OnlyColors = true
	})
	s := newTestSystem(t, cfg)

	levels := presentedLevels(t, s)
	green := color.RGBA{G: 255, A: 255}
	if !levels[0].solid(green) {
		t.Error("level 0 shows test image content, want solid green")
	}
	for _, l := range levels {
		if want := mip.ColorForLevel(l.level).RGBA8(); !l.solid(want) {
			t.Errorf("level %d is not solid %v", l.level, want)
		}
	}
}

func TestSurfaceShowsPlaceholderBeforeFirstFrame(t *testing.T) {
	s := newTestSystem(t, testConfig(t, nil))
	if _, _, ok := s.Surface().Current(); ok {
		t.Error("surface has a texture before the first frame")
	}
	r, g, b, a := s.Surface().Placeholder().GetRGBA(0, 0)
	if got, want := (color.RGBA{R: r, G: g, B: b, A: a}), (color.RGBA{A: 255}); got != want {
		t.Errorf("placeholder = %v, want %v", got, want)
	}
}

func TestIdentityPosePlacement(t *testing.T) {
	cfg := testConfig(t, func(o *config.Options) {
		o.DepthMeters = 0.762
	})
	identity := pose.SourceFunc(func(float64) (mgl64.Mat4, bool) { return mgl64.Ident4(), true })
	s := newTestSystem(t, cfg, WithPoseSource(identity))

	res, err := s.Update(context.Background(), host.NewTick(1, 1+1.0/90))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := mgl64.Vec3{0, 0, -0.762}
	if !res.Placement.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("Position = %v, want %v", res.Placement.Position, want)
	}
	if got, want := res.Predicted, 1+4.0/90; !mgl64.FloatEqualThreshold(got, want, 1e-12) {
		t.Errorf("Predicted = %v, want %v", got, want)
	}
}

func TestNoPoseDropsFrame(t *testing.T) {
	never := pose.SourceFunc(func(float64) (mgl64.Mat4, bool) { return mgl64.Mat4{}, false })
	s := newTestSystem(t, testConfig(t, nil), WithPoseSource(never))

	_, err := s.Update(context.Background(), host.NewTick(0, 0.01))
	if !errors.Is(err, pose.ErrNoPose) {
		t.Fatalf("Update() error = %v, want ErrNoPose", err)
	}
	if err := s.Tick(context.Background(), host.NewTick(0, 0.01)); err != nil {
		t.Errorf("Tick() error = %v, want nil for a dropped frame", err)
	}
	if got := s.Stats().Frames; got != 0 {
		t.Errorf("compositor frames = %d, want 0", got)
	}
	if got := s.Surface().Presented(); got != 0 {
		t.Errorf("Presented() = %d, want 0", got)
	}
}

func TestRunHeadlessJournal(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "frames.db"))
	if err != nil {
		t.Fatalf("journal.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	src := sim.NewPoseSource(sim.YawSweep, 7)
	src.DropoutRate = 0
	s := newTestSystem(t, testConfig(t, nil), WithJournal(j, "headless"), WithPoseSource(src))

	const frames = 12
	if err := s.Run(context.Background(), host.Headless{Rate: 90, Frames: frames}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records, err := j.Records(j.Session())
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != frames {
		t.Fatalf("records = %d, want %d", len(records), frames)
	}
	for i, r := range records {
		if r.Outcome != journal.OutcomePresented {
			t.Errorf("record %d outcome = %v, want presented", i, r.Outcome)
		}
		if r.Seq != int64(i+1) {
			t.Errorf("record %d seq = %d, want %d", i, r.Seq, i+1)
		}
		if r.Levels != s.Config().LevelCount() {
			t.Errorf("record %d levels = %d, want %d", i, r.Levels, s.Config().LevelCount())
		}
	}
	if got := s.Surface().Presented(); got != frames {
		t.Errorf("Presented() = %d, want %d", got, frames)
	}

	sum := journal.Summarize(records)
	if sum.Presented != frames || sum.DropRate() != 0 {
		t.Errorf("summary = %+v, want %d presented and no drops", sum, frames)
	}
}

// stingyPresenter holds every drawable, so the queue runs dry.
type stingyPresenter struct{ held []*compositor.Drawable }

func (p *stingyPresenter) Present(d *compositor.Drawable, _ placement.Result) error {
	p.held = append(p.held, d)
	return nil
}

func TestNoDrawableIsTransient(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "frames.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = j.Close() })

	cfg := testConfig(t, func(o *config.Options) { o.MaxBuffersInFlight = 2 })
	p := &stingyPresenter{}
	s := newTestSystem(t, cfg, WithPresenter(p), WithJournal(j, ""))
	if s.Surface() != nil {
		t.Error("Surface() is set with a custom presenter")
	}

	if err := s.Run(context.Background(), host.Headless{Frames: 5}); err != nil {
		t.Fatalf("Run() error = %v, want dropped frames to be skipped", err)
	}
	st := s.Stats()
	if st.Presented != 2 || st.NoDrawable != 3 {
		t.Errorf("presented %d, no drawable %d; want 2 and 3", st.Presented, st.NoDrawable)
	}

	records, err := j.Records(j.Session())
	if err != nil {
		t.Fatal(err)
	}
	var outcomes []journal.Outcome
	for _, r := range records {
		outcomes = append(outcomes, r.Outcome)
	}
	want := []journal.Outcome{
		journal.OutcomePresented, journal.OutcomePresented,
		journal.OutcomeNoDrawable, journal.OutcomeNoDrawable, journal.OutcomeNoDrawable,
	}
	if !slices.Equal(outcomes, want) {
		t.Errorf("outcomes = %v, want %v", outcomes, want)
	}
	if records[4].Outstanding != 2 || records[4].Drawable != -1 {
		t.Errorf("last record = %+v, want 2 outstanding and no drawable", records[4])
	}
}

func TestPlaneAnchors(t *testing.T) {
	room := sim.Room()

	t.Run("plane detection allowed", func(t *testing.T) {
		updates := make(chan anchors.Update, len(room))
		for _, u := range room {
			updates <- u
		}
		close(updates)

		s := newTestSystem(t, testConfig(t, nil),
			WithTracking(sim.AllowAll(), &sim.Runner{}), WithPlanes(updates))

		deadline := time.Now().Add(5 * time.Second)
		tr := s.AnchorTracker()
		for tr.Applied()+tr.Skipped() < int64(len(room)) && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if got := s.Anchors().Len(); got != 5 {
			t.Errorf("anchors = %d, want 5", got)
		}
		for _, a := range s.Anchors().Snapshot() {
			if a.Classification == anchors.ClassWindow {
				t.Errorf("window plane %v stored", a.ID)
			}
		}
	})

	t.Run("plane detection denied", func(t *testing.T) {
		updates := make(chan anchors.Update, len(room))
		for _, u := range room {
			updates <- u
		}
		close(updates)

		runner := &sim.Runner{}
		s := newTestSystem(t, testConfig(t, nil),
			WithTracking(sim.DenyAll(), runner), WithPlanes(updates))

		if s.Session().Has(tracking.PlaneDetection) {
			t.Error("plane detection running without world sensing")
		}
		if got, want := runner.Running(), []tracking.Provider{tracking.WorldTracking}; !slices.Equal(got, want) {
			t.Errorf("running = %v, want %v", got, want)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
		if got := s.AnchorTracker().Applied(); got != 0 {
			t.Errorf("applied = %d, want 0", got)
		}
	})
}

func TestSignalsOrder(t *testing.T) {
	sig := &recordingSignals{}
	s := newTestSystem(t, testConfig(t, nil), WithSignals(sig))

	want := []string{"open " + host.ImmersiveSpace, "dismiss " + host.EntryWindow}
	if got := sig.Events(); !slices.Equal(got, want) {
		t.Errorf("events after New = %v, want %v", got, want)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	want = append(want, "close space")
	if got := sig.Events(); !slices.Equal(got, want) {
		t.Errorf("events after Close = %v, want %v", got, want)
	}
}

func TestStartupErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		stage Stage
		is    error
	}{
		{
			name:  "missing test image",
			opts:  []Option{WithLoader(mip.FSLoader{FS: fstest.MapFS{}})},
			stage: StageAssets,
			is:    mip.ErrAssetLoad,
		},
		{
			name:  "texture allocation",
			opts:  []Option{WithDevice(&brokenDevice{compositor.NewSoftwareDevice()})},
			stage: StageDevice,
			is:    compositor.ErrDevice,
		},
		{
			name:  "session run",
			opts:  []Option{WithTracking(sim.AllowAll(), &sim.Runner{Err: errors.New("no provider")})},
			stage: StageSession,
			is:    tracking.ErrSessionRun,
		},
		{
			name:  "immersive space",
			opts:  []Option{WithSignals(&recordingSignals{err: errors.New("space busy")})},
			stage: StageSession,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, nil)
			opts := append([]Option{
				WithLoader(chartLoader(t, cfg.Width, cfg.Height)),
				WithSignals(&recordingSignals{}),
			}, tt.opts...)
			s, err := New(context.Background(), cfg, opts...)
			if err == nil {
				_ = s.Close()
				t.Fatal("New() error = nil")
			}
			var se *StartupError
			if !errors.As(err, &se) {
				t.Fatalf("New() error = %v, want *StartupError", err)
			}
			if se.Stage == StageMaterial {
				t.Skipf("surface material unavailable: %v", err)
			}
			if se.Stage != tt.stage {
				t.Errorf("Stage = %q, want %q (err %v)", se.Stage, tt.stage, err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want wrapping %v", err, tt.is)
			}
		})
	}
}

type brokenDevice struct{ *compositor.SoftwareDevice }

func (d *brokenDevice) CreateTexture(compositor.TextureDesc) (compositor.Texture, error) {
	return nil, errors.New("out of memory")
}

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{pose.ErrNoPose, true},
		{fmt.Errorf("frame: %w", compositor.ErrNoDrawable), true},
		{fmt.Errorf("%w: fence", compositor.ErrCommandBuffer), true},
		{compositor.ErrDevice, false},
		{errors.New("present failed"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := Transient(tt.err); got != tt.want {
			t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestMissingAssetFailsStartup(t *testing.T) {
	cfg := testConfig(t, func(o *config.Options) {
		o.TestImage = config.StockTestImage
		o.AssetDir = t.TempDir()
	})
	s, err := New(context.Background(), cfg, WithSignals(&recordingSignals{}))
	if err == nil {
		_ = s.Close()
		t.Fatal("New() error = nil, want a missing asset failure")
	}
	var se *StartupError
	if !errors.As(err, &se) || se.Stage != StageAssets {
		t.Fatalf("New() error = %v, want StartupError at %s", err, StageAssets)
	}
	if !errors.Is(err, mip.ErrAssetLoad) {
		t.Errorf("New() error = %v, want ErrAssetLoad", err)
	}
}
