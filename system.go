// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vrrbench

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/vrrbench/anchors"
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/internal/logging"
	"github.com/gogpu/vrrbench/journal"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/mip"
	"github.com/gogpu/vrrbench/placement"
	"github.com/gogpu/vrrbench/pose"
	"github.com/gogpu/vrrbench/tracking"
)

// Stage names the startup step that failed.
type Stage string

const (
	StageAssets   Stage = "assets"
	StageMaterial Stage = "material"
	StageDevice   Stage = "device"
	StageSession  Stage = "session"
	StageJournal  Stage = "journal"
)

// StartupError is returned by New. Nothing has been shown when it is
// returned and every resource New acquired has been released.
type StartupError struct {
	Stage Stage
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("vrrbench: startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Transient reports whether err only dropped the current frame.
func Transient(err error) bool {
	return errors.Is(err, pose.ErrNoPose) ||
		errors.Is(err, compositor.ErrNoDrawable) ||
		errors.Is(err, compositor.ErrCommandBuffer)
}

// FrameResult describes one Update.
type FrameResult struct {
	Tick      host.Tick
	Predicted float64
	Sample    pose.Sample
	Placement placement.Result
	Frame     compositor.Frame
}

// System is the running benchmark: static mip assets, the drawable queue,
// the compositor and the tracking session.
//
// Update, Tick and Run are called from one goroutine. Accessors may be
// called from any.
type System struct {
	cfg  config.RenderConfig
	opts options

	assets     *mip.Assets
	material   *material.Material
	surface    *host.Surface
	queue      *compositor.DrawableQueue
	compositor *compositor.Compositor
	tracker    *pose.Tracker
	solver     *placement.Solver
	session    *tracking.Session
	anchors    *anchors.Tracker

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New builds the assets, compiles the surface material, allocates the
// drawables and starts the tracking session. ctx bounds startup; the
// anchor consumer it starts runs until Close.
//
// Errors are *StartupError.
func New(ctx context.Context, cfg config.RenderConfig, opts ...Option) (*System, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.device == nil {
		o.device = compositor.NewSoftwareDevice()
	}
	if o.loader == nil {
		o.loader = mip.DefaultLoader(cfg.AssetDir)
	}

	log := logging.Logger()
	s := &System{cfg: cfg, opts: o}

	assets, err := mip.NewGenerator(cfg, o.loader).Build()
	if err != nil {
		return nil, &StartupError{Stage: StageAssets, Err: err}
	}
	s.assets = assets

	m, err := material.Compile(cfg.Filter)
	if err != nil {
		return nil, &StartupError{Stage: StageMaterial, Err: err}
	}
	s.material = m

	presenter := o.presenter
	if presenter == nil {
		surface, err := host.NewSurface(m, cfg.ImageFormat())
		if err != nil {
			return nil, &StartupError{Stage: StageMaterial, Err: err}
		}
		s.surface = surface
		presenter = surface
	}

	queue, err := compositor.NewDrawableQueue(o.device, cfg)
	if err != nil {
		return nil, &StartupError{Stage: StageDevice, Err: err}
	}
	s.queue = queue
	s.compositor = compositor.New(cfg, o.device, queue, assets, presenter)
	s.tracker = pose.NewTracker(o.poseSource, cfg.LookaheadFactor)
	s.solver = placement.NewSolver(cfg, o.tangents)

	s.session = tracking.NewSession(o.authorizer, o.runner)
	if err := s.session.Start(ctx); err != nil {
		_ = queue.Close()
		return nil, &StartupError{Stage: StageSession, Err: err}
	}

	if o.journal != nil {
		if _, err := o.journal.Begin(o.label); err != nil {
			_ = queue.Close()
			return nil, &StartupError{Stage: StageJournal, Err: err}
		}
	}

	if err := o.signals.OpenImmersiveSpace(host.ImmersiveSpace); err != nil {
		_ = queue.Close()
		return nil, &StartupError{Stage: StageSession, Err: err}
	}
	o.signals.DismissWindow(host.EntryWindow)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.anchors = anchors.NewTracker(anchors.NewStore(cfg.MaxPlanes))
	if o.planes != nil && s.session.Has(tracking.PlaneDetection) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.anchors.Run(runCtx, o.planes); err != nil && !errors.Is(err, context.Canceled) {
				logging.Logger().Warn("vrrbench: anchor consumer stopped", "err", err)
			}
		}()
	}

	log.Info("vrrbench: started",
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"levels", cfg.LevelCount(),
		"filter", cfg.Filter,
		"headlock", cfg.Headlock,
		"material", m.Name,
		"drawables", queue.Capacity())
	return s, nil
}

// Update runs one frame for tick: predict the pose, filter its
// orientation, place the quad and composite.
//
// Errors for which Transient is true dropped the frame only. When a
// journal is set every call is recorded, dropped or not.
func (s *System) Update(ctx context.Context, tick host.Tick) (FrameResult, error) {
	res := FrameResult{
		Tick:      tick,
		Predicted: s.tracker.PredictedTime(tick.Now, tick.Interval),
	}

	sample, err := s.tracker.Sample(tick.Now, tick.Interval)
	if err != nil {
		return res, s.record(res, journal.OutcomeNoPose, err)
	}
	res.Sample = sample
	res.Placement = s.solver.Place(sample, pose.Filter(sample.Rotation(), s.cfg.Headlock))

	frame, err := s.compositor.Render(ctx, res.Placement)
	if err != nil {
		return res, s.record(res, outcomeOf(err), err)
	}
	res.Frame = frame
	return res, s.record(res, journal.OutcomePresented, nil)
}

// record journals res and returns frameErr, or the journal error when the
// frame itself succeeded.
func (s *System) record(res FrameResult, outcome journal.Outcome, frameErr error) error {
	j := s.opts.journal
	if j == nil {
		return frameErr
	}
	drawable := -1
	if outcome == journal.OutcomePresented {
		drawable = res.Frame.Drawable
	}
	err := j.Record(journal.FrameRecord{
		Now:         res.Tick.Now,
		Predicted:   res.Predicted,
		Interval:    res.Tick.Interval,
		Outcome:     outcome,
		Drawable:    drawable,
		Levels:      res.Frame.Levels,
		Populate:    res.Frame.Populate,
		Wait:        res.Frame.Wait,
		Outstanding: s.queue.Outstanding(),
	})
	if frameErr != nil {
		return frameErr
	}
	return err
}

func outcomeOf(err error) journal.Outcome {
	switch {
	case errors.Is(err, pose.ErrNoPose):
		return journal.OutcomeNoPose
	case errors.Is(err, compositor.ErrNoDrawable):
		return journal.OutcomeNoDrawable
	case errors.Is(err, compositor.ErrCommandBuffer):
		return journal.OutcomeCommandBuffer
	default:
		return journal.OutcomePresentError
	}
}

// Tick is a host.FrameFunc: it runs Update and swallows dropped frames.
func (s *System) Tick(ctx context.Context, tick host.Tick) error {
	_, err := s.Update(ctx, tick)
	if err != nil && Transient(err) {
		return nil
	}
	return err
}

// Run drives the system with d until ctx is done or a frame fails
// permanently.
func (s *System) Run(ctx context.Context, d host.Driver) error {
	return d.Run(ctx, s.Tick)
}

// Close stops the anchor consumer, dismisses the immersive space and
// destroys the drawables. It is safe to call more than once.
func (s *System) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.opts.signals.DismissImmersiveSpace()
		s.closeErr = s.queue.Close()
		st := s.compositor.Stats()
		logging.Logger().Info("vrrbench: closed",
			"frames", st.Frames, "presented", st.Presented,
			"noDrawable", st.NoDrawable, "commandBuffer", st.CommandBuffer)
	})
	return s.closeErr
}

// Config returns the render configuration.
func (s *System) Config() config.RenderConfig { return s.cfg }

// Assets returns the static mip assets.
func (s *System) Assets() *mip.Assets { return s.assets }

// Material returns the compiled surface material.
func (s *System) Material() *material.Material { return s.material }

// Surface returns the host surface, or nil when WithPresenter was used.
func (s *System) Surface() *host.Surface { return s.surface }

// Compositor returns the frame compositor.
func (s *System) Compositor() *compositor.Compositor { return s.compositor }

// Stats returns the compositor counters.
func (s *System) Stats() compositor.Stats { return s.compositor.Stats() }

// Session returns the tracking session.
func (s *System) Session() *tracking.Session { return s.session }

// Anchors returns the plane anchor store.
func (s *System) Anchors() *anchors.Store { return s.anchors.Store() }

// AnchorTracker returns the plane anchor consumer.
func (s *System) AnchorTracker() *anchors.Tracker { return s.anchors }
