// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tracking bootstraps the sensing session. World tracking always
// runs; hand tracking and the world sensing providers run only when the
// user authorizes them.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/vrrbench/internal/logging"
)

// ErrSessionRun is returned when the session cannot start. It is fatal.
var ErrSessionRun = errors.New("tracking: session run failed")

// Provider is a data provider the session can run.
type Provider uint8

const (
	WorldTracking Provider = iota
	HandTracking
	SceneReconstruction
	PlaneDetection
)

func (p Provider) String() string {
	switch p {
	case WorldTracking:
		return "worldTracking"
	case HandTracking:
		return "handTracking"
	case SceneReconstruction:
		return "sceneReconstruction"
	case PlaneDetection:
		return "planeDetection"
	default:
		return "unknown"
	}
}

// Kind is an authorization the session asks for.
type Kind uint8

const (
	KindHandTracking Kind = iota
	KindWorldSensing
)

func (k Kind) String() string {
	if k == KindHandTracking {
		return "handTracking"
	}
	return "worldSensing"
}

// Status is the user's answer for one Kind.
type Status uint8

const (
	StatusNotDetermined Status = iota
	StatusAllowed
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusAllowed:
		return "allowed"
	case StatusDenied:
		return "denied"
	default:
		return "notDetermined"
	}
}

// Authorizer asks the user for the listed kinds.
type Authorizer interface {
	RequestAuthorization(ctx context.Context, kinds []Kind) (map[Kind]Status, error)
}

// Runner starts the providers on the platform.
type Runner interface {
	Run(ctx context.Context, providers []Provider) error
}

// Requested lists the kinds a session asks for.
var Requested = []Kind{KindHandTracking, KindWorldSensing}

// Providers returns the providers to run for an authorization result.
// Anything other than StatusAllowed counts as denied.
func Providers(status map[Kind]Status) []Provider {
	out := []Provider{WorldTracking}
	if status[KindHandTracking] == StatusAllowed {
		out = append(out, HandTracking)
	}
	if status[KindWorldSensing] == StatusAllowed {
		out = append(out, SceneReconstruction, PlaneDetection)
	}
	return out
}

// Session is the running provider set.
type Session struct {
	auth      Authorizer
	runner    Runner
	providers []Provider
}

// NewSession returns an unstarted session.
func NewSession(auth Authorizer, runner Runner) *Session {
	return &Session{auth: auth, runner: runner}
}

// Start requests authorization and runs the allowed providers. A failed
// authorization request degrades to world tracking only; a failed run
// returns an error wrapping ErrSessionRun.
func (s *Session) Start(ctx context.Context) error {
	log := logging.Logger()

	status, err := s.auth.RequestAuthorization(ctx, Requested)
	if err != nil {
		log.Warn("tracking: authorization request failed, running world tracking only", "err", err)
		status = nil
	}
	for _, k := range Requested {
		if st := status[k]; st != StatusAllowed {
			log.Warn("tracking: provider disabled", "authorization", k, "status", st)
		}
	}

	providers := Providers(status)
	if err := s.runner.Run(ctx, providers); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionRun, err)
	}
	s.providers = providers
	log.Info("tracking: session running", "providers", fmt.Sprint(providers))
	return nil
}

// Providers returns the running providers, nil before Start succeeds.
func (s *Session) Providers() []Provider { return slices.Clone(s.providers) }

// Has reports whether p is running.
func (s *Session) Has(p Provider) bool { return slices.Contains(s.providers, p) }
