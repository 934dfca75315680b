// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import "github.com/gogpu/vrrbench/internal/logging"

// Scene identifiers used at mode toggles.
const (
	EntryWindow    = "Entry"
	ImmersiveSpace = "ImmersiveSpace"
)

// Signals are the windowing requests made when the bench enters or leaves
// immersive mode.
type Signals interface {
	OpenImmersiveSpace(id string) error
	DismissWindow(id string)
	DismissImmersiveSpace()
}

// LogSignals records the requests in the log. Desktop and headless hosts
// have no spaces to open.
type LogSignals struct{}

// OpenImmersiveSpace implements Signals.
func (LogSignals) OpenImmersiveSpace(id string) error {
	logging.Logger().Info("host: open immersive space", "id", id)
	return nil
}

// DismissWindow implements Signals.
func (LogSignals) DismissWindow(id string) {
	logging.Logger().Info("host: dismiss window", "id", id)
}

// DismissImmersiveSpace implements Signals.
func (LogSignals) DismissImmersiveSpace() {
	logging.Logger().Info("host: dismiss immersive space")
}
