// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

// handleConfig prints the resolved options as JSON, which config.Load
// accepts back, followed by the derived render size as a comment.
func handleConfig(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	cf := registerConfig(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, cfg, err := cf.load()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", data)
	fmt.Fprintf(stdout, "// render %dx%d, %d levels, screen %.3fx%.3fm at %.3fm\n",
		cfg.Width, cfg.Height, cfg.LevelCount(), cfg.ScreenWidth, cfg.ScreenHeight, cfg.Depth)
	return nil
}
