// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command vrrbench runs the mip-level clarity benchmark and inspects its
// frame journals.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/vrrbench"
	"github.com/gogpu/vrrbench/config"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "run":
		err = handleRun(args, os.Stdout)
	case "report":
		err = handleReport(args, os.Stdout)
	case "snapshot":
		err = handleSnapshot(args, os.Stdout)
	case "config":
		err = handleConfig(args, os.Stdout)
	case "version":
		fmt.Printf("vrrbench version %s\n", version)
	case "help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		var se *vrrbench.StartupError
		if errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "vrrbench: cannot start (%s): %v\n", se.Stage, se.Err)
		} else {
			fmt.Fprintf(os.Stderr, "vrrbench: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `vrrbench - mip level clarity benchmark for head-mounted displays

Usage: vrrbench <command> [options]

Commands:
  run        Run the benchmark headless or in a window
  report     Summarize a frame journal and write an HTML pacing chart
  snapshot   Render one frame and write every mip level to image files
  config     Print the resolved configuration as HuJSON-compatible JSON
  version    Show vrrbench version
  help       Show this help message

Common Flags:
  -config <file>       HuJSON configuration file; flags override it
  -filter <method>     nearest, bilinear or bicubic
  -headlock <mode>     full, yawOnly or none
  -full-fov            Render the full field of view
  -v                   Debug logging

Examples:
  # Ten seconds at 90 Hz with a yaw sweep, journaled
  vrrbench run -frames 900 -script yaw -journal frames.db

  # Desktop preview of the color mip levels
  vrrbench run -window -only-colors

  # Pacing chart of the latest journaled session
  vrrbench report -journal frames.db -o pacing.html
`)
}

// setupLogger installs a text logger on stderr.
func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	vrrbench.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configFlags are the flags shared by commands that build a RenderConfig.
type configFlags struct {
	path    *string
	verbose *bool
	resolve func() config.Flags
}

func registerConfig(fs *flag.FlagSet) *configFlags {
	return &configFlags{
		path:    fs.String("config", "", "HuJSON configuration file"),
		verbose: fs.Bool("v", false, "debug logging"),
		resolve: config.Register(fs),
	}
}

// load reads the config file, if any, and applies the command-line flags.
func (c *configFlags) load() (config.Options, config.RenderConfig, error) {
	o := config.Default()
	if *c.path != "" {
		var err error
		if o, err = config.Load(*c.path); err != nil {
			return config.Options{}, config.RenderConfig{}, err
		}
	}
	o.Resolve(c.resolve())
	cfg, err := config.New(o)
	if err != nil {
		return o, config.RenderConfig{}, err
	}
	return o, cfg, nil
}
