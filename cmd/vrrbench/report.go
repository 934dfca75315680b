// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/vrrbench/journal"
)

func handleReport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	var (
		journalPath = fs.String("journal", "", "SQLite frame journal (required)")
		session     = fs.String("session", "", "session ID (default: the latest)")
		out         = fs.String("o", "", "write the HTML pacing chart here")
		list        = fs.Bool("list", false, "list sessions and exit")
		verbose     = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *journalPath == "" {
		return errors.New("report: -journal is required")
	}
	setupLogger(*verbose)

	j, err := journal.Open(*journalPath)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	if *list {
		sessions, err := j.Sessions()
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Fprintf(stdout, "%s  %s  %6d frames  %s\n",
				s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.Frames, s.Label)
		}
		return nil
	}

	id := *session
	if id == "" {
		if id, err = j.Latest(); err != nil {
			return err
		}
		if id == "" {
			return errors.New("report: journal has no sessions")
		}
	}
	records, err := j.Records(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "session     %s\n", id)
	printSummary(stdout, journal.Summarize(records))

	if *out == "" {
		return nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := journal.WriteReport(f, "vrrbench "+id, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return nil
}
