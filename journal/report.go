// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package journal

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReport renders an HTML line chart of frame pacing: GPU wait and
// populate time per presented frame, and the refresh interval per tick.
func WriteReport(w io.Writer, title string, records []FrameRecord) error {
	sum := Summarize(records)

	xs := make([]string, 0, len(records))
	waits := make([]opts.LineData, 0, len(records))
	populates := make([]opts.LineData, 0, len(records))
	intervals := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		xs = append(xs, strconv.FormatInt(r.Seq, 10))
		intervals = append(intervals, opts.LineData{Value: ms(r.Interval * 1e9)})
		if r.Outcome != OutcomePresented {
			// Gaps mark dropped frames.
			waits = append(waits, opts.LineData{Value: "-"})
			populates = append(populates, opts.LineData{Value: "-"})
			continue
		}
		waits = append(waits, opts.LineData{Value: ms(float64(r.Wait))})
		populates = append(populates, opts.LineData{Value: ms(float64(r.Populate))})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "vrrbench frame pacing", Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("frames=%d presented=%d drop=%.1f%% wait p50=%v p95=%v p99=%v",
				sum.Frames, sum.Presented, 100*sum.DropRate(), sum.WaitP50, sum.WaitP95, sum.WaitP99),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms", NameLocation: "middle", NameGap: 35}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xs).
		AddSeries("gpu wait", waits).
		AddSeries("populate", populates).
		AddSeries("interval", intervals)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("journal: render report: %w", err)
	}
	return nil
}

func ms(ns float64) float64 {
	return float64(int64(ns/1e3)) / 1e3
}
