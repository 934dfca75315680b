// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gogpu/vrrbench/anchors"
)

// planeNamespace seeds the deterministic plane IDs.
var planeNamespace = uuid.MustParse("6f1c2a94-3b1e-4c55-9d0e-7a2b8f6c0d41")

// PlaneID returns the stable ID of the named scripted plane.
func PlaneID(name string) uuid.UUID {
	return uuid.NewSHA1(planeNamespace, []byte(name))
}

func plane(name string, class anchors.Classification, pos mgl64.Vec3, yaw float64, extent mgl64.Vec2) anchors.Anchor {
	return anchors.Anchor{
		ID:             PlaneID(name),
		Classification: class,
		Transform:      mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(mgl64.HomogRotate3DY(yaw)),
		Extent:         extent,
	}
}

// Room returns the scripted update sequence of a small room: four walls,
// floor, a table and a window are found, the table is refined and then
// removed.
func Room() []anchors.Update {
	front := plane("wall-front", anchors.ClassWall, mgl64.Vec3{0, 1.5, -3}, 0, mgl64.Vec2{6, 3})
	back := plane("wall-back", anchors.ClassWall, mgl64.Vec3{0, 1.5, 3}, math.Pi, mgl64.Vec2{6, 3})
	left := plane("wall-left", anchors.ClassWall, mgl64.Vec3{-3, 1.5, 0}, math.Pi/2, mgl64.Vec2{6, 3})
	right := plane("wall-right", anchors.ClassWall, mgl64.Vec3{3, 1.5, 0}, -math.Pi/2, mgl64.Vec2{6, 3})
	floor := plane("floor", anchors.ClassFloor, mgl64.Vec3{0, 0, 0}, 0, mgl64.Vec2{6, 6})
	table := plane("table", anchors.ClassTable, mgl64.Vec3{1, 0.75, -1}, 0, mgl64.Vec2{1, 0.6})
	window := plane("window", anchors.ClassWindow, mgl64.Vec3{0, 1.5, -2.99}, 0, mgl64.Vec2{1.2, 1})

	refined := table
	refined.Extent = mgl64.Vec2{1.2, 0.8}

	return []anchors.Update{
		{Event: anchors.EventAdded, Anchor: floor},
		{Event: anchors.EventAdded, Anchor: front},
		{Event: anchors.EventAdded, Anchor: window},
		{Event: anchors.EventAdded, Anchor: left},
		{Event: anchors.EventAdded, Anchor: right},
		{Event: anchors.EventAdded, Anchor: back},
		{Event: anchors.EventAdded, Anchor: table},
		{Event: anchors.EventUpdated, Anchor: refined},
		{Event: anchors.EventUpdated, Anchor: window},
		{Event: anchors.EventRemoved, Anchor: refined},
	}
}

// Stream sends updates one per interval and closes the channel after the
// last one or when ctx is done.
func Stream(ctx context.Context, updates []anchors.Update, interval time.Duration) <-chan anchors.Update {
	ch := make(chan anchors.Update)
	go func() {
		defer close(ch)
		for i, u := range updates {
			if i > 0 && interval > 0 {
				t := time.NewTimer(interval)
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- u:
			}
		}
	}()
	return ch
}

// Describe formats an update for logs.
func Describe(u anchors.Update) string {
	return fmt.Sprintf("%s %s %s", u.Event, u.Anchor.Classification, u.Anchor.ID)
}
