package watchface

import (
	"image"
	"math"
	"testing"

	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/rook-computer/retrowatch/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedleAngles(t *testing.T) {
	assert.Equal(t, 0.0, HourAngle(clock.Sample{Hours: 3}))
	assert.Equal(t, 0.0, MinuteAngle(clock.Sample{Minutes: 15}))
	assert.Equal(t, 0.0, SecondAngle(clock.Sample{Seconds: 15}))

	assert.InDelta(t, -math.Pi/2, HourAngle(clock.Sample{Hours: 0}), 1e-12)
	assert.InDelta(t, -math.Pi/2, MinuteAngle(clock.Sample{}), 1e-12)
	assert.InDelta(t, math.Pi/2, SecondAngle(clock.Sample{Seconds: 30}), 1e-12)
	// 15:00 is a full turn past 3:00.
	assert.InDelta(t, 2*math.Pi, HourAngle(clock.Sample{Hours: 15}), 1e-12)
	// Half past moves the hour needle half an hour step.
	assert.InDelta(t, math.Pi/12, HourAngle(clock.Sample{Hours: 3, Minutes: 30}), 1e-12)
}

func TestDayBits(t *testing.T) {
	assert.Equal(t, [5]bool{true, false, true, true, true}, DayBits(23))
	assert.Equal(t, [5]bool{false, false, false, false, true}, DayBits(1))
	assert.Equal(t, [5]bool{true, true, true, true, true}, DayBits(31))
	assert.Equal(t, [5]bool{true, false, false, false, false}, DayBits(16))
}

func TestLitSegments(t *testing.T) {
	assert.Equal(t, 5, LitSegments(battery.Of(0.55)))
	assert.Equal(t, 10, LitSegments(battery.Of(1.0)))
	assert.Equal(t, 0, LitSegments(battery.Of(0.05)))
	assert.Equal(t, 3, LitSegments(battery.Of(0.3)))
	assert.Equal(t, 0, LitSegments(battery.Unavailable))
}

func TestRenderNormalBatteryBar(t *testing.T) {
	cases := []struct {
		name  string
		level battery.Level
		rects int
	}{
		{"half", battery.Of(0.55), 1 + 5},
		{"full", battery.Of(1.0), 1 + 10},
		{"empty", battery.Of(0), 1},
		{"unavailable", battery.Unavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newRecordingSurface()
			RenderNormal(s, clock.Sample{Hours: 10, Day: 1}, tc.level, palette.C64)
			assert.Len(t, s.rectsWithin(batteryBar), tc.rects)
		})
	}
}

func TestRenderNormalBatteryBanding(t *testing.T) {
	s := newRecordingSurface()
	RenderNormal(s, clock.Sample{Day: 1}, battery.Of(1.0), palette.NES)

	cells := s.rectsWithin(batteryBar)
	require.Len(t, cells, 11)
	assert.Equal(t, batteryBar, cells[0].r)
	assert.Equal(t, palette.Resolve(palette.NES, palette.Bar), cells[0].c)
	for i, cell := range cells[1:] {
		assert.Equal(t, image.Rect(130+10*i, 40, 140+10*i, 60), cell.r)
		assert.Equal(t, palette.Resolve(palette.NES, batteryColors[i/2]), cell.c, "segment %d", i)
	}
}

func TestRenderNormalBinaryDay(t *testing.T) {
	s := newRecordingSurface()
	RenderNormal(s, clock.Sample{Day: 23}, battery.Unavailable, palette.C64)

	cells := s.rectsWithin(image.Rect(130, 300, 230, 320))
	require.Len(t, cells, 5)
	lit := palette.Resolve(palette.C64, palette.White)
	unlit := palette.Resolve(palette.C64, palette.Black)
	want := []bool{true, false, true, true, true}
	for i, cell := range cells {
		assert.Equal(t, image.Rect(130+20*i, 300, 150+20*i, 320), cell.r)
		if want[i] {
			assert.Equal(t, lit, cell.c)
		} else {
			assert.Equal(t, unlit, cell.c)
		}
	}
}

func TestRenderNormalNeedles(t *testing.T) {
	s := newRecordingSurface()
	RenderNormal(s, clock.Sample{Hours: 3, Day: 2}, battery.Unavailable, palette.Atari2600)

	require.Len(t, s.lines, 3)
	ink := palette.Resolve(palette.Atari2600, palette.Black)
	for _, l := range s.lines {
		assert.Equal(t, ink, l.c)
	}

	hour := s.lines[0]
	assert.InDelta(t, 200, hour.from.X, 1e-9)
	assert.InDelta(t, 180, hour.from.Y, 1e-9)
	assert.InDelta(t, 180+180*0.55, hour.to.X, 1e-9)
	assert.InDelta(t, 180, hour.to.Y, 1e-9)
	assert.Equal(t, 20.0, hour.width)

	minute := s.lines[1]
	assert.InDelta(t, 180, minute.to.X, 1e-9)
	assert.InDelta(t, 180-180*0.70, minute.to.Y, 1e-9)

	second := s.lines[2]
	assert.Equal(t, 10.0, second.width)
}

func TestRenderNormalOrder(t *testing.T) {
	s := newRecordingSurface()
	RenderNormal(s, clock.Sample{Day: 1}, battery.Unavailable, palette.GameBoy)

	require.GreaterOrEqual(t, len(s.ops), 2)
	assert.Equal(t, "clear", s.ops[0])
	assert.Equal(t, palette.Resolve(palette.GameBoy, palette.Background1), s.bg)
	assert.Len(t, s.rects, len(backgroundPattern)+1+5)
}

func TestRenderIsDeterministic(t *testing.T) {
	sample := clock.Sample{Hours: 21, Minutes: 47, Seconds: 13, Milliseconds: 250, Day: 19}
	a, b := newRecordingSurface(), newRecordingSurface()
	RenderNormal(a, sample, battery.Of(0.72), palette.Apple2)
	RenderNormal(b, sample, battery.Of(0.72), palette.Apple2)
	assert.Equal(t, a.ops, b.ops)

	a, b = newRecordingSurface(), newRecordingSurface()
	RenderAmbient(a, sample)
	RenderAmbient(b, sample)
	assert.Equal(t, a.ops, b.ops)
}

func TestRenderAmbient(t *testing.T) {
	s := newRecordingSurface()
	RenderAmbient(s, clock.Sample{Hours: 9, Day: 31})

	assert.Equal(t, "clear", s.ops[0])
	assert.Equal(t, ambientBackground, s.bg)
	assert.Empty(t, s.rects)
	require.Len(t, s.lines, 2)
	for _, l := range s.lines {
		assert.Equal(t, AmbientAccent, l.c)
		assert.Equal(t, 20.0, l.width)
	}
	// 9 o'clock points left.
	assert.InDelta(t, 180-180*0.55, s.lines[0].to.X, 1e-9)
	// Minute needle at :00 points up with the longer ambient ratio.
	assert.InDelta(t, 180-180*0.75, s.lines[1].to.Y, 1e-9)
}

func TestRenderNormalOnCanvas(t *testing.T) {
	c := render.NewCanvas(render.CanvasWidth, render.CanvasHeight)
	RenderNormal(c, clock.Sample{Hours: 6, Day: 23}, battery.Of(0.55), palette.C64)
	frame := c.Compose()

	assert.Equal(t, palette.Resolve(palette.C64, palette.Background1), frame.RGBAAt(5, 5))
	assert.Equal(t, palette.Resolve(palette.C64, palette.Battery0), frame.RGBAAt(135, 50))
	assert.Equal(t, palette.Resolve(palette.C64, palette.Battery2), frame.RGBAAt(175, 50))
	assert.Equal(t, palette.Resolve(palette.C64, palette.Bar), frame.RGBAAt(225, 50))
	assert.Equal(t, palette.Resolve(palette.C64, palette.White), frame.RGBAAt(135, 305))
	assert.Equal(t, palette.Resolve(palette.C64, palette.Black), frame.RGBAAt(155, 305))
	assert.Equal(t, palette.Resolve(palette.C64, palette.Background2), frame.RGBAAt(100, 180))
}
