package watchface

import (
	"image"
	"image/color"
	"math"

	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/rook-computer/retrowatch/internal/render"
)

// Needle geometry, in logical canvas pixels.
const (
	needleInset     = 20
	needleBaseWidth = 20
)

// AmbientAccent is the single color used for needles in ambient mode.
var AmbientAccent = color.RGBA{R: 0x8b, G: 0xac, B: 0x0f, A: 0xFF}

var ambientBackground = color.RGBA{A: 0xFF}

// Battery bar placement.
var (
	batteryBar     = image.Rect(130, 40, 230, 60)
	batterySegment = image.Pt(10, 20)
	batteryColors  = [...]palette.ColorID{palette.Battery0, palette.Battery1, palette.Battery2, palette.Battery3, palette.Battery4}
)

// BatterySegments is the number of 10% cells in the battery bar.
const BatterySegments = 10

// Binary day placement: one square per bit, most significant first.
var (
	dayOrigin  = image.Pt(130, 300)
	dayCell    = 20
	dayWeights = [...]int{16, 8, 4, 2, 1}
)

// backgroundPattern is the stepped disc painted behind the needles.
var backgroundPattern = []image.Rectangle{
	image.Rect(150, 80, 210, 90),
	image.Rect(130, 90, 230, 100),
	image.Rect(110, 100, 250, 110),
	image.Rect(100, 110, 260, 130),
	image.Rect(90, 130, 270, 150),
	image.Rect(80, 150, 280, 210),
	image.Rect(90, 210, 270, 230),
	image.Rect(100, 230, 260, 250),
	image.Rect(110, 250, 250, 260),
	image.Rect(130, 260, 230, 270),
	image.Rect(150, 270, 210, 280),
}

var patternCenter = image.Rect(170, 170, 190, 190)

// HourAngle is the hour needle rotation in radians, zero pointing at 3 o'clock.
func HourAngle(t clock.Sample) float64 {
	h := float64(t.Hours) + float64(t.Minutes)/60 + float64(t.Seconds)/3600
	return (h - 3) * math.Pi / 6
}

// MinuteAngle is the minute needle rotation in radians.
func MinuteAngle(t clock.Sample) float64 {
	m := float64(t.Minutes) + float64(t.Seconds)/60
	return (m - 15) * math.Pi / 30
}

// SecondAngle is the second needle rotation in radians.
func SecondAngle(t clock.Sample) float64 {
	return (float64(t.Seconds) - 15) * math.Pi / 30
}

// DayBits decomposes day into five bits, most significant first.
func DayBits(day int) [5]bool {
	var bits [5]bool
	for i, w := range dayWeights {
		if day-w >= 0 {
			day -= w
			bits[i] = true
		}
	}
	return bits
}

// LitSegments reports how many battery cells are lit for b.
func LitSegments(b battery.Level) int {
	if !b.Present {
		return 0
	}
	n := 0
	for i := 0; i < BatterySegments; i++ {
		if b.Value >= segmentThreshold(i) {
			n++
		}
	}
	return n
}

func segmentThreshold(i int) float64 { return float64(i+1) / 10 }

// RenderNormal paints the full watchface.
func RenderNormal(s render.Surface, t clock.Sample, b battery.Level, p palette.Name) {
	s.Clear()
	s.SetBackground(palette.Resolve(p, palette.Background1))

	renderPattern(s, p)
	renderBattery(s, b, p)
	renderDay(s, t.Day, p)

	ink := palette.Resolve(p, palette.Black)
	renderNeedle(s, HourAngle(t), 0.55, 1, ink)
	renderNeedle(s, MinuteAngle(t), 0.70, 1, ink)
	renderNeedle(s, SecondAngle(t), 0.70, 0.5, ink)
}

// RenderAmbient paints the reduced watchface: hour and minute needles on black.
func RenderAmbient(s render.Surface, t clock.Sample) {
	s.Clear()
	s.SetBackground(ambientBackground)

	renderNeedle(s, HourAngle(t), 0.55, 1, AmbientAccent)
	renderNeedle(s, MinuteAngle(t), 0.75, 1, AmbientAccent)
}

func renderPattern(s render.Surface, p palette.Name) {
	fill := palette.Resolve(p, palette.Background2)
	for _, r := range backgroundPattern {
		s.FillRect(r, fill)
	}
	s.FillRect(patternCenter, palette.Resolve(p, palette.Black))
}

func renderBattery(s render.Surface, b battery.Level, p palette.Name) {
	if !b.Present {
		return
	}
	s.FillRect(batteryBar, palette.Resolve(p, palette.Bar))
	for i := 0; i < BatterySegments; i++ {
		if b.Value < segmentThreshold(i) {
			continue
		}
		cell := batteryBar.Min.Add(image.Pt(i*batterySegment.X, 0))
		s.FillRect(image.Rectangle{Min: cell, Max: cell.Add(batterySegment)}, palette.Resolve(p, batteryColors[i/2]))
	}
}

func renderDay(s render.Surface, day int, p palette.Name) {
	lit := palette.Resolve(p, palette.White)
	unlit := palette.Resolve(p, palette.Black)
	for i, on := range DayBits(day) {
		cell := dayOrigin.Add(image.Pt(i*dayCell, 0))
		c := unlit
		if on {
			c = lit
		}
		s.FillRect(image.Rectangle{Min: cell, Max: cell.Add(image.Pt(dayCell, dayCell))}, c)
	}
}

func renderNeedle(s render.Surface, angle, radius, width float64, c color.Color) {
	w, h := s.Size()
	cx, cy := float64(w)/2, float64(h)/2
	clockRadius := float64(w) / 2
	cos, sin := math.Cos(angle), math.Sin(angle)

	from := render.Point{X: cx + needleInset*cos, Y: cy + needleInset*sin}
	to := render.Point{X: cx + clockRadius*radius*cos, Y: cy + clockRadius*radius*sin}
	s.StrokeLine(from, to, needleBaseWidth*width, c)
}
