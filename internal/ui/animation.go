// Package ui provides the animation primitives shared by the drag-in helper
// and the drop transition: screen-space bounds, eased rectangle tweens and
// opacity fades.
package ui

import (
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Bounds is a rectangle in terminal cells (screen space).
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether b covers nothing.
func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Contains reports whether the screen cell (x, y) lies inside b.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Size returns b with a new size, keeping its top-left corner.
func (b Bounds) Size(w, h int) Bounds {
	b.Width, b.Height = w, h
	return b
}

// Animation tweens a rectangle between two bounds.
type Animation struct {
	StartTime time.Time
	Duration  time.Duration
	Start     Bounds
	End       Bounds
	Progress  float64
	Complete  bool
}

// NewAnimation starts a tween at now. A zero duration completes on the
// first Update.
func NewAnimation(start, end Bounds, d time.Duration, now time.Time) *Animation {
	return &Animation{
		StartTime: now,
		Duration:  d,
		Start:     start,
		End:       end,
	}
}

// Update advances the tween to now and returns the current bounds.
func (a *Animation) Update(now time.Time) Bounds {
	a.Progress = easeInOutCubic(progress(a.StartTime, a.Duration, now))
	if a.Progress >= 1 {
		a.Complete = true
	}
	return a.Current()
}

// Current returns the bounds at the last Update.
func (a *Animation) Current() Bounds {
	if a.Complete {
		return a.End
	}
	return Bounds{
		X:      interpolate(a.Start.X, a.End.X, a.Progress),
		Y:      interpolate(a.Start.Y, a.End.Y, a.Progress),
		Width:  interpolate(a.Start.Width, a.End.Width, a.Progress),
		Height: interpolate(a.Start.Height, a.End.Height, a.Progress),
	}
}

// Fade tweens an opacity between From and To.
type Fade struct {
	StartTime time.Time
	Duration  time.Duration
	From      float64
	To        float64
	Value     float64
	Complete  bool
}

// NewFade starts a fade at now.
func NewFade(from, to float64, d time.Duration, now time.Time) *Fade {
	return &Fade{StartTime: now, Duration: d, From: from, To: to, Value: from}
}

// Update advances the fade to now and returns the opacity.
func (f *Fade) Update(now time.Time) float64 {
	p := progress(f.StartTime, f.Duration, now)
	f.Value = f.From + (f.To-f.From)*easeInOutCubic(p)
	if p >= 1 {
		f.Value = f.To
		f.Complete = true
	}
	return f.Value
}

func progress(start time.Time, d time.Duration, now time.Time) float64 {
	if d <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(d)
	return math.Min(math.Max(p, 0), 1)
}

// Easing function for smooth animation
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	p := 2*t - 2
	return 1 + p*p*p/2
}

// Linear interpolation
func interpolate(start, end int, progress float64) int {
	return start + int(math.Round(float64(end-start)*progress))
}

// Blend mixes fg toward bg in Lab space. opacity 1 keeps fg, 0 gives bg.
// Terminals have no alpha channel, so fades are drawn by blending the
// foreground into the background colour.
func Blend(fg, bg color.Color, opacity float64) color.Color {
	f, ok := colorful.MakeColor(fg)
	if !ok {
		return fg
	}
	b, ok := colorful.MakeColor(bg)
	if !ok {
		return fg
	}
	opacity = math.Min(math.Max(opacity, 0), 1)
	return b.BlendLab(f, opacity).Clamped()
}
