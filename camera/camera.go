// Package camera provides viewport control for the preview: a pan/zoom
// camera over an equirectangular map and an orthographic orbit camera.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Map is a view into an equirectangular texture. Longitude wraps around the
// u=0/u=1 seam; latitude is clamped so the poles are never overrun.
type Map struct {
	// Position is the camera center in map pixels
	X, Y float32

	// Zoom level (1.0 = one map pixel per screen pixel)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Map dimensions
	MapW, MapH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// NewMap creates a camera centered on the map, zoomed to fit its height.
func NewMap(viewportW, viewportH, mapW, mapH float32) *Map {
	c := &Map{
		ViewportW: viewportW,
		ViewportH: viewportH,
		MapW:      mapW,
		MapH:      mapH,
		MaxZoom:   8.0,
	}
	c.MinZoom = viewportH / mapH
	c.Reset()
	return c
}

// MapToScreen converts map coordinates to screen coordinates, taking the
// shorter way around in longitude.
func (c *Map) MapToScreen(mx, my float32) (sx, sy float32) {
	dx := wrapDelta(mx, c.X, c.MapW)
	dy := my - c.Y
	sx = c.ViewportW/2 + dx*c.Zoom
	sy = c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToMap converts screen coordinates to map coordinates.
func (c *Map) ScreenToMap(sx, sy float32) (mx, my float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	mx = mod(c.X+dx, c.MapW)
	my = clamp(c.Y+dy, 0, c.MapH)
	return mx, my
}

// UV returns the texture coordinates under a screen point.
func (c *Map) UV(sx, sy float32) (u, v float32) {
	mx, my := c.ScreenToMap(sx, sy)
	return mx / c.MapW, my / c.MapH
}

// Source returns the map rectangle visible in the viewport. X may fall
// outside [0, MapW); the texture repeats horizontally.
func (c *Map) Source() (x, y, w, h float32) {
	w = c.ViewportW / c.Zoom
	h = c.ViewportH / c.Zoom
	return c.X - w/2, c.Y - h/2, w, h
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Map) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = viewportH / c.MapH
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Map) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.MapW)
	c.Y += dy / c.Zoom
	c.clampY()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Map) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampY()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Map) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the map center at minimum zoom.
func (c *Map) Reset() {
	c.X = c.MapW / 2
	c.Y = c.MapH / 2
	c.Zoom = c.MinZoom
}

// clampY keeps the visible band between the poles.
func (c *Map) clampY() {
	half := c.ViewportH / (2 * c.Zoom)
	c.Y = clamp(c.Y, half, c.MapH-half)
}

// Orbit is an orthographic camera looking at the origin. Yaw turns about the
// vertical axis, Pitch tilts the orbital plane toward the viewer.
type Orbit struct {
	CenterX, CenterY float32 // Screen position of the origin
	Scale            float32 // Pixels per world unit
	Yaw, Pitch       float64
}

// Project maps a world position to screen space and returns its depth
// (larger is farther from the viewer).
func (o Orbit) Project(p r3.Vec) (sx, sy float32, depth float64) {
	sinY, cosY := math.Sincos(o.Yaw)
	x := p.X*cosY - p.Z*sinY
	z := p.X*sinY + p.Z*cosY

	sinP, cosP := math.Sincos(o.Pitch)
	y := p.Y*cosP - z*sinP
	depth = p.Y*sinP + z*cosP

	return o.CenterX + float32(x)*o.Scale, o.CenterY - float32(y)*o.Scale, depth
}

// ZoomBy multiplies the scale by f.
func (o *Orbit) ZoomBy(f float32) {
	o.Scale = clamp(o.Scale*f, 0.05, 200)
}

// Rotate turns the camera. Pitch stops at looking straight down or edge-on.
func (o *Orbit) Rotate(dyaw, dpitch float64) {
	o.Yaw = math.Mod(o.Yaw+dyaw, 2*math.Pi)
	o.Pitch = math.Max(0, math.Min(math.Pi/2, o.Pitch+dpitch))
}

// wrapDelta computes the shortest signed distance from 'from' to 'to'
// around a circle of the given circumference.
func wrapDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
