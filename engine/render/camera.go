package render

import "math"

// tilePixels is the on-screen size of one world unit at zoom 1.
const tilePixels = 48.0

// Camera represents the viewport into the hex world
type Camera struct {
	X, Y    float64 // camera center position (world coords)
	Zoom    float64 // zoom level (1.0 = default)
	MinZoom float64
	MaxZoom float64
	ScreenW int // viewport width in pixels
	ScreenH int // viewport height in pixels
	Speed   float64 // pan speed (pixels per second)

	// World bounds for clamping
	WorldW float64
	WorldH float64
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:    1.0,
		MinZoom: 0.25,
		MaxZoom: 4.0,
		ScreenW: screenW,
		ScreenH: screenH,
		Speed:   500,
	}
}

// SetWorldBounds sets the world extents for camera clamping
func (c *Camera) SetWorldBounds(w, h float64) {
	c.WorldW = w
	c.WorldH = h
}

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / (c.Zoom * tilePixels)
	c.Y += dy / (c.Zoom * tilePixels)
	c.clamp()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms toward a screen point
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	// Adjust camera to keep the point stationary
	c.X += wx - wx2
	c.Y += wy - wy2
	c.clamp()
}

// CenterOn centers the camera on a world position
func (c *Camera) CenterOn(wx, wy float64) {
	c.X = wx
	c.Y = wy
	c.clamp()
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	sx := (wx-c.X)*c.Zoom*tilePixels + float64(c.ScreenW)/2
	sy := (wy-c.Y)*c.Zoom*tilePixels + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts screen pixels to world coords
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	wx := (float64(sx)-float64(c.ScreenW)/2)/(c.Zoom*tilePixels) + c.X
	wy := (float64(sy)-float64(c.ScreenH)/2)/(c.Zoom*tilePixels) + c.Y
	return wx, wy
}

func (c *Camera) clamp() {
	if c.WorldW <= 0 || c.WorldH <= 0 {
		return
	}
	c.X = math.Max(0, math.Min(c.WorldW, c.X))
	c.Y = math.Max(0, math.Min(c.WorldH, c.Y))
}
