package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewMap(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)

	if cam.X != 1024 || cam.Y != 512 {
		t.Errorf("expected camera at (1024, 512), got (%f, %f)", cam.X, cam.Y)
	}
	// Fits the map height exactly
	if math.Abs(float64(cam.Zoom-500.0/1024)) > 1e-6 {
		t.Errorf("expected zoom %f, got %f", 500.0/1024, cam.Zoom)
	}
}

func TestMapScreenRoundtrip(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)
	cam.SetZoom(2)

	testCases := []struct{ sx, sy float32 }{
		{500, 250}, // center
		{100, 100}, // top-left
		{900, 400}, // near bottom-right
	}

	for _, tc := range testCases {
		mx, my := cam.ScreenToMap(tc.sx, tc.sy)
		sx, sy := cam.MapToScreen(mx, my)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, mx, my, sx, sy)
		}
	}
}

func TestLongitudeWraps(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)
	cam.SetZoom(1)
	cam.X = 50

	// A point just west of the seam is closer going left
	sx, _ := cam.MapToScreen(2000, 512)
	if sx >= 500 {
		t.Errorf("expected point left of center, got x=%f", sx)
	}

	cam.Pan(-200, 0)
	if cam.X < 1800 {
		t.Errorf("expected X to wrap around the seam, got %f", cam.X)
	}

	u, _ := cam.UV(0, 250)
	if u < 0 || u >= 1 {
		t.Errorf("u out of range: %f", u)
	}
}

func TestLatitudeClamps(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)
	cam.SetZoom(2)

	cam.Pan(0, -1e6)
	_, y, _, _ := cam.Source()
	if y < -1e-3 {
		t.Errorf("view crosses the north pole: top=%f", y)
	}

	cam.Pan(0, 2e6)
	_, y, _, h := cam.Source()
	if y+h > cam.MapH+1e-3 {
		t.Errorf("view crosses the south pole: bottom=%f", y+h)
	}
}

func TestMapZoomClamp(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.ZoomBy(1e3)
	if cam.Zoom != 8.0 {
		t.Errorf("expected zoom clamped to 8.0, got %f", cam.Zoom)
	}
}

func TestResize(t *testing.T) {
	cam := NewMap(1000, 500, 2048, 1024)
	cam.Resize(1000, 1024)

	if cam.MinZoom != 1 || cam.Zoom != 1 {
		t.Errorf("expected min zoom and zoom 1, got %f and %f", cam.MinZoom, cam.Zoom)
	}
	if cam.Y != 512 {
		t.Errorf("expected Y re-centered at 512, got %f", cam.Y)
	}
}

func TestOrbitProject(t *testing.T) {
	o := Orbit{CenterX: 400, CenterY: 300, Scale: 10}

	sx, sy, _ := o.Project(r3.Vec{})
	if sx != 400 || sy != 300 {
		t.Errorf("origin should map to center, got (%f, %f)", sx, sy)
	}

	// Edge-on: +Y is up on screen
	sx, sy, _ = o.Project(r3.Vec{Y: 1})
	if sx != 400 || sy != 290 {
		t.Errorf("expected (400, 290), got (%f, %f)", sx, sy)
	}

	// Looking straight down, +Z moves down the screen and Y becomes depth
	o.Pitch = math.Pi / 2
	_, sy, _ = o.Project(r3.Vec{Z: 1})
	if math.Abs(float64(sy-310)) > 1e-3 {
		t.Errorf("expected y 310, got %f", sy)
	}
	_, _, near := o.Project(r3.Vec{Y: -1})
	_, _, far := o.Project(r3.Vec{Y: 1})
	if far <= near {
		t.Errorf("expected +Y farther than -Y: near=%f far=%f", near, far)
	}
}

func TestOrbitRotateAndZoom(t *testing.T) {
	o := Orbit{Scale: 1}

	o.Rotate(0, 10)
	if o.Pitch != math.Pi/2 {
		t.Errorf("expected pitch clamped to pi/2, got %f", o.Pitch)
	}
	o.Rotate(3*math.Pi, -10)
	if o.Pitch != 0 || math.Abs(o.Yaw-math.Pi) > 1e-9 {
		t.Errorf("expected yaw pi, pitch 0, got %f, %f", o.Yaw, o.Pitch)
	}

	o.ZoomBy(1e6)
	if o.Scale != 200 {
		t.Errorf("expected scale clamped to 200, got %f", o.Scale)
	}
}
