package camera

import (
	"math"
	"testing"
)

func TestNewOrbit(t *testing.T) {
	cam := NewOrbit(8)

	if cam.Distance != 8 {
		t.Errorf("expected distance 8, got %f", cam.Distance)
	}
	if cam.TargetX != 0 || cam.TargetY != 0 || cam.TargetZ != 0 {
		t.Errorf("expected target at origin, got (%f, %f, %f)", cam.TargetX, cam.TargetY, cam.TargetZ)
	}
}

func TestPositionDistanceFromTarget(t *testing.T) {
	cam := NewOrbit(8)

	// Eye should always sit exactly Distance away from the target,
	// whatever the angles.
	angles := []struct{ yaw, pitch float32 }{
		{0, 0},
		{1.2, 0.4},
		{-2.5, -1.0},
		{6.9, 1.5},
	}

	for _, a := range angles {
		cam.Yaw = a.yaw
		cam.Pitch = a.pitch
		x, y, z := cam.Position()
		d := math.Sqrt(float64(x*x + y*y + z*z))
		if math.Abs(d-8) > 1e-4 {
			t.Errorf("yaw=%f pitch=%f: expected distance 8, got %f", a.yaw, a.pitch, d)
		}
	}
}

func TestPositionZeroAnglesOnXAxis(t *testing.T) {
	cam := NewOrbit(5)
	cam.Yaw = 0
	cam.Pitch = 0

	x, y, z := cam.Position()
	if math.Abs(float64(x-5)) > 1e-5 || math.Abs(float64(y)) > 1e-5 || math.Abs(float64(z)) > 1e-5 {
		t.Errorf("expected eye at (5, 0, 0), got (%f, %f, %f)", x, y, z)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	cam := NewOrbit(8)

	cam.Rotate(0, 10) // way past the pole
	if cam.Pitch > pitchLimit {
		t.Errorf("pitch exceeded limit: %f > %f", cam.Pitch, pitchLimit)
	}

	cam.Rotate(0, -20)
	if cam.Pitch < -pitchLimit {
		t.Errorf("pitch exceeded negative limit: %f", cam.Pitch)
	}
}

func TestRotateYawWrapsFreely(t *testing.T) {
	cam := NewOrbit(8)
	start := cam.Yaw

	cam.Rotate(100, 0)
	if cam.Yaw != start+100 {
		t.Errorf("expected yaw %f, got %f", start+100, cam.Yaw)
	}
}

func TestDollyClamps(t *testing.T) {
	cam := NewOrbit(8)

	cam.Dolly(1000)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.Dolly(-1000)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}
}

func TestDollyScale(t *testing.T) {
	cam := NewOrbit(8)

	cam.DollyScale(0.5)
	if cam.Distance != 4 {
		t.Errorf("expected distance 4, got %f", cam.Distance)
	}
}

func TestReset(t *testing.T) {
	cam := NewOrbit(8)
	cam.Rotate(3, 1)
	cam.Dolly(4)

	cam.Reset(10)
	if cam.Distance != 10 {
		t.Errorf("expected distance 10 after reset, got %f", cam.Distance)
	}
	if math.Abs(float64(cam.Yaw)-math.Pi*0.25) > 1e-6 {
		t.Errorf("expected default yaw after reset, got %f", cam.Yaw)
	}
}
