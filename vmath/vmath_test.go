package vmath

import (
	"math"
	"testing"
)

func TestV3ClampMag(t *testing.T) {
	tests := []struct {
		name   string
		v      Vec3
		maxMag float64
		want   float64 // expected magnitude
	}{
		{"under limit", Vec3{1, 0, 0}, 5, 1},
		{"at limit", Vec3{3, 4, 0}, 5, 5},
		{"over limit", Vec3{30, 40, 0}, 5, 5},
		{"zero vector", Vec3{}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := V3Mag(V3ClampMag(tt.v, tt.maxMag))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("magnitude = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestV3Normalize(t *testing.T) {
	v := V3Normalize(Vec3{3, 4, 0})
	if math.Abs(V3Mag(v)-1.0) > 1e-12 {
		t.Errorf("normalized magnitude = %f, want 1", V3Mag(v))
	}

	zero := V3Normalize(Vec3{})
	if zero != (Vec3{}) {
		t.Errorf("normalizing zero vector should return zero, got %v", zero)
	}
}

func TestV3IsFinite(t *testing.T) {
	if !V3IsFinite(Vec3{1, 2, 3}) {
		t.Error("finite vector reported non-finite")
	}
	if V3IsFinite(Vec3{math.NaN(), 0, 0}) {
		t.Error("NaN component reported finite")
	}
	if V3IsFinite(Vec3{0, math.Inf(1), 0}) {
		t.Error("Inf component reported finite")
	}
}

func TestV3ClampBox(t *testing.T) {
	lo := Vec3{0, 0, 0}
	hi := Vec3{10, 10, 10}
	v := V3ClampBox(Vec3{-5, 5, 15}, lo, hi)
	want := Vec3{0, 5, 10}
	if v != want {
		t.Errorf("V3ClampBox = %v, want %v", v, want)
	}
}

func TestExpLerp(t *testing.T) {
	if got := ExpLerp(100, 10000, 0); got != 100 {
		t.Errorf("ExpLerp t=0: got %f, want 100", got)
	}
	if got := ExpLerp(100, 10000, 1); math.Abs(got-10000) > 1e-6 {
		t.Errorf("ExpLerp t=1: got %f, want 10000", got)
	}
	// Midpoint of an exponential sweep is the geometric mean
	if got := ExpLerp(100, 10000, 0.5); math.Abs(got-1000) > 1e-6 {
		t.Errorf("ExpLerp t=0.5: got %f, want 1000", got)
	}
}

func TestSpringStepConvergence(t *testing.T) {
	pos, vel := 0.5, 0.0
	for i := 0; i < 600; i++ {
		SpringStep(&pos, &vel, 1.0, 12.0, 1.0/60.0)
	}
	if math.Abs(pos-1.0) > 1e-3 {
		t.Errorf("spring did not converge: pos = %f", pos)
	}
	if math.Abs(vel) > 1e-3 {
		t.Errorf("spring velocity did not settle: vel = %f", vel)
	}
}

func TestSpringStepNoOvershoot(t *testing.T) {
	// Critically damped springs released from rest must not cross the target
	pos, vel := 0.0, 0.0
	for i := 0; i < 600; i++ {
		SpringStep(&pos, &vel, 1.0, 10.0, 1.0/60.0)
		if pos > 1.0+1e-6 {
			t.Fatalf("spring overshot target at step %d: pos = %f", i, pos)
		}
	}
}

func TestSpringKickClamped(t *testing.T) {
	vel := 0.0
	SpringKick(&vel, 100, 3)
	if vel != 3 {
		t.Errorf("kick not clamped: vel = %f", vel)
	}
	SpringKick(&vel, -100, 3)
	if vel != -3 {
		t.Errorf("negative kick not clamped: vel = %f", vel)
	}
}
