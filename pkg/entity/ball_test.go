// pkg/entity/ball_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestNewBall(t *testing.T) {
	ball := NewBall(3, physics.Vector2D{X: 440, Y: 540}, physics.Vector2D{X: 150, Y: -200}, 15)

	if ball.ID != 3 {
		t.Errorf("ID = %v, want 3", ball.ID)
	}
	if ball.Mass != ball.Radius {
		t.Errorf("Mass = %v, want radius %v", ball.Mass, ball.Radius)
	}
	if ball.Restitution != 1 {
		t.Errorf("Restitution = %v, want 1", ball.Restitution)
	}
	if ball.Boost.Active {
		t.Error("new ball should not be boosted")
	}
	if ball.Boost.Policy != DefaultBoostPolicy {
		t.Errorf("Boost.Policy = %v, want %v", ball.Boost.Policy, DefaultBoostPolicy)
	}
}

func TestBall_Integrate(t *testing.T) {
	tests := []struct {
		name     string
		velocity physics.Vector2D
		boosted  bool
		dt       float64
		gravity  float64
		maxSpeed float64
		wantVel  physics.Vector2D
		wantPos  physics.Vector2D
	}{
		{
			name:     "gravity_only",
			velocity: physics.Vector2D{X: 0, Y: 0},
			dt:       0.1,
			gravity:  500,
			maxSpeed: 800,
			wantVel:  physics.Vector2D{X: 0, Y: 50},
			wantPos:  physics.Vector2D{X: 100, Y: 105},
		},
		{
			name:     "clamped_after_gravity",
			velocity: physics.Vector2D{X: 0, Y: 790},
			dt:       0.1,
			gravity:  500,
			maxSpeed: 800,
			wantVel:  physics.Vector2D{X: 0, Y: 800},
			wantPos:  physics.Vector2D{X: 100, Y: 180},
		},
		{
			name:     "boost_scales_displacement_only",
			velocity: physics.Vector2D{X: 100, Y: 0},
			boosted:  true,
			dt:       0.1,
			gravity:  0,
			maxSpeed: 800,
			wantVel:  physics.Vector2D{X: 100, Y: 0},
			wantPos:  physics.Vector2D{X: 115, Y: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := NewBall(0, physics.Vector2D{X: 100, Y: 100}, tt.velocity, 15)
			if tt.boosted {
				ball.Boost.Arm()
			}

			ball.Integrate(tt.dt, tt.gravity, tt.maxSpeed)

			if !near(ball.Velocity.X, tt.wantVel.X) || !near(ball.Velocity.Y, tt.wantVel.Y) {
				t.Errorf("Velocity = %v, want %v", ball.Velocity, tt.wantVel)
			}
			if !near(ball.Position.X, tt.wantPos.X) || !near(ball.Position.Y, tt.wantPos.Y) {
				t.Errorf("Position = %v, want %v", ball.Position, tt.wantPos)
			}
		})
	}
}

func TestBall_ClampVelocity(t *testing.T) {
	ball := NewBall(0, physics.Vector2D{}, physics.Vector2D{X: 600, Y: 800}, 15)
	ball.ClampVelocity(500)

	if !near(ball.Speed(), 500) {
		t.Errorf("Speed() = %v, want 500", ball.Speed())
	}
	if !near(ball.Velocity.X/ball.Velocity.Y, 0.75) {
		t.Errorf("direction changed: %v", ball.Velocity)
	}
}

func TestBoost_Cutoff(t *testing.T) {
	b := Boost{Duration: 0.2, Factor: 1.5, Tail: 0.5, Policy: BoostCutoff}

	if !b.Arm() {
		t.Fatal("Arm() on idle boost should start it")
	}
	if b.Arm() {
		t.Error("Arm() on active boost should not restart it")
	}
	if b.CurrentFactor() != 1.5 {
		t.Errorf("CurrentFactor() = %v, want 1.5", b.CurrentFactor())
	}

	b.Advance(0.1)
	if !b.Active || b.CurrentFactor() != 1.5 {
		t.Errorf("boost should still be full after 0.1s: %+v", b)
	}

	b.Advance(0.1)
	if b.Active {
		t.Error("cutoff boost should end at its duration")
	}
	if b.Elapsed != 0 {
		t.Errorf("Elapsed = %v, want reset to 0", b.Elapsed)
	}
	if b.CurrentFactor() != 1 {
		t.Errorf("CurrentFactor() = %v, want 1", b.CurrentFactor())
	}
}

func TestBoost_LinearTail(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    float64
		wantActive bool
		wantFactor float64
	}{
		{name: "inside_duration", elapsed: 0.1, wantActive: true, wantFactor: 1.5},
		{name: "tail_start", elapsed: 0.2, wantActive: true, wantFactor: 1.5},
		{name: "tail_half", elapsed: 0.45, wantActive: true, wantFactor: 1.25},
		{name: "after_tail", elapsed: 0.75, wantActive: false, wantFactor: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Boost{Duration: 0.2, Factor: 1.5, Tail: 0.5, Policy: BoostLinear}
			b.Arm()
			b.Advance(tt.elapsed)

			if b.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", b.Active, tt.wantActive)
			}
			if !near(b.CurrentFactor(), tt.wantFactor) {
				t.Errorf("CurrentFactor() = %v, want %v", b.CurrentFactor(), tt.wantFactor)
			}
		})
	}
}

func TestSquash(t *testing.T) {
	s := Squash{Duration: 0.2, Amount: 0.25}

	along, across := s.Scale()
	if along != 1 || across != 1 {
		t.Errorf("idle Scale() = %v,%v, want 1,1", along, across)
	}

	s.Trigger(physics.Vector2D{X: 0, Y: -3})
	if !near(s.Normal.Y, -1) {
		t.Errorf("Normal = %v, want unit vector", s.Normal)
	}
	along, across = s.Scale()
	if !near(along, 0.75) || !near(across, 1.25) {
		t.Errorf("Scale() = %v,%v, want 0.75,1.25", along, across)
	}

	s.Advance(0.1)
	along, _ = s.Scale()
	if !near(along, 0.875) {
		t.Errorf("half-way along = %v, want 0.875", along)
	}

	s.Advance(0.1)
	if s.Active {
		t.Error("squash should end after its duration")
	}
}

func TestBall_KineticEnergy(t *testing.T) {
	ball := NewBall(0, physics.Vector2D{}, physics.Vector2D{X: 3, Y: 4}, 10)
	if !near(ball.KineticEnergy(), 125) {
		t.Errorf("KineticEnergy() = %v, want 125", ball.KineticEnergy())
	}
	if m := ball.Momentum(); !near(m.X, 30) || !near(m.Y, 40) {
		t.Errorf("Momentum() = %v, want (30,40)", m)
	}
}
