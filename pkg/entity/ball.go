// pkg/entity/ball.go
package entity

import (
	"image/color"

	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// BoostPolicy selects how the displacement multiplier ends.
type BoostPolicy string

const (
	// BoostCutoff holds Factor for Duration seconds, then drops to 1.
	BoostCutoff BoostPolicy = "cutoff"
	// BoostLinear holds Factor for Duration seconds, then decays linearly
	// back to 1 over Tail seconds.
	BoostLinear BoostPolicy = "linear"
)

// DefaultBoostPolicy is the decay policy used when none is configured.
const DefaultBoostPolicy = BoostCutoff

// Default ball tuning.
const (
	DefaultBoostDuration = 0.2
	DefaultBoostFactor   = 1.5
	DefaultBoostTail     = 0.5
	DefaultSquashTime    = 0.15
	DefaultSquashAmount  = 0.25
)

// Boost is a timed multiplier on a ball's displacement. It never touches
// the stored velocity.
type Boost struct {
	Active   bool
	Elapsed  float64
	Duration float64
	Factor   float64
	Tail     float64
	Policy   BoostPolicy
}

// Arm starts the boost unless it is already running. It reports whether
// the boost was started.
func (b *Boost) Arm() bool {
	if b.Active {
		return false
	}
	b.Active = true
	b.Elapsed = 0
	return true
}

// CurrentFactor returns the displacement multiplier for the current tick.
func (b Boost) CurrentFactor() float64 {
	if !b.Active {
		return 1
	}
	if b.Elapsed < b.Duration {
		return b.Factor
	}
	if b.Policy == BoostLinear && b.Tail > 0 {
		after := b.Elapsed - b.Duration
		if after < b.Tail {
			return b.Factor - (b.Factor-1)*(after/b.Tail)
		}
	}
	return 1
}

// window is the total time the boost stays active.
func (b Boost) window() float64 {
	if b.Policy == BoostLinear {
		return b.Duration + b.Tail
	}
	return b.Duration
}

// Advance moves the boost timer forward and deactivates it once its
// window has elapsed.
func (b *Boost) Advance(dt float64) {
	if !b.Active {
		return
	}
	b.Elapsed += dt
	if b.Elapsed >= b.window() {
		b.Active = false
		b.Elapsed = 0
	}
}

// Squash is the short squash-and-stretch animation played after a bounce.
// It only affects how the ball is drawn.
type Squash struct {
	Active   bool
	Elapsed  float64
	Duration float64
	Amount   float64
	Normal   physics.Vector2D
}

// Trigger restarts the animation along the given contact normal.
func (s *Squash) Trigger(normal physics.Vector2D) {
	if s.Duration <= 0 {
		return
	}
	s.Active = true
	s.Elapsed = 0
	s.Normal = normal.Normalize()
}

// Scale returns the radius multipliers along and across the contact normal.
func (s Squash) Scale() (along, across float64) {
	if !s.Active || s.Duration <= 0 {
		return 1, 1
	}
	remaining := 1 - s.Elapsed/s.Duration
	if remaining < 0 {
		remaining = 0
	}
	return 1 - s.Amount*remaining, 1 + s.Amount*remaining
}

// Advance moves the animation forward.
func (s *Squash) Advance(dt float64) {
	if !s.Active {
		return
	}
	s.Elapsed += dt
	if s.Elapsed >= s.Duration {
		s.Active = false
		s.Elapsed = 0
	}
}

// Ball is a circular body moving under gravity.
type Ball struct {
	BaseEntity
	Label       string
	Color       color.RGBA
	Velocity    physics.Vector2D
	Radius      float64
	Mass        float64
	Restitution float64
	Boost       Boost
	Squash      Squash
}

// NewBall creates a ball with mass equal to its radius and a lossless
// restitution.
func NewBall(id ID, position, velocity physics.Vector2D, radius float64) *Ball {
	return &Ball{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
		},
		Velocity:    velocity,
		Radius:      radius,
		Mass:        radius,
		Restitution: 1,
		Boost: Boost{
			Duration: DefaultBoostDuration,
			Factor:   DefaultBoostFactor,
			Tail:     DefaultBoostTail,
			Policy:   DefaultBoostPolicy,
		},
		Squash: Squash{
			Duration: DefaultSquashTime,
			Amount:   DefaultSquashAmount,
		},
	}
}

// GetCollider returns the ball's collision shape
func (b *Ball) GetCollider() physics.Circle {
	return physics.Circle{Center: b.Position, Radius: b.Radius}
}

// ClampVelocity rescales the velocity to maxSpeed, keeping its direction.
func (b *Ball) ClampVelocity(maxSpeed float64) {
	b.Velocity = b.Velocity.ClampLength(maxSpeed)
}

// Integrate applies gravity, clamps the speed, and moves the ball by its
// velocity scaled with the current boost factor.
func (b *Ball) Integrate(dt, gravity, maxSpeed float64) {
	b.Velocity.Y += gravity * dt
	b.ClampVelocity(maxSpeed)

	factor := b.Boost.CurrentFactor()
	b.Position = b.Position.Add(b.Velocity.Scale(factor * dt))

	b.Boost.Advance(dt)
	b.Squash.Advance(dt)
}

// Speed returns the magnitude of the stored velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Length()
}

// KineticEnergy returns ½·m·|v|².
func (b *Ball) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.LengthSquared()
}

// Momentum returns m·v.
func (b *Ball) Momentum() physics.Vector2D {
	return b.Velocity.Scale(b.Mass)
}
