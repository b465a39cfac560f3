// pkg/entity/arc.go
package entity

import (
	"image/color"

	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// BreakEffect controls what a broken ring looks like afterwards.
type BreakEffect string

const (
	// BreakDisappear hides the ring as soon as it breaks.
	BreakDisappear BreakEffect = "disappear"
	// BreakFade fades the ring's opacity to zero over FadeDuration.
	BreakFade BreakEffect = "fade"
)

// ArcPhase is the state of an arc's shrink/break state machine.
type ArcPhase int

const (
	// ArcShrinking means the ring is above its floor and the gate is open.
	ArcShrinking ArcPhase = iota
	// ArcHeld means the ring is above its floor but the shrink gate is closed.
	ArcHeld
	// ArcAtFloor means the ring has reached its floor radius.
	ArcAtFloor
	// ArcBroken is terminal.
	ArcBroken
)

func (p ArcPhase) String() string {
	switch p {
	case ArcShrinking:
		return "shrinking"
	case ArcHeld:
		return "held"
	case ArcAtFloor:
		return "at_floor"
	case ArcBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Arc is one ring of the nested boundary. Angles are radians measured
// counter-clockwise on screen.
type Arc struct {
	BaseEntity
	Index         int
	Color         color.RGBA
	Radius        float64
	FloorRadius   float64
	HoleWidth     float64
	BaseAngle     float64
	RotationSpeed float64
	Elapsed       float64
	Rotating      bool
	Shrinking     bool
	BreakEffect   BreakEffect
	FadeDuration  float64
	Broken        bool
	BrokenBy      ID
	Opacity       float64
}

// NewArc creates an unbroken, rotating, shrinking ring around center.
func NewArc(id ID, index int, center physics.Vector2D, radius, floor, holeWidth, baseAngle, rotationSpeed float64) *Arc {
	return &Arc{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: center,
		},
		Index:         index,
		Color:         color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Radius:        radius,
		FloorRadius:   floor,
		HoleWidth:     holeWidth,
		BaseAngle:     baseAngle,
		RotationSpeed: rotationSpeed,
		Rotating:      true,
		Shrinking:     true,
		BreakEffect:   BreakDisappear,
		Opacity:       1,
	}
}

// Center returns the shared center of the ring stack.
func (a *Arc) Center() physics.Vector2D {
	return a.Position
}

// GetCollider returns the full circle bounding the ring.
func (a *Arc) GetCollider() physics.Circle {
	return physics.Circle{Center: a.Position, Radius: a.Radius}
}

// HoleStart returns the current start angle of the hole in [0, 2π).
func (a *Arc) HoleStart() float64 {
	angle := a.BaseAngle
	if a.Rotating {
		angle += a.Elapsed * a.RotationSpeed
	}
	return physics.NormalizeAngle(angle)
}

// Hole returns the current hole interval [HoleStart, HoleStart+HoleWidth).
func (a *Arc) Hole() physics.AngleInterval {
	return physics.NewAngleInterval(a.HoleStart(), a.HoleWidth)
}

// Solid returns the collidable part of the ring, the exact complement of
// Hole. Renderers draw this interval.
func (a *Arc) Solid() physics.AngleInterval {
	return a.Hole().Complement()
}

// AngularWidth returns the span of solid wall in radians.
func (a *Arc) AngularWidth() float64 {
	return physics.TwoPi - a.HoleWidth
}

// InHole reports whether the screen angle theta currently lies in the hole.
func (a *Arc) InHole(theta float64) bool {
	if a.HoleWidth <= 0 {
		return false
	}
	if a.HoleWidth >= physics.TwoPi {
		return true
	}
	return a.Hole().Contains(theta)
}

// Break marks the ring as broken by ball. It returns false if the ring was
// already broken, in which case nothing changes.
func (a *Arc) Break(by ID) bool {
	if a.Broken {
		return false
	}
	a.Broken = true
	a.BrokenBy = by
	if a.BreakEffect != BreakFade || a.FadeDuration <= 0 {
		a.Opacity = 0
	}
	return true
}

// AtFloor reports whether the ring has shrunk to its floor radius.
func (a *Arc) AtFloor() bool {
	return a.Radius <= a.FloorRadius
}

// Phase reports the ring's state for the given shrink gate.
func (a *Arc) Phase(gateOpen bool) ArcPhase {
	switch {
	case a.Broken:
		return ArcBroken
	case a.AtFloor():
		return ArcAtFloor
	case !gateOpen || !a.Shrinking:
		return ArcHeld
	default:
		return ArcShrinking
	}
}

// Advance moves the ring forward by dt. Rotation never stops while the
// ring is unbroken. The radius shrinks by shrinkRate·dt only when
// gateOpen is true, and never below FloorRadius. A broken ring only fades.
func (a *Arc) Advance(dt float64, gateOpen bool, shrinkRate float64) {
	if a.Broken {
		if a.Opacity > 0 && a.FadeDuration > 0 {
			a.Opacity -= dt / a.FadeDuration
			if a.Opacity < 0 {
				a.Opacity = 0
			}
		}
		return
	}

	a.Elapsed += dt

	if !a.Shrinking || !gateOpen || a.AtFloor() {
		return
	}
	a.Radius -= shrinkRate * dt
	if a.Radius < a.FloorRadius {
		a.Radius = a.FloorRadius
	}
}

// Visible reports whether a renderer should draw the ring.
func (a *Arc) Visible() bool {
	return !a.Broken || a.Opacity > 0
}

// ShrinkGateOpen reports whether rings may shrink this tick: false as soon
// as any unbroken ring is at or below its floor.
func ShrinkGateOpen(arcs []*Arc) bool {
	for _, a := range arcs {
		if !a.Broken && a.AtFloor() {
			return false
		}
	}
	return true
}
