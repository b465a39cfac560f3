// pkg/engine/state.go
package engine

import (
	"image/color"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// State is a frozen snapshot of the simulation taken between ticks.
// It shares no memory with the simulation.
type State struct {
	Tick    uint64
	Time    float64
	Width   float64
	Height  float64
	Center  physics.Vector2D
	Balls   []BallState
	Arcs    []ArcState
	Flash   Flash
	Scores  []BallScore
	Running bool
}

// BallState represents a snapshot of a ball's state
type BallState struct {
	ID           entity.ID
	Label        string
	Color        color.RGBA
	Position     physics.Vector2D
	Velocity     physics.Vector2D
	Radius       float64
	BoostFactor  float64
	SquashAlong  float64
	SquashAcross float64
	SquashNormal physics.Vector2D
}

// ArcState represents a snapshot of a ring's state
type ArcState struct {
	ID        entity.ID
	Index     int
	Color     color.RGBA
	Radius    float64
	Hole      physics.AngleInterval
	Solid     physics.AngleInterval
	HoleWidth float64
	Broken    bool
	Opacity   float64
	Phase     entity.ArcPhase
}

// Visible reports whether the ring should be drawn.
func (a ArcState) Visible() bool {
	return !a.Broken || a.Opacity > 0
}

// SolidArc returns the start and angular length of the drawn wall. A ring
// without a hole is a full circle; a ring that is all hole has no wall.
func (a ArcState) SolidArc() (start, span float64) {
	switch {
	case a.HoleWidth <= 0:
		return 0, physics.TwoPi
	case a.HoleWidth >= physics.TwoPi:
		return 0, 0
	default:
		return a.Solid.Start, a.Solid.Span()
	}
}

// SolidContains reports whether the screen angle theta is on the wall.
func (a ArcState) SolidContains(theta float64) bool {
	switch {
	case a.HoleWidth <= 0:
		return true
	case a.HoleWidth >= physics.TwoPi:
		return false
	default:
		return a.Solid.Contains(theta)
	}
}

// State returns a snapshot of the current simulation state
func (s *Simulation) State() State {
	return State{
		Tick:    s.CurrentTick,
		Time:    s.ElapsedTime,
		Width:   s.Config.Frame.Width,
		Height:  s.Config.Frame.Height,
		Center:  s.Center,
		Balls:   s.getBallStates(),
		Arcs:    s.getArcStates(),
		Flash:   s.Flash,
		Scores:  s.Scoreboard.Scores(),
		Running: !s.Finished(),
	}
}

// getBallStates creates a snapshot of the current ball states.
func (s *Simulation) getBallStates() []BallState {
	states := make([]BallState, 0, len(s.Balls))
	for _, ball := range s.Balls {
		along, across := ball.Squash.Scale()
		states = append(states, BallState{
			ID:           ball.ID,
			Label:        ball.Label,
			Color:        ball.Color,
			Position:     ball.Position,
			Velocity:     ball.Velocity,
			Radius:       ball.Radius,
			BoostFactor:  ball.Boost.CurrentFactor(),
			SquashAlong:  along,
			SquashAcross: across,
			SquashNormal: ball.Squash.Normal,
		})
	}
	return states
}

// getArcStates creates a snapshot of the current ring states, innermost first.
func (s *Simulation) getArcStates() []ArcState {
	gateOpen := entity.ShrinkGateOpen(s.Arcs)
	states := make([]ArcState, 0, len(s.Arcs))
	for _, arc := range s.Arcs {
		states = append(states, ArcState{
			ID:        arc.ID,
			Index:     arc.Index,
			Color:     arc.Color,
			Radius:    arc.Radius,
			Hole:      arc.Hole(),
			Solid:     arc.Solid(),
			HoleWidth: arc.HoleWidth,
			Broken:    arc.Broken,
			Opacity:   arc.Opacity,
			Phase:     arc.Phase(gateOpen),
		})
	}
	return states
}
