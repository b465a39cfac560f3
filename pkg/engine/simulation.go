// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/opd-ai/go-ringbreak/pkg/collision"
	"github.com/opd-ai/go-ringbreak/pkg/config"
	"github.com/opd-ai/go-ringbreak/pkg/entity"
	"github.com/opd-ai/go-ringbreak/pkg/event"
	"github.com/opd-ai/go-ringbreak/pkg/logging"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
	"github.com/opd-ai/go-ringbreak/pkg/validation"
)

// ErrInvalidTimestep is returned by Step for a non-positive or non-finite dt.
var ErrInvalidTimestep = errors.New("invalid timestep")

// quadCapacity is the number of balls per quad before subdivision.
const quadCapacity = 4

// Flash is the full-screen tint shown briefly after a ring breaks.
type Flash struct {
	Color     color.RGBA
	Remaining float64
	Duration  float64
}

// Active reports whether the flash should be drawn.
func (f Flash) Active() bool {
	return f.Remaining > 0
}

// Strength returns the flash intensity in [0, 1], fading linearly.
func (f Flash) Strength() float64 {
	if f.Duration <= 0 || f.Remaining <= 0 {
		return 0
	}
	return math.Min(f.Remaining/f.Duration, 1)
}

// Simulation owns the balls and the ring stack and advances them one
// fixed-order tick at a time. It is not safe for concurrent use; renderers
// read State snapshots between ticks.
type Simulation struct {
	Config       *config.SimulationConfig
	Balls        []*entity.Ball
	Arcs         []*entity.Arc // innermost first
	Center       physics.Vector2D
	EventBus     *event.Bus
	Scoreboard   *Scoreboard
	SpatialIndex *physics.QuadTree
	CurrentTick  uint64
	ElapsedTime  float64 // seconds of simulated time
	Flash        Flash
	RunID        string

	params     collision.Params
	shrinkRate float64
	logger     *logging.Logger
	ctx        context.Context
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger used for lifecycle and debug messages.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithEventBus makes the simulation publish on an existing bus.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) {
		s.EventBus = bus
	}
}

// WithRunID fixes the run ID attached to log entries.
func WithRunID(id string) Option {
	return func(s *Simulation) {
		s.RunID = id
	}
}

// NewSimulation validates cfg and builds the balls and rings it describes.
func NewSimulation(cfg *config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sim := &Simulation{
		Config: cfg,
		Center: physics.Vector2D{X: cfg.Frame.Width / 2, Y: cfg.Frame.Height / 2},
		params: collision.Params{MaxSpeed: cfg.Physics.MaxSpeed},
		Flash: Flash{
			Duration: cfg.Render.FlashDuration,
		},
		shrinkRate: cfg.Rings.ShrinkRate,
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.EventBus == nil {
		sim.EventBus = event.NewEventBus()
	}
	if sim.logger == nil {
		sim.logger = logging.NewLogger()
	}
	sim.logger = sim.logger.WithComponent("engine")
	sim.ctx = logging.WithRunID(context.Background(), sim.RunID)
	sim.RunID = logging.RunID(sim.ctx)

	if err := sim.initBalls(); err != nil {
		return nil, err
	}
	sim.initArcs()
	sim.initSpatialIndex()
	sim.Scoreboard = NewScoreboard(sim.EventBus, sim.Balls)

	sim.logger.Info(sim.ctx, "simulation created",
		"balls", len(sim.Balls),
		"rings", len(sim.Arcs),
		"boost_policy", string(cfg.Boost.Policy),
	)
	return sim, nil
}

// initBalls creates one ball per configured entry, numbered from zero.
func (s *Simulation) initBalls() error {
	s.Balls = make([]*entity.Ball, 0, len(s.Config.Balls))
	for i, bc := range s.Config.Balls {
		ball := entity.NewBall(
			entity.ID(i),
			physics.Vector2D{X: bc.X, Y: bc.Y},
			physics.Vector2D{X: bc.VX, Y: bc.VY},
			bc.Radius,
		)
		ball.Restitution = bc.Restitution

		label := fmt.Sprintf("Ball %d", i+1)
		if bc.Label != "" {
			clean, err := validation.ValidateLabel(bc.Label)
			if err != nil {
				return logging.WrapError(err, "ball %d", i)
			}
			label = clean
		}
		ball.Label = label

		c, err := config.ParseHexColor(bc.Color)
		if err != nil {
			return logging.WrapError(err, "ball %d colour", i)
		}
		ball.Color = c

		ball.Boost = entity.Boost{
			Duration: s.Config.Boost.Duration,
			Factor:   s.Config.Boost.Factor,
			Tail:     s.Config.Boost.Tail,
			Policy:   s.Config.Boost.Policy,
		}
		ball.ClampVelocity(s.params.MaxSpeed)
		s.Balls = append(s.Balls, ball)
	}
	return nil
}

// initArcs lays out the ring stack with increasing radius and a per-ring
// angular offset, which spirals the holes.
func (s *Simulation) initArcs() {
	rc := s.Config.Rings
	palette := make([]color.RGBA, 0, len(rc.Palette))
	for _, p := range rc.Palette {
		// Already validated.
		c, _ := config.ParseHexColor(p)
		palette = append(palette, c)
	}

	s.Arcs = make([]*entity.Arc, 0, rc.Count)
	for i := 0; i < rc.Count; i++ {
		arc := entity.NewArc(
			entity.ID(i),
			i,
			s.Center,
			rc.StartRadius+float64(i)*rc.Spacing,
			rc.FloorRadius,
			physics.Radians(rc.HoleWidth),
			physics.Radians(rc.BaseAngle+float64(i)*rc.AngleOffset),
			physics.Radians(rc.RotationSpeed),
		)
		arc.Rotating = rc.Rotating
		arc.Shrinking = rc.Shrinking
		arc.BreakEffect = rc.BreakEffect
		arc.FadeDuration = rc.FadeDuration
		if len(palette) > 0 {
			arc.Color = palette[i%len(palette)]
		}
		s.Arcs = append(s.Arcs, arc)
	}

	sort.SliceStable(s.Arcs, func(i, j int) bool {
		return s.Arcs[i].Radius < s.Arcs[j].Radius
	})
}

// initSpatialIndex creates the broad-phase index covering the frame.
func (s *Simulation) initSpatialIndex() {
	s.SpatialIndex = physics.NewQuadTree(
		physics.NewRectFromCorners(0, 0, s.Config.Frame.Width, s.Config.Frame.Height),
		quadCapacity,
	)
}

// Step advances the simulation by dt seconds in a fixed order: integrate
// balls, bounce off the frame, resolve every ball against every ring
// innermost first, resolve ball pairs, then rotate and shrink the rings.
// The tick's events are published on the bus and returned.
func (s *Simulation) Step(dt float64) ([]event.Event, error) {
	if err := validation.ValidateTimestep(dt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimestep, err)
	}

	var events []event.Event

	s.integrateBalls(dt)
	events = s.bounceOffFrame(events)
	events = s.resolveArcCollisions(events)
	events = s.resolveBallCollisions(events)
	s.advanceArcs(dt)
	s.advanceFlash(dt)

	s.CurrentTick++
	s.ElapsedTime += dt

	s.EventBus.PublishAll(events)
	return events, nil
}

// integrateBalls applies gravity and moves every ball.
func (s *Simulation) integrateBalls(dt float64) {
	for _, ball := range s.Balls {
		ball.Integrate(dt, s.Config.Physics.Gravity, s.params.MaxSpeed)
	}
}

// bounceOffFrame keeps every ball inside the outer rectangle.
func (s *Simulation) bounceOffFrame(events []event.Event) []event.Event {
	for _, ball := range s.Balls {
		walls := collision.BounceOffFrame(ball, s.Config.Frame.Width, s.Config.Frame.Height, s.params)
		for _, wall := range walls {
			events = append(events, event.NewWallBounceEvent(s, uint64(ball.ID), wall.String()))
		}
	}
	return events
}

// resolveArcCollisions tests each ball against every ring, innermost first.
func (s *Simulation) resolveArcCollisions(events []event.Event) []event.Event {
	for _, ball := range s.Balls {
		for _, arc := range s.Arcs {
			switch collision.ResolveBallArc(ball, arc, s.params) {
			case collision.ArcBroken:
				events = append(events, event.NewRingBrokenEvent(s, uint64(arc.ID), uint64(ball.ID)))
				s.triggerFlash(ball.Color)
				s.logger.Debug(s.ctx, "ring broken",
					"ring", arc.Index,
					"ball", ball.Label,
					"tick", s.CurrentTick,
				)
			case collision.ArcBounced:
				events = append(events, event.NewArcBounceEvent(s, uint64(arc.ID), uint64(ball.ID)))
			}
		}
	}
	return events
}

// resolveBallCollisions finds candidate pairs with the quad tree and
// resolves them in ascending index order.
func (s *Simulation) resolveBallCollisions(events []event.Event) []event.Event {
	if len(s.Balls) < 2 {
		return events
	}

	s.SpatialIndex.Clear()
	for i, ball := range s.Balls {
		s.SpatialIndex.Insert(ball.GetCollider(), i)
	}

	for i, a := range s.Balls {
		candidates := s.SpatialIndex.Neighbors(a.GetCollider())
		sort.Ints(candidates)
		for _, j := range candidates {
			if j <= i {
				continue
			}
			b := s.Balls[j]
			if contact := collision.ResolveBallBall(a, b, s.params); contact.Impulse {
				events = append(events, event.NewBallCollisionEvent(s, uint64(a.ID), uint64(b.ID)))
			}
		}
	}
	return events
}

// advanceArcs computes the shrink gate once and advances every ring.
func (s *Simulation) advanceArcs(dt float64) {
	gateOpen := entity.ShrinkGateOpen(s.Arcs)
	for _, arc := range s.Arcs {
		arc.Advance(dt, gateOpen, s.shrinkRate)
	}
}

func (s *Simulation) triggerFlash(c color.RGBA) {
	if s.Flash.Duration <= 0 {
		return
	}
	s.Flash.Color = c
	s.Flash.Remaining = s.Flash.Duration
}

func (s *Simulation) advanceFlash(dt float64) {
	if s.Flash.Remaining > 0 {
		s.Flash.Remaining = math.Max(s.Flash.Remaining-dt, 0)
	}
}

// RemainingRings counts the rings that are still unbroken.
func (s *Simulation) RemainingRings() int {
	n := 0
	for _, arc := range s.Arcs {
		if !arc.Broken {
			n++
		}
	}
	return n
}

// Finished reports whether every ring has been broken.
func (s *Simulation) Finished() bool {
	return s.RemainingRings() == 0
}

// Context returns the context carrying the run ID.
func (s *Simulation) Context() context.Context {
	return s.ctx
}

// Logger returns the simulation's logger.
func (s *Simulation) Logger() *logging.Logger {
	return s.logger
}
