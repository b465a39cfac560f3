// pkg/engine/runner.go
package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/opd-ai/go-ringbreak/pkg/event"
)

// ErrQuit may be returned by a FrameFunc to end a run without an error.
var ErrQuit = errors.New("quit requested")

// FrameFunc receives a snapshot after every batch of ticks.
type FrameFunc func(State) error

// Runner drives a Simulation in real time with a fixed timestep.
type Runner struct {
	sim      *Simulation
	onFrame  FrameFunc
	step     float64
	maxDelta float64
	runFor   time.Duration
	now      func() time.Time
	paused   bool

	accumulator float64
	lastUpdate  time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFrameFunc sets the callback invoked after each frame's ticks.
func WithFrameFunc(fn FrameFunc) RunnerOption {
	return func(r *Runner) {
		r.onFrame = fn
	}
}

// WithDuration stops the run after d of wall time. Zero runs until the
// context is cancelled or every ring is broken.
func WithDuration(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.runFor = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner stepping sim at the configured tick rate.
func NewRunner(sim *Simulation, opts ...RunnerOption) *Runner {
	r := &Runner{
		sim:      sim,
		step:     1 / float64(sim.Config.Physics.TickRate),
		maxDelta: sim.Config.Physics.MaxDeltaTime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StepSize returns the fixed timestep in seconds.
func (r *Runner) StepSize() float64 {
	return r.step
}

// SetPaused freezes or resumes simulated time. Frames keep being delivered.
func (r *Runner) SetPaused(paused bool) {
	r.paused = paused
}

// Paused reports whether the runner is paused.
func (r *Runner) Paused() bool {
	return r.paused
}

// RunTicks advances the simulation by exactly n fixed steps, ignoring
// wall time. It returns every event emitted along the way.
func (r *Runner) RunTicks(n int) ([]event.Event, error) {
	var all []event.Event
	for i := 0; i < n; i++ {
		events, err := r.sim.Step(r.step)
		if err != nil {
			return all, err
		}
		all = append(all, events...)
	}
	return all, nil
}

// Run steps the simulation until ctx is cancelled, the configured duration
// elapses, every ring is broken, or the frame callback fails. Cancellation
// and ErrQuit end the run without an error.
func (r *Runner) Run(ctx context.Context) error {
	start := r.now()
	r.Begin()
	err := r.loop(ctx, start)
	r.End()

	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Begin resets the clock and announces the start of a run. Run calls it
// itself; hosts that drive the runner through Advance call it once before
// the first frame.
func (r *Runner) Begin() {
	sim := r.sim
	r.lastUpdate = r.now()
	r.accumulator = 0

	sim.EventBus.Publish(event.NewLifecycleEvent(event.SimulationStarted, sim, sim.RunID, sim.CurrentTick))
	sim.Logger().Info(sim.Context(), "simulation started",
		"tick_rate", sim.Config.Physics.TickRate,
		"run_for", r.runFor.String(),
	)
}

// End announces the end of a run.
func (r *Runner) End() {
	sim := r.sim
	sim.EventBus.Publish(event.NewLifecycleEvent(event.SimulationStopped, sim, sim.RunID, sim.CurrentTick))
	sim.Logger().Info(sim.Context(), "simulation stopped",
		"ticks", sim.CurrentTick,
		"rings_broken", sim.Scoreboard.Total(),
	)
}

func (r *Runner) loop(ctx context.Context, start time.Time) error {
	ticker := time.NewTicker(time.Duration(r.step * float64(time.Second)))
	defer ticker.Stop()

	if err := r.emitFrame(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.advance(r.calculateDeltaTime()); err != nil {
			return err
		}
		if err := r.emitFrame(); err != nil {
			return err
		}

		if r.sim.Finished() {
			return nil
		}
		if r.runFor > 0 && r.now().Sub(start) >= r.runFor {
			return nil
		}
	}
}

// calculateDeltaTime returns the wall time since the last update, capped
// so a stalled process does not fast-forward the simulation.
func (r *Runner) calculateDeltaTime() float64 {
	now := r.now()
	deltaTime := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	if deltaTime > r.maxDelta {
		deltaTime = r.maxDelta
	}
	if deltaTime < 0 {
		deltaTime = 0
	}
	return deltaTime
}

// Advance runs the fixed steps covered by a frame time measured by the
// caller, such as a window's render loop. The frame time is capped like
// wall-clock time.
func (r *Runner) Advance(deltaTime float64) error {
	return r.advance(math.Max(0, math.Min(deltaTime, r.maxDelta)))
}

// advance feeds wall time into the accumulator and runs as many fixed
// steps as it covers.
func (r *Runner) advance(deltaTime float64) error {
	if r.paused {
		return nil
	}
	r.accumulator += deltaTime
	for r.accumulator >= r.step {
		if _, err := r.sim.Step(r.step); err != nil {
			return err
		}
		r.accumulator -= r.step
	}
	return nil
}

func (r *Runner) emitFrame() error {
	if r.onFrame == nil {
		return nil
	}
	return r.onFrame(r.sim.State())
}
