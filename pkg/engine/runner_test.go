package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-ringbreak/pkg/event"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRunner_RunTicks(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())
	r := NewRunner(sim)

	if math.Abs(r.StepSize()-tick) > 1e-12 {
		t.Fatalf("expected step %v, got %v", tick, r.StepSize())
	}

	events, err := r.RunTicks(60)
	if err != nil {
		t.Fatalf("RunTicks failed: %v", err)
	}
	if sim.CurrentTick != 60 {
		t.Errorf("expected 60 ticks, got %d", sim.CurrentTick)
	}
	if countEvents(events, event.RingBroken) != 1 {
		t.Errorf("expected the ring to break once, got %d", countEvents(events, event.RingBroken))
	}
}

func TestRunner_RunTicks_Deterministic(t *testing.T) {
	a := newTestSimulation(t, singleRingConfig())
	b := newTestSimulation(t, singleRingConfig())

	if _, err := NewRunner(a).RunTicks(90); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(b).RunTicks(90); err != nil {
		t.Fatal(err)
	}
	if a.Balls[0].Position != b.Balls[0].Position || a.Balls[0].Velocity != b.Balls[0].Velocity {
		t.Error("identical configs should produce identical runs")
	}
}

func TestRunner_Advance_FixedSteps(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())
	r := NewRunner(sim)

	if err := r.advance(0.04); err != nil {
		t.Fatal(err)
	}
	if sim.CurrentTick != 2 {
		t.Errorf("0.04s should run 2 steps, got %d", sim.CurrentTick)
	}
	// The leftover carries into the next frame.
	if err := r.advance(0.015); err != nil {
		t.Fatal(err)
	}
	if sim.CurrentTick != 3 {
		t.Errorf("accumulated time should run a third step, got %d", sim.CurrentTick)
	}

	r.SetPaused(true)
	if err := r.advance(0.04); err != nil {
		t.Fatal(err)
	}
	if sim.CurrentTick != 3 || !r.Paused() {
		t.Errorf("paused runner must not step, got tick %d", sim.CurrentTick)
	}
}

func TestRunner_Advance_External(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())
	r := NewRunner(sim)

	if err := r.Advance(-1); err != nil {
		t.Fatal(err)
	}
	if sim.CurrentTick != 0 {
		t.Errorf("negative frame time must not step, got %d", sim.CurrentTick)
	}

	// A five second stall is capped at MaxDeltaTime (0.05s, three steps).
	if err := r.Advance(5); err != nil {
		t.Fatal(err)
	}
	if sim.CurrentTick < 2 || sim.CurrentTick > 3 {
		t.Errorf("expected a capped frame of 2-3 steps, got %d", sim.CurrentTick)
	}
}

func TestRunner_BeginEnd_PublishLifecycle(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())
	var got []event.Type
	sim.EventBus.Subscribe(event.SimulationStarted, func(e event.Event) { got = append(got, e.GetType()) })
	sim.EventBus.Subscribe(event.SimulationStopped, func(e event.Event) { got = append(got, e.GetType()) })

	r := NewRunner(sim)
	r.Begin()
	r.End()

	if len(got) != 2 || got[0] != event.SimulationStarted || got[1] != event.SimulationStopped {
		t.Errorf("unexpected lifecycle events %v", got)
	}
}

func TestRunner_CalculateDeltaTime_Capped(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sim := newTestSimulation(t, singleRingConfig())
	r := NewRunner(sim, WithClock(clock.Now))
	r.lastUpdate = clock.Now()

	clock.Advance(10 * time.Millisecond)
	if got := r.calculateDeltaTime(); math.Abs(got-0.01) > 1e-9 {
		t.Errorf("expected 0.01, got %v", got)
	}

	clock.Advance(5 * time.Second)
	if got := r.calculateDeltaTime(); got != sim.Config.Physics.MaxDeltaTime {
		t.Errorf("expected delta capped at %v, got %v", sim.Config.Physics.MaxDeltaTime, got)
	}
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())

	var mu sync.Mutex
	var lifecycle []event.Type
	record := func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		lifecycle = append(lifecycle, e.GetType())
	}
	sim.EventBus.Subscribe(event.SimulationStarted, record)
	sim.EventBus.Subscribe(event.SimulationStopped, record)

	frames := 0
	r := NewRunner(sim, WithFrameFunc(func(State) error {
		frames++
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lifecycle) != 2 || lifecycle[0] != event.SimulationStarted || lifecycle[1] != event.SimulationStopped {
		t.Errorf("unexpected lifecycle events %v", lifecycle)
	}
	if frames < 1 {
		t.Error("the initial frame should always be delivered")
	}
}

func TestRunner_Run_Duration(t *testing.T) {
	cfg := singleRingConfig()
	cfg.Balls[0].VX = 0
	sim := newTestSimulation(t, cfg)
	r := NewRunner(sim, WithDuration(100*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("run should stop after its duration, not the context timeout")
	}
	if sim.CurrentTick == 0 {
		t.Error("expected some ticks during the run")
	}
}

func TestRunner_Run_StopsWhenFinished(t *testing.T) {
	sim := newTestSimulation(t, singleRingConfig())
	r := NewRunner(sim)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !sim.Finished() {
		t.Error("run should end once every ring is broken")
	}
	if ctx.Err() != nil {
		t.Error("run should end before the context deadline")
	}
}

func TestRunner_Run_FrameErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"quit is clean", ErrQuit, nil},
		{"other errors propagate", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, singleRingConfig())
			r := NewRunner(sim, WithFrameFunc(func(State) error { return tt.err }))
			err := r.Run(context.Background())
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
