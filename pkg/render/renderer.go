// pkg/render/renderer.go
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/logging"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// Renderer draws simulation snapshots. Draw calls Clear, then every
// visible ring, every ball and the HUD, then Present.
type Renderer interface {
	Clear()
	RenderArc(arc engine.ArcState, center physics.Vector2D)
	RenderBall(ball engine.BallState)
	RenderHUD(state engine.State)
	Present() error
}

// Options filter what Draw hands to a renderer.
type Options struct {
	// MaxVisibleRadius hides rings larger than this. Zero shows all.
	MaxVisibleRadius float64
	ShowHUD          bool
}

// Draw renders one snapshot with r.
func Draw(r Renderer, state engine.State, opts Options) error {
	r.Clear()
	for _, arc := range state.Arcs {
		if !ArcVisible(arc, opts.MaxVisibleRadius) {
			continue
		}
		r.RenderArc(arc, state.Center)
	}
	for _, ball := range state.Balls {
		r.RenderBall(ball)
	}
	if opts.ShowHUD {
		r.RenderHUD(state)
	}
	return r.Present()
}

// ArcVisible reports whether a ring should be drawn under the radius limit.
func ArcVisible(arc engine.ArcState, maxRadius float64) bool {
	if !arc.Visible() {
		return false
	}
	return maxRadius <= 0 || arc.Radius <= maxRadius
}

// FrameFunc adapts r into a runner callback.
func FrameFunc(r Renderer, opts Options) engine.FrameFunc {
	return func(state engine.State) error {
		return Draw(r, state, opts)
	}
}

// NullRenderer draws nothing and logs each call at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames int
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger.WithComponent("render"),
	}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {}

// RenderArc implements Renderer.
func (d *NullRenderer) RenderArc(engine.ArcState, physics.Vector2D) {}

// RenderBall implements Renderer.
func (d *NullRenderer) RenderBall(engine.BallState) {}

// RenderHUD implements Renderer.
func (d *NullRenderer) RenderHUD(state engine.State) {
	ctx := context.Background()
	d.logger.Debug(ctx, "RenderHUD called",
		"tick", state.Tick,
		"rings", remaining(state),
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() error {
	d.frames++
	return nil
}

// Frames returns the number of presented frames.
func (d *NullRenderer) Frames() int {
	return d.frames
}

// StatusLine summarises a snapshot in one line of plain text.
func StatusLine(state engine.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.1fs  rings %d", state.Time, remaining(state))
	for _, s := range state.Scores {
		fmt.Fprintf(&b, "  %s %d", s.Label, s.Rings)
	}
	if !state.Running {
		b.WriteString("  done")
	}
	return b.String()
}

func remaining(state engine.State) int {
	n := 0
	for _, arc := range state.Arcs {
		if !arc.Broken {
			n++
		}
	}
	return n
}
