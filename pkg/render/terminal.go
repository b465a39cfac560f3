package render

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

const (
	hudRows    = 1
	cellAspect = 2.0 // terminal cells are about twice as tall as wide
	ringRune   = '·'
	ballRune   = '●'
	ballFill   = 'o'
)

// Command is a user action read from the terminal.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandPause
)

// TerminalRenderer draws the frame with tcell, scaled to fit the screen.
type TerminalRenderer struct {
	screen     tcell.Screen
	width      int
	height     int
	scale      float64
	centerPos  physics.Vector2D
	frameW     float64
	frameH     float64
	background color.RGBA
	baseStyle  tcell.Style
	resized    atomic.Bool
}

// NewTerminalRenderer creates a renderer drawing a frameW×frameH world on
// an initialised screen.
func NewTerminalRenderer(screen tcell.Screen, frameW, frameH float64, background color.RGBA) *TerminalRenderer {
	r := &TerminalRenderer{
		screen:     screen,
		frameW:     frameW,
		frameH:     frameH,
		background: background,
		centerPos:  physics.Vector2D{X: frameW / 2, Y: frameH / 2},
	}
	r.baseStyle = tcell.StyleDefault.Background(toTcell(background))
	r.fit()
	return r
}

// fit recomputes the scale so the whole frame is visible.
func (r *TerminalRenderer) fit() {
	r.width, r.height = r.screen.Size()
	rows := r.height - hudRows
	if r.width <= 0 || rows <= 0 {
		r.scale = 1
		return
	}
	r.scale = math.Max(r.frameW/float64(r.width), r.frameH/(float64(rows)*cellAspect))
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	rows := r.height - hudRows
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/(r.scale*cellAspect)+float64(rows)/2)) + hudRows
	return screenX, screenY
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= hudRows && y < r.height
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	if r.resized.Swap(false) {
		r.screen.Sync()
		r.fit()
	}
	r.screen.SetStyle(r.baseStyle)
	r.screen.Clear()
}

// RenderArc implements Renderer. Only the solid part of the ring is drawn.
func (r *TerminalRenderer) RenderArc(arc engine.ArcState, center physics.Vector2D) {
	start, span := arc.SolidArc()
	if span <= 0 {
		return
	}

	fg := blend(r.background, arc.Color, arc.Opacity)
	if !arc.Broken {
		fg = arc.Color
	}
	style := r.baseStyle.Foreground(toTcell(fg))

	// Two samples per horizontal cell of circumference.
	samples := int(math.Ceil(2*span*arc.Radius/r.scale)) + 1
	for i := 0; i <= samples; i++ {
		theta := start + span*float64(i)/float64(samples)
		x, y := r.worldToScreen(physics.ScreenPoint(center, arc.Radius, theta))
		if r.inBounds(x, y) {
			r.screen.SetContent(x, y, ringRune, nil, style)
		}
	}
}

// RenderBall implements Renderer.
func (r *TerminalRenderer) RenderBall(ball engine.BallState) {
	style := r.baseStyle.Foreground(toTcell(ball.Color))

	cx, cy := r.worldToScreen(ball.Position)
	rx := int(ball.Radius / r.scale)
	ry := int(ball.Radius / (r.scale * cellAspect))
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if rx > 0 && ry > 0 {
				nx, ny := float64(dx)/float64(rx), float64(dy)/float64(ry)
				if nx*nx+ny*ny > 1 {
					continue
				}
			}
			if r.inBounds(cx+dx, cy+dy) {
				r.screen.SetContent(cx+dx, cy+dy, ballFill, nil, style)
			}
		}
	}
	if r.inBounds(cx, cy) {
		r.screen.SetContent(cx, cy, ballRune, nil, style)
	}
}

// RenderHUD implements Renderer. The status line takes the colour of the
// flash while it is active.
func (r *TerminalRenderer) RenderHUD(state engine.State) {
	style := r.baseStyle.Foreground(tcell.ColorWhite)
	if state.Flash.Active() {
		bg := blend(r.background, state.Flash.Color, state.Flash.Strength())
		style = style.Background(toTcell(bg))
		for x := 0; x < r.width; x++ {
			r.screen.SetContent(x, 0, ' ', nil, style)
		}
	}

	x := r.drawText(0, 0, fmt.Sprintf("t=%5.1fs  rings %d ", state.Time, remaining(state)), style)
	for _, s := range state.Scores {
		x = r.drawText(x, 0, fmt.Sprintf(" %s %d", s.Label, s.Rings), style.Foreground(toTcell(s.Color)))
	}
	if !state.Running {
		r.drawText(x, 0, "  done", style)
	}
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		if x >= r.width {
			break
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() error {
	r.screen.Show()
	return nil
}

// HandleEvent maps a tcell event to a command. Resize events make the
// next frame refit the view.
func (r *TerminalRenderer) HandleEvent(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
			return CommandQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return CommandQuit
			case ' ', 'p', 'P':
				return CommandPause
			}
		}
	case *tcell.EventResize:
		r.resized.Store(true)
	}
	return CommandNone
}

// Commands polls the screen for input until ctx is done and delivers
// every non-empty command.
func (r *TerminalRenderer) Commands(ctx context.Context) <-chan Command {
	out := make(chan Command, 8)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				cmd := r.HandleEvent(ev)
				if cmd == CommandNone {
					continue
				}
				select {
				case out <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close restores the terminal.
func (r *TerminalRenderer) Close() {
	r.screen.Fini()
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blend mixes from towards to by t in [0, 1].
func blend(from, to color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{
		R: mix(from.R, to.R),
		G: mix(from.G, to.G),
		B: mix(from.B, to.B),
		A: 255,
	}
}
