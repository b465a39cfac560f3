// pkg/render/engo/hud.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/render"
)

// HUDSystem shows the status line in the window title.
type HUDSystem struct {
	title    string
	state    engine.State
	hasState bool
	paused   func() bool
	shown    string
	setTitle func(string)
}

// NewHUDSystem creates a HUD prefixing every status line with title.
func NewHUDSystem(title string, paused func() bool) *HUDSystem {
	return &HUDSystem{
		title:    title,
		paused:   paused,
		setTitle: engo.SetTitle,
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// UpdateState records the snapshot to display on the next update.
func (hud *HUDSystem) UpdateState(state engine.State) {
	hud.state = state
	hud.hasState = true
}

// Update refreshes the title when the text has changed.
func (hud *HUDSystem) Update(dt float32) {
	if !hud.hasState {
		return
	}
	text := hud.Text()
	if text == hud.shown {
		return
	}
	hud.shown = text
	hud.setTitle(text)
}

// Text returns the current title text.
func (hud *HUDSystem) Text() string {
	text := hud.title + "  " + render.StatusLine(hud.state)
	if hud.paused != nil && hud.paused() {
		text += "  paused"
	}
	return text
}
