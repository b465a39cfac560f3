// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
)

const (
	buttonPause = "pause"
	buttonQuit  = "quit"
)

// InputSystem handles the keyboard controls of the window.
type InputSystem struct {
	runner  *engine.Runner
	quit    func()
	pressed func(button string) bool
}

// NewInputSystem creates an input system toggling pause on runner and
// calling quit when the user asks to leave.
func NewInputSystem(runner *engine.Runner, quit func()) *InputSystem {
	return &InputSystem{
		runner: runner,
		quit:   quit,
		pressed: func(button string) bool {
			return engo.Input.Button(button).JustPressed()
		},
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update processes the buttons pressed since the last frame.
func (is *InputSystem) Update(dt float32) {
	if is.pressed(buttonQuit) {
		if is.quit != nil {
			is.quit()
		}
		return
	}
	if is.pressed(buttonPause) {
		is.runner.SetPaused(!is.runner.Paused())
	}
}

// SetupInputBindings sets up the key bindings for the window
func SetupInputBindings() {
	engo.Input.RegisterButton(buttonPause, engo.KeySpace, engo.KeyP)
	engo.Input.RegisterButton(buttonQuit, engo.KeyEscape, engo.KeyQ)
}
