// pkg/render/engo/scene.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/render"
)

// RingScene represents the simulation window in Engo
type RingScene struct {
	sim      *engine.Simulation
	runner   *engine.Runner
	renderer *EngoRenderer
	title    string
	options  render.Options

	input *InputSystem
	hud   *HUDSystem
	err   error
	exit  func()
}

// NewRingScene creates a scene driving runner and drawing sim with renderer.
func NewRingScene(sim *engine.Simulation, runner *engine.Runner, renderer *EngoRenderer, title string, opts render.Options) *RingScene {
	return &RingScene{
		sim:      sim,
		runner:   runner,
		renderer: renderer,
		title:    title,
		options:  opts,
		exit:     engo.Exit,
	}
}

// Type returns the scene type (required by Engo)
func (scene *RingScene) Type() string {
	return "RingScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *RingScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *RingScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)
	scene.renderer.Initialize(renderSystem)

	SetupInputBindings()
	scene.input = NewInputSystem(scene.runner, scene.exit)
	scene.hud = NewHUDSystem(scene.title, scene.runner.Paused)

	world.AddSystem(scene.input)
	world.AddSystem(&simulationSystem{scene: scene})
	world.AddSystem(scene.hud)

	scene.runner.Begin()
}

// Exit is called when the window is closing
func (scene *RingScene) Exit() {
	scene.runner.End()
}

// Err returns the error that stopped the scene, if any.
func (scene *RingScene) Err() error {
	return scene.err
}

// update advances the simulation by one window frame and redraws it.
func (scene *RingScene) update(dt float32) {
	if scene.err != nil {
		return
	}
	if err := scene.runner.Advance(float64(dt)); err != nil {
		scene.fail(err)
		return
	}
	state := scene.sim.State()
	if scene.hud != nil {
		scene.hud.UpdateState(state)
	}
	if err := render.Draw(scene.renderer, state, scene.options); err != nil {
		scene.fail(err)
	}
}

func (scene *RingScene) fail(err error) {
	scene.err = err
	scene.sim.Logger().Error(scene.sim.Context(), "window frame failed", err)
	if scene.exit != nil {
		scene.exit()
	}
}

// simulationSystem steps the simulation once per engine update.
type simulationSystem struct {
	scene *RingScene
}

// Remove satisfies the ecs.System interface
func (s *simulationSystem) Remove(basic ecs.BasicEntity) {}

// Update satisfies the ecs.System interface
func (s *simulationSystem) Update(dt float32) {
	s.scene.update(dt)
}
