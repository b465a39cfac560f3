// pkg/render/engo/renderer.go
package engo

import (
	"image"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
	"github.com/opd-ai/go-ringbreak/pkg/render/raster"
)

// frameEntity is the single sprite the whole frame is drawn on.
type frameEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// EngoRenderer implements render.Renderer using the Engo game engine. The
// frame is rasterized in memory and shown as one full-window texture.
type EngoRenderer struct {
	canvas       *raster.Canvas
	renderSystem *common.RenderSystem
	frame        *frameEntity
	buffer       *image.NRGBA
	upload       func(*image.NRGBA) common.Drawable

	width  float32
	height float32
}

// NewEngoRenderer creates a renderer for a width×height frame.
func NewEngoRenderer(width, height int, background color.RGBA, lineWidth float64) *EngoRenderer {
	return &EngoRenderer{
		canvas: raster.NewCanvas(width, height, background, lineWidth),
		upload: uploadTexture,
		width:  float32(width),
		height: float32(height),
	}
}

// Initialize attaches the renderer to the scene's render system.
func (r *EngoRenderer) Initialize(renderSystem *common.RenderSystem) {
	r.renderSystem = renderSystem
	if r.frame != nil && renderSystem != nil {
		r.renderSystem.Add(&r.frame.BasicEntity, &r.frame.RenderComponent, &r.frame.SpaceComponent)
	}
}

// Clear implements render.Renderer
func (r *EngoRenderer) Clear() {
	r.canvas.Clear()
}

// RenderArc implements render.Renderer
func (r *EngoRenderer) RenderArc(arc engine.ArcState, center physics.Vector2D) {
	r.canvas.RenderArc(arc, center)
}

// RenderBall implements render.Renderer
func (r *EngoRenderer) RenderBall(ball engine.BallState) {
	r.canvas.RenderBall(ball)
}

// RenderHUD implements render.Renderer. Text goes to the window title via
// HUDSystem; the canvas only needs the flash.
func (r *EngoRenderer) RenderHUD(state engine.State) {
	r.canvas.RenderHUD(state)
}

// Present implements render.Renderer by uploading the finished frame. The
// previous texture is released once the sprite points at the new one.
func (r *EngoRenderer) Present() error {
	if err := r.canvas.Present(); err != nil {
		return err
	}
	r.buffer = frameImage(r.canvas.Image(), r.buffer)
	drawable := r.upload(r.buffer)

	if r.frame == nil {
		r.frame = &frameEntity{
			BasicEntity: ecs.NewBasic(),
			RenderComponent: common.RenderComponent{
				Drawable: drawable,
				Color:    color.White,
			},
			SpaceComponent: common.SpaceComponent{
				Position: engo.Point{X: 0, Y: 0},
				Width:    r.width,
				Height:   r.height,
			},
		}
		if r.renderSystem != nil {
			r.renderSystem.Add(&r.frame.BasicEntity, &r.frame.RenderComponent, &r.frame.SpaceComponent)
		}
		return nil
	}

	previous := r.frame.Drawable
	r.frame.Drawable = drawable
	if previous != nil {
		previous.Close()
	}
	return nil
}

// Canvas returns the in-memory frame.
func (r *EngoRenderer) Canvas() *raster.Canvas {
	return r.canvas
}
