// Package raster draws simulation snapshots into an in-memory RGBA image.
// The window renderer uploads these frames as textures and the headless
// mode writes them out as PNG files.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// flashAlpha is the opacity of the full-screen flash at full strength.
const flashAlpha = 0.25

// Canvas is a render.Renderer that draws into an *image.RGBA.
type Canvas struct {
	img        *image.RGBA
	background color.RGBA
	lineWidth  float64
	flash      engine.Flash
}

// NewCanvas allocates a width×height canvas.
func NewCanvas(width, height int, background color.RGBA, lineWidth float64) *Canvas {
	if lineWidth <= 0 {
		lineWidth = 1
	}
	return &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: background,
		lineWidth:  lineWidth,
	}
}

// Image returns the backing image. It is overwritten by the next frame.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear implements render.Renderer.
func (c *Canvas) Clear() {
	bg := c.background
	bg.A = 255
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = bg.R
		pix[i+1] = bg.G
		pix[i+2] = bg.B
		pix[i+3] = bg.A
	}
	c.flash = engine.Flash{}
}

// RenderArc implements render.Renderer. It fills the annulus of the ring's
// line width, keeping only pixels whose angle lies on the wall.
func (c *Canvas) RenderArc(arc engine.ArcState, center physics.Vector2D) {
	if _, span := arc.SolidArc(); span <= 0 {
		return
	}
	alpha := 1.0
	if arc.Broken {
		alpha = arc.Opacity
	}
	if alpha <= 0 {
		return
	}

	half := c.lineWidth / 2
	inner := math.Max(arc.Radius-half, 0)
	outer := arc.Radius + half

	b := c.img.Bounds()
	y0 := max(b.Min.Y, int(math.Floor(center.Y-outer)))
	y1 := min(b.Max.Y-1, int(math.Ceil(center.Y+outer)))

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - center.Y
		xo := outer*outer - dy*dy
		if xo < 0 {
			continue
		}
		xo = math.Sqrt(xo)

		xi := inner*inner - dy*dy
		if xi <= 0 {
			c.arcSpan(arc, center, y, center.X-xo, center.X+xo, alpha)
			continue
		}
		xi = math.Sqrt(xi)
		c.arcSpan(arc, center, y, center.X-xo, center.X-xi, alpha)
		c.arcSpan(arc, center, y, center.X+xi, center.X+xo, alpha)
	}
}

// arcSpan blends the pixels of row y whose centres lie in [from, to] and
// on the ring's wall.
func (c *Canvas) arcSpan(arc engine.ArcState, center physics.Vector2D, y int, from, to, alpha float64) {
	b := c.img.Bounds()
	x0 := max(b.Min.X, int(math.Ceil(from-0.5)))
	x1 := min(b.Max.X-1, int(math.Floor(to-0.5)))
	dy := float64(y) + 0.5 - center.Y
	for x := x0; x <= x1; x++ {
		dx := float64(x) + 0.5 - center.X
		if !arc.SolidContains(physics.ScreenAngle(physics.Vector2D{X: dx, Y: dy})) {
			continue
		}
		c.blendPixel(x, y, arc.Color, alpha)
	}
}

// RenderBall implements render.Renderer. The disc is stretched by the
// ball's squash along and across its contact normal.
func (c *Canvas) RenderBall(ball engine.BallState) {
	along, across := ball.SquashAlong, ball.SquashAcross
	if along <= 0 || across <= 0 {
		along, across = 1, 1
	}
	normal := ball.SquashNormal.NormalizeOr(physics.Vector2D{X: 1, Y: 0})
	tangent := physics.Vector2D{X: -normal.Y, Y: normal.X}

	ra := ball.Radius * along
	rc := ball.Radius * across
	extent := math.Max(ra, rc)

	b := c.img.Bounds()
	x0 := max(b.Min.X, int(math.Floor(ball.Position.X-extent)))
	x1 := min(b.Max.X-1, int(math.Ceil(ball.Position.X+extent)))
	y0 := max(b.Min.Y, int(math.Floor(ball.Position.Y-extent)))
	y1 := min(b.Max.Y-1, int(math.Ceil(ball.Position.Y+extent)))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := physics.Vector2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}.Sub(ball.Position)
			u := p.Dot(normal) / ra
			v := p.Dot(tangent) / rc
			if u*u+v*v <= 1 {
				c.blendPixel(x, y, ball.Color, 1)
			}
		}
	}
}

// RenderHUD implements render.Renderer. The canvas has no text; it only
// records the flash so Present can veil the frame.
func (c *Canvas) RenderHUD(state engine.State) {
	c.flash = state.Flash
}

// Present implements render.Renderer by applying the flash veil.
func (c *Canvas) Present() error {
	if !c.flash.Active() {
		return nil
	}
	alpha := flashAlpha * c.flash.Strength()
	b := c.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c.blendPixel(x, y, c.flash.Color, alpha)
		}
	}
	return nil
}

func (c *Canvas) blendPixel(x, y int, col color.RGBA, alpha float64) {
	i := c.img.PixOffset(x, y)
	pix := c.img.Pix[i : i+4 : i+4]
	if alpha >= 1 {
		pix[0], pix[1], pix[2], pix[3] = col.R, col.G, col.B, 255
		return
	}
	mix := func(dst, src uint8) uint8 {
		return uint8(math.Round(float64(dst) + (float64(src)-float64(dst))*alpha))
	}
	pix[0] = mix(pix[0], col.R)
	pix[1] = mix(pix[1], col.G)
	pix[2] = mix(pix[2], col.B)
	pix[3] = 255
}

// WritePNG encodes the current frame to path.
func (c *Canvas) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(f, c.img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
