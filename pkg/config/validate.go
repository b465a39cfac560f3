// pkg/config/validate.go
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
	"github.com/opd-ai/go-ringbreak/pkg/validation"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Renderer backends understood by the command line tool.
var validBackends = map[string]bool{
	"headless": true,
	"terminal": true,
	"engo":     true,
}

// Validate checks the configuration and returns all problems joined into
// one error wrapping ErrInvalidConfig.
func (c *SimulationConfig) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	check(validation.ValidatePositive("physics.maxSpeed", c.Physics.MaxSpeed))
	check(validation.ValidateFinite("physics.gravity", c.Physics.Gravity))
	check(validation.ValidateIntRange("physics.tickRate", c.Physics.TickRate, 1, 1000))
	check(validation.ValidatePositive("physics.maxDeltaTime", c.Physics.MaxDeltaTime))

	check(validation.ValidateNonNegative("boost.duration", c.Boost.Duration))
	check(validation.ValidateRange("boost.factor", c.Boost.Factor, 1, 10))
	check(validation.ValidateNonNegative("boost.tail", c.Boost.Tail))
	if c.Boost.Policy != entity.BoostCutoff && c.Boost.Policy != entity.BoostLinear {
		check(fmt.Errorf("boost.policy: unknown policy %q", c.Boost.Policy))
	}

	check(validation.ValidateIntRange("rings.count", c.Rings.Count, 1, validation.MaxRingCount))
	check(validation.ValidatePositive("rings.startRadius", c.Rings.StartRadius))
	check(validation.ValidateNonNegative("rings.spacing", c.Rings.Spacing))
	check(validation.ValidatePositive("rings.floorRadius", c.Rings.FloorRadius))
	check(validation.ValidateRange("rings.holeWidth", c.Rings.HoleWidth, 0, 360))
	check(validation.ValidateFinite("rings.baseAngle", c.Rings.BaseAngle))
	check(validation.ValidateFinite("rings.angleOffset", c.Rings.AngleOffset))
	check(validation.ValidateFinite("rings.rotationSpeed", c.Rings.RotationSpeed))
	check(validation.ValidateNonNegative("rings.shrinkRate", c.Rings.ShrinkRate))
	check(validation.ValidateNonNegative("rings.fadeDuration", c.Rings.FadeDuration))
	if c.Rings.BreakEffect != entity.BreakDisappear && c.Rings.BreakEffect != entity.BreakFade {
		check(fmt.Errorf("rings.breakEffect: unknown effect %q", c.Rings.BreakEffect))
	}
	for i, p := range c.Rings.Palette {
		if _, err := ParseHexColor(p); err != nil {
			check(fmt.Errorf("rings.palette[%d]: %w", i, err))
		}
	}

	check(validation.ValidatePositive("frame.width", c.Frame.Width))
	check(validation.ValidatePositive("frame.height", c.Frame.Height))

	if len(c.Balls) == 0 {
		check(errors.New("balls: at least one ball is required"))
	}
	for i, b := range c.Balls {
		field := fmt.Sprintf("balls[%d]", i)
		check(validation.ValidatePositive(field+".radius", b.Radius))
		check(validation.ValidateRange(field+".restitution", b.Restitution, math.SmallestNonzeroFloat64, 1))
		check(validation.ValidateFinite(field+".x", b.X))
		check(validation.ValidateFinite(field+".y", b.Y))
		check(validation.ValidateFinite(field+".vx", b.VX))
		check(validation.ValidateFinite(field+".vy", b.VY))
		if _, err := ParseHexColor(b.Color); err != nil {
			check(fmt.Errorf("%s.color: %w", field, err))
		}
		if b.Label != "" {
			if _, err := validation.ValidateLabel(b.Label); err != nil {
				check(fmt.Errorf("%s.label: %w", field, err))
			}
		}
		check(c.validatePlacement(field, b))
	}
	if len(c.Balls) > validation.MaxBallCount {
		check(fmt.Errorf("balls: %d balls exceeds the limit of %d", len(c.Balls), validation.MaxBallCount))
	}

	if c.Audio.Enabled {
		if len(c.Audio.Notes) == 0 && c.Audio.MidiFile == "" {
			check(errors.New("audio.notes: at least one note or a midiFile is required"))
		}
		for i, n := range c.Audio.Notes {
			check(validation.ValidateIntRange(fmt.Sprintf("audio.notes[%d]", i), n, 0, 127))
		}
		check(validation.ValidateIntRange("audio.sampleRate", c.Audio.SampleRate, 8000, 192000))
		check(validation.ValidateIntRange("audio.noteMs", c.Audio.NoteMS, 1, 10000))
	}
	check(validation.ValidateIntRange("audio.minIntervalMs", c.Audio.MinIntervalMS, 0, 60000))

	if !validBackends[c.Render.Backend] {
		check(fmt.Errorf("render.backend: unknown backend %q", c.Render.Backend))
	}
	if _, err := ParseHexColor(c.Render.Background); err != nil {
		check(fmt.Errorf("render.background: %w", err))
	}
	check(validation.ValidateNonNegative("render.maxVisibleRadius", c.Render.MaxVisibleRadius))
	check(validation.ValidateNonNegative("render.flashDuration", c.Render.FlashDuration))

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// validatePlacement checks that a ball starts wholly inside the frame and
// inside the innermost ring. Geometry already rejected elsewhere is skipped.
func (c *SimulationConfig) validatePlacement(field string, b BallConfig) error {
	w, h := c.Frame.Width, c.Frame.Height
	if !(b.Radius > 0) || !(w > 0) || !(h > 0) {
		return nil
	}
	if 2*b.Radius > w || 2*b.Radius > h {
		return fmt.Errorf("%s.radius: diameter %g does not fit the %gx%g frame", field, 2*b.Radius, w, h)
	}
	if b.X-b.Radius < 0 || b.X+b.Radius > w || b.Y-b.Radius < 0 || b.Y+b.Radius > h {
		return fmt.Errorf("%s: (%g,%g) radius %g is outside the frame", field, b.X, b.Y, b.Radius)
	}
	if !(c.Rings.StartRadius > 0) {
		return nil
	}
	if d := math.Hypot(b.X-w/2, b.Y-h/2); d+b.Radius > c.Rings.StartRadius {
		return fmt.Errorf("%s: (%g,%g) radius %g is not inside the innermost ring of radius %g",
			field, b.X, b.Y, b.Radius, c.Rings.StartRadius)
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" into an opaque or
// translucent RGBA colour.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("malformed colour %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed colour %q: %w", s, err)
	}

	if len(hex) == 6 {
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
