// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
)

// SimulationConfig contains configuration for a ring-break simulation
type SimulationConfig struct {
	Physics PhysicsConfig `json:"physics"`
	Boost   BoostConfig   `json:"boost"`
	Rings   RingConfig    `json:"rings"`
	Frame   FrameConfig   `json:"frame"`
	Balls   []BallConfig  `json:"balls"`
	Audio   AudioConfig   `json:"audio"`
	Render  RenderConfig  `json:"render"`
}

// PhysicsConfig contains physics-related configuration
type PhysicsConfig struct {
	Gravity      float64 `json:"gravity"`
	MaxSpeed     float64 `json:"maxSpeed"`
	TickRate     int     `json:"tickRate"`
	MaxDeltaTime float64 `json:"maxDeltaTime"`
}

// BoostConfig controls the displacement boost armed by ball collisions
type BoostConfig struct {
	Duration float64            `json:"duration"`
	Factor   float64            `json:"factor"`
	Policy   entity.BoostPolicy `json:"policy"`
	Tail     float64            `json:"tail"`
}

// RingConfig describes the nested ring stack. Angles are in degrees and
// angular speeds in degrees per second.
type RingConfig struct {
	Count         int                `json:"count"`
	StartRadius   float64            `json:"startRadius"`
	Spacing       float64            `json:"spacing"`
	FloorRadius   float64            `json:"floorRadius"`
	HoleWidth     float64            `json:"holeWidth"`
	BaseAngle     float64            `json:"baseAngle"`
	AngleOffset   float64            `json:"angleOffset"`
	RotationSpeed float64            `json:"rotationSpeed"`
	ShrinkRate    float64            `json:"shrinkRate"`
	Rotating      bool               `json:"rotating"`
	Shrinking     bool               `json:"shrinking"`
	BreakEffect   entity.BreakEffect `json:"breakEffect"`
	FadeDuration  float64            `json:"fadeDuration"`
	Palette       []string           `json:"palette"`
}

// FrameConfig is the outer rectangle the balls bounce in
type FrameConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BallConfig contains configuration for one ball
type BallConfig struct {
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	VX          float64 `json:"vx"`
	VY          float64 `json:"vy"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Restitution float64 `json:"restitution"`
}

// AudioConfig controls note playback on ring breaks
type AudioConfig struct {
	Enabled       bool    `json:"enabled"`
	MidiFile      string  `json:"midiFile,omitempty"`
	Notes         []int   `json:"notes"`
	MinIntervalMS int     `json:"minIntervalMs"`
	NoteMS        int     `json:"noteMs"`
	Volume        float64 `json:"volume"`
	SampleRate    int     `json:"sampleRate"`
	OnBounce      bool    `json:"onBounce"`
}

// RenderConfig contains presentation settings shared by all renderers
type RenderConfig struct {
	Backend          string  `json:"backend"`
	Background       string  `json:"background"`
	LineWidth        float64 `json:"lineWidth"`
	MaxVisibleRadius float64 `json:"maxVisibleRadius"`
	FlashDuration    float64 `json:"flashDuration"`
	ShowScore        bool    `json:"showScore"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimulationConfig, path string) error {
	if config == nil {
		return errors.New("failed to marshal config: nil config")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the classic two-ball, hundred-ring setup on a
// 1080×1080 frame.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Physics: PhysicsConfig{
			Gravity:      500,
			MaxSpeed:     800,
			TickRate:     60,
			MaxDeltaTime: 0.05,
		},
		Boost: BoostConfig{
			Duration: entity.DefaultBoostDuration,
			Factor:   entity.DefaultBoostFactor,
			Policy:   entity.DefaultBoostPolicy,
			Tail:     entity.DefaultBoostTail,
		},
		Rings: RingConfig{
			Count:         100,
			StartRadius:   100,
			Spacing:       12,
			FloorRadius:   100,
			HoleWidth:     60,
			BaseAngle:     300,
			AngleOffset:   -5,
			RotationSpeed: -25,
			ShrinkRate:    200,
			Rotating:      true,
			Shrinking:     true,
			BreakEffect:   entity.BreakDisappear,
			FadeDuration:  0.5,
			Palette:       []string{"#6496FF", "#FF5050", "#FFFFFF"},
		},
		Frame: FrameConfig{
			Width:  1080,
			Height: 1080,
		},
		Balls: []BallConfig{
			{
				Label:       "Red",
				X:           460,
				Y:           540,
				VX:          150,
				VY:          -200,
				Radius:      15,
				Color:       "#FF5050",
				Restitution: 1,
			},
			{
				Label:       "Blue",
				X:           620,
				Y:           540,
				VX:          -150,
				VY:          -150,
				Radius:      15,
				Color:       "#6496FF",
				Restitution: 1,
			},
		},
		Audio: AudioConfig{
			Enabled: false,
			// C major arpeggio climbing two octaves and back.
			Notes:         []int{60, 64, 67, 72, 76, 79, 84, 79, 76, 72, 67, 64},
			MinIntervalMS: 100,
			NoteMS:        120,
			Volume:        -1,
			SampleRate:    44100,
			OnBounce:      false,
		},
		Render: RenderConfig{
			Backend:          "headless",
			Background:       "#14141E",
			LineWidth:        4,
			MaxVisibleRadius: 0,
			FlashDuration:    0.2,
			ShowScore:        true,
		},
	}
}
