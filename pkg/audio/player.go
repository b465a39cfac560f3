// pkg/audio/player.go
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// fadeTime keeps note edges from clicking.
const fadeTime = 5 * time.Millisecond

// Player plays short tones.
type Player interface {
	PlayNote(freq float64, velocity int, d time.Duration) error
	Close() error
}

// SpeakerPlayer plays notes on the default audio device through a mixer.
type SpeakerPlayer struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeakerPlayer opens the speaker at sampleRate. volume is a base-2
// exponent: 0 is unchanged, -1 halves the amplitude.
func NewSpeakerPlayer(sampleRate int, volume float64) (*SpeakerPlayer, error) {
	p := &SpeakerPlayer{
		sampleRate: beep.SampleRate(sampleRate),
		volume:     volume,
		mixer:      &beep.Mixer{},
	}

	if err := speaker.Init(p.sampleRate, p.sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return p, nil
}

// PlayNote mixes a sine tone of freq Hz lasting d into the output,
// scaled by the MIDI velocity.
func (p *SpeakerPlayer) PlayNote(freq float64, velocity int, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	streamer, err := NewNoteStreamer(p.sampleRate, freq, Gain(velocity), d, p.volume)
	if err != nil {
		return err
	}

	speaker.Lock()
	p.mixer.Add(streamer)
	speaker.Unlock()
	return nil
}

// Close silences pending notes and releases the device.
func (p *SpeakerPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
	return nil
}

// NewNoteStreamer builds a finite sine note with faded edges. gain is a
// linear factor applied before the base-2 volume.
func NewNoteStreamer(sr beep.SampleRate, freq, gain float64, d time.Duration, volume float64) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to create tone at %.1f Hz: %w", freq, err)
	}

	total := sr.N(d)
	shaped := &fade{
		streamer: beep.Take(total, tone),
		total:    total,
		edge:     min(sr.N(fadeTime), total/2),
		gain:     gain,
	}
	return &effects.Volume{
		Streamer: shaped,
		Base:     2,
		Volume:   volume,
	}, nil
}

// fade scales a finite stream by gain with a linear ramp at both ends.
type fade struct {
	streamer beep.Streamer
	position int
	total    int
	edge     int
	gain     float64
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := f.gain
		if f.edge > 0 {
			if f.position < f.edge {
				gain *= float64(f.position) / float64(f.edge)
			} else if remaining := f.total - f.position; remaining < f.edge {
				gain *= float64(remaining) / float64(f.edge)
			}
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// NullPlayer discards every note.
type NullPlayer struct{}

// PlayNote does nothing.
func (NullPlayer) PlayNote(float64, int, time.Duration) error { return nil }

// Close does nothing.
func (NullPlayer) Close() error { return nil }
