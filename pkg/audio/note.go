package audio

import (
	"math"
	"sync"
)

// DefaultVelocity is used for notes given without one. It plays at the
// configured volume.
const DefaultVelocity = 127

// Note is a MIDI key with its note-on velocity (1..127).
type Note struct {
	Key      int
	Velocity int
}

// Frequency converts a MIDI note number to Hz, with A4 (69) at 440 Hz.
func Frequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Gain maps a velocity to a linear amplitude factor in [0, 1].
func Gain(velocity int) float64 {
	return math.Max(0, math.Min(1, float64(velocity)/127))
}

// NotesFromKeys gives each key the default velocity.
func NotesFromKeys(keys []int) []Note {
	notes := make([]Note, len(keys))
	for i, k := range keys {
		notes[i] = Note{Key: k, Velocity: DefaultVelocity}
	}
	return notes
}

// Sequence hands out notes in a fixed order and starts over after
// the last one.
type Sequence struct {
	notes []Note
	index int
	mu    sync.Mutex
}

// NewSequence copies notes into a new sequence.
func NewSequence(notes []Note) *Sequence {
	s := &Sequence{notes: make([]Note, len(notes))}
	copy(s.notes, notes)
	return s
}

// Next returns the next note. ok is false for an empty sequence.
func (s *Sequence) Next() (note Note, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.notes) == 0 {
		return Note{}, false
	}
	note = s.notes[s.index]
	s.index = (s.index + 1) % len(s.notes)
	return note, true
}

// Reset rewinds to the first note.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = 0
}

// Len returns the number of notes.
func (s *Sequence) Len() int {
	return len(s.notes)
}
