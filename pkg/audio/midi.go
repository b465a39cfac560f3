package audio

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/opd-ai/go-ringbreak/pkg/config"
)

// ErrNoNotes is returned for a MIDI file without any sounding note.
var ErrNoNotes = errors.New("midi file has no notes")

// LoadMIDI reads every note-on with a non-zero velocity from a standard
// MIDI file, track by track in file order. Timing is ignored: notes are
// played one per ring break.
func LoadMIDI(path string) ([]Note, error) {
	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi file %s: %w", path, err)
	}

	var notes []Note
	for _, track := range file.Tracks {
		for _, ev := range track {
			var ch, key, vel uint8
			if !midi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) || vel == 0 {
				continue
			}
			notes = append(notes, Note{Key: int(key), Velocity: int(vel)})
		}
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoNotes)
	}
	return notes, nil
}

// LoadNotes returns the notes of cfg.MidiFile when it is set and the
// configured note list otherwise.
func LoadNotes(cfg config.AudioConfig) ([]Note, error) {
	if cfg.MidiFile != "" {
		return LoadMIDI(cfg.MidiFile)
	}
	return NotesFromKeys(cfg.Notes), nil
}
