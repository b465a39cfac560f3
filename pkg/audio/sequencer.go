// pkg/audio/sequencer.go
package audio

import (
	"context"
	"time"

	"github.com/opd-ai/go-ringbreak/pkg/config"
	"github.com/opd-ai/go-ringbreak/pkg/event"
	"github.com/opd-ai/go-ringbreak/pkg/logging"
	"github.com/opd-ai/go-ringbreak/pkg/validation"
)

const limiterKey = "note"

// Sequencer plays the next note of a sequence whenever a ring breaks,
// at most once per minimum interval. Events arriving too soon are dropped
// without advancing the sequence.
type Sequencer struct {
	sequence *Sequence
	player   Player
	limiter  *validation.IntervalLimiter
	noteLen  time.Duration
	subs     []*event.Subscription
	played   int

	logger *logging.Logger
	ctx    context.Context
	now    func() time.Time
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithSequencerClock replaces time.Now for rate limiting.
func WithSequencerClock(now func() time.Time) SequencerOption {
	return func(s *Sequencer) {
		s.now = now
	}
}

// WithNotes replaces the configured note list, typically with the notes
// of a MIDI file from LoadNotes.
func WithNotes(notes []Note) SequencerOption {
	return func(s *Sequencer) {
		s.sequence = NewSequence(notes)
	}
}

// WithSequencerLogger sets the logger and the context carrying the run ID.
func WithSequencerLogger(ctx context.Context, logger *logging.Logger) SequencerOption {
	return func(s *Sequencer) {
		if ctx != nil {
			s.ctx = ctx
		}
		s.logger = logger
	}
}

// NewSequencer subscribes a sequencer to bus. It listens for RingBroken
// and, when cfg.OnBounce is set, ArcBounce.
func NewSequencer(cfg config.AudioConfig, bus *event.Bus, player Player, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		sequence: NewSequence(NotesFromKeys(cfg.Notes)),
		player:   player,
		noteLen:  time.Duration(cfg.NoteMS) * time.Millisecond,
		ctx:      context.Background(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	s.logger = s.logger.WithComponent("audio")
	s.limiter = validation.NewIntervalLimiterWithClock(
		time.Duration(cfg.MinIntervalMS)*time.Millisecond,
		s.now,
	)

	s.subs = append(s.subs, bus.Subscribe(event.RingBroken, s.handle))
	if cfg.OnBounce {
		s.subs = append(s.subs, bus.Subscribe(event.ArcBounce, s.handle))
	}
	return s
}

func (s *Sequencer) handle(e event.Event) {
	if !s.limiter.Allow(limiterKey) {
		return
	}
	note, ok := s.sequence.Next()
	if !ok {
		return
	}
	if err := s.player.PlayNote(Frequency(note.Key), note.Velocity, s.noteLen); err != nil {
		s.logger.Warn(s.ctx, "note playback failed",
			"note", note.Key,
			"event", string(e.GetType()),
			"error", err.Error(),
		)
		return
	}
	s.played++
}

// Played returns the number of notes sent to the player.
func (s *Sequencer) Played() int {
	return s.played
}

// Close unsubscribes from the bus and closes the player.
func (s *Sequencer) Close() error {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
	return s.player.Close()
}
