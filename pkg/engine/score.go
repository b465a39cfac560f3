// pkg/engine/score.go
package engine

import (
	"image/color"
	"sync"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
	"github.com/opd-ai/go-ringbreak/pkg/event"
)

// BallScore is the number of rings a ball has broken.
type BallScore struct {
	BallID entity.ID
	Label  string
	Color  color.RGBA
	Rings  int
}

// Scoreboard counts ring breaks per ball by listening on the event bus.
type Scoreboard struct {
	scores []BallScore
	index  map[entity.ID]int
	sub    *event.Subscription
	mu     sync.RWMutex
}

// NewScoreboard creates a scoreboard with one entry per ball and subscribes
// it to RingBroken events on bus.
func NewScoreboard(bus *event.Bus, balls []*entity.Ball) *Scoreboard {
	sb := &Scoreboard{
		scores: make([]BallScore, 0, len(balls)),
		index:  make(map[entity.ID]int, len(balls)),
	}
	for i, ball := range balls {
		sb.scores = append(sb.scores, BallScore{
			BallID: ball.ID,
			Label:  ball.Label,
			Color:  ball.Color,
		})
		sb.index[ball.ID] = i
	}
	sb.sub = bus.Subscribe(event.RingBroken, sb.handleRingBroken)
	return sb
}

// handleRingBroken credits the ball that broke the ring.
func (sb *Scoreboard) handleRingBroken(e event.Event) {
	broken, ok := e.(*event.RingBrokenEvent)
	if !ok {
		return
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	if i, ok := sb.index[entity.ID(broken.BallID)]; ok {
		sb.scores[i].Rings++
	}
}

// Score returns the number of rings broken by ball id.
func (sb *Scoreboard) Score(id entity.ID) int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if i, ok := sb.index[id]; ok {
		return sb.scores[i].Rings
	}
	return 0
}

// Scores returns a copy of every ball's score in ball order.
func (sb *Scoreboard) Scores() []BallScore {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	out := make([]BallScore, len(sb.scores))
	copy(out, sb.scores)
	return out
}

// Total returns the number of rings broken so far.
func (sb *Scoreboard) Total() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	total := 0
	for _, s := range sb.scores {
		total += s.Rings
	}
	return total
}

// Leader returns the ball with the most breaks. ok is false when no ring
// has been broken or the top score is tied.
func (sb *Scoreboard) Leader() (BallScore, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	best := -1
	tied := false
	for i, s := range sb.scores {
		switch {
		case best < 0 || s.Rings > sb.scores[best].Rings:
			best = i
			tied = false
		case s.Rings == sb.scores[best].Rings:
			tied = true
		}
	}
	if best < 0 || tied || sb.scores[best].Rings == 0 {
		return BallScore{}, false
	}
	return sb.scores[best], true
}

// Close stops listening for events.
func (sb *Scoreboard) Close() {
	if sb.sub != nil {
		sb.sub.Cancel()
		sb.sub = nil
	}
}
