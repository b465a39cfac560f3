// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	RingBroken        Type = "ring_broken"
	BallCollision     Type = "ball_collision"
	WallBounce        Type = "wall_bounce"
	ArcBounce         Type = "arc_bounce"
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel removes the handler.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID: id,
		Cancel: func() {
			b.unsubscribe(eventType, id)
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// PublishAll publishes events in order.
func (b *Bus) PublishAll(events []Event) {
	for _, e := range events {
		b.Publish(e)
	}
}

// Specific event implementations

// RingBrokenEvent is emitted once when a ball escapes through a ring's hole.
type RingBrokenEvent struct {
	BaseEvent
	RingID uint64
	BallID uint64
}

// NewRingBrokenEvent creates a new ring broken event
func NewRingBrokenEvent(source interface{}, ringID, ballID uint64) *RingBrokenEvent {
	return &RingBrokenEvent{
		BaseEvent: BaseEvent{
			EventType: RingBroken,
			Source:    source,
		},
		RingID: ringID,
		BallID: ballID,
	}
}

// BallCollisionEvent is emitted when two balls exchange an impulse.
type BallCollisionEvent struct {
	BaseEvent
	BallA uint64
	BallB uint64
}

// NewBallCollisionEvent creates a new ball collision event
func NewBallCollisionEvent(source interface{}, ballA, ballB uint64) *BallCollisionEvent {
	return &BallCollisionEvent{
		BaseEvent: BaseEvent{
			EventType: BallCollision,
			Source:    source,
		},
		BallA: ballA,
		BallB: ballB,
	}
}

// WallBounceEvent is emitted for each frame wall a ball bounces off.
type WallBounceEvent struct {
	BaseEvent
	BallID uint64
	Wall   string
}

// NewWallBounceEvent creates a new wall bounce event
func NewWallBounceEvent(source interface{}, ballID uint64, wall string) *WallBounceEvent {
	return &WallBounceEvent{
		BaseEvent: BaseEvent{
			EventType: WallBounce,
			Source:    source,
		},
		BallID: ballID,
		Wall:   wall,
	}
}

// ArcBounceEvent is emitted when a ball is reflected by a ring's solid wall.
type ArcBounceEvent struct {
	BaseEvent
	RingID uint64
	BallID uint64
}

// NewArcBounceEvent creates a new arc bounce event
func NewArcBounceEvent(source interface{}, ringID, ballID uint64) *ArcBounceEvent {
	return &ArcBounceEvent{
		BaseEvent: BaseEvent{
			EventType: ArcBounce,
			Source:    source,
		},
		RingID: ringID,
		BallID: ballID,
	}
}

// LifecycleEvent marks the start or end of a run.
type LifecycleEvent struct {
	BaseEvent
	RunID string
	Ticks uint64
}

// NewLifecycleEvent creates a new lifecycle event
func NewLifecycleEvent(eventType Type, source interface{}, runID string, ticks uint64) *LifecycleEvent {
	return &LifecycleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		RunID: runID,
		Ticks: ticks,
	}
}
