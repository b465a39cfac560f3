// pkg/entity/entity.go
package entity

import (
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// ID identifies an entity. Balls and arcs are each numbered from zero in
// creation order within one simulation.
type ID uint64

// Entity is the base interface for all simulated objects
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector2D
	GetCollider() physics.Circle
}

// BaseEntity contains common functionality for all entities
type BaseEntity struct {
	ID       ID
	Position physics.Vector2D
}

// GetID returns the entity's unique identifier
func (e *BaseEntity) GetID() ID {
	return e.ID
}

// GetPosition returns the entity's position
func (e *BaseEntity) GetPosition() physics.Vector2D {
	return e.Position
}
