// pkg/collision/collision.go
package collision

import (
	"math"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
	"github.com/opd-ai/go-ringbreak/pkg/physics"
)

// MinFloorBounce is the smallest upward speed a ball leaves the floor with.
const MinFloorBounce = 50.0

// Params carries the tunables shared by every resolver.
type Params struct {
	MaxSpeed float64
}

// Wall identifies a side of the outer frame.
type Wall int

const (
	WallLeft Wall = iota
	WallRight
	WallTop
	WallBottom
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallTop:
		return "top"
	case WallBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Contact describes the outcome of a ball–ball check.
type Contact struct {
	Touching bool
	// Impulse is true when the pair was approaching and velocities changed.
	Impulse bool
	Normal  physics.Vector2D
	Overlap float64
}

// ResolveBallBall separates two overlapping balls and exchanges momentum
// along the contact normal. Pairs that are already separating are pushed
// apart but keep their velocities.
func ResolveBallBall(a, b *entity.Ball, params Params) Contact {
	offset := a.Position.Sub(b.Position)
	sum := a.Radius + b.Radius
	if offset.LengthSquared() >= sum*sum {
		return Contact{}
	}

	dist := math.Max(offset.Length(), physics.Epsilon)
	overlap := sum - dist
	normal := offset.NormalizeOr(physics.Vector2D{X: 1, Y: 0})

	correction := normal.Scale(overlap / 2)
	a.Position = a.Position.Add(correction)
	b.Position = b.Position.Sub(correction)

	contact := Contact{Touching: true, Normal: normal, Overlap: overlap}

	velAlongNormal := a.Velocity.Sub(b.Velocity).Dot(normal)
	if velAlongNormal >= 0 {
		return contact
	}

	restitution := math.Min(a.Restitution, b.Restitution)
	impulse := (1 + restitution) * velAlongNormal / (a.Mass + b.Mass)
	a.Velocity = a.Velocity.Sub(normal.Scale(impulse * b.Mass))
	b.Velocity = b.Velocity.Add(normal.Scale(impulse * a.Mass))
	a.ClampVelocity(params.MaxSpeed)
	b.ClampVelocity(params.MaxSpeed)

	a.Boost.Arm()
	b.Boost.Arm()
	a.Squash.Trigger(normal)
	b.Squash.Trigger(normal)

	contact.Impulse = true
	return contact
}

// ArcOutcome is the result of testing a ball against one ring.
type ArcOutcome int

const (
	// ArcNone means the ring did not interact with the ball.
	ArcNone ArcOutcome = iota
	// ArcBroken means the ball crossed the ring through its hole.
	ArcBroken
	// ArcBounced means the ball hit the solid wall and was reflected.
	ArcBounced
)

func (o ArcOutcome) String() string {
	switch o {
	case ArcNone:
		return "none"
	case ArcBroken:
		return "broken"
	case ArcBounced:
		return "bounced"
	default:
		return "unknown"
	}
}

// ContactAngle returns the screen angle of the ball's center as seen from
// the ring's center, in [0, 2π).
func ContactAngle(ball *entity.Ball, arc *entity.Arc) float64 {
	return physics.ScreenAngle(ball.Position.Sub(arc.Center()))
}

// ResolveBallArc tests ball against the inside of arc. A ball reaching the
// ring inside its hole breaks it and passes untouched; otherwise it is
// reflected and pushed back inside. Broken rings never interact.
func ResolveBallArc(ball *entity.Ball, arc *entity.Arc, params Params) ArcOutcome {
	if arc.Broken {
		return ArcNone
	}

	offset := ball.Position.Sub(arc.Center())
	distance := offset.Length()
	if distance+ball.Radius <= arc.Radius {
		return ArcNone
	}

	theta := physics.ScreenAngle(offset)
	if arc.InHole(theta) {
		arc.Break(ball.ID)
		return ArcBroken
	}

	normal := offset.NormalizeOr(physics.Vector2D{X: 1, Y: 0})
	ball.Velocity = ball.Velocity.Reflect(normal).Scale(ball.Restitution)

	overlap := distance + ball.Radius - arc.Radius
	ball.Position = ball.Position.Sub(normal.Scale(overlap))
	ball.ClampVelocity(params.MaxSpeed)
	ball.Squash.Trigger(normal)

	return ArcBounced
}

// BounceOffFrame keeps ball inside the [0,width]×[0,height] frame and
// returns the walls it hit. A ball leaving the floor slower than
// MinFloorBounce is kicked up at that speed.
func BounceOffFrame(ball *entity.Ball, width, height float64, params Params) []Wall {
	var walls []Wall

	if ball.Position.X-ball.Radius < 0 {
		ball.Position.X = ball.Radius
		ball.Velocity.X = -ball.Velocity.X * ball.Restitution
		walls = append(walls, WallLeft)
	} else if ball.Position.X+ball.Radius > width {
		ball.Position.X = width - ball.Radius
		ball.Velocity.X = -ball.Velocity.X * ball.Restitution
		walls = append(walls, WallRight)
	}

	if ball.Position.Y-ball.Radius < 0 {
		ball.Position.Y = ball.Radius
		ball.Velocity.Y = -ball.Velocity.Y * ball.Restitution
		walls = append(walls, WallTop)
	} else if ball.Position.Y+ball.Radius > height {
		ball.Position.Y = height - ball.Radius
		ball.Velocity.Y = -ball.Velocity.Y * ball.Restitution
		if ball.Velocity.Y > -MinFloorBounce {
			ball.Velocity.Y = -MinFloorBounce
		}
		walls = append(walls, WallBottom)
	}

	if len(walls) > 0 {
		ball.ClampVelocity(params.MaxSpeed)
		ball.Squash.Trigger(walls[len(walls)-1].Normal())
	}
	return walls
}

// Normal returns the unit normal of the wall pointing into the frame.
func (w Wall) Normal() physics.Vector2D {
	switch w {
	case WallLeft:
		return physics.Vector2D{X: 1, Y: 0}
	case WallRight:
		return physics.Vector2D{X: -1, Y: 0}
	case WallTop:
		return physics.Vector2D{X: 0, Y: 1}
	default:
		return physics.Vector2D{X: 0, Y: -1}
	}
}
