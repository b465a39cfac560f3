// pkg/physics/angle.go
package physics

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// NormalizeAngle maps any finite angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod of a tiny negative number can round up to exactly 2π.
	if a >= TwoPi {
		a = 0
	}
	return a
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ScreenAngle returns the mathematical angle of offset for a screen whose
// y axis grows downward, normalized into [0, 2π).
func ScreenAngle(offset Vector2D) float64 {
	return NormalizeAngle(math.Atan2(-offset.Y, offset.X))
}

// ScreenPoint is the inverse of ScreenAngle: the point at radius r and
// mathematical angle theta around center, in screen coordinates.
func ScreenPoint(center Vector2D, r, theta float64) Vector2D {
	return Vector2D{
		X: center.X + r*math.Cos(theta),
		Y: center.Y - r*math.Sin(theta),
	}
}

// AngleInterval is the half-open counter-clockwise interval [Start, End).
// When Start > End the interval wraps across zero.
type AngleInterval struct {
	Start float64
	End   float64
}

// NewAngleInterval builds the interval starting at start and spanning width
// radians counter-clockwise. Both bounds are normalized.
func NewAngleInterval(start, width float64) AngleInterval {
	s := NormalizeAngle(start)
	return AngleInterval{Start: s, End: NormalizeAngle(s + width)}
}

// Wraps reports whether the interval crosses the zero angle.
func (iv AngleInterval) Wraps() bool {
	return iv.Start > iv.End
}

// Contains reports whether theta lies in [Start, End). theta is normalized
// before comparison.
func (iv AngleInterval) Contains(theta float64) bool {
	a := NormalizeAngle(theta)
	if iv.Wraps() {
		return a >= iv.Start || a < iv.End
	}
	return iv.Start <= a && a < iv.End
}

// Span returns the angular length of the interval in [0, 2π).
func (iv AngleInterval) Span() float64 {
	return NormalizeAngle(iv.End - iv.Start)
}

// Complement returns [End, Start), the part of the circle outside iv.
func (iv AngleInterval) Complement() AngleInterval {
	return AngleInterval{Start: iv.End, End: iv.Start}
}
