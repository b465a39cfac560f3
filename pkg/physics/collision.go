// pkg/physics/collision.go
package physics

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles are overlapping
func (c Circle) Collides(other Circle) bool {
	sum := c.Radius + other.Radius
	return c.Center.Sub(other.Center).LengthSquared() < sum*sum
}

// Contains reports whether other lies entirely inside c.
func (c Circle) Contains(other Circle) bool {
	return c.Center.Distance(other.Center)+other.Radius <= c.Radius
}

// Bounds returns the axis-aligned square enclosing the circle.
func (c Circle) Bounds() Rect {
	return Rect{Center: c.Center, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided     bool
	Normal       Vector2D // unit vector from A towards B
	Penetration  float64
	Distance     float64
	ContactPoint Vector2D
}

// CheckCollision performs detailed collision detection between two circles.
// Coincident centers yield the +X normal and a full-sum penetration.
func CheckCollision(a, b Circle) CollisionResult {
	offset := b.Center.Sub(a.Center)
	sum := a.Radius + b.Radius
	if offset.LengthSquared() >= sum*sum {
		return CollisionResult{Collided: false}
	}

	distance := offset.Length()
	if distance < Epsilon {
		distance = Epsilon
	}
	normal := offset.Normalize()

	return CollisionResult{
		Collided:     true,
		Normal:       normal,
		Penetration:  sum - distance,
		Distance:     distance,
		ContactPoint: a.Center.Add(normal.Scale(a.Radius)),
	}
}

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// NewRectFromCorners builds a Rect from its top-left corner and size.
func NewRectFromCorners(minX, minY, width, height float64) Rect {
	return Rect{
		Center: Vector2D{X: minX + width/2, Y: minY + height/2},
		Width:  width,
		Height: height,
	}
}

// Contains reports whether point lies in the rectangle (min inclusive, max exclusive).
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{Center: r.Center, Width: r.Width + 2*margin, Height: r.Height + 2*margin}
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return !(other.Center.X-other.Width/2 > r.Center.X+r.Width/2 ||
		other.Center.X+other.Width/2 < r.Center.X-r.Width/2 ||
		other.Center.Y-other.Height/2 > r.Center.Y+r.Height/2 ||
		other.Center.Y+other.Height/2 < r.Center.Y-r.Height/2)
}

// quadItem is a circle stored in the tree together with its caller index.
type quadItem struct {
	circle Circle
	index  int
}

// QuadTree indexes circles by center for broad-phase pair queries.
// Items whose center falls outside the boundary are kept in an overflow
// list at the root so that they are never silently dropped.
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	items     []quadItem
	overflow  []quadItem
	maxRadius float64
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		items:    make([]quadItem, 0, capacity),
	}
}

// Clear empties the tree while keeping its boundary and capacity.
func (qt *QuadTree) Clear() {
	qt.items = qt.items[:0]
	qt.overflow = qt.overflow[:0]
	qt.maxRadius = 0
	qt.Divided = false
	qt.NorthWest = nil
	qt.NorthEast = nil
	qt.SouthWest = nil
	qt.SouthEast = nil
}

// Insert stores circle under index.
func (qt *QuadTree) Insert(circle Circle, index int) {
	if circle.Radius > qt.maxRadius {
		qt.maxRadius = circle.Radius
	}
	item := quadItem{circle: circle, index: index}
	if !qt.insert(item) {
		qt.overflow = append(qt.overflow, item)
	}
}

func (qt *QuadTree) insert(item quadItem) bool {
	if !qt.Boundary.Contains(item.circle.Center) {
		return false
	}

	if len(qt.items) < qt.Capacity && !qt.Divided {
		qt.items = append(qt.items, item)
		return true
	}

	if !qt.Divided {
		qt.subdivide()
	}

	return qt.NorthWest.insert(item) ||
		qt.NorthEast.insert(item) ||
		qt.SouthWest.insert(item) ||
		qt.SouthEast.insert(item)
}

// subdivide splits the quadtree into four quadrants (screen orientation, y down)
func (qt *QuadTree) subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	qt.NorthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.NorthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.Divided = true
}

// Query returns the indices of all circles whose center lies in area.
func (qt *QuadTree) Query(area Rect) []int {
	found := make([]int, 0)
	qt.query(area, &found)
	for _, item := range qt.overflow {
		if area.Contains(item.circle.Center) {
			found = append(found, item.index)
		}
	}
	return found
}

func (qt *QuadTree) query(area Rect, found *[]int) {
	if !qt.Boundary.Intersects(area) {
		return
	}

	for _, item := range qt.items {
		if area.Contains(item.circle.Center) {
			*found = append(*found, item.index)
		}
	}

	if !qt.Divided {
		return
	}

	qt.NorthWest.query(area, found)
	qt.NorthEast.query(area, found)
	qt.SouthWest.query(area, found)
	qt.SouthEast.query(area, found)
}

// Neighbors returns indices of circles that may overlap circle. The query
// area is widened by the largest inserted radius so no overlapping pair
// is missed.
func (qt *QuadTree) Neighbors(circle Circle) []int {
	return qt.Query(circle.Bounds().Expand(qt.maxRadius))
}
