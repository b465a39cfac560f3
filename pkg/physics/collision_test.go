// pkg/physics/collision_test.go
package physics

import (
	"sort"
	"testing"
)

func TestCircle_Collides(t *testing.T) {
	tests := []struct {
		name     string
		circle1  Circle
		circle2  Circle
		expected bool
	}{
		{
			name:     "circles_touching",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 10, Y: 0}, Radius: 5},
			expected: false, // exact contact is not an overlap
		},
		{
			name:     "circles_overlapping",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 5, Y: 0}, Radius: 5},
			expected: true,
		},
		{
			name:     "circles_same_position",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 3},
			circle2:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 2},
			expected: true,
		},
		{
			name:     "circles_apart",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 15, Y: 0}, Radius: 5},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.circle1.Collides(tt.circle2); result != tt.expected {
				t.Errorf("Circle.Collides() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestCircle_Contains(t *testing.T) {
	ring := Circle{Center: Vector2D{X: 500, Y: 500}, Radius: 200}
	if !ring.Contains(Circle{Center: Vector2D{X: 500, Y: 320}, Radius: 15}) {
		t.Error("ball at distance 180 with radius 15 should be inside radius 200")
	}
	if ring.Contains(Circle{Center: Vector2D{X: 500, Y: 310}, Radius: 15}) {
		t.Error("ball at distance 190 with radius 15 reaches the ring")
	}
}

func TestCheckCollision(t *testing.T) {
	t.Run("no_collision", func(t *testing.T) {
		result := CheckCollision(
			Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			Circle{Center: Vector2D{X: 15, Y: 0}, Radius: 5},
		)
		if result.Collided {
			t.Error("Expected no collision, but got collision")
		}
	})

	t.Run("collision_with_penetration", func(t *testing.T) {
		result := CheckCollision(
			Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			Circle{Center: Vector2D{X: 8, Y: 0}, Radius: 5},
		)
		if !result.Collided {
			t.Fatal("Expected collision, but got no collision")
		}
		if result.Penetration != 2 {
			t.Errorf("Expected penetration 2, got %v", result.Penetration)
		}
		if result.Normal != (Vector2D{X: 1, Y: 0}) {
			t.Errorf("Expected normal (1, 0), got %v", result.Normal)
		}
		if result.ContactPoint != (Vector2D{X: 5, Y: 0}) {
			t.Errorf("Expected contact point (5, 0), got %v", result.ContactPoint)
		}
	})

	t.Run("coincident_centers_stay_finite", func(t *testing.T) {
		result := CheckCollision(
			Circle{Center: Vector2D{X: 7, Y: 7}, Radius: 4},
			Circle{Center: Vector2D{X: 7, Y: 7}, Radius: 4},
		)
		if !result.Collided {
			t.Fatal("coincident circles must collide")
		}
		if !result.Normal.IsFinite() || result.Normal.Length() < 0.999 {
			t.Errorf("normal must be a finite unit vector, got %v", result.Normal)
		}
		if result.Penetration > 8 || result.Penetration < 7.99 {
			t.Errorf("penetration should be about 8, got %v", result.Penetration)
		}
	})
}

func TestRect_ContainsAndIntersects(t *testing.T) {
	r := NewRectFromCorners(0, 0, 100, 50)
	if !r.Contains(Vector2D{X: 0, Y: 0}) {
		t.Error("min corner should be inclusive")
	}
	if r.Contains(Vector2D{X: 100, Y: 25}) {
		t.Error("max edge should be exclusive")
	}
	if !r.Intersects(NewRectFromCorners(90, 40, 20, 20)) {
		t.Error("overlapping rectangles should intersect")
	}
	if r.Intersects(NewRectFromCorners(200, 200, 5, 5)) {
		t.Error("distant rectangles should not intersect")
	}
}

func TestQuadTree_Neighbors(t *testing.T) {
	qt := NewQuadTree(NewRectFromCorners(0, 0, 1000, 1000), 2)
	circles := []Circle{
		{Center: Vector2D{X: 100, Y: 100}, Radius: 20},
		{Center: Vector2D{X: 130, Y: 100}, Radius: 20},
		{Center: Vector2D{X: 900, Y: 900}, Radius: 20},
		{Center: Vector2D{X: 880, Y: 910}, Radius: 20},
		{Center: Vector2D{X: 500, Y: 500}, Radius: 20},
		{Center: Vector2D{X: -50, Y: 100}, Radius: 60}, // outside boundary
	}
	for i, c := range circles {
		qt.Insert(c, i)
	}

	t.Run("subdivides_past_capacity", func(t *testing.T) {
		if !qt.Divided {
			t.Error("tree should subdivide once capacity is exceeded")
		}
	})

	t.Run("finds_close_pair", func(t *testing.T) {
		got := qt.Neighbors(circles[0])
		sort.Ints(got)
		want := map[int]bool{0: true, 1: true}
		for _, idx := range got {
			if !want[idx] {
				t.Errorf("unexpected neighbor %d", idx)
			}
			delete(want, idx)
		}
		if len(want) != 0 {
			t.Errorf("missing neighbors %v", want)
		}
	})

	t.Run("keeps_out_of_bounds_items", func(t *testing.T) {
		got := qt.Neighbors(Circle{Center: Vector2D{X: -40, Y: 100}, Radius: 10})
		found := false
		for _, idx := range got {
			if idx == 5 {
				found = true
			}
		}
		if !found {
			t.Errorf("circle outside the boundary should still be queryable, got %v", got)
		}
	})

	t.Run("clear_empties_tree", func(t *testing.T) {
		qt.Clear()
		if got := qt.Query(NewRectFromCorners(-1000, -1000, 3000, 3000)); len(got) != 0 {
			t.Errorf("expected empty tree after Clear, got %v", got)
		}
		if qt.Divided {
			t.Error("Clear should collapse subdivisions")
		}
	})
}
