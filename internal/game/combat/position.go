package combat

import "fmt"

// Point is a tile coordinate on the encounter grid.
type Point struct {
	X int
	Y int
}

// Add returns the point offset by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Distance returns the Chebyshev distance between p and q: the number of
// king moves separating the two tiles. Weapon range, movement range, and
// opponent targeting all use this one metric so that diagonal steps cost
// the same as orthogonal ones.
func (p Point) Distance(q Point) int {
	dx := abs(p.X - q.X)
	dy := abs(p.Y - q.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// String returns the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// sign returns -1, 0, or 1 matching the sign of n.
func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
