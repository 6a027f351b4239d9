package game

import "math"

const (
	epsilon = 0.001
	// cone half-angle: the cone is as wide as it is long at any distance.
	coneHalfAngle = 0.4636476090008061 // atan(0.5)
	lineHalfWidth = 2.5
)

// Position is a point on the battlefield, in feet.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) DistanceTo(q Position) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// MoveToward moves p toward q by at most budget feet, stopping once within
// stopAt feet of q.
func (p Position) MoveToward(q Position, budget, stopAt float64) Position {
	dist := p.DistanceTo(q)
	need := dist - stopAt
	if need <= 0 || budget <= 0 || dist == 0 {
		return p
	}
	step := math.Min(need, budget)
	return Position{
		X: p.X + (q.X-p.X)/dist*step,
		Y: p.Y + (q.Y-p.Y)/dist*step,
	}
}

type AreaShape string

const (
	Sphere AreaShape = "sphere"
	Cone   AreaShape = "cone"
	Line   AreaShape = "line"
)

// Area is the region of an area-effect action. Size is the sphere radius
// or the cone/line length, in feet.
type Area struct {
	Shape AreaShape `json:"shape" yaml:"shape"`
	Size  int       `json:"size" yaml:"size"`
}

// Contains reports whether point lies in the area cast from origin and
// aimed at aim. Spheres are centered on aim; cones and lines start at
// origin and point toward aim.
func (a Area) Contains(origin, aim, point Position) bool {
	size := float64(a.Size)
	switch a.Shape {
	case Sphere:
		return aim.DistanceTo(point) <= size+epsilon
	case Cone, Line:
		dx, dy := aim.X-origin.X, aim.Y-origin.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			return false
		}
		ux, uy := dx/length, dy/length
		px, py := point.X-origin.X, point.Y-origin.Y
		along := px*ux + py*uy
		if along <= epsilon || along > size+epsilon {
			return false
		}
		across := math.Abs(px*uy - py*ux)
		if a.Shape == Line {
			return across <= lineHalfWidth+epsilon
		}
		return math.Atan2(across, along) <= coneHalfAngle+epsilon
	}
	return false
}
