package campus

import (
	"fmt"
	"math"
)

// Coord is a point in the simulation frame. It is comparable and used as a
// map key, so two coordinates produced by the same transform match exactly.
type Coord struct{ X, Y float64 }

func (a Coord) Add(b Coord) Coord     { return Coord{a.X + b.X, a.Y + b.Y} }
func (a Coord) Sub(b Coord) Coord     { return Coord{a.X - b.X, a.Y - b.Y} }
func (a Coord) Len() float64          { return math.Hypot(a.X, a.Y) }
func (a Coord) Scale(s float64) Coord { return Coord{a.X * s, a.Y * s} }
func (a Coord) Dist(b Coord) float64  { return b.Sub(a).Len() }
func (a Coord) String() string        { return fmt.Sprintf("(%.2f,%.2f)", a.X, a.Y) }

// ToSimFrame negates the raw vertical axis and translates by origin, which
// aligns map and room files with the simulation coordinate frame.
func ToSimFrame(x, y float64, origin Coord) Coord {
	return Coord{X: x - origin.X, Y: -y - origin.Y}
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MoveTowards steps current toward target by at most maxDelta.
func MoveTowards(current, target Coord, maxDelta float64) Coord {
	toTarget := target.Sub(current)
	d := toTarget.Len()
	if d <= maxDelta || d == 0 {
		return target
	}
	return current.Add(toTarget.Scale(maxDelta / d))
}
