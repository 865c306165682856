package path

import (
	"math"

	"github.com/inamate/swfscene/internal/geom"
)

// Point is a position in twips.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Edge is a directed segment: either Straight or Curved.
type Edge interface {
	Start() Point
	End() Point
	// Reverse returns the same segment traced in the opposite direction.
	Reverse() Edge
	// Interpolate blends the edge towards other. A Straight edge is promoted to
	// Curved when other is Curved.
	Interpolate(other Edge, ratio uint16) Edge
	isEdge()
}

type Straight struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Curved is a quadratic Bézier segment.
type Curved struct {
	From    Point `json:"from"`
	Control Point `json:"control"`
	To      Point `json:"to"`
}

func (e Straight) Start() Point { return e.From }
func (e Straight) End() Point   { return e.To }
func (e Curved) Start() Point   { return e.From }
func (e Curved) End() Point     { return e.To }

func (Straight) isEdge() {}
func (Curved) isEdge()   {}

func (e Straight) Reverse() Edge {
	return Straight{From: e.To, To: e.From}
}

func (e Curved) Reverse() Edge {
	return Curved{From: e.To, Control: e.Control, To: e.From}
}

// Curve returns the equivalent curved edge, with the control point at the
// midpoint. Half twips round away from zero, as interpolation does.
func (e Straight) Curve() Curved {
	return Curved{
		From:    e.From,
		Control: Point{X: mid(e.From.X, e.To.X), Y: mid(e.From.Y, e.To.Y)},
		To:      e.To,
	}
}

func mid(a, b int) int {
	return int(math.Round(float64(a+b) / 2))
}

func (e Straight) Interpolate(other Edge, ratio uint16) Edge {
	switch other := other.(type) {
	case Straight:
		return Straight{
			From: lerpPoint(e.From, other.From, ratio),
			To:   lerpPoint(e.To, other.To, ratio),
		}
	case Curved:
		return e.Curve().Interpolate(other, ratio)
	}
	return e
}

func (e Curved) Interpolate(other Edge, ratio uint16) Edge {
	var end Curved
	switch other := other.(type) {
	case Straight:
		end = other.Curve()
	case Curved:
		end = other
	default:
		return e
	}
	return Curved{
		From:    lerpPoint(e.From, end.From, ratio),
		Control: lerpPoint(e.Control, end.Control, ratio),
		To:      lerpPoint(e.To, end.To, ratio),
	}
}

func lerpPoint(a, b Point, ratio uint16) Point {
	return Point{X: geom.Lerp(a.X, b.X, ratio), Y: geom.Lerp(a.Y, b.Y, ratio)}
}

// ReverseRun reverses a run of edges: the order is inverted and every edge is
// traced backwards, so the run still chains end to start.
func ReverseRun(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[len(edges)-1-i] = e.Reverse()
	}
	return out
}
