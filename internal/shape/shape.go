// Package shape reconstructs vector shapes from their record streams.
package shape

import (
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
)

// Shape is a vector character: a bounding box and its paths, fills before
// strokes. Paths are in the shape's own coordinate space; Draw emits them
// relative to the top-left corner of the bounds.
type Shape struct {
	id     uint16
	bounds geom.Rectangle
	paths  []path.Path
}

// New returns a shape. paths must already be in paint order.
func New(id uint16, bounds geom.Rectangle, paths []path.Path) *Shape {
	return &Shape{id: id, bounds: bounds, paths: paths}
}

func (s *Shape) ID() uint16             { return s.id }
func (s *Shape) Bounds() geom.Rectangle { return s.bounds }
func (s *Shape) Width() int             { return s.bounds.Width() }
func (s *Shape) Height() int            { return s.bounds.Height() }
func (s *Shape) XOffset() int           { return s.bounds.XMin }
func (s *Shape) YOffset() int           { return s.bounds.YMin }
func (s *Shape) FramesCount(bool) int   { return 1 }

// Paths returns the shape's paths. The slice must not be modified.
func (s *Shape) Paths() []path.Path {
	return s.paths
}

func (s *Shape) Draw(sink draw.Sink, _ int) draw.Sink {
	sink.Area(geom.Rectangle{XMax: s.Width(), YMax: s.Height()})
	dx, dy := -s.bounds.XMin, -s.bounds.YMin
	for _, p := range s.paths {
		sink.Path(translate(p, dx, dy))
	}
	return sink
}

func (s *Shape) TransformColors(ct geom.ColorTransform) draw.Drawable {
	paths := make([]path.Path, len(s.paths))
	for i, p := range s.paths {
		paths[i] = p.TransformColors(ct)
	}
	return &Shape{id: s.id, bounds: s.bounds, paths: paths}
}

func (s *Shape) Modify(v draw.Visitor, _ int) draw.Drawable {
	return v.Visit(s)
}

func translate(p path.Path, dx, dy int) path.Path {
	if dx == 0 && dy == 0 {
		return p
	}
	move := func(pt path.Point) path.Point {
		return path.Point{X: pt.X + dx, Y: pt.Y + dy}
	}
	edges := make([]path.Edge, len(p.Edges))
	for i, e := range p.Edges {
		switch e := e.(type) {
		case path.Straight:
			edges[i] = path.Straight{From: move(e.From), To: move(e.To)}
		case path.Curved:
			edges[i] = path.Curved{From: move(e.From), Control: move(e.Control), To: move(e.To)}
		}
	}
	return path.Path{Edges: edges, Style: p.Style}
}
