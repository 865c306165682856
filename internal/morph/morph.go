// Package morph builds morph shapes: two keyframe shapes sharing one edge
// topology, blended at a ratio.
package morph

import (
	"errors"
	"fmt"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/shape"
	"github.com/inamate/swfscene/internal/tag"
)

// ErrEdgeCountMismatch is returned when the start and end shapes of a morph
// do not pair up path for path and edge for edge.
var ErrEdgeCountMismatch = errors.New("morph start and end edge counts differ")

// Path pairs a start path with its end path. Both have the same number of edges.
type Path struct {
	Start path.Path
	End   path.Path
}

// Shape is a morph shape character.
type Shape struct {
	id          uint16
	startBounds geom.Rectangle
	endBounds   geom.Rectangle
	paths       []Path
}

// Build reconstructs both keyframes of def and pairs their paths.
func Build(def tag.DefineMorphShape, r *shape.Reconstructor) (*Shape, error) {
	startStyles, endStyles := projectStyles(def)

	start, err := r.Paths(startStyles, def.StartEdges)
	if err != nil {
		return nil, fmt.Errorf("morph shape %d start: %w", def.ID, err)
	}
	end, err := r.Paths(endStyles, ProjectRecords(def.StartEdges, def.EndEdges))
	if err != nil {
		return nil, fmt.Errorf("morph shape %d end: %w", def.ID, err)
	}

	paths, err := pair(start, end)
	if err != nil {
		return nil, fmt.Errorf("morph shape %d: %w", def.ID, err)
	}
	return &Shape{id: def.ID, startBounds: def.StartBounds, endBounds: def.EndBounds, paths: paths}, nil
}

func pair(start, end []path.Path) ([]Path, error) {
	if len(start) != len(end) {
		return nil, fmt.Errorf("%w: %d start paths, %d end paths", ErrEdgeCountMismatch, len(start), len(end))
	}
	out := make([]Path, len(start))
	for i := range start {
		if len(start[i].Edges) != len(end[i].Edges) {
			return nil, fmt.Errorf("%w: path %d has %d and %d edges", ErrEdgeCountMismatch, i, len(start[i].Edges), len(end[i].Edges))
		}
		out[i] = Path{Start: start[i], End: end[i]}
	}
	return out, nil
}

func projectStyles(def tag.DefineMorphShape) (start, end tag.Styles) {
	for _, f := range def.FillStyles {
		start.Fills = append(start.Fills, f.Start())
		end.Fills = append(end.Fills, f.End())
	}
	for _, l := range def.LineStyles {
		start.Lines = append(start.Lines, l.Start())
		end.Lines = append(end.Lines, l.End())
	}
	return start, end
}

// ProjectRecords copies the style changes of the start records onto the end
// records, position by position. The end records keep their own geometry
// and cursor moves.
func ProjectRecords(start, end tag.ShapeRecords) tag.ShapeRecords {
	out := make(tag.ShapeRecords, 0, len(start))
	j := 0
	for _, rec := range start {
		switch rec := rec.(type) {
		case tag.StyleChange:
			projected := rec
			projected.MoveTo = nil
			if j < len(end) {
				if sc, ok := end[j].(tag.StyleChange); ok {
					projected.MoveTo = sc.MoveTo
					j++
				}
			}
			out = append(out, projected)

		case tag.EndShape:
			out = append(out, rec)
			return out

		default:
			for j < len(end) {
				sc, ok := end[j].(tag.StyleChange)
				if !ok {
					break
				}
				out = append(out, tag.StyleChange{MoveTo: sc.MoveTo})
				j++
			}
			if j < len(end) {
				if _, done := end[j].(tag.EndShape); !done {
					out = append(out, end[j])
					j++
				}
			}
		}
	}
	return out
}

func (s *Shape) ID() uint16                  { return s.id }
func (s *Shape) Bounds() geom.Rectangle      { return s.startBounds }
func (s *Shape) StartBounds() geom.Rectangle { return s.startBounds }
func (s *Shape) EndBounds() geom.Rectangle   { return s.endBounds }
func (s *Shape) FramesCount(bool) int        { return 1 }

// Paths returns the paired paths. The slice must not be modified.
func (s *Shape) Paths() []Path {
	return s.paths
}

// Interpolate returns the shape at ratio (0..geom.MaxRatio). Ratio 0 is the
// start shape and geom.MaxRatio the end shape, exactly.
func (s *Shape) Interpolate(ratio uint16) *shape.Shape {
	paths := make([]path.Path, len(s.paths))
	for i, p := range s.paths {
		switch ratio {
		case 0:
			paths[i] = p.Start
		case geom.MaxRatio:
			paths[i] = p.End
		default:
			paths[i] = p.Start.Interpolate(p.End, ratio)
		}
	}
	return shape.New(s.id, s.startBounds.Interpolate(s.endBounds, ratio), paths)
}

// Draw draws the start shape.
func (s *Shape) Draw(sink draw.Sink, frame int) draw.Sink {
	return s.Interpolate(0).Draw(sink, frame)
}

func (s *Shape) TransformColors(ct geom.ColorTransform) draw.Drawable {
	paths := make([]Path, len(s.paths))
	for i, p := range s.paths {
		paths[i] = Path{Start: p.Start.TransformColors(ct), End: p.End.TransformColors(ct)}
	}
	return &Shape{id: s.id, startBounds: s.startBounds, endBounds: s.endBounds, paths: paths}
}

func (s *Shape) Modify(v draw.Visitor, _ int) draw.Drawable {
	return v.Visit(s)
}
