package morph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/shape"
	"github.com/inamate/swfscene/internal/tag"
)

func ptr[T any](v T) *T { return &v }

func square(size int) tag.ShapeRecords {
	return tag.ShapeRecords{
		tag.StraightEdge{DeltaX: size},
		tag.StraightEdge{DeltaY: size},
		tag.StraightEdge{DeltaX: -size},
		tag.StraightEdge{DeltaY: -size},
		tag.EndShape{},
	}
}

func growingSquare() tag.DefineMorphShape {
	start := append(tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{}, FillStyle1: ptr(1)},
	}, square(100)...)
	end := append(tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{X: -100, Y: -100}},
	}, square(300)...)

	return tag.DefineMorphShape{
		ID:          5,
		StartBounds: geom.Rectangle{XMax: 100, YMax: 100},
		EndBounds:   geom.Rectangle{XMin: -100, XMax: 200, YMin: -100, YMax: 200},
		FillStyles: []tag.MorphFillStyle{{
			Kind:        tag.FillSolid,
			StartColor:  geom.RGB(255, 0, 0),
			EndColor:    geom.RGB(0, 0, 255),
			StartMatrix: geom.Identity(),
			EndMatrix:   geom.Identity(),
		}},
		StartEdges: start,
		EndEdges:   end,
	}
}

func TestInterpolateEndpointsAreExact(t *testing.T) {
	def := growingSquare()
	r := shape.NewReconstructor(nil)
	m, err := Build(def, r)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	start, err := r.Paths(tag.Styles{Fills: []tag.FillStyle{def.FillStyles[0].Start()}}, def.StartEdges)
	if err != nil {
		t.Fatalf("start paths: %v", err)
	}

	got := m.Interpolate(0)
	if diff := cmp.Diff(start, got.Paths(), cmp.AllowUnexported(path.BitmapFill{})); diff != "" {
		t.Errorf("ratio 0 mismatch (-want +got):\n%s", diff)
	}
	if got.Bounds() != def.StartBounds {
		t.Errorf("ratio 0 bounds = %v", got.Bounds())
	}

	end := m.Interpolate(geom.MaxRatio)
	if end.Bounds() != def.EndBounds {
		t.Errorf("max ratio bounds = %v", end.Bounds())
	}
	first := end.Paths()[0].Edges[0]
	if first.Start() != (path.Point{X: -100, Y: -100}) || first.End() != (path.Point{X: 200, Y: -100}) {
		t.Errorf("max ratio first edge = %v", first)
	}
	if c := end.Paths()[0].Style.Fill.(path.SolidFill).Color; c != geom.RGB(0, 0, 255) {
		t.Errorf("max ratio color = %v", c)
	}
}

func TestInterpolateMidway(t *testing.T) {
	m, err := Build(growingSquare(), shape.NewReconstructor(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// The second edge runs from (100,0)-(100,100) to (200,-100)-(200,200).
	tests := []struct {
		ratio  uint16
		bounds geom.Rectangle
		edge   path.Straight
	}{
		{
			ratio:  16384,
			bounds: geom.Rectangle{XMin: -25, XMax: 125, YMin: -25, YMax: 125},
			edge:   path.Straight{From: path.Point{X: 125, Y: -25}, To: path.Point{X: 125, Y: 125}},
		},
		{
			// 101.53 and -1.53 round away from the start values.
			ratio:  1000,
			bounds: geom.Rectangle{XMin: -2, XMax: 102, YMin: -2, YMax: 102},
			edge:   path.Straight{From: path.Point{X: 102, Y: -2}, To: path.Point{X: 102, Y: 102}},
		},
		{
			ratio:  32768,
			bounds: geom.Rectangle{XMin: -50, XMax: 150, YMin: -50, YMax: 150},
			edge:   path.Straight{From: path.Point{X: 150, Y: -50}, To: path.Point{X: 150, Y: 150}},
		},
	}
	for _, tt := range tests {
		got := m.Interpolate(tt.ratio)
		if b := got.Bounds(); b != tt.bounds {
			t.Errorf("ratio %d: bounds = %v, want %v", tt.ratio, b, tt.bounds)
		}
		if e := got.Paths()[0].Edges[1]; e != path.Edge(tt.edge) {
			t.Errorf("ratio %d: edge = %v, want %v", tt.ratio, e, tt.edge)
		}
	}
}

func TestEdgeCountMismatch(t *testing.T) {
	def := growingSquare()
	def.EndEdges = append(tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{}},
		tag.StraightEdge{DeltaX: 10},
	}, tag.EndShape{})

	_, err := Build(def, shape.NewReconstructor(nil))
	if !errors.Is(err, ErrEdgeCountMismatch) {
		t.Fatalf("err = %v, want ErrEdgeCountMismatch", err)
	}
}

func TestProjectRecords(t *testing.T) {
	start := tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{X: 1}, FillStyle1: ptr(1)},
		tag.StraightEdge{DeltaX: 10},
		tag.StyleChange{LineStyle: ptr(1)},
		tag.CurvedEdge{ControlDeltaX: 1, AnchorDeltaX: 1},
		tag.EndShape{},
	}
	end := tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{X: 7}},
		tag.StraightEdge{DeltaX: 20},
		tag.CurvedEdge{ControlDeltaX: 2, AnchorDeltaX: 2},
		tag.EndShape{},
	}

	want := tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{X: 7}, FillStyle1: ptr(1)},
		tag.StraightEdge{DeltaX: 20},
		tag.StyleChange{LineStyle: ptr(1)},
		tag.CurvedEdge{ControlDeltaX: 2, AnchorDeltaX: 2},
		tag.EndShape{},
	}
	if diff := cmp.Diff(want, ProjectRecords(start, end)); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}
}
