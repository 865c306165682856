package shape

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/tag"
)

func ptr[T any](v T) *T { return &v }

func redSquare() tag.DefineShape {
	return tag.DefineShape{
		Version: 1,
		ID:      1,
		Bounds:  geom.Rectangle{XMax: 100, YMax: 100},
		Records: tag.ShapeRecords{
			tag.StyleChange{
				NewStyles:  &tag.Styles{Fills: []tag.FillStyle{{Kind: tag.FillSolid, Color: geom.RGB(255, 0, 0)}}},
				FillStyle1: ptr(1),
				MoveTo:     &tag.Point{},
			},
			tag.StraightEdge{DeltaX: 100},
			tag.StraightEdge{DeltaY: 100},
			tag.StraightEdge{DeltaX: -100},
			tag.StraightEdge{DeltaY: -100},
			tag.EndShape{},
		},
	}
}

func TestReconstructSquare(t *testing.T) {
	s, err := NewReconstructor(nil).Build(redSquare())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	paths := s.Paths()
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if p.Style.IsStroke() {
		t.Errorf("square should be a fill, got %+v", p.Style)
	}
	if diff := cmp.Diff(path.SolidFill{Color: geom.RGB(255, 0, 0)}, p.Style.Fill); diff != "" {
		t.Errorf("fill mismatch (-want +got):\n%s", diff)
	}

	want := []path.Edge{
		path.Straight{From: path.Point{X: 0, Y: 0}, To: path.Point{X: 100, Y: 0}},
		path.Straight{From: path.Point{X: 100, Y: 0}, To: path.Point{X: 100, Y: 100}},
		path.Straight{From: path.Point{X: 100, Y: 100}, To: path.Point{X: 0, Y: 100}},
		path.Straight{From: path.Point{X: 0, Y: 100}, To: path.Point{X: 0, Y: 0}},
	}
	if diff := cmp.Diff(want, p.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstructCurveAndStroke(t *testing.T) {
	styles := tag.Styles{
		Fills: []tag.FillStyle{{Kind: tag.FillSolid, Color: geom.RGB(0, 0, 255)}},
		Lines: []tag.LineStyle{{Width: 40, Color: geom.RGB(0, 0, 0)}},
	}
	records := tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{X: 10, Y: 10}, LineStyle: ptr(1), FillStyle0: ptr(1)},
		tag.CurvedEdge{ControlDeltaX: 50, ControlDeltaY: -10, AnchorDeltaX: 50, AnchorDeltaY: 10},
		tag.StraightEdge{DeltaX: -100},
		tag.EndShape{},
	}

	paths, err := NewReconstructor(nil).Paths(styles, records)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want fill and stroke", len(paths))
	}
	if paths[0].Style.IsStroke() || !paths[1].Style.IsStroke() {
		t.Fatalf("stroke must follow fill: %+v", paths)
	}

	curve := path.Curved{From: path.Point{X: 10, Y: 10}, Control: path.Point{X: 60, Y: 0}, To: path.Point{X: 110, Y: 10}}
	if got := paths[1].Edges[0]; got != path.Edge(curve) {
		t.Errorf("stroke starts with %v, want %v", got, curve)
	}

	// fill0 is traced backwards.
	fill := paths[0]
	if !fill.IsContinuous() {
		t.Errorf("fill0 path = %+v", fill)
	}
	if got := fill.Edges[0].Start(); got != (path.Point{X: 10, Y: 10}) {
		t.Errorf("reversed fill starts at %v", got)
	}
}

func TestFillOnBothSidesMakesOneRegion(t *testing.T) {
	styles := tag.Styles{Fills: []tag.FillStyle{{Kind: tag.FillSolid, Color: geom.RGB(0, 255, 0)}}}
	records := tag.ShapeRecords{
		tag.StyleChange{MoveTo: &tag.Point{}, FillStyle1: ptr(1)},
		tag.StraightEdge{DeltaX: 100},
		tag.StraightEdge{DeltaY: 100},
		tag.StyleChange{MoveTo: &tag.Point{}, FillStyle0: ptr(1), FillStyle1: ptr(0)},
		tag.StraightEdge{DeltaY: 100},
		tag.StraightEdge{DeltaX: 100},
		tag.EndShape{},
	}

	paths, err := NewReconstructor(nil).Paths(styles, records)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if len(p.Edges) != 4 || !p.IsContinuous() {
		t.Fatalf("edges = %v, want 4 continuous edges", p.Edges)
	}
	if p.Edges[0].Start() != p.Edges[3].End() {
		t.Errorf("path is not closed: %v", p.Edges)
	}
}

func TestNewStylesFinalizesEarlierPaths(t *testing.T) {
	records := tag.ShapeRecords{
		tag.StyleChange{LineStyle: ptr(1)},
		tag.StraightEdge{DeltaX: 10},
		tag.StyleChange{
			NewStyles:  &tag.Styles{Fills: []tag.FillStyle{{Kind: tag.FillSolid}}},
			FillStyle1: ptr(1),
		},
		tag.StraightEdge{DeltaY: 10},
		tag.EndShape{},
	}
	styles := tag.Styles{Lines: []tag.LineStyle{{Width: 20}}}

	paths, err := NewReconstructor(nil).Paths(styles, records)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if !paths[0].Style.IsStroke() {
		t.Errorf("stroke from the first style group should stay first")
	}
	if got := paths[1].Edges[0].Start(); got != (path.Point{X: 10}) {
		t.Errorf("second group starts at %v, want the cursor (10,0)", got)
	}
}

func TestStyleIndexOutOfRange(t *testing.T) {
	records := tag.ShapeRecords{tag.StyleChange{FillStyle1: ptr(3)}}
	_, err := NewReconstructor(nil).Paths(tag.Styles{}, records)
	if !errors.Is(err, tag.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

type rasters map[uint16]path.Raster

func (m rasters) Raster(id uint16) (path.Raster, bool, error) {
	r, ok := m[id]
	return r, ok, nil
}

type pixel struct{}

func (pixel) Bounds() geom.Rectangle      { return geom.Rectangle{XMax: 20, YMax: 20} }
func (pixel) Image() (image.Image, error) { return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil }

func TestBitmapFillResolution(t *testing.T) {
	def := redSquare()
	def.Records[0] = tag.StyleChange{
		NewStyles:  &tag.Styles{Fills: []tag.FillStyle{{Kind: tag.FillClippedBitmap, BitmapID: 9, Matrix: geom.Identity()}}},
		FillStyle1: ptr(1),
		MoveTo:     &tag.Point{},
	}

	if _, err := NewReconstructor(rasters{9: pixel{}}).Build(def); err != nil {
		t.Fatalf("bitmap fill with image: %v", err)
	}

	_, err := NewReconstructor(rasters{}).Build(def)
	if !errors.Is(err, tag.ErrInvalidData) {
		t.Fatalf("bitmap fill without image: err = %v, want ErrInvalidData", err)
	}
}

func TestDrawIsRelativeToBounds(t *testing.T) {
	def := redSquare()
	def.Bounds = geom.Rectangle{XMin: -20, XMax: 100, YMin: -20, YMax: 100}
	s, err := NewReconstructor(nil).Build(def)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cmds := draw.Record(s, 0)
	if len(cmds) != 2 || cmds[0].Op != "area" || cmds[1].Op != "path" {
		t.Fatalf("got %+v, want area then path", cmds)
	}
	if got := cmds[1].Path[0]; !cmp.Equal(got, draw.PathCommand{"M", 1.0, 1.0}) {
		t.Errorf("first point = %v, want shifted by the offset", got)
	}
}

func TestTransformColorsReturnsNewShape(t *testing.T) {
	s, err := NewReconstructor(nil).Build(redSquare())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ct := geom.IdentityTransform()
	ct.RedMult = 128
	got := s.TransformColors(ct).(*Shape)

	if c := got.Paths()[0].Style.Fill.(path.SolidFill).Color; c.Red != 127 {
		t.Errorf("transformed red = %d, want 127", c.Red)
	}
	if c := s.Paths()[0].Style.Fill.(path.SolidFill).Color; c.Red != 255 {
		t.Errorf("original was modified: red = %d", c.Red)
	}
}
