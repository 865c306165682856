package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/morph"
	"github.com/inamate/swfscene/internal/raster"
	"github.com/inamate/swfscene/internal/shape"
	"github.com/inamate/swfscene/internal/tag"
	"github.com/inamate/swfscene/internal/timeline"
)

const movie = `{
  "header": {"version": 10, "frameRate": 24, "frameCount": 2,
             "displayRect": {"xmin": 0, "xmax": 11000, "ymin": 0, "ymax": 8000}},
  "tags": [
    {"type": "DefineShape", "id": 1,
     "bounds": {"xmin": 0, "xmax": 100, "ymin": 0, "ymax": 100},
     "styles": {"fills": [{"kind": "solid", "color": {"red": 255}}]},
     "records": [
       {"type": "styleChange", "moveTo": {"x": 0, "y": 0}, "fillStyle1": 1},
       {"type": "straightEdge", "dx": 100},
       {"type": "straightEdge", "dy": 100},
       {"type": "straightEdge", "dx": -100},
       {"type": "straightEdge", "dy": -100},
       {"type": "end"}
     ]},
    {"type": "DefineBitsLossless2", "id": 1, "format": 5, "width": 1, "height": 1},
    {"type": "DefineBitsLossless2", "id": 2, "format": 5, "width": 2, "height": 3},
    {"type": "DefineSprite", "id": 3, "frameCount": 1, "tags": [
      {"type": "PlaceObject2", "depth": 1, "characterId": 1,
       "matrix": {"translateX": 200, "translateY": 200}},
      {"type": "ShowFrame"},
      {"type": "End"}
    ]},
    {"type": "DefineMorphShape", "id": 4,
     "startBounds": {"xmin": 0, "xmax": 10, "ymin": 0, "ymax": 10},
     "endBounds": {"xmin": 0, "xmax": 20, "ymin": 0, "ymax": 20},
     "fillStyles": [{"kind": "solid", "startColor": {"red": 1}, "endColor": {"red": 2}}],
     "startEdges": [
       {"type": "styleChange", "moveTo": {"x": 0, "y": 0}, "fillStyle1": 1},
       {"type": "straightEdge", "dx": 10},
       {"type": "straightEdge", "dx": -10, "dy": 10},
       {"type": "end"}
     ],
     "endEdges": [
       {"type": "styleChange", "moveTo": {"x": 0, "y": 0}},
       {"type": "straightEdge", "dx": 20},
       {"type": "straightEdge", "dx": -20, "dy": 20},
       {"type": "end"}
     ]},
    {"type": "ExportAssets", "assets": [{"id": 3, "name": "Hero"}, {"id": 77, "name": "Ghost"}]},
    {"type": "PlaceObject2", "depth": 2, "characterId": 3},
    {"type": "PlaceObject2", "depth": 1, "characterId": 1},
    {"type": "ShowFrame"},
    {"type": "RemoveObject2", "depth": 2},
    {"type": "ShowFrame"},
    {"type": "End"}
  ]
}`

func load(t *testing.T) *Catalog {
	t.Helper()
	doc, err := tag.DecodeBytes([]byte(movie), tag.FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return New(doc)
}

func sameMap(a, b any) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

func TestCharacterKinds(t *testing.T) {
	c := load(t)

	tests := []struct {
		id   uint16
		kind any
	}{
		{1, &shape.Shape{}},
		{2, &raster.Image{}},
		{3, &timeline.Sprite{}},
		{4, &morph.Shape{}},
		{99, draw.Missing{}},
	}
	for _, tt := range tests {
		ch, err := c.Character(tt.id)
		if err != nil {
			t.Fatalf("Character(%d): %v", tt.id, err)
		}
		if got, want := reflect.TypeOf(ch), reflect.TypeOf(tt.kind); got != want {
			t.Errorf("Character(%d) is %v, want %v", tt.id, got, want)
		}
		if ch.ID() != tt.id {
			t.Errorf("Character(%d).ID() = %d", tt.id, ch.ID())
		}
	}
}

func TestShapeWinsOverImage(t *testing.T) {
	c := load(t)
	ch, err := c.Character(1)
	if err != nil {
		t.Fatalf("Character: %v", err)
	}
	if _, ok := ch.(*shape.Shape); !ok {
		t.Fatalf("Character(1) is %T, want the shape", ch)
	}

	images, err := c.Images()
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if _, ok := images[1]; !ok {
		t.Errorf("image 1 should still be in the image table")
	}
}

func TestMissingIsTotal(t *testing.T) {
	c := load(t)
	ch, err := c.Character(1234)
	if err != nil {
		t.Fatalf("Character: %v", err)
	}
	if ch.Bounds() != (geom.Rectangle{}) || ch.FramesCount(true) != 1 {
		t.Errorf("missing character = %v", ch)
	}
	sink := draw.NewRecorder(0)
	if ch.Draw(sink, 0) != draw.Sink(sink) || len(sink.Commands()) != 0 {
		t.Errorf("missing character drew something")
	}
}

func TestUndecodableImageStaysLocal(t *testing.T) {
	doc := &tag.Document{Tags: tag.Stream{
		tag.DefineBitsLossless{Version: 1, ID: 5, Format: tag.BitmapRGB15, Width: 1, Height: 1},
		tag.DefineShape{ID: 1, Styles: tag.Styles{Fills: []tag.FillStyle{
			{Kind: tag.FillClippedBitmap, BitmapID: 5, Matrix: geom.Identity()},
		}}},
	}}
	c := New(doc)

	ch, err := c.Character(99)
	if err != nil {
		t.Fatalf("Character(99): %v", err)
	}
	if !draw.IsMissing(ch) {
		t.Errorf("Character(99) = %v, want Missing", ch)
	}

	if _, err := c.Character(1); err != nil {
		t.Errorf("shape filled with the image: %v", err)
	}

	ch, err = c.Character(5)
	if err != nil {
		t.Fatalf("Character(5): %v", err)
	}
	if _, err := ch.(*raster.Image).Image(); !errors.Is(err, tag.ErrNotImplemented) {
		t.Errorf("Image() err = %v, want ErrNotImplemented", err)
	}
}

func TestMemoization(t *testing.T) {
	c := load(t)

	a, _ := c.Character(3)
	b, _ := c.Character(3)
	if a != b {
		t.Errorf("Character(3) returned different objects")
	}

	s1, _ := c.Shapes()
	s2, _ := c.Shapes()
	if !sameMap(s1, s2) {
		t.Errorf("Shapes() rebuilt its table")
	}
	if !sameMap(c.Sprites(), c.Sprites()) {
		t.Errorf("Sprites() rebuilt its table")
	}
	i1, _ := c.Images()
	i2, _ := c.Images()
	if !sameMap(i1, i2) {
		t.Errorf("Images() rebuilt its table")
	}

	t1, _ := c.Timeline(false)
	t2, _ := c.Timeline(false)
	if t1 != t2 {
		t.Errorf("Timeline() rebuilt the root timeline")
	}

	c.Release()
	if stats := c.Stats(); len(stats.Loaded) != 0 {
		t.Errorf("tables still loaded after Release: %v", stats.Loaded)
	}
	after, _ := c.Character(3)
	if after == a {
		t.Errorf("Release kept the sprite table")
	}
	t3, _ := c.Timeline(false)
	if t3 == t1 {
		t.Errorf("Release kept the root timeline")
	}
}

func TestByName(t *testing.T) {
	c := load(t)

	hero, err := c.ByName("Hero")
	if err != nil {
		t.Fatalf("ByName(Hero): %v", err)
	}
	if hero.ID() != 3 {
		t.Errorf("Hero is %d, want 3", hero.ID())
	}

	ghost, err := c.ByName("Ghost")
	if err != nil || !draw.IsMissing(ghost) {
		t.Errorf("ByName(Ghost) = %v, %v; want Missing", ghost, err)
	}

	if _, err := c.ByName("Villain"); !errors.Is(err, ErrNotExported) {
		t.Errorf("ByName(Villain) err = %v, want ErrNotExported", err)
	}
}

func TestRootTimeline(t *testing.T) {
	c := load(t)

	tl, err := c.Timeline(false)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("got %d frames, want 2", tl.Len())
	}
	// The sprite's bounds are its square at (200, 200).
	want := geom.Rectangle{XMin: 0, XMax: 300, YMin: 0, YMax: 300}
	if tl.Bounds() != want {
		t.Errorf("Bounds() = %v, want %v", tl.Bounds(), want)
	}
	if n := len(tl.Frame(1).Objects); n != 1 {
		t.Errorf("frame 1 has %d objects, want 1", n)
	}

	container, err := c.Timeline(true)
	if err != nil {
		t.Fatalf("Timeline(true): %v", err)
	}
	if container.Bounds() != c.Document().Header.DisplayRect {
		t.Errorf("container bounds = %v", container.Bounds())
	}
	if tl.Bounds() != want {
		t.Errorf("container bounds leaked into the computed timeline")
	}

	root, err := c.Character(RootID)
	if err != nil {
		t.Fatalf("Character(0): %v", err)
	}
	if root.FramesCount(false) != 2 {
		t.Errorf("root character has %d frames", root.FramesCount(false))
	}
}

func TestBrokenBitmapFillFails(t *testing.T) {
	doc := &tag.Document{Tags: tag.Stream{
		tag.DefineShape{ID: 1, Styles: tag.Styles{Fills: []tag.FillStyle{
			{Kind: tag.FillRepeatingBitmap, BitmapID: 50, Matrix: geom.Identity()},
		}}},
	}}
	_, err := New(doc).Character(1)
	if !errors.Is(err, tag.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestStats(t *testing.T) {
	c := load(t)
	if _, err := c.Shapes(); err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	st := c.Stats()
	if st.Shapes != 1 || st.Images != 2 || st.Sprites != 1 || st.Morphs != 1 || st.Exports != 2 {
		t.Errorf("Stats() = %+v", st)
	}
	// Solid fills never touch the image table.
	if len(st.Loaded) != 1 || st.Loaded[0] != "shapes" {
		t.Errorf("loaded = %v, want [shapes]", st.Loaded)
	}
}

func TestKind(t *testing.T) {
	c := load(t)
	want := map[uint16]string{1: "shape", 2: "image", 3: "sprite", 4: "morph", 99: "missing"}
	for id, kind := range want {
		ch, err := c.Character(id)
		if err != nil {
			t.Fatalf("Character(%d): %v", id, err)
		}
		if got := Kind(ch); got != kind {
			t.Errorf("Kind(%d) = %q, want %q", id, got, kind)
		}
	}
}
