package timeline

import (
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

type spriteState int

const (
	unbuilt spriteState = iota
	building
	built
)

// Sprite is a character holding its own timeline. The timeline is built by
// Resolve; until then, and while it is being built, the sprite draws nothing.
type Sprite struct {
	id       uint16
	def      tag.DefineSprite
	state    spriteState
	timeline *Timeline
	err      error

	// transforming is set while TransformColors walks the timeline, so a
	// sprite nested in itself is left as is.
	transforming bool
}

// NewSprite returns an unbuilt sprite for def.
func NewSprite(def tag.DefineSprite) *Sprite {
	return &Sprite{id: def.ID, def: def}
}

// Wrap returns a built sprite showing t under id.
func Wrap(id uint16, t *Timeline) *Sprite {
	return &Sprite{id: id, state: built, timeline: t}
}

// Resolve builds the sprite's timeline with b on first call. A sprite that
// is placed inside its own timeline sees itself unbuilt.
func (s *Sprite) Resolve(b *Builder) error {
	switch s.state {
	case built:
		return s.err
	case building:
		return nil
	}

	s.state = building
	s.timeline, s.err = b.Build(s.def.Tags)
	s.state = built
	return s.err
}

func (s *Sprite) ID() uint16 { return s.id }

// Timeline returns the built timeline, or nil before Resolve.
func (s *Sprite) Timeline() *Timeline {
	return s.timeline
}

// DeclaredFrames is the frame count the definition announces.
func (s *Sprite) DeclaredFrames() int {
	return s.def.FrameCount
}

func (s *Sprite) Bounds() geom.Rectangle {
	if s.timeline == nil {
		return geom.Rectangle{}
	}
	return s.timeline.Bounds()
}

func (s *Sprite) FramesCount(recursive bool) int {
	if s.timeline == nil {
		return 1
	}
	return s.timeline.FramesCount(recursive)
}

func (s *Sprite) Draw(sink draw.Sink, frame int) draw.Sink {
	if s.timeline == nil {
		return sink
	}
	return s.timeline.Draw(sink, frame)
}

func (s *Sprite) TransformColors(ct geom.ColorTransform) draw.Drawable {
	if s.timeline == nil || s.transforming {
		return s
	}
	s.transforming = true
	defer func() { s.transforming = false }()
	return s.derive(s.timeline.transformColors(ct))
}

func (s *Sprite) Modify(v draw.Visitor, maxDepth int) draw.Drawable {
	if s.timeline == nil {
		return v.Visit(s)
	}
	return v.Visit(s.derive(s.timeline.modify(v, maxDepth)))
}

func (s *Sprite) derive(t *Timeline) *Sprite {
	return &Sprite{id: s.id, def: s.def, state: built, timeline: t}
}

var _ draw.Character = (*Sprite)(nil)
