package timeline

import (
	"fmt"
	"maps"
	"slices"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/morph"
	"github.com/inamate/swfscene/internal/tag"
)

// Builder replays display tags into timelines, resolving placed characters
// through a Resolver.
type Builder struct {
	resolver        draw.Resolver
	maxObjectExtent int
}

type Option func(*Builder)

// WithMaxObjectExtent leaves objects wider or taller than extent twips out of
// the timeline bounds. 0 disables the guard.
func WithMaxObjectExtent(extent int) Option {
	return func(b *Builder) { b.maxObjectExtent = extent }
}

func NewBuilder(resolver draw.Resolver, opts ...Option) *Builder {
	b := &Builder{resolver: resolver}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build replays tags and returns the timeline. Replay stops at the first End tag.
func (b *Builder) Build(tags tag.Stream) (*Timeline, error) {
	st := newState()
	for pos, rec := range tags.Scan(tag.DisplayCodes...) {
		if _, ok := rec.(tag.End); ok {
			break
		}
		if err := st.apply(b, rec); err != nil {
			return nil, fmt.Errorf("tag %d (%s): %w", pos.Index, pos.Code, err)
		}
	}
	return st.finish(), nil
}

// state is the replay accumulator. The depth table persists across frames;
// actions and label are reset after each frame.
type state struct {
	depths  map[uint16]FrameObject
	actions []tag.DoAction
	label   string
	frames  []*Frame

	bounds geom.Rectangle
	placed bool
}

func newState() *state {
	return &state{depths: make(map[uint16]FrameObject)}
}

func (st *state) apply(b *Builder, rec tag.Record) error {
	switch rec := rec.(type) {
	case tag.ShowFrame:
		st.showFrame()
	case tag.DoAction:
		st.actions = append(st.actions, rec)
	case tag.FrameLabel:
		st.label = rec.Name
	case tag.RemoveObject:
		delete(st.depths, rec.Depth)
	case tag.PlaceObject:
		if rec.CharacterID != nil {
			return st.place(b, rec)
		}
		return st.modify(b, rec)
	}
	return nil
}

func (st *state) showFrame() {
	frame := &Frame{
		Bounds:  st.bounds,
		Actions: st.actions,
		Label:   st.label,
	}
	for _, depth := range slices.Sorted(maps.Keys(st.depths)) {
		frame.Objects = append(frame.Objects, st.depths[depth])
	}
	st.frames = append(st.frames, frame)
	st.actions = nil
	st.label = ""
}

func (st *state) place(b *Builder, rec tag.PlaceObject) error {
	id := *rec.CharacterID
	source, err := b.resolver.Character(id)
	if err != nil {
		return fmt.Errorf("place character %d at depth %d: %w", id, rec.Depth, err)
	}

	obj := FrameObject{
		CharacterID: id,
		Depth:       rec.Depth,
		source:      source,
		placement:   geom.Identity(),
		Ratio:       rec.Ratio,
	}

	// Replacing the character at a depth keeps the placement attributes
	// the tag does not override.
	if prev, ok := st.depths[rec.Depth]; ok && rec.Move {
		obj.placement = prev.placement
		obj.Colors = prev.Colors
		obj.Filters = prev.Filters
		obj.BlendMode = prev.BlendMode
		obj.Name = prev.Name
		obj.ClipDepth = prev.ClipDepth
	}

	if rec.Matrix != nil {
		obj.placement = *rec.Matrix
	}
	if rec.ColorTransform != nil {
		obj.Colors = geom.TransformChain{*rec.ColorTransform}
	}
	st.attributes(&obj, rec)

	st.layout(b, &obj)
	obj.Object = obj.TransformedObject()
	st.depths[rec.Depth] = obj
	return nil
}

func (st *state) modify(b *Builder, rec tag.PlaceObject) error {
	obj, ok := st.depths[rec.Depth]
	if !ok {
		return nil
	}

	relayout := false
	if rec.Matrix != nil {
		obj.placement = *rec.Matrix
		relayout = true
	}
	if rec.Ratio != nil {
		obj.Ratio = rec.Ratio
		relayout = true
	}
	st.attributes(&obj, rec)

	if rec.ColorTransform != nil {
		source, err := b.resolver.Character(obj.CharacterID)
		if err != nil {
			return fmt.Errorf("modify character %d at depth %d: %w", obj.CharacterID, rec.Depth, err)
		}
		obj.source = source
		obj.Colors = geom.TransformChain{*rec.ColorTransform}
		relayout = true
	}

	if relayout {
		st.layout(b, &obj)
		obj.Object = obj.TransformedObject()
	}
	st.depths[rec.Depth] = obj
	return nil
}

func (st *state) attributes(obj *FrameObject, rec tag.PlaceObject) {
	if rec.Filters != nil {
		obj.Filters = rec.Filters
	}
	if rec.BlendMode != nil {
		obj.BlendMode = *rec.BlendMode
	}
	if rec.Name != nil {
		obj.Name = *rec.Name
	}
	if rec.ClipDepth != nil {
		obj.ClipDepth = *rec.ClipDepth
	}
}

// layout computes the object's bounds and matrix from its source character,
// never from previously placed bounds, and grows the timeline bounds.
func (st *state) layout(b *Builder, obj *FrameObject) {
	own := obj.base().Bounds()
	obj.Bounds = obj.placement.TransformRect(own)
	obj.Matrix = obj.placement.Translate(own.XMin, own.YMin)

	if b.maxObjectExtent > 0 && (obj.Bounds.Width() > b.maxObjectExtent || obj.Bounds.Height() > b.maxObjectExtent) {
		return
	}
	if !st.placed {
		st.bounds = obj.Bounds
		st.placed = true
		return
	}
	st.bounds = st.bounds.Union(obj.Bounds)
}

// base is the source character at the object's ratio, before color transforms.
func (o FrameObject) base() draw.Drawable {
	if m, ok := o.source.(*morph.Shape); ok && o.Ratio != nil {
		return m.Interpolate(*o.Ratio)
	}
	return o.source
}

func (st *state) finish() *Timeline {
	frames := st.frames
	if len(frames) == 0 && len(st.depths) > 0 {
		st.showFrame()
		frames = st.frames
	}
	if !st.placed {
		return New(geom.Rectangle{}, frames)
	}
	return New(st.bounds, frames)
}
