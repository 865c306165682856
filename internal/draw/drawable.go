// Package draw defines the capability set every character implements and the
// sink interface renderers consume.
package draw

import (
	"fmt"
	"image"

	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/tag"
)

// Drawable is anything that can be painted onto a Sink.
type Drawable interface {
	// Bounds is the drawable's own bounding box, in twips.
	Bounds() geom.Rectangle
	// FramesCount is the number of frames. With recursive set, nested
	// sprites count too and the longest one wins.
	FramesCount(recursive bool) int
	// Draw emits the given frame onto sink and returns it.
	Draw(sink Sink, frame int) Sink
	// TransformColors returns a new drawable with ct applied.
	TransformColors(ct geom.ColorTransform) Drawable
	// Modify returns a new drawable rewritten by v, descending at most maxDepth
	// levels into nested drawables.
	Modify(v Visitor, maxDepth int) Drawable
}

// Character is a drawable addressable by id.
type Character interface {
	Drawable
	ID() uint16
}

// Raster is a character backed by pixels.
type Raster interface {
	Character
	Image() (image.Image, error)
}

// Resolver looks up characters by id. Unknown ids resolve to Missing.
type Resolver interface {
	Character(id uint16) (Character, error)
}

// Placement carries the attributes of a nested drawable.
type Placement struct {
	Matrix    geom.Matrix
	Filters   []tag.Filter
	BlendMode tag.BlendMode
	Name      string
}

// Sink receives the drawing operations of a drawable, in painter's order.
type Sink interface {
	// Area declares the rectangle the following operations paint into.
	Area(bounds geom.Rectangle)
	Path(p path.Path)
	Image(r Raster)
	// Include paints a nested drawable at the given frame.
	Include(d Drawable, frame int, p Placement)
	// StartClip masks every operation until EndClip with the shape of d.
	StartClip(d Drawable, frame int, m geom.Matrix)
	EndClip()
}

// Visitor rewrites drawables during Modify.
type Visitor interface {
	Visit(d Drawable) Drawable
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(d Drawable) Drawable

func (f VisitorFunc) Visit(d Drawable) Drawable { return f(d) }

// Missing stands in for an id that resolves to nothing. It has no size, one
// frame, and draws nothing.
type Missing struct {
	CharacterID uint16
}

func (m Missing) ID() uint16                                   { return m.CharacterID }
func (Missing) Bounds() geom.Rectangle                         { return geom.Rectangle{} }
func (Missing) FramesCount(bool) int                           { return 1 }
func (Missing) Draw(sink Sink, _ int) Sink                     { return sink }
func (m Missing) TransformColors(geom.ColorTransform) Drawable { return m }
func (m Missing) Modify(Visitor, int) Drawable                 { return m }

func (m Missing) String() string {
	return fmt.Sprintf("missing(%d)", m.CharacterID)
}

// IsMissing reports whether d is a Missing placeholder.
func IsMissing(d Drawable) bool {
	_, ok := d.(Missing)
	return ok
}
