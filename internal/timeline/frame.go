package timeline

import (
	"slices"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

// FrameObject is an object on stage at a given depth.
type FrameObject struct {
	CharacterID uint16
	Depth       uint16
	// Object is the drawable to paint, with Colors already applied.
	Object draw.Drawable
	// Bounds is the object's bounding box after Matrix, in the parent's space.
	Bounds geom.Rectangle
	// Matrix maps the top-left corner of the object's bounds into the parent.
	Matrix    geom.Matrix
	Colors    geom.TransformChain
	Filters   []tag.Filter
	BlendMode tag.BlendMode
	Name      string
	// ClipDepth, when set, makes the object a mask for the depths above it
	// up to ClipDepth.
	ClipDepth uint16
	Ratio     *uint16

	source    draw.Drawable
	placement geom.Matrix
}

// Source returns the character as placed, before color transforms.
func (o FrameObject) Source() draw.Drawable {
	return o.source
}

// TransformedObject applies the color transform chain, in order, to the
// source at the object's morph ratio.
func (o FrameObject) TransformedObject() draw.Drawable {
	return applyChain(o.base(), o.Colors)
}

func applyChain(d draw.Drawable, chain geom.TransformChain) draw.Drawable {
	for _, ct := range chain {
		d = d.TransformColors(ct)
	}
	return d
}

// Frame is a snapshot of the display list.
type Frame struct {
	Bounds geom.Rectangle
	// Objects are sorted by ascending depth.
	Objects []FrameObject
	Actions []tag.DoAction
	Label   string
}

// NewFrame returns a frame holding objects in depth order.
func NewFrame(bounds geom.Rectangle, objects []FrameObject) *Frame {
	sorted := slices.Clone(objects)
	slices.SortFunc(sorted, func(a, b FrameObject) int {
		return int(a.Depth) - int(b.Depth)
	})
	return &Frame{Bounds: bounds, Objects: sorted}
}

// Object returns the object at depth.
func (f *Frame) Object(depth uint16) (FrameObject, bool) {
	i, ok := slices.BinarySearchFunc(f.Objects, depth, func(o FrameObject, d uint16) int {
		return int(o.Depth) - int(d)
	})
	if !ok {
		return FrameObject{}, false
	}
	return f.Objects[i], true
}

// HitTest returns the topmost object whose bounds contain the point (x, y),
// given in twips relative to the top-left corner of the frame. Clip masks
// are never hit.
func (f *Frame) HitTest(x, y int) (FrameObject, bool) {
	x, y = x+f.Bounds.XMin, y+f.Bounds.YMin
	for i := len(f.Objects) - 1; i >= 0; i-- {
		obj := f.Objects[i]
		if obj.ClipDepth > 0 || obj.Bounds.IsEmpty() {
			continue
		}
		if obj.Bounds.Contains(x, y) {
			return obj, true
		}
	}
	return FrameObject{}, false
}

// Draw paints the objects from the lowest depth up, relative to the top-left
// corner of the frame bounds. frame is passed down to nested timelines.
func (f *Frame) Draw(sink draw.Sink, frame int) draw.Sink {
	sink.Area(geom.Rectangle{XMax: f.Bounds.Width(), YMax: f.Bounds.Height()})

	origin := geom.Identity()
	origin.TranslateX, origin.TranslateY = -f.Bounds.XMin, -f.Bounds.YMin

	var clips []uint16
	for _, obj := range f.Objects {
		for len(clips) > 0 && obj.Depth > clips[len(clips)-1] {
			sink.EndClip()
			clips = clips[:len(clips)-1]
		}

		m := origin.Multiply(obj.Matrix)
		if obj.ClipDepth > 0 {
			sink.StartClip(obj.Object, frame, m)
			clips = append(clips, obj.ClipDepth)
			continue
		}
		sink.Include(obj.Object, frame, draw.Placement{
			Matrix:    m,
			Filters:   obj.Filters,
			BlendMode: obj.BlendMode,
			Name:      obj.Name,
		})
	}
	for range clips {
		sink.EndClip()
	}
	return sink
}

func (f *Frame) clone() *Frame {
	out := *f
	out.Objects = slices.Clone(f.Objects)
	return &out
}
