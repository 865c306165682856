package timeline

import (
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
)

// Timeline is a non-empty list of frames sharing one bounding box. It is
// immutable: the With and Trim methods return new timelines.
type Timeline struct {
	bounds geom.Rectangle
	frames []*Frame
}

// New returns a timeline of frames, all rewritten to carry bounds. An empty
// frame list yields a single empty frame.
func New(bounds geom.Rectangle, frames []*Frame) *Timeline {
	if len(frames) == 0 {
		frames = []*Frame{{}}
	}
	out := make([]*Frame, len(frames))
	for i, f := range frames {
		out[i] = f.clone()
		out[i].Bounds = bounds
	}
	return &Timeline{bounds: bounds, frames: out}
}

func (t *Timeline) Bounds() geom.Rectangle { return t.bounds }

// Frames returns the frames. The slice must not be modified.
func (t *Timeline) Frames() []*Frame { return t.frames }

// Len is the number of frames.
func (t *Timeline) Len() int { return len(t.frames) }

// Frame returns frame i, wrapping around past the last frame.
func (t *Timeline) Frame(i int) *Frame {
	if i < 0 {
		i = 0
	}
	return t.frames[i%len(t.frames)]
}

// FrameByLabel returns the index of the first frame labelled name.
func (t *Timeline) FrameByLabel(name string) (int, bool) {
	for i, f := range t.frames {
		if f.Label == name {
			return i, true
		}
	}
	return 0, false
}

// FramesCount returns the number of frames. With recursive set, a longer
// nested timeline wins.
func (t *Timeline) FramesCount(recursive bool) int {
	if !recursive {
		return len(t.frames)
	}
	return t.framesCount(0)
}

// framesCount follows nested timelines at most draw.DefaultMaxDepth levels,
// so sprites that contain themselves terminate.
func (t *Timeline) framesCount(depth int) int {
	n := len(t.frames)
	if depth >= draw.DefaultMaxDepth {
		return n
	}
	for _, f := range t.frames {
		for _, obj := range f.Objects {
			switch o := obj.Object.(type) {
			case *Sprite:
				if o.timeline != nil {
					n = max(n, o.timeline.framesCount(depth+1))
				}
			case *Timeline:
				n = max(n, o.framesCount(depth+1))
			default:
				n = max(n, o.FramesCount(true))
			}
		}
	}
	return n
}

func (t *Timeline) Draw(sink draw.Sink, frame int) draw.Sink {
	return t.Frame(frame).Draw(sink, frame)
}

// WithBounds returns a copy of t using bounds for every frame.
func (t *Timeline) WithBounds(bounds geom.Rectangle) *Timeline {
	return New(bounds, t.frames)
}

// WithAttachment returns a copy of t with d drawn above every other object of
// every frame, at the origin of the timeline's coordinate space.
func (t *Timeline) WithAttachment(d draw.Drawable) *Timeline {
	frames := make([]*Frame, len(t.frames))
	for i, f := range t.frames {
		var depth uint16
		if n := len(f.Objects); n > 0 {
			depth = f.Objects[n-1].Depth + 1
		}
		b := d.Bounds()
		frames[i] = f.clone()
		frames[i].Objects = append(frames[i].Objects, FrameObject{
			Depth:     depth,
			Object:    d,
			Bounds:    b,
			Matrix:    geom.Identity().Translate(b.XMin, b.YMin),
			source:    d,
			placement: geom.Identity(),
		})
	}
	return &Timeline{bounds: t.bounds, frames: frames}
}

// Trim returns a single-frame timeline holding frame i.
func (t *Timeline) Trim(i int) *Timeline {
	return &Timeline{bounds: t.bounds, frames: []*Frame{t.Frame(i).clone()}}
}

// TransformColors returns a copy of t with ct appended to every object's chain.
func (t *Timeline) TransformColors(ct geom.ColorTransform) draw.Drawable {
	return t.transformColors(ct)
}

func (t *Timeline) transformColors(ct geom.ColorTransform) *Timeline {
	return t.mapObjects(func(obj FrameObject) FrameObject {
		obj.Colors = obj.Colors.Append(ct)
		obj.Object = obj.Object.TransformColors(ct)
		return obj
	})
}

// Modify rewrites every object with v, descending maxDepth levels, then
// visits the result.
func (t *Timeline) Modify(v draw.Visitor, maxDepth int) draw.Drawable {
	return v.Visit(t.modify(v, maxDepth))
}

func (t *Timeline) modify(v draw.Visitor, maxDepth int) *Timeline {
	if maxDepth <= 0 {
		return t
	}
	return t.mapObjects(func(obj FrameObject) FrameObject {
		obj.Object = obj.Object.Modify(v, maxDepth-1)
		return obj
	})
}

func (t *Timeline) mapObjects(fn func(FrameObject) FrameObject) *Timeline {
	frames := make([]*Frame, len(t.frames))
	for i, f := range t.frames {
		frames[i] = f.clone()
		for j, obj := range frames[i].Objects {
			frames[i].Objects[j] = fn(obj)
		}
	}
	return &Timeline{bounds: t.bounds, frames: frames}
}

var _ draw.Drawable = (*Timeline)(nil)
