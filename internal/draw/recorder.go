package draw

import (
	"encoding/json"

	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/tag"
)

// DefaultMaxDepth bounds how deeply a Recorder follows nested drawables.
const DefaultMaxDepth = 16

// Command is a single drawing operation for a frontend to execute.
// Coordinates are in pixels.
type Command struct {
	Op              string                `json:"op"` // "area", "path", "image", "save", "clip", "restore"
	Transform       []float64             `json:"transform,omitempty"`
	Area            *Rect                 `json:"area,omitempty"`
	Path            []PathCommand         `json:"path,omitempty"`
	Fill            string                `json:"fill,omitempty"`
	Gradient        *Gradient             `json:"gradient,omitempty"`
	Bitmap          *Bitmap               `json:"bitmap,omitempty"`
	Stroke          string                `json:"stroke,omitempty"`
	StrokeWidth     float64               `json:"strokeWidth,omitempty"`
	Opacity         float64               `json:"opacity,omitempty"`
	ImageID         uint16                `json:"imageId,omitempty"`
	ImageWidth      float64               `json:"imageWidth,omitempty"`
	ImageHeight     float64               `json:"imageHeight,omitempty"`
	ColorTransforms []geom.ColorTransform `json:"colorTransforms,omitempty"`
	BlendMode       string                `json:"blendMode,omitempty"`
	Filters         []tag.Filter          `json:"filters,omitempty"`
	Name            string                `json:"name,omitempty"`
}

// PathCommand is one path segment in Canvas2D form:
// ["M", x, y], ["L", x, y], ["Q", cx, cy, x, y].
type PathCommand []interface{}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type GradientStop struct {
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Gradient struct {
	Kind       string         `json:"kind"`
	Transform  []float64      `json:"transform"`
	Stops      []GradientStop `json:"stops"`
	FocalPoint float64        `json:"focalPoint,omitempty"`
}

type Bitmap struct {
	ImageID         uint16                `json:"imageId"`
	Transform       []float64             `json:"transform"`
	Repeat          bool                  `json:"repeat"`
	Smooth          bool                  `json:"smooth"`
	ColorTransforms []geom.ColorTransform `json:"colorTransforms,omitempty"`
}

// Recorder is a Sink that flattens a drawable into painter-ordered commands,
// composing the matrices and color transforms of nested drawables.
type Recorder struct {
	commands *[]Command
	matrix   geom.Matrix
	depth    int
	maxDepth int
	clip     bool
}

// NewRecorder returns a recorder following at most maxDepth nested levels.
// A maxDepth of 0 uses DefaultMaxDepth.
func NewRecorder(maxDepth int) *Recorder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Recorder{
		commands: new([]Command),
		matrix:   geom.Identity(),
		maxDepth: maxDepth,
	}
}

// Record draws one frame of d and returns its commands.
func Record(d Drawable, frame int) []Command {
	rec := NewRecorder(0)
	d.Draw(rec, frame)
	return rec.Commands()
}

// Commands returns everything recorded so far.
func (r *Recorder) Commands() []Command {
	return *r.commands
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() ([]byte, error) {
	if len(*r.commands) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(*r.commands)
}

func (r *Recorder) emit(cmd Command) {
	*r.commands = append(*r.commands, cmd)
}

func (r *Recorder) nested(m geom.Matrix, clip bool) *Recorder {
	return &Recorder{
		commands: r.commands,
		matrix:   r.matrix.Multiply(m),
		depth:    r.depth + 1,
		maxDepth: r.maxDepth,
		clip:     r.clip || clip,
	}
}

func (r *Recorder) Area(bounds geom.Rectangle) {
	if r.clip {
		return
	}
	r.emit(Command{
		Op:        "area",
		Transform: r.matrix.ToSlice(),
		Area:      pixelRect(bounds),
	})
}

func (r *Recorder) Path(p path.Path) {
	cmd := Command{
		Op:        "path",
		Transform: r.matrix.ToSlice(),
		Path:      pathCommands(p.Edges),
	}
	if r.clip {
		cmd.Op = "clip"
		r.emit(cmd)
		return
	}

	cmd.Opacity = 1
	if p.Style.Fill != nil {
		paint(&cmd, p.Style.Fill)
	}
	if line := p.Style.Line; line != nil {
		cmd.StrokeWidth = float64(line.Width) / geom.TwipsPerPixel
		if line.Fill != nil {
			paint(&cmd, line.Fill)
		} else {
			cmd.Stroke = line.Color.Hex()
			cmd.Opacity = line.Color.Opacity()
		}
	}
	r.emit(cmd)
}

func (r *Recorder) Image(img Raster) {
	if r.clip {
		return
	}
	b := img.Bounds()
	r.emit(Command{
		Op:          "image",
		Transform:   r.matrix.ToSlice(),
		Opacity:     1,
		ImageID:     img.ID(),
		ImageWidth:  float64(b.Width()) / geom.TwipsPerPixel,
		ImageHeight: float64(b.Height()) / geom.TwipsPerPixel,
	})
}

func (r *Recorder) Include(d Drawable, frame int, p Placement) {
	if r.depth >= r.maxDepth {
		return
	}
	child := r.nested(p.Matrix, false)
	if r.clip || (p.BlendMode <= tag.BlendNormal && len(p.Filters) == 0 && p.Name == "") {
		d.Draw(child, frame)
		return
	}

	r.emit(Command{
		Op:        "save",
		BlendMode: p.BlendMode.String(),
		Filters:   p.Filters,
		Name:      p.Name,
	})
	d.Draw(child, frame)
	r.emit(Command{Op: "restore"})
}

func (r *Recorder) StartClip(d Drawable, frame int, m geom.Matrix) {
	r.emit(Command{Op: "save"})
	if r.depth < r.maxDepth {
		d.Draw(r.nested(m, true), frame)
	}
}

func (r *Recorder) EndClip() {
	r.emit(Command{Op: "restore"})
}

func paint(cmd *Command, fill path.Fill) {
	switch f := fill.(type) {
	case path.SolidFill:
		cmd.Fill = f.Color.Hex()
		cmd.Opacity = f.Color.Opacity()
	case path.GradientFill:
		g := &Gradient{
			Kind:       f.Kind.String(),
			Transform:  f.Matrix.ToSlice(),
			FocalPoint: f.Gradient.FocalPoint,
			Stops:      make([]GradientStop, len(f.Gradient.Records)),
		}
		for i, rec := range f.Gradient.Records {
			g.Stops[i] = GradientStop{
				Offset:  float64(rec.Ratio) / 255,
				Color:   rec.Color.Hex(),
				Opacity: rec.Color.Opacity(),
			}
		}
		cmd.Gradient = g
	case path.BitmapFill:
		cmd.Bitmap = &Bitmap{
			ImageID:         f.CharacterID,
			Transform:       f.Matrix.ToSlice(),
			Repeat:          f.Repeat,
			Smooth:          f.Smooth,
			ColorTransforms: f.Colors,
		}
	}
}

func pathCommands(edges []path.Edge) []PathCommand {
	out := make([]PathCommand, 0, len(edges)+1)
	var pen path.Point
	for i, e := range edges {
		if start := e.Start(); i == 0 || start != pen {
			out = append(out, PathCommand{"M", px(start.X), px(start.Y)})
		}
		switch e := e.(type) {
		case path.Straight:
			out = append(out, PathCommand{"L", px(e.To.X), px(e.To.Y)})
		case path.Curved:
			out = append(out, PathCommand{"Q", px(e.Control.X), px(e.Control.Y), px(e.To.X), px(e.To.Y)})
		}
		pen = e.End()
	}
	return out
}

func px(twips int) float64 {
	return float64(twips) / geom.TwipsPerPixel
}

func pixelRect(r geom.Rectangle) *Rect {
	return &Rect{X: px(r.XMin), Y: px(r.YMin), Width: px(r.Width()), Height: px(r.Height())}
}
