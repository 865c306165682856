package path

import (
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

// LineStyle strokes a path. Width is in twips. Fill is set for line styles
// that paint with a fill instead of a flat color.
type LineStyle struct {
	Width      int
	Color      geom.Color
	Fill       Fill
	StartCap   uint8
	EndCap     uint8
	Join       uint8
	MiterLimit float64
	NoClose    bool
}

// NewLineStyle converts a line style record.
func NewLineStyle(style tag.LineStyle, images ImageResolver) (LineStyle, error) {
	out := LineStyle{
		Width:      style.Width,
		Color:      style.Color,
		StartCap:   style.StartCap,
		EndCap:     style.EndCap,
		Join:       style.Join,
		MiterLimit: style.MiterLimit,
		NoClose:    style.NoClose,
	}
	if style.Fill != nil {
		fill, err := NewFill(*style.Fill, images)
		if err != nil {
			return LineStyle{}, err
		}
		out.Fill = fill
	}
	return out, nil
}

// Style describes how a path is painted: a fill, a stroke, or both.
type Style struct {
	Fill Fill
	Line *LineStyle
}

// IsStroke reports whether the path is an outline.
func (s Style) IsStroke() bool {
	return s.Line != nil
}

// Width is the stroke width in twips, 0 for fills.
func (s Style) Width() int {
	if s.Line == nil {
		return 0
	}
	return s.Line.Width
}

// TransformColors returns the style with ct applied to its fill and stroke colors.
func (s Style) TransformColors(ct geom.ColorTransform) Style {
	if s.Fill != nil {
		s.Fill = s.Fill.TransformColors(ct)
	}
	if s.Line != nil {
		line := *s.Line
		line.Color = ct.Transform(line.Color)
		if line.Fill != nil {
			line.Fill = line.Fill.TransformColors(ct)
		}
		s.Line = &line
	}
	return s
}

// Interpolate blends s towards end.
func (s Style) Interpolate(end Style, ratio uint16) Style {
	if s.Fill != nil && end.Fill != nil {
		s.Fill = InterpolateFill(s.Fill, end.Fill, ratio)
	}
	if s.Line != nil && end.Line != nil {
		line := *s.Line
		line.Width = geom.Lerp(s.Line.Width, end.Line.Width, ratio)
		line.Color = s.Line.Color.Interpolate(end.Line.Color, ratio)
		if line.Fill != nil && end.Line.Fill != nil {
			line.Fill = InterpolateFill(line.Fill, end.Line.Fill, ratio)
		}
		s.Line = &line
	}
	return s
}
