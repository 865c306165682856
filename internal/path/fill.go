package path

import (
	"errors"
	"fmt"
	"image"

	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

// ErrUnsupportedFill is returned for a fill kind no Fill variant covers.
var ErrUnsupportedFill = errors.New("unsupported fill kind")

// Raster is an image character a bitmap fill can paint with.
type Raster interface {
	Bounds() geom.Rectangle
	Image() (image.Image, error)
}

// ImageResolver looks up raster characters by id. ok is false when id is
// not an image; err reports an image table that could not be built.
type ImageResolver interface {
	Raster(id uint16) (r Raster, ok bool, err error)
}

// Fill paints the inside of a path: SolidFill, GradientFill or BitmapFill.
type Fill interface {
	// TransformColors returns the fill with ct applied to its colors.
	TransformColors(ct geom.ColorTransform) Fill
	isFill()
}

type SolidFill struct {
	Color geom.Color
}

// GradientFill is a linear, radial or focal gradient. Matrix maps the
// gradient square (-16384..16384 twips) into shape space.
type GradientFill struct {
	Kind     tag.FillKind
	Matrix   geom.Matrix
	Gradient tag.Gradient
}

// BitmapFill paints with an image character. The image is looked up through
// the resolver when drawn, so the fill holds no image data itself.
type BitmapFill struct {
	CharacterID uint16
	Matrix      geom.Matrix
	Repeat      bool
	Smooth      bool
	Colors      geom.TransformChain

	images ImageResolver
}

func (SolidFill) isFill()    {}
func (GradientFill) isFill() {}
func (BitmapFill) isFill()   {}

func (f SolidFill) TransformColors(ct geom.ColorTransform) Fill {
	return SolidFill{Color: ct.Transform(f.Color)}
}

func (f GradientFill) TransformColors(ct geom.ColorTransform) Fill {
	records := make([]tag.GradientRecord, len(f.Gradient.Records))
	for i, r := range f.Gradient.Records {
		records[i] = tag.GradientRecord{Ratio: r.Ratio, Color: ct.Transform(r.Color)}
	}
	f.Gradient.Records = records
	return f
}

func (f BitmapFill) TransformColors(ct geom.ColorTransform) Fill {
	f.Colors = f.Colors.Append(ct)
	return f
}

// Raster resolves the image the fill paints with.
func (f BitmapFill) Raster() (Raster, bool, error) {
	if f.images == nil {
		return nil, false, nil
	}
	return f.images.Raster(f.CharacterID)
}

// NewFill converts a fill style record. Bitmap fills must reference a raster
// character known to images.
func NewFill(style tag.FillStyle, images ImageResolver) (Fill, error) {
	switch {
	case style.Kind == tag.FillSolid:
		return SolidFill{Color: style.Color}, nil

	case style.Kind.IsGradient():
		if style.Gradient == nil {
			return nil, fmt.Errorf("%s fill without gradient: %w", style.Kind, tag.ErrInvalidData)
		}
		return GradientFill{Kind: style.Kind, Matrix: style.Matrix, Gradient: *style.Gradient}, nil

	case style.Kind.IsBitmap():
		if images == nil {
			return nil, fmt.Errorf("bitmap fill %d: no image source: %w", style.BitmapID, tag.ErrInvalidData)
		}
		_, ok, err := images.Raster(style.BitmapID)
		if err != nil {
			return nil, fmt.Errorf("bitmap fill %d: %w", style.BitmapID, err)
		}
		if !ok {
			return nil, fmt.Errorf("bitmap fill references %d, which is not an image: %w", style.BitmapID, tag.ErrInvalidData)
		}
		return BitmapFill{
			CharacterID: style.BitmapID,
			Matrix:      style.Matrix,
			Repeat:      style.Kind == tag.FillRepeatingBitmap || style.Kind == tag.FillNonSmoothedRepeatingBitmap,
			Smooth:      style.Kind == tag.FillRepeatingBitmap || style.Kind == tag.FillClippedBitmap,
			images:      images,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFill, style.Kind)
}

// InterpolateFill blends two fills of the same variant. Solid colors and
// gradient stops are blended; anything else keeps the start fill.
func InterpolateFill(start, end Fill, ratio uint16) Fill {
	switch s := start.(type) {
	case SolidFill:
		if e, ok := end.(SolidFill); ok {
			return SolidFill{Color: s.Color.Interpolate(e.Color, ratio)}
		}
	case GradientFill:
		e, ok := end.(GradientFill)
		if !ok || len(e.Gradient.Records) != len(s.Gradient.Records) {
			break
		}
		out := s
		out.Matrix = s.Matrix.Interpolate(e.Matrix, ratio)
		out.Gradient.Records = make([]tag.GradientRecord, len(s.Gradient.Records))
		for i, r := range s.Gradient.Records {
			out.Gradient.Records[i] = tag.GradientRecord{
				Ratio: uint8(geom.Lerp(int(r.Ratio), int(e.Gradient.Records[i].Ratio), ratio)),
				Color: r.Color.Interpolate(e.Gradient.Records[i].Color, ratio),
			}
		}
		return out
	case BitmapFill:
		if e, ok := end.(BitmapFill); ok {
			s.Matrix = s.Matrix.Interpolate(e.Matrix, ratio)
			return s
		}
	}
	return start
}
