// Package raster decodes the bitmap characters of a container: lossless
// bitmaps and the JPEG family with its shared tables and alpha planes.
package raster

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"

	drawable "github.com/inamate/swfscene/internal/draw"
)

// Image is a raster character. Pixels are decoded on first use and kept.
type Image struct {
	id     uint16
	width  int
	height int
	pixels func() (*image.NRGBA, error)
	colors geom.TransformChain
}

func newImage(id uint16, width, height int, decode func() (*image.NRGBA, error)) *Image {
	return &Image{id: id, width: width, height: height, pixels: sync.OnceValues(decode)}
}

func (i *Image) ID() uint16 { return i.id }

// Bounds is the image size in twips, anchored at the origin.
func (i *Image) Bounds() geom.Rectangle {
	return geom.Rectangle{XMax: i.width * geom.TwipsPerPixel, YMax: i.height * geom.TwipsPerPixel}
}

// Size is the image size in pixels.
func (i *Image) Size() (width, height int) {
	return i.width, i.height
}

func (i *Image) FramesCount(bool) int { return 1 }

// Image returns the decoded pixels with any color transforms applied.
func (i *Image) Image() (image.Image, error) {
	img, err := i.pixels()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Interpolator returns the resampling kernel for a smoothed or
// non-smoothed bitmap.
func Interpolator(smooth bool) draw.Interpolator {
	if smooth {
		return draw.ApproxBiLinear
	}
	return draw.NearestNeighbor
}

// Scaled returns the pixels resampled to width by height pixels.
func (i *Image) Scaled(width, height int, smooth bool) (image.Image, error) {
	src, err := i.pixels()
	if err != nil {
		return nil, err
	}
	if width == src.Rect.Dx() && height == src.Rect.Dy() {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	Interpolator(smooth).Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst, nil
}

func (i *Image) Draw(sink drawable.Sink, _ int) drawable.Sink {
	sink.Area(i.Bounds())
	sink.Image(i)
	return sink
}

// TransformColors returns an image whose pixels are passed through ct after
// the transforms already applied to i.
func (i *Image) TransformColors(ct geom.ColorTransform) drawable.Drawable {
	chain := i.colors.Append(ct)
	base := i.pixels
	return &Image{
		id:     i.id,
		width:  i.width,
		height: i.height,
		colors: chain,
		pixels: sync.OnceValues(func() (*image.NRGBA, error) {
			src, err := base()
			if err != nil {
				return nil, err
			}
			return transformPixels(src, ct), nil
		}),
	}
}

func (i *Image) Modify(v drawable.Visitor, _ int) drawable.Drawable {
	return v.Visit(i)
}

// ColorTransforms returns the transforms applied to the pixels, in order.
func (i *Image) ColorTransforms() geom.TransformChain {
	return i.colors
}

func transformPixels(src *image.NRGBA, ct geom.ColorTransform) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for o := 0; o+3 < len(src.Pix); o += 4 {
		c := ct.Transform(geom.Color{Red: src.Pix[o], Green: src.Pix[o+1], Blue: src.Pix[o+2], Alpha: src.Pix[o+3]})
		dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = c.Red, c.Green, c.Blue, c.Alpha
	}
	return dst
}

// toNRGBA converts any decoded image to straight-alpha RGBA.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// unpremultiply converts a premultiplied channel value.
func unpremultiply(v, alpha uint8) uint8 {
	if alpha == 0 {
		return 0
	}
	return uint8(min(255, int(v)*255/int(alpha)))
}

func nrgba(r, g, b, a uint8, premultiplied bool) color.NRGBA {
	if premultiplied && a != 0xff {
		r, g, b = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

var _ drawable.Raster = (*Image)(nil)

// Decode builds the raster character of an image definition. tables is the
// shared JPEGTables payload, used by version 1 JPEGs only.
func Decode(def tag.Definition, tables []byte) (*Image, error) {
	switch def := def.(type) {
	case tag.DefineBitsLossless:
		return NewLossless(def), nil
	case tag.DefineBitsJPEG:
		return NewJPEG(def, tables), nil
	}
	return nil, errUnsupported(def)
}
