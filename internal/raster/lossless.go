package raster

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"io"

	"github.com/inamate/swfscene/internal/tag"
)

// NewLossless returns the character of a DefineBitsLossless or
// DefineBitsLossless2 tag. The pixel data is inflated lazily, and so is any
// error about its format or size: only Image and Scaled report it.
func NewLossless(def tag.DefineBitsLossless) *Image {
	return newImage(def.ID, max(def.Width, 0), max(def.Height, 0), func() (*image.NRGBA, error) {
		img, err := decodeLossless(def)
		if err != nil {
			return nil, fmt.Errorf("lossless bitmap %d: %w", def.ID, err)
		}
		return img, nil
	})
}

func decodeLossless(def tag.DefineBitsLossless) (*image.NRGBA, error) {
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("size %dx%d: %w", def.Width, def.Height, tag.ErrInvalidData)
	}
	switch def.Format {
	case tag.BitmapColorMapped, tag.BitmapRGB32:
	case tag.BitmapRGB15:
		return nil, fmt.Errorf("15-bit color: %w", tag.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("format %d: %w", def.Format, tag.ErrInvalidData)
	}

	data, err := inflate(def.Data)
	if err != nil {
		return nil, err
	}

	alpha := def.Version == 2
	img := image.NewNRGBA(image.Rect(0, 0, def.Width, def.Height))

	if def.Format == tag.BitmapColorMapped {
		entry := 3
		if alpha {
			entry = 4
		}
		size := (def.ColorTableSize + 1) * entry
		if len(data) < size {
			return nil, fmt.Errorf("color table of %d entries needs %d bytes, have %d: %w",
				def.ColorTableSize+1, size, len(data), tag.ErrInvalidData)
		}
		palette, pixels := data[:size], data[size:]
		stride := pad4(def.Width)
		if len(pixels) < stride*def.Height {
			return nil, fmt.Errorf("truncated pixel data: %w", tag.ErrInvalidData)
		}

		for y := 0; y < def.Height; y++ {
			for x := 0; x < def.Width; x++ {
				idx := int(pixels[y*stride+x])
				if idx > def.ColorTableSize {
					continue
				}
				p := palette[idx*entry:]
				a := uint8(0xff)
				if alpha {
					a = p[3]
				}
				img.SetNRGBA(x, y, nrgba(p[0], p[1], p[2], a, alpha))
			}
		}
		return img, nil
	}

	// 32-bit pixels are stored as ARGB; version 1 ignores the first byte.
	if len(data) < def.Width*def.Height*4 {
		return nil, fmt.Errorf("truncated pixel data: %w", tag.ErrInvalidData)
	}
	for y := 0; y < def.Height; y++ {
		for x := 0; x < def.Width; x++ {
			p := data[(y*def.Width+x)*4:]
			a := uint8(0xff)
			if alpha {
				a = p[0]
			}
			img.SetNRGBA(x, y, nrgba(p[1], p[2], p[3], a, alpha))
		}
	}
	return img, nil
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inflate: %v: %w", err, tag.ErrInvalidData)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %v: %w", err, tag.ErrInvalidData)
	}
	return out, nil
}

func errUnsupported(def tag.Definition) error {
	return fmt.Errorf("character %d: %s is not an image: %w", def.CharacterID(), def.Code(), tag.ErrInvalidData)
}
