package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/inamate/swfscene/internal/tag"
)

var (
	soi = []byte{0xff, 0xd8}
	eoi = []byte{0xff, 0xd9}
)

// NewJPEG returns the character of a DefineBits or DefineBitsJPEG2-4 tag.
// Version 1 data is completed with the shared JPEG tables. Versions 3 and 4
// carry a zlib-compressed alpha plane merged into the decoded pixels. Data
// whose header cannot be read yields an empty image that fails when drawn.
func NewJPEG(def tag.DefineBitsJPEG, tables []byte) *Image {
	data := jpegData(def, tables)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		err = fmt.Errorf("jpeg %d: %v: %w", def.ID, err, tag.ErrInvalidData)
		return newImage(def.ID, 0, 0, func() (*image.NRGBA, error) { return nil, err })
	}

	return newImage(def.ID, cfg.Width, cfg.Height, func() (*image.NRGBA, error) {
		img, err := decodeJPEG(def, data)
		if err != nil {
			return nil, fmt.Errorf("jpeg %d: %w", def.ID, err)
		}
		return img, nil
	})
}

func jpegData(def tag.DefineBitsJPEG, tables []byte) []byte {
	data := stripErroneousHeader(def.Data)
	if def.Version != 1 || len(tables) == 0 {
		return data
	}

	// Tables end with EOI and the image starts with SOI; splice them.
	tables = stripErroneousHeader(tables)
	tables = bytes.TrimSuffix(tables, eoi)
	out := make([]byte, 0, len(tables)+len(data))
	out = append(out, tables...)
	return append(out, bytes.TrimPrefix(data, soi)...)
}

// stripErroneousHeader drops the EOI+SOI pair some encoders put before the
// real SOI marker.
func stripErroneousHeader(data []byte) []byte {
	if bytes.HasPrefix(data, []byte{0xff, 0xd9, 0xff, 0xd8}) {
		return data[4:]
	}
	return data
}

func decodeJPEG(def tag.DefineBitsJPEG, data []byte) (*image.NRGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, tag.ErrInvalidData)
	}
	img := toNRGBA(src)
	if len(def.AlphaData) == 0 {
		return img, nil
	}

	alpha, err := inflate(def.AlphaData)
	if err != nil {
		return nil, fmt.Errorf("alpha plane: %w", err)
	}
	b := img.Bounds()
	if len(alpha) < b.Dx()*b.Dy() {
		return nil, fmt.Errorf("alpha plane has %d bytes for %dx%d pixels: %w", len(alpha), b.Dx(), b.Dy(), tag.ErrInvalidData)
	}
	for i := 0; i < b.Dx()*b.Dy(); i++ {
		img.Pix[i*4+3] = alpha[i]
	}
	return img, nil
}
