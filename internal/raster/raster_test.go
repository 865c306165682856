package raster

import (
	"bytes"
	"compress/zlib"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return buf.Bytes()
}

func pixelAt(t *testing.T, img *Image, x, y int) color.NRGBA {
	t.Helper()
	decoded, err := img.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	return decoded.(*image.NRGBA).NRGBAAt(x, y)
}

func TestLossless(t *testing.T) {
	tests := []struct {
		name string
		def  tag.DefineBitsLossless
		want color.NRGBA
	}{
		{
			name: "rgb32",
			def: tag.DefineBitsLossless{
				Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: 1, Height: 1,
				Data: []byte{0x00, 10, 20, 30},
			},
			want: color.NRGBA{R: 10, G: 20, B: 30, A: 255},
		},
		{
			name: "argb32 premultiplied",
			def: tag.DefineBitsLossless{
				Version: 2, ID: 2, Format: tag.BitmapRGB32, Width: 1, Height: 1,
				Data: []byte{128, 64, 0, 128},
			},
			want: color.NRGBA{R: 127, G: 0, B: 255, A: 128},
		},
		{
			name: "colormapped",
			def: tag.DefineBitsLossless{
				Version: 1, ID: 3, Format: tag.BitmapColorMapped, Width: 2, Height: 1, ColorTableSize: 1,
				// Two palette entries, then one row padded to four bytes.
				Data: []byte{1, 2, 3, 200, 100, 50, 1, 0, 0, 0},
			},
			want: color.NRGBA{R: 200, G: 100, B: 50, A: 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := tt.def
			def.Data = deflate(t, def.Data)
			img := NewLossless(def)
			if got := pixelAt(t, img, 0, 0); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
			if got := img.Bounds(); got != (geom.Rectangle{XMax: def.Width * 20, YMax: 20}) {
				t.Errorf("Bounds() = %v", got)
			}
		})
	}
}

func TestLosslessErrors(t *testing.T) {
	t.Run("missing palette", func(t *testing.T) {
		img := NewLossless(tag.DefineBitsLossless{
			Version: 1, ID: 1, Format: tag.BitmapColorMapped, Width: 1, Height: 1, ColorTableSize: 15,
			Data: deflate(t, []byte{1, 2, 3}),
		})
		if _, err := img.Image(); !errors.Is(err, tag.ErrInvalidData) {
			t.Errorf("err = %v, want ErrInvalidData", err)
		}
	})

	t.Run("rgb15", func(t *testing.T) {
		img := NewLossless(tag.DefineBitsLossless{Version: 1, ID: 1, Format: tag.BitmapRGB15, Width: 1, Height: 1})
		if w, h := img.Size(); w != 1 || h != 1 {
			t.Errorf("Size() = %dx%d, want 1x1", w, h)
		}
		if _, err := img.Image(); !errors.Is(err, tag.ErrNotImplemented) {
			t.Errorf("err = %v, want ErrNotImplemented", err)
		}
	})

	t.Run("bad size", func(t *testing.T) {
		img := NewLossless(tag.DefineBitsLossless{Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: -1, Height: 1})
		if got := img.Bounds(); !got.IsEmpty() {
			t.Errorf("Bounds() = %v, want empty", got)
		}
		if _, err := img.Image(); !errors.Is(err, tag.ErrInvalidData) {
			t.Errorf("err = %v, want ErrInvalidData", err)
		}
	})

	t.Run("corrupt stream", func(t *testing.T) {
		img := NewLossless(tag.DefineBitsLossless{Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: 1, Height: 1, Data: []byte("nope")})
		if _, err := img.Image(); !errors.Is(err, tag.ErrInvalidData) {
			t.Errorf("err = %v, want ErrInvalidData", err)
		}
	})
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestJPEGWithAlpha(t *testing.T) {
	data := append([]byte{0xff, 0xd9, 0xff, 0xd8}, encodeJPEG(t, 2, 2)...)
	img := NewJPEG(tag.DefineBitsJPEG{
		Version:   3,
		ID:        7,
		Data:      data,
		AlphaData: deflate(t, []byte{0, 64, 128, 255}),
	}, nil)

	if w, h := img.Size(); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	if got := pixelAt(t, img, 1, 0).A; got != 64 {
		t.Errorf("alpha = %d, want 64", got)
	}
	if got := pixelAt(t, img, 1, 1).A; got != 255 {
		t.Errorf("alpha = %d, want 255", got)
	}
}

func TestJPEGTablesSplice(t *testing.T) {
	tables := []byte{0xff, 0xd8, 0xaa, 0xff, 0xd9}
	def := tag.DefineBitsJPEG{Version: 1, Data: []byte{0xff, 0xd8, 0xbb, 0xff, 0xd9}}

	want := []byte{0xff, 0xd8, 0xaa, 0xbb, 0xff, 0xd9}
	if diff := cmp.Diff(want, jpegData(def, tables)); diff != "" {
		t.Errorf("spliced data mismatch (-want +got):\n%s", diff)
	}

	def.Version = 2
	if diff := cmp.Diff(def.Data, jpegData(def, tables)); diff != "" {
		t.Errorf("version 2 must ignore tables (-want +got):\n%s", diff)
	}
}

func TestJPEGInvalid(t *testing.T) {
	img := NewJPEG(tag.DefineBitsJPEG{Version: 2, ID: 3, Data: []byte{1, 2, 3}}, nil)
	if w, h := img.Size(); w != 0 || h != 0 {
		t.Errorf("Size() = %dx%d, want 0x0", w, h)
	}
	if _, err := img.Image(); !errors.Is(err, tag.ErrInvalidData) {
		t.Errorf("err = %v, want ErrInvalidData", err)
	}
}

func TestDecodeIsMemoized(t *testing.T) {
	img := NewLossless(tag.DefineBitsLossless{
		Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: 1, Height: 1,
		Data: deflate(t, []byte{0, 1, 2, 3}),
	})
	a, _ := img.Image()
	b, _ := img.Image()
	if a != b {
		t.Errorf("Image() decoded twice")
	}
}

func TestTransformColors(t *testing.T) {
	img := NewLossless(tag.DefineBitsLossless{
		Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: 1, Height: 1,
		Data: deflate(t, []byte{0, 200, 0, 0}),
	})

	add := geom.IdentityTransform()
	add.RedAdd = 100
	half := geom.IdentityTransform()
	half.RedMult = 128

	got := img.TransformColors(add).TransformColors(half).(*Image)
	// 200+100 clamps to 255 before halving.
	if px := pixelAt(t, got, 0, 0); px.R != 127 {
		t.Errorf("red = %d, want 127", px.R)
	}
	if n := len(got.ColorTransforms()); n != 2 {
		t.Errorf("chain has %d transforms, want 2", n)
	}
	if px := pixelAt(t, img, 0, 0); px.R != 200 {
		t.Errorf("original image changed: red = %d", px.R)
	}
}

func TestDrawEmitsImage(t *testing.T) {
	img := NewLossless(tag.DefineBitsLossless{
		Version: 1, ID: 12, Format: tag.BitmapRGB32, Width: 3, Height: 2,
		Data: deflate(t, make([]byte, 24)),
	})
	cmds := draw.Record(img, 0)
	if len(cmds) != 2 || cmds[1].Op != "image" {
		t.Fatalf("got %+v, want area then image", cmds)
	}
	if cmds[1].ImageID != 12 || cmds[1].ImageWidth != 3 || cmds[1].ImageHeight != 2 {
		t.Errorf("image command = %+v", cmds[1])
	}
}

func TestScaled(t *testing.T) {
	// A 2x1 image: black then white.
	img := NewLossless(tag.DefineBitsLossless{
		Version: 1, ID: 1, Format: tag.BitmapRGB32, Width: 2, Height: 1,
		Data: deflate(t, []byte{0, 0, 0, 0, 0, 255, 255, 255}),
	})

	tests := []struct {
		name   string
		smooth bool
		check  func(t *testing.T, row []color.NRGBA)
	}{
		{"nearest", false, func(t *testing.T, row []color.NRGBA) {
			want := []color.NRGBA{{A: 255}, {A: 255}, {255, 255, 255, 255}, {255, 255, 255, 255}}
			if diff := cmp.Diff(want, row); diff != "" {
				t.Errorf("row mismatch (-want +got):\n%s", diff)
			}
		}},
		{"bilinear", true, func(t *testing.T, row []color.NRGBA) {
			if row[1].R == 0 || row[1].R == 255 {
				t.Errorf("smoothed pixel = %v, want a blend", row[1])
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaled, err := img.Scaled(4, 1, tt.smooth)
			if err != nil {
				t.Fatalf("Scaled: %v", err)
			}
			if b := scaled.Bounds(); b.Dx() != 4 || b.Dy() != 1 {
				t.Fatalf("size = %v, want 4x1", b)
			}
			row := make([]color.NRGBA, 4)
			for x := range row {
				row[x] = color.NRGBAModel.Convert(scaled.At(x, 0)).(color.NRGBA)
			}
			tt.check(t, row)
		})
	}

	same, err := img.Scaled(2, 1, true)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if decoded, _ := img.Image(); same != decoded {
		t.Errorf("scaling to the same size should return the decoded pixels")
	}
}
