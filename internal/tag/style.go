package tag

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/swfscene/internal/geom"
)

// FillKind is the fill style type byte.
type FillKind uint8

const (
	FillSolid                      FillKind = 0x00
	FillLinearGradient             FillKind = 0x10
	FillRadialGradient             FillKind = 0x12
	FillFocalGradient              FillKind = 0x13
	FillRepeatingBitmap            FillKind = 0x40
	FillClippedBitmap              FillKind = 0x41
	FillNonSmoothedRepeatingBitmap FillKind = 0x42
	FillNonSmoothedClippedBitmap   FillKind = 0x43
)

var fillKindNames = map[FillKind]string{
	FillSolid:                      "solid",
	FillLinearGradient:             "linear",
	FillRadialGradient:             "radial",
	FillFocalGradient:              "focal",
	FillRepeatingBitmap:            "repeatingBitmap",
	FillClippedBitmap:              "clippedBitmap",
	FillNonSmoothedRepeatingBitmap: "nonSmoothedRepeatingBitmap",
	FillNonSmoothedClippedBitmap:   "nonSmoothedClippedBitmap",
}

func (k FillKind) String() string {
	if name, ok := fillKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("fill(0x%02x)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k FillKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names are rejected here so that
// a dump never smuggles in a kind the engine cannot dispatch on.
func (k *FillKind) UnmarshalText(text []byte) error {
	for kind, name := range fillKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown fill kind %q", text)
}

// IsGradient reports whether k is one of the gradient kinds.
func (k FillKind) IsGradient() bool {
	return k == FillLinearGradient || k == FillRadialGradient || k == FillFocalGradient
}

// IsBitmap reports whether k is one of the four bitmap kinds.
func (k FillKind) IsBitmap() bool {
	return k >= FillRepeatingBitmap && k <= FillNonSmoothedClippedBitmap
}

type GradientRecord struct {
	Ratio uint8      `json:"ratio"`
	Color geom.Color `json:"color"`
}

type Gradient struct {
	Spread        uint8            `json:"spread"`
	Interpolation uint8            `json:"interpolation"`
	Records       []GradientRecord `json:"records"`
	FocalPoint    float64          `json:"focalPoint"`
}

type FillStyle struct {
	Kind     FillKind    `json:"kind"`
	Color    geom.Color  `json:"color"`
	Matrix   geom.Matrix `json:"matrix"`
	Gradient *Gradient   `json:"gradient"`
	BitmapID uint16      `json:"bitmapId"`
}

// UnmarshalJSON decodes a fill style; an absent matrix is the identity.
func (f *FillStyle) UnmarshalJSON(data []byte) error {
	type plain FillStyle
	v := plain{Matrix: geom.Identity()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FillStyle(v)
	return nil
}

// LineStyle covers LINESTYLE and LINESTYLE2. Width is in twips.
type LineStyle struct {
	Width      int        `json:"width"`
	Color      geom.Color `json:"color"`
	StartCap   uint8      `json:"startCap"`
	EndCap     uint8      `json:"endCap"`
	Join       uint8      `json:"join"`
	MiterLimit float64    `json:"miterLimit"`
	NoClose    bool       `json:"noClose"`
	Fill       *FillStyle `json:"fill"`
}

// Styles is a pair of style tables. Shape records select into them with
// 1-based indexes; 0 selects nothing.
type Styles struct {
	Fills []FillStyle `json:"fills"`
	Lines []LineStyle `json:"lines"`
}

type MorphGradientRecord struct {
	StartRatio uint8      `json:"startRatio"`
	StartColor geom.Color `json:"startColor"`
	EndRatio   uint8      `json:"endRatio"`
	EndColor   geom.Color `json:"endColor"`
}

// MorphFillStyle pairs the start and end state of one fill.
type MorphFillStyle struct {
	Kind        FillKind              `json:"kind"`
	StartColor  geom.Color            `json:"startColor"`
	EndColor    geom.Color            `json:"endColor"`
	StartMatrix geom.Matrix           `json:"startMatrix"`
	EndMatrix   geom.Matrix           `json:"endMatrix"`
	Spread      uint8                 `json:"spread"`
	Gradient    []MorphGradientRecord `json:"gradient"`
	BitmapID    uint16                `json:"bitmapId"`
}

// UnmarshalJSON decodes a morph fill style; absent matrices are the identity.
func (f *MorphFillStyle) UnmarshalJSON(data []byte) error {
	type plain MorphFillStyle
	v := plain{StartMatrix: geom.Identity(), EndMatrix: geom.Identity()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = MorphFillStyle(v)
	return nil
}

// Start projects the style onto the start shape.
func (f MorphFillStyle) Start() FillStyle {
	return f.project(true)
}

// End projects the style onto the end shape.
func (f MorphFillStyle) End() FillStyle {
	return f.project(false)
}

func (f MorphFillStyle) project(start bool) FillStyle {
	out := FillStyle{Kind: f.Kind, BitmapID: f.BitmapID}
	if start {
		out.Color, out.Matrix = f.StartColor, f.StartMatrix
	} else {
		out.Color, out.Matrix = f.EndColor, f.EndMatrix
	}
	if f.Kind.IsGradient() {
		g := &Gradient{Spread: f.Spread, Records: make([]GradientRecord, len(f.Gradient))}
		for i, r := range f.Gradient {
			if start {
				g.Records[i] = GradientRecord{Ratio: r.StartRatio, Color: r.StartColor}
			} else {
				g.Records[i] = GradientRecord{Ratio: r.EndRatio, Color: r.EndColor}
			}
		}
		out.Gradient = g
	}
	return out
}

// MorphLineStyle pairs the start and end state of one line style.
type MorphLineStyle struct {
	StartWidth int             `json:"startWidth"`
	EndWidth   int             `json:"endWidth"`
	StartColor geom.Color      `json:"startColor"`
	EndColor   geom.Color      `json:"endColor"`
	StartCap   uint8           `json:"startCap"`
	EndCap     uint8           `json:"endCap"`
	Join       uint8           `json:"join"`
	MiterLimit float64         `json:"miterLimit"`
	NoClose    bool            `json:"noClose"`
	Fill       *MorphFillStyle `json:"fill"`
}

// Start projects the style onto the start shape.
func (l MorphLineStyle) Start() LineStyle {
	out := l.common(l.StartWidth, l.StartColor)
	if l.Fill != nil {
		fill := l.Fill.Start()
		out.Fill = &fill
	}
	return out
}

// End projects the style onto the end shape.
func (l MorphLineStyle) End() LineStyle {
	out := l.common(l.EndWidth, l.EndColor)
	if l.Fill != nil {
		fill := l.Fill.End()
		out.Fill = &fill
	}
	return out
}

func (l MorphLineStyle) common(width int, color geom.Color) LineStyle {
	return LineStyle{
		Width:      width,
		Color:      color,
		StartCap:   l.StartCap,
		EndCap:     l.EndCap,
		Join:       l.Join,
		MiterLimit: l.MiterLimit,
		NoClose:    l.NoClose,
	}
}

// BlendMode is the PlaceObject3 blend mode. 0 and 1 both mean normal.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota + 1
	BlendLayer
	BlendMultiply
	BlendScreen
	BlendLighten
	BlendDarken
	BlendDifference
	BlendAdd
	BlendSubtract
	BlendInvert
	BlendAlpha
	BlendErase
	BlendOverlay
	BlendHardLight
)

var blendNames = []string{
	"normal", "normal", "layer", "multiply", "screen", "lighten", "darken",
	"difference", "add", "subtract", "invert", "alpha", "erase", "overlay", "hardlight",
}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return fmt.Sprintf("blend(%d)", uint8(b))
}
