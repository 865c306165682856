package geom

import (
	"encoding/json"
	"fmt"
)

// Color is an 8-bit per channel color. Alpha is straight, not premultiplied.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
	Alpha uint8 `json:"alpha"`
}

// RGB returns a fully opaque color.
func RGB(r, g, b uint8) Color {
	return Color{Red: r, Green: g, Blue: b, Alpha: 0xff}
}

// UnmarshalJSON decodes a color. An absent alpha means fully opaque.
func (c *Color) UnmarshalJSON(data []byte) error {
	var v struct {
		Red   uint8  `json:"red"`
		Green uint8  `json:"green"`
		Blue  uint8  `json:"blue"`
		Alpha *uint8 `json:"alpha"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = RGB(v.Red, v.Green, v.Blue)
	if v.Alpha != nil {
		c.Alpha = *v.Alpha
	}
	return nil
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.Alpha)
	r = uint32(c.Red) * a / 0xff
	g = uint32(c.Green) * a / 0xff
	b = uint32(c.Blue) * a / 0xff
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

// Opacity returns alpha as a fraction in [0, 1].
func (c Color) Opacity() float64 {
	return float64(c.Alpha) / 0xff
}

// Interpolate blends c towards end at the given ratio (0..MaxRatio).
func (c Color) Interpolate(end Color, ratio uint16) Color {
	return Color{
		Red:   uint8(Lerp(int(c.Red), int(end.Red), ratio)),
		Green: uint8(Lerp(int(c.Green), int(end.Green), ratio)),
		Blue:  uint8(Lerp(int(c.Blue), int(end.Blue), ratio)),
		Alpha: uint8(Lerp(int(c.Alpha), int(end.Alpha), ratio)),
	}
}

// ColorTransform adjusts each channel as clamp((channel*Mult)>>8 + Add).
// A multiplier of 256 is 1.0.
//
// Two transforms cannot be folded into one: every stage clamps on its own.
// Chains are kept as a TransformChain and replayed in order.
type ColorTransform struct {
	RedMult   int `json:"redMult"`
	GreenMult int `json:"greenMult"`
	BlueMult  int `json:"blueMult"`
	AlphaMult int `json:"alphaMult"`
	RedAdd    int `json:"redAdd"`
	GreenAdd  int `json:"greenAdd"`
	BlueAdd   int `json:"blueAdd"`
	AlphaAdd  int `json:"alphaAdd"`
}

// IdentityTransform returns a color transform that changes nothing.
func IdentityTransform() ColorTransform {
	return ColorTransform{RedMult: 256, GreenMult: 256, BlueMult: 256, AlphaMult: 256}
}

// UnmarshalJSON decodes a color transform, defaulting absent multipliers to 256.
func (t *ColorTransform) UnmarshalJSON(data []byte) error {
	type plain ColorTransform
	v := plain(IdentityTransform())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = ColorTransform(v)
	return nil
}

// IsIdentity reports whether t leaves every color unchanged.
func (t ColorTransform) IsIdentity() bool {
	return t == IdentityTransform()
}

// Transform applies t to c.
func (t ColorTransform) Transform(c Color) Color {
	return Color{
		Red:   channel(c.Red, t.RedMult, t.RedAdd),
		Green: channel(c.Green, t.GreenMult, t.GreenAdd),
		Blue:  channel(c.Blue, t.BlueMult, t.BlueAdd),
		Alpha: channel(c.Alpha, t.AlphaMult, t.AlphaAdd),
	}
}

func channel(v uint8, mult, add int) uint8 {
	return uint8(min(255, max(0, (int(v)*mult)>>8+add)))
}

// TransformChain is an ordered list of color transforms applied one after another.
type TransformChain []ColorTransform

// Append returns a new chain with t added last. The receiver is not modified.
func (c TransformChain) Append(t ...ColorTransform) TransformChain {
	out := make(TransformChain, 0, len(c)+len(t))
	out = append(out, c...)
	return append(out, t...)
}

// Transform applies every transform of the chain in order.
func (c TransformChain) Transform(color Color) Color {
	for _, t := range c {
		color = t.Transform(color)
	}
	return color
}
