package geom

import (
	"encoding/json"
	"math"
)

// Matrix is a 2D affine transform. Translation is in twips.
// A point (x, y) maps to:
//
//	x' = x*ScaleX + y*RotateSkew1 + TranslateX
//	y' = x*RotateSkew0 + y*ScaleY + TranslateY
type Matrix struct {
	ScaleX      float64 `json:"scaleX"`
	ScaleY      float64 `json:"scaleY"`
	RotateSkew0 float64 `json:"rotateSkew0"`
	RotateSkew1 float64 `json:"rotateSkew1"`
	TranslateX  int     `json:"translateX"`
	TranslateY  int     `json:"translateY"`
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{ScaleX: 1, ScaleY: 1}
}

// UnmarshalJSON decodes a matrix, defaulting absent scale fields to 1.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	type plain Matrix
	v := plain(Identity())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Matrix(v)
	return nil
}

// TransformPoint applies the matrix to a point.
func (m Matrix) TransformPoint(x, y int) (int, int) {
	fx, fy := m.TransformPointF(float64(x), float64(y))
	return int(math.Round(fx)), int(math.Round(fy))
}

// TransformPointF applies the matrix to a real-valued point.
func (m Matrix) TransformPointF(x, y float64) (float64, float64) {
	return x*m.ScaleX + y*m.RotateSkew1 + float64(m.TranslateX),
		x*m.RotateSkew0 + y*m.ScaleY + float64(m.TranslateY)
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix) TransformRect(r Rectangle) Rectangle {
	x0, y0 := m.TransformPoint(r.XMin, r.YMin)
	x1, y1 := m.TransformPoint(r.XMax, r.YMin)
	x2, y2 := m.TransformPoint(r.XMax, r.YMax)
	x3, y3 := m.TransformPoint(r.XMin, r.YMax)

	return Rectangle{
		XMin: min(x0, x1, x2, x3),
		XMax: max(x0, x1, x2, x3),
		YMin: min(y0, y1, y2, y3),
		YMax: max(y0, y1, y2, y3),
	}
}

// Translate returns m preceded by a translation of (x, y) in the matrix's
// own coordinate space, i.e. the point (0, 0) now maps where (x, y) used to.
func (m Matrix) Translate(x, y int) Matrix {
	tx, ty := m.TransformPoint(x, y)
	m.TranslateX = tx
	m.TranslateY = ty
	return m
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix) Multiply(other Matrix) Matrix {
	tx, ty := m.TransformPointF(float64(other.TranslateX), float64(other.TranslateY))
	return Matrix{
		ScaleX:      m.ScaleX*other.ScaleX + m.RotateSkew1*other.RotateSkew0,
		RotateSkew0: m.RotateSkew0*other.ScaleX + m.ScaleY*other.RotateSkew0,
		RotateSkew1: m.ScaleX*other.RotateSkew1 + m.RotateSkew1*other.ScaleY,
		ScaleY:      m.RotateSkew0*other.RotateSkew1 + m.ScaleY*other.ScaleY,
		TranslateX:  int(math.Round(tx)),
		TranslateY:  int(math.Round(ty)),
	}
}

// Interpolate blends m towards end at the given ratio (0..MaxRatio).
func (m Matrix) Interpolate(end Matrix, ratio uint16) Matrix {
	return Matrix{
		ScaleX:      LerpFloat(m.ScaleX, end.ScaleX, ratio),
		ScaleY:      LerpFloat(m.ScaleY, end.ScaleY, ratio),
		RotateSkew0: LerpFloat(m.RotateSkew0, end.RotateSkew0, ratio),
		RotateSkew1: LerpFloat(m.RotateSkew1, end.RotateSkew1, ratio),
		TranslateX:  Lerp(m.TranslateX, end.TranslateX, ratio),
		TranslateY:  Lerp(m.TranslateY, end.TranslateY, ratio),
	}
}

// ToSlice returns the matrix as [a, b, c, d, e, f] for JSON serialization,
// with the translation converted to pixels.
func (m Matrix) ToSlice() []float64 {
	return []float64{
		m.ScaleX, m.RotateSkew0,
		m.RotateSkew1, m.ScaleY,
		float64(m.TranslateX) / TwipsPerPixel, float64(m.TranslateY) / TwipsPerPixel,
	}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m.ScaleX-1) < eps &&
		math.Abs(m.RotateSkew0) < eps &&
		math.Abs(m.RotateSkew1) < eps &&
		math.Abs(m.ScaleY-1) < eps &&
		m.TranslateX == 0 &&
		m.TranslateY == 0
}
