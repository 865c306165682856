package geom

import "math"

// TwipsPerPixel is the number of twips in one pixel.
const TwipsPerPixel = 20

// MaxRatio is the ratio at which an interpolation yields its end value.
const MaxRatio = 65535

// Rectangle is an axis-aligned bounding box in twips.
type Rectangle struct {
	XMin int `json:"xmin"`
	XMax int `json:"xmax"`
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rectangle) Width() int {
	return r.XMax - r.XMin
}

// Height returns the vertical extent of the rectangle.
func (r Rectangle) Height() int {
	return r.YMax - r.YMin
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rectangle) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains checks if a point is inside the rect.
func (r Rectangle) Contains(x, y int) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Union returns the smallest rect containing both rects.
func (r Rectangle) Union(other Rectangle) Rectangle {
	return Merge(r, other)
}

// Merge returns the coordinate-wise envelope of rects.
// Merging no rectangles yields the zero rectangle.
func Merge(rects ...Rectangle) Rectangle {
	if len(rects) == 0 {
		return Rectangle{}
	}

	out := rects[0]
	for _, r := range rects[1:] {
		out.XMin = min(out.XMin, r.XMin)
		out.XMax = max(out.XMax, r.XMax)
		out.YMin = min(out.YMin, r.YMin)
		out.YMax = max(out.YMax, r.YMax)
	}
	return out
}

// Interpolate blends r towards end at the given ratio (0..MaxRatio).
func (r Rectangle) Interpolate(end Rectangle, ratio uint16) Rectangle {
	return Rectangle{
		XMin: Lerp(r.XMin, end.XMin, ratio),
		XMax: Lerp(r.XMax, end.XMax, ratio),
		YMin: Lerp(r.YMin, end.YMin, ratio),
		YMax: Lerp(r.YMax, end.YMax, ratio),
	}
}

// Lerp interpolates between two twip values.
// Ratio 0 returns start and MaxRatio returns end exactly; everything in between
// is round((start*(MaxRatio-ratio) + end*ratio) / MaxRatio).
func Lerp(start, end int, ratio uint16) int {
	switch ratio {
	case 0:
		return start
	case MaxRatio:
		return end
	}
	return int(math.Round(LerpFloat(float64(start), float64(end), ratio)))
}

// LerpFloat is Lerp for real-valued fields such as matrix scales.
func LerpFloat(start, end float64, ratio uint16) float64 {
	switch ratio {
	case 0:
		return start
	case MaxRatio:
		return end
	}
	return (start*float64(MaxRatio-int(ratio)) + end*float64(ratio)) / MaxRatio
}
