package tag

// ShapeRecord is one entry of a shape's record stream: StyleChange,
// StraightEdge, CurvedEdge or EndShape.
type ShapeRecord interface {
	isShapeRecord()
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StyleChange selects styles and moves the cursor. Nil fields are unchanged.
// Style indexes are 1-based into the current tables; 0 deselects.
// NewStyles resets the drawing context and installs fresh style tables.
type StyleChange struct {
	MoveTo     *Point  `json:"moveTo"`
	FillStyle0 *int    `json:"fillStyle0"`
	FillStyle1 *int    `json:"fillStyle1"`
	LineStyle  *int    `json:"lineStyle"`
	NewStyles  *Styles `json:"newStyles"`
}

// HasStyleSelection reports whether the record changes any active style.
func (s StyleChange) HasStyleSelection() bool {
	return s.FillStyle0 != nil || s.FillStyle1 != nil || s.LineStyle != nil || s.NewStyles != nil
}

type StraightEdge struct {
	DeltaX int `json:"dx"`
	DeltaY int `json:"dy"`
}

type CurvedEdge struct {
	ControlDeltaX int `json:"controlDx"`
	ControlDeltaY int `json:"controlDy"`
	AnchorDeltaX  int `json:"anchorDx"`
	AnchorDeltaY  int `json:"anchorDy"`
}

type EndShape struct{}

func (StyleChange) isShapeRecord()  {}
func (StraightEdge) isShapeRecord() {}
func (CurvedEdge) isShapeRecord()   {}
func (EndShape) isShapeRecord()     {}

// ShapeRecords is a shape record stream.
type ShapeRecords []ShapeRecord
