package shape

import (
	"fmt"

	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/tag"
)

// Reconstructor turns shape record streams into paths. Bitmap fills are
// resolved through images.
type Reconstructor struct {
	images path.ImageResolver
}

func NewReconstructor(images path.ImageResolver) *Reconstructor {
	return &Reconstructor{images: images}
}

// Build reconstructs a shape definition.
func (r *Reconstructor) Build(def tag.DefineShape) (*Shape, error) {
	paths, err := r.Paths(def.Styles, def.Records)
	if err != nil {
		return nil, fmt.Errorf("shape %d: %w", def.ID, err)
	}
	return New(def.ID, def.Bounds, paths), nil
}

// Paths replays records against the initial style tables and returns the
// exported paths.
func (r *Reconstructor) Paths(styles tag.Styles, records tag.ShapeRecords) ([]path.Path, error) {
	st := &state{}
	if err := st.install(styles, r.images); err != nil {
		return nil, err
	}

	for i, rec := range records {
		switch rec := rec.(type) {
		case tag.StyleChange:
			if err := st.styleChange(rec, r.images); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		case tag.StraightEdge:
			st.straight(rec)
		case tag.CurvedEdge:
			st.curved(rec)
		case tag.EndShape:
			return st.export(), nil
		}
	}
	return st.export(), nil
}

// state is the reconstruction accumulator: cursor, style tables, the
// pending edge run and the path builder.
type state struct {
	x, y int

	// One *path.Style per table entry, shared by the fill0 and fill1 slots,
	// so the builder groups both sides of a region into one path.
	fills, lines []*path.Style

	pending []path.Edge
	builder path.Builder
}

func (st *state) install(styles tag.Styles, images path.ImageResolver) error {
	st.fills = make([]*path.Style, len(styles.Fills))
	for i, fs := range styles.Fills {
		fill, err := path.NewFill(fs, images)
		if err != nil {
			return fmt.Errorf("fill style %d: %w", i+1, err)
		}
		st.fills[i] = &path.Style{Fill: fill}
	}

	st.lines = make([]*path.Style, len(styles.Lines))
	for i, ls := range styles.Lines {
		line, err := path.NewLineStyle(ls, images)
		if err != nil {
			return fmt.Errorf("line style %d: %w", i+1, err)
		}
		st.lines[i] = &path.Style{Line: &line}
	}
	return nil
}

func (st *state) styleChange(rec tag.StyleChange, images path.ImageResolver) error {
	st.flush()

	if rec.NewStyles != nil {
		st.builder.Close()
		st.builder.Finalize()
		st.builder.SetActiveStyles(nil, nil, nil)
		if err := st.install(*rec.NewStyles, images); err != nil {
			return err
		}
	}

	if rec.HasStyleSelection() {
		st.builder.Close()
		fill0, fill1, line := st.builder.ActiveStyles()
		var err error
		if fill0, err = pick(st.fills, rec.FillStyle0, fill0, "fill"); err != nil {
			return err
		}
		if fill1, err = pick(st.fills, rec.FillStyle1, fill1, "fill"); err != nil {
			return err
		}
		if line, err = pick(st.lines, rec.LineStyle, line, "line"); err != nil {
			return err
		}
		st.builder.SetActiveStyles(fill0, fill1, line)
	}

	if rec.MoveTo != nil {
		st.x, st.y = rec.MoveTo.X, rec.MoveTo.Y
	}
	return nil
}

// pick resolves a 1-based style index. A nil index keeps current; 0 selects nothing.
func pick(table []*path.Style, index *int, current *path.Style, kind string) (*path.Style, error) {
	switch {
	case index == nil:
		return current, nil
	case *index == 0:
		return nil, nil
	case *index < 0 || *index > len(table):
		return nil, fmt.Errorf("%s style %d out of range (%d defined): %w", kind, *index, len(table), tag.ErrInvalidData)
	}
	return table[*index-1], nil
}

func (st *state) straight(rec tag.StraightEdge) {
	from := path.Point{X: st.x, Y: st.y}
	st.x += rec.DeltaX
	st.y += rec.DeltaY
	st.pending = append(st.pending, path.Straight{From: from, To: path.Point{X: st.x, Y: st.y}})
}

func (st *state) curved(rec tag.CurvedEdge) {
	from := path.Point{X: st.x, Y: st.y}
	control := path.Point{X: st.x + rec.ControlDeltaX, Y: st.y + rec.ControlDeltaY}
	st.x = control.X + rec.AnchorDeltaX
	st.y = control.Y + rec.AnchorDeltaY
	st.pending = append(st.pending, path.Curved{From: from, Control: control, To: path.Point{X: st.x, Y: st.y}})
}

func (st *state) flush() {
	st.builder.Merge(st.pending...)
	st.pending = st.pending[:0]
}

func (st *state) export() []path.Path {
	st.flush()
	return st.builder.Export()
}
