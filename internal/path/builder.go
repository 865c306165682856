package path

// Builder accumulates edge runs under the active styles and turns them into
// paintable paths. Styles are identified by pointer: callers keep one *Style
// per style table entry so runs of the same style land in the same path,
// whichever side of the edge the style was selected on.
type Builder struct {
	fill0, fill1, line *Style

	open      collection
	closed    collection
	finalized []Path
}

// collection holds one edge list per style, in first-use order.
type collection struct {
	order []*Style
	edges map[*Style][]Edge
}

func (c *collection) add(style *Style, edges ...Edge) {
	if c.edges == nil {
		c.edges = make(map[*Style][]Edge)
	}
	if _, ok := c.edges[style]; !ok {
		c.order = append(c.order, style)
	}
	c.edges[style] = append(c.edges[style], edges...)
}

func (c *collection) reset() {
	c.order = nil
	c.edges = nil
}

// SetActiveStyles replaces the three active style slots. A nil slot ignores edges.
func (b *Builder) SetActiveStyles(fill0, fill1, line *Style) {
	b.fill0, b.fill1, b.line = fill0, fill1, line
}

// ActiveStyles returns the three active style slots.
func (b *Builder) ActiveStyles() (fill0, fill1, line *Style) {
	return b.fill0, b.fill1, b.line
}

// Merge appends an edge run to the open path of every active style. A run
// merged under fill0 is reversed first: the fill lies on its left, so the
// region it bounds is traced in the same direction as its fill1 borders.
func (b *Builder) Merge(edges ...Edge) {
	if len(edges) == 0 {
		return
	}
	if b.fill0 != nil {
		b.open.add(b.fill0, ReverseRun(edges)...)
	}
	if b.fill1 != nil {
		b.open.add(b.fill1, edges...)
	}
	if b.line != nil {
		b.open.add(b.line, edges...)
	}
}

// Close moves every open path to the closed set.
func (b *Builder) Close() {
	for _, style := range b.open.order {
		b.closed.add(style, b.open.edges[style]...)
	}
	b.open.reset()
}

// Finalize fixes the order of everything exported so far. Later paths are
// always painted after these.
func (b *Builder) Finalize() {
	b.finalized = b.Export()
	b.closed.reset()
}

// Export closes open paths, reconnects the edges of every closed path and
// returns finalized paths, then fills, then strokes.
func (b *Builder) Export() []Path {
	b.Close()

	var fills, strokes []Path
	for _, style := range b.closed.order {
		p := Path{Edges: Reconnect(b.closed.edges[style]), Style: *style}
		if style.IsStroke() {
			strokes = append(strokes, p)
		} else {
			fills = append(fills, p)
		}
	}

	out := make([]Path, 0, len(b.finalized)+len(fills)+len(strokes))
	out = append(out, b.finalized...)
	out = append(out, fills...)
	return append(out, strokes...)
}
