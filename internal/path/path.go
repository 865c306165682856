package path

import "github.com/inamate/swfscene/internal/geom"

// Path is an ordered sequence of edges painted with one style.
type Path struct {
	Edges []Edge
	Style Style
}

// Bounds returns the envelope of every edge point, control points included.
func (p Path) Bounds() geom.Rectangle {
	if len(p.Edges) == 0 {
		return geom.Rectangle{}
	}
	first := p.Edges[0].Start()
	r := geom.Rectangle{XMin: first.X, XMax: first.X, YMin: first.Y, YMax: first.Y}
	add := func(pt Point) {
		r.XMin = min(r.XMin, pt.X)
		r.XMax = max(r.XMax, pt.X)
		r.YMin = min(r.YMin, pt.Y)
		r.YMax = max(r.YMax, pt.Y)
	}
	for _, e := range p.Edges {
		if c, ok := e.(Curved); ok {
			add(c.Control)
		}
		add(e.End())
	}
	return r
}

// IsContinuous reports whether every edge starts where the previous one ended.
func (p Path) IsContinuous() bool {
	for i := 1; i < len(p.Edges); i++ {
		if p.Edges[i].Start() != p.Edges[i-1].End() {
			return false
		}
	}
	return true
}

// TransformColors returns a copy of p with ct applied to its style.
func (p Path) TransformColors(ct geom.ColorTransform) Path {
	return Path{Edges: p.Edges, Style: p.Style.TransformColors(ct)}
}

// Interpolate blends p towards end edge by edge. Both paths must have the
// same number of edges.
func (p Path) Interpolate(end Path, ratio uint16) Path {
	edges := make([]Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = e.Interpolate(end.Edges[i], ratio)
	}
	return Path{Edges: edges, Style: p.Style.Interpolate(end.Style, ratio)}
}

// Reconnect reorders edges into maximal continuous chains. Each chain starts
// with the first remaining edge and repeatedly takes the first remaining edge
// that starts at the chain's end, or failing that the first that ends there,
// reversed. Ties go to the earliest edge in the input order.
func Reconnect(edges []Edge) []Edge {
	remaining := make([]Edge, len(edges))
	copy(remaining, edges)
	out := make([]Edge, 0, len(edges))

	for len(remaining) > 0 {
		current := remaining[0]
		remaining = remaining[1:]
		out = append(out, current)

		for {
			next, reversed := -1, false
			tip := current.End()
			for i, e := range remaining {
				if e.Start() == tip {
					next, reversed = i, false
					break
				}
				if e.End() == tip {
					next, reversed = i, true
					break
				}
			}
			if next < 0 {
				break
			}

			current = remaining[next]
			if reversed {
				current = current.Reverse()
			}
			remaining = append(remaining[:next], remaining[next+1:]...)
			out = append(out, current)
		}
	}
	return out
}
