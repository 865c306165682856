package playback

import (
	"context"

	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/library"
	"github.com/inamate/swfscene/internal/timeline"
)

// Info describes the timeline a session plays.
type Info struct {
	Frames    int
	FrameRate float64
	Bounds    geom.Rectangle
}

// Source renders the frames of one timeline.
type Source interface {
	Info(ctx context.Context) (Info, error)
	Frame(ctx context.Context, index int) (FramePayload, error)
	Label(ctx context.Context, name string) (int, bool, error)
}

// DocumentSource plays the root timeline of a library document.
type DocumentSource struct {
	Library            *library.Service
	DocumentID         string
	UserID             string
	UseContainerBounds bool
}

func (s DocumentSource) with(ctx context.Context, fn func(*catalog.Catalog, *timeline.Timeline) error) error {
	return s.Library.With(ctx, s.DocumentID, s.UserID, func(c *catalog.Catalog) error {
		tl, err := c.Timeline(s.UseContainerBounds)
		if err != nil {
			return err
		}
		return fn(c, tl)
	})
}

func (s DocumentSource) Info(ctx context.Context) (Info, error) {
	var info Info
	err := s.with(ctx, func(c *catalog.Catalog, tl *timeline.Timeline) error {
		info = Info{
			Frames:    tl.Len(),
			FrameRate: c.Document().Header.FrameRate,
			Bounds:    tl.Bounds(),
		}
		return nil
	})
	return info, err
}

func (s DocumentSource) Frame(ctx context.Context, index int) (FramePayload, error) {
	var p FramePayload
	err := s.with(ctx, func(_ *catalog.Catalog, tl *timeline.Timeline) error {
		p = FramePayload{
			Index:    index,
			Label:    tl.Frame(index).Label,
			Commands: draw.Record(tl, index),
		}
		return nil
	})
	return p, err
}

func (s DocumentSource) Label(ctx context.Context, name string) (int, bool, error) {
	var (
		index int
		ok    bool
	)
	err := s.with(ctx, func(_ *catalog.Catalog, tl *timeline.Timeline) error {
		index, ok = tl.FrameByLabel(name)
		return nil
	})
	return index, ok, err
}
