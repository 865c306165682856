// Package catalog is the entry point of the engine: it turns a parsed
// document into memoized character tables and the root timeline.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/morph"
	"github.com/inamate/swfscene/internal/path"
	"github.com/inamate/swfscene/internal/raster"
	"github.com/inamate/swfscene/internal/shape"
	"github.com/inamate/swfscene/internal/tag"
	"github.com/inamate/swfscene/internal/timeline"
)

// ErrNotExported is returned by ByName for a name missing from the export table.
var ErrNotExported = errors.New("name is not exported")

// RootID is the character id of the document's main timeline.
const RootID = 0

// Catalog lazily builds and memoizes the characters of one document. Tables
// are built on first use and kept until Release.
//
// A Catalog is not safe for concurrent use.
type Catalog struct {
	doc             *tag.Document
	logger          *slog.Logger
	maxObjectExtent int

	shapes  map[uint16]*shape.Shape
	images  map[uint16]*raster.Image
	sprites map[uint16]*timeline.Sprite
	morphs  map[uint16]*morph.Shape
	exports map[string]uint16

	root          *timeline.Timeline
	rootContainer *timeline.Timeline
	rootSprite    *timeline.Sprite
}

type Option func(*Catalog)

// WithLogger sets the logger table construction is reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// WithMaxObjectExtent enables the timeline bounds guard; see
// timeline.WithMaxObjectExtent.
func WithMaxObjectExtent(extent int) Option {
	return func(c *Catalog) { c.maxObjectExtent = extent }
}

func New(doc *tag.Document, opts ...Option) *Catalog {
	c := &Catalog{doc: doc, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document returns the parsed document the catalog reads from.
func (c *Catalog) Document() *tag.Document {
	return c.doc
}

// Shapes returns the shape table.
func (c *Catalog) Shapes() (map[uint16]*shape.Shape, error) {
	if c.shapes != nil {
		return c.shapes, nil
	}

	r := shape.NewReconstructor(c)
	table := make(map[uint16]*shape.Shape)
	for pos, rec := range c.doc.Tags.Scan(tag.ShapeCodes...) {
		if _, ok := table[pos.ID]; ok {
			continue
		}
		s, err := r.Build(rec.(tag.DefineShape))
		if err != nil {
			return nil, err
		}
		table[pos.ID] = s
	}

	c.logger.Debug("built character table", "table", "shapes", "count", len(table))
	c.shapes = table
	return table, nil
}

// Images returns the raster table: lossless bitmaps and every JPEG variant.
func (c *Catalog) Images() (map[uint16]*raster.Image, error) {
	if c.images != nil {
		return c.images, nil
	}

	var tables []byte
	for _, rec := range c.doc.Tags.Scan(tag.CodeJPEGTables) {
		tables = rec.(tag.JPEGTables).Data
		break
	}

	table := make(map[uint16]*raster.Image)
	for pos, rec := range c.doc.Tags.Scan(tag.ImageCodes...) {
		if _, ok := table[pos.ID]; ok {
			continue
		}
		img, err := raster.Decode(rec.(tag.Definition), tables)
		if err != nil {
			return nil, err
		}
		table[pos.ID] = img
	}

	c.logger.Debug("built character table", "table", "images", "count", len(table))
	c.images = table
	return table, nil
}

// Sprites returns the sprite table. Sprite timelines are built when the
// sprite is first resolved through Character.
func (c *Catalog) Sprites() map[uint16]*timeline.Sprite {
	if c.sprites != nil {
		return c.sprites
	}

	table := make(map[uint16]*timeline.Sprite)
	for pos, rec := range c.doc.Tags.Scan(tag.SpriteCodes...) {
		if _, ok := table[pos.ID]; !ok {
			table[pos.ID] = timeline.NewSprite(rec.(tag.DefineSprite))
		}
	}

	c.logger.Debug("built character table", "table", "sprites", "count", len(table))
	c.sprites = table
	return table
}

// Morphs returns the morph shape table.
func (c *Catalog) Morphs() (map[uint16]*morph.Shape, error) {
	if c.morphs != nil {
		return c.morphs, nil
	}

	r := shape.NewReconstructor(c)
	table := make(map[uint16]*morph.Shape)
	for pos, rec := range c.doc.Tags.Scan(tag.MorphCodes...) {
		if _, ok := table[pos.ID]; ok {
			continue
		}
		m, err := morph.Build(rec.(tag.DefineMorphShape), r)
		if err != nil {
			return nil, err
		}
		table[pos.ID] = m
	}

	c.logger.Debug("built character table", "table", "morphs", "count", len(table))
	c.morphs = table
	return table, nil
}

// Exports returns the exported name table.
func (c *Catalog) Exports() map[string]uint16 {
	if c.exports != nil {
		return c.exports
	}

	table := make(map[string]uint16)
	for _, rec := range c.doc.Tags.Scan(tag.CodeExportAssets) {
		for _, asset := range rec.(tag.ExportAssets).Assets {
			table[asset.Name] = asset.ID
		}
	}
	c.exports = table
	return table
}

// Character returns the character defined with id. Shapes take precedence
// over sprites, sprites over images and images over morph shapes. An
// unknown id yields draw.Missing, never an error.
func (c *Catalog) Character(id uint16) (draw.Character, error) {
	shapes, err := c.Shapes()
	if err != nil {
		return nil, err
	}
	if s, ok := shapes[id]; ok {
		return s, nil
	}

	if s, ok := c.Sprites()[id]; ok {
		if err := s.Resolve(c.timelineBuilder()); err != nil {
			return nil, fmt.Errorf("sprite %d: %w", id, err)
		}
		return s, nil
	}

	images, err := c.Images()
	if err != nil {
		return nil, err
	}
	if img, ok := images[id]; ok {
		return img, nil
	}

	morphs, err := c.Morphs()
	if err != nil {
		return nil, err
	}
	if m, ok := morphs[id]; ok {
		return m, nil
	}

	if id == RootID {
		return c.rootCharacter()
	}
	return draw.Missing{CharacterID: id}, nil
}

// Kind names the table a character came from.
func Kind(ch draw.Character) string {
	switch ch.(type) {
	case *shape.Shape:
		return "shape"
	case *timeline.Sprite:
		return "sprite"
	case *raster.Image:
		return "image"
	case *morph.Shape:
		return "morph"
	case draw.Missing:
		return "missing"
	}
	return "unknown"
}

// ByName returns the character exported under name.
func (c *Catalog) ByName(name string) (draw.Character, error) {
	id, ok := c.Exports()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotExported, name)
	}
	return c.Character(id)
}

// Raster implements path.ImageResolver for bitmap fills.
func (c *Catalog) Raster(id uint16) (path.Raster, bool, error) {
	images, err := c.Images()
	if err != nil {
		return nil, false, err
	}
	img, ok := images[id]
	if !ok {
		return nil, false, nil
	}
	return img, true, nil
}

// Timeline returns the root timeline. With useContainerBounds the declared
// display rectangle replaces the computed bounds.
func (c *Catalog) Timeline(useContainerBounds bool) (*timeline.Timeline, error) {
	if c.root == nil {
		root, err := c.timelineBuilder().Build(c.doc.Tags)
		if err != nil {
			return nil, fmt.Errorf("root timeline: %w", err)
		}
		c.logger.Debug("built root timeline", "frames", root.Len(), "bounds", root.Bounds())
		c.root = root
	}

	if !useContainerBounds {
		return c.root, nil
	}
	if c.rootContainer == nil {
		c.rootContainer = c.root.WithBounds(c.doc.Header.DisplayRect)
	}
	return c.rootContainer, nil
}

func (c *Catalog) rootCharacter() (draw.Character, error) {
	if c.rootSprite == nil {
		root, err := c.Timeline(false)
		if err != nil {
			return nil, err
		}
		c.rootSprite = timeline.Wrap(RootID, root)
	}
	return c.rootSprite, nil
}

func (c *Catalog) timelineBuilder() *timeline.Builder {
	return timeline.NewBuilder(c, timeline.WithMaxObjectExtent(c.maxObjectExtent))
}

// Release drops every memoized table. The catalog rebuilds them on demand.
func (c *Catalog) Release() {
	c.shapes = nil
	c.images = nil
	c.sprites = nil
	c.morphs = nil
	c.exports = nil
	c.root = nil
	c.rootContainer = nil
	c.rootSprite = nil
	c.logger.Debug("released character tables")
}

// Stats counts the definitions of the document and reports which tables are
// currently built.
type Stats struct {
	Version    int            `json:"version"`
	FrameRate  float64        `json:"frameRate"`
	FrameCount int            `json:"frameCount"`
	Display    geom.Rectangle `json:"displayRect"`
	Shapes     int            `json:"shapes"`
	Images     int            `json:"images"`
	Sprites    int            `json:"sprites"`
	Morphs     int            `json:"morphs"`
	Exports    int            `json:"exports"`
	Unknown    int            `json:"unknownTags"`
	Loaded     []string       `json:"loaded"`
}

func (c *Catalog) Stats() Stats {
	h := c.doc.Header
	st := Stats{
		Version:    h.Version,
		FrameRate:  h.FrameRate,
		FrameCount: h.FrameCount,
		Display:    h.DisplayRect,
		Exports:    len(c.Exports()),
	}
	for _, rec := range c.doc.Tags {
		switch rec.(type) {
		case tag.DefineShape:
			st.Shapes++
		case tag.DefineBitsLossless, tag.DefineBitsJPEG:
			st.Images++
		case tag.DefineSprite:
			st.Sprites++
		case tag.DefineMorphShape:
			st.Morphs++
		case tag.Unknown:
			st.Unknown++
		}
	}

	for name, loaded := range map[string]bool{
		"shapes":   c.shapes != nil,
		"images":   c.images != nil,
		"sprites":  c.sprites != nil,
		"morphs":   c.morphs != nil,
		"timeline": c.root != nil,
	} {
		if loaded {
			st.Loaded = append(st.Loaded, name)
		}
	}
	slices.Sort(st.Loaded)
	return st
}

var (
	_ draw.Resolver      = (*Catalog)(nil)
	_ path.ImageResolver = (*Catalog)(nil)
)
