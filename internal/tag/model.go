package tag

import (
	"encoding/json"

	"github.com/inamate/swfscene/internal/geom"
)

// Record is a typed tag produced by the container parser.
type Record interface {
	Code() Code
}

// Definition is a record that defines a character.
type Definition interface {
	Record
	CharacterID() uint16
}

type Header struct {
	Version     int            `json:"version"`
	DisplayRect geom.Rectangle `json:"displayRect"`
	FrameRate   float64        `json:"frameRate"`
	FrameCount  int            `json:"frameCount"`
}

// Document is a parsed container: its header and top-level tag stream.
type Document struct {
	Header Header `json:"header"`
	Tags   Stream `json:"tags"`
}

// Background returns the color set by the first SetBackgroundColor tag.
func (d *Document) Background() (geom.Color, bool) {
	for _, rec := range d.Tags.Scan(CodeSetBackgroundColor) {
		return rec.(SetBackgroundColor).Color, true
	}
	return geom.Color{}, false
}

// --- Control and display list ---

type End struct{}

type ShowFrame struct{}

type DoAction struct {
	Actions []byte `json:"actions"`
}

type FrameLabel struct {
	Name   string `json:"name"`
	Anchor bool   `json:"anchor"`
}

type SetBackgroundColor struct {
	Color geom.Color `json:"color"`
}

// PlaceObject covers PlaceObject, PlaceObject2 and PlaceObject3. Optional
// fields are nil when the tag does not carry them. A nil CharacterID means
// the object already at Depth is modified in place.
type PlaceObject struct {
	Version        int                  `json:"version"`
	Depth          uint16               `json:"depth"`
	Move           bool                 `json:"move"`
	CharacterID    *uint16              `json:"characterId"`
	Matrix         *geom.Matrix         `json:"matrix"`
	ColorTransform *geom.ColorTransform `json:"colorTransform"`
	Ratio          *uint16              `json:"ratio"`
	Name           *string              `json:"name"`
	ClipDepth      *uint16              `json:"clipDepth"`
	Filters        []Filter             `json:"filters"`
	BlendMode      *BlendMode           `json:"blendMode"`
}

// Filter is a display filter attached by PlaceObject3. The engine passes it
// through untouched.
type Filter struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// RemoveObject covers RemoveObject (version 1, carries the character id) and RemoveObject2.
type RemoveObject struct {
	Version     int    `json:"version"`
	CharacterID uint16 `json:"characterId"`
	Depth       uint16 `json:"depth"`
}

type Asset struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
}

type ExportAssets struct {
	Assets []Asset `json:"assets"`
}

// --- Definitions ---

type DefineShape struct {
	Version    int             `json:"version"`
	ID         uint16          `json:"id"`
	Bounds     geom.Rectangle  `json:"bounds"`
	EdgeBounds *geom.Rectangle `json:"edgeBounds"`
	Styles     Styles          `json:"styles"`
	Records    ShapeRecords    `json:"records"`
}

type DefineSprite struct {
	ID         uint16 `json:"id"`
	FrameCount int    `json:"frameCount"`
	Tags       Stream `json:"tags"`
}

// Lossless bitmap formats.
const (
	BitmapColorMapped = 3
	BitmapRGB15       = 4
	BitmapRGB32       = 5
)

// DefineBitsLossless covers DefineBitsLossless (version 1, no alpha) and
// DefineBitsLossless2. Data is zlib-compressed.
type DefineBitsLossless struct {
	Version        int    `json:"version"`
	ID             uint16 `json:"id"`
	Format         uint8  `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ColorTableSize int    `json:"colorTableSize"`
	Data           []byte `json:"data"`
}

// DefineBitsJPEG covers DefineBits (version 1, relies on JPEGTables) and
// DefineBitsJPEG2 to 4. AlphaData is the zlib-compressed alpha plane of versions 3 and 4.
type DefineBitsJPEG struct {
	Version   int    `json:"version"`
	ID        uint16 `json:"id"`
	Data      []byte `json:"data"`
	AlphaData []byte `json:"alphaData"`
	Deblock   uint16 `json:"deblock"`
}

type JPEGTables struct {
	Data []byte `json:"data"`
}

type DefineMorphShape struct {
	Version     int              `json:"version"`
	ID          uint16           `json:"id"`
	StartBounds geom.Rectangle   `json:"startBounds"`
	EndBounds   geom.Rectangle   `json:"endBounds"`
	FillStyles  []MorphFillStyle `json:"fillStyles"`
	LineStyles  []MorphLineStyle `json:"lineStyles"`
	StartEdges  ShapeRecords     `json:"startEdges"`
	EndEdges    ShapeRecords     `json:"endEdges"`
}

// Unknown is a tag the dump carried but this package has no record type for.
type Unknown struct {
	Type Code   `json:"code"`
	Data []byte `json:"data"`
}

func (End) Code() Code                { return CodeEnd }
func (ShowFrame) Code() Code          { return CodeShowFrame }
func (DoAction) Code() Code           { return CodeDoAction }
func (FrameLabel) Code() Code         { return CodeFrameLabel }
func (SetBackgroundColor) Code() Code { return CodeSetBackgroundColor }
func (ExportAssets) Code() Code       { return CodeExportAssets }
func (JPEGTables) Code() Code         { return CodeJPEGTables }
func (DefineSprite) Code() Code       { return CodeDefineSprite }
func (u Unknown) Code() Code          { return u.Type }

func (p PlaceObject) Code() Code {
	switch p.Version {
	case 1:
		return CodePlaceObject
	case 3:
		return CodePlaceObject3
	default:
		return CodePlaceObject2
	}
}

func (r RemoveObject) Code() Code {
	if r.Version == 1 {
		return CodeRemoveObject
	}
	return CodeRemoveObject2
}

func (d DefineShape) Code() Code {
	switch d.Version {
	case 2:
		return CodeDefineShape2
	case 3:
		return CodeDefineShape3
	case 4:
		return CodeDefineShape4
	default:
		return CodeDefineShape
	}
}

func (d DefineBitsLossless) Code() Code {
	if d.Version == 2 {
		return CodeDefineBitsLossless2
	}
	return CodeDefineBitsLossless
}

func (d DefineBitsJPEG) Code() Code {
	switch d.Version {
	case 1:
		return CodeDefineBits
	case 3:
		return CodeDefineBitsJPEG3
	case 4:
		return CodeDefineBitsJPEG4
	default:
		return CodeDefineBitsJPEG2
	}
}

func (d DefineMorphShape) Code() Code {
	if d.Version == 2 {
		return CodeDefineMorphShape2
	}
	return CodeDefineMorphShape
}

func (d DefineShape) CharacterID() uint16        { return d.ID }
func (d DefineSprite) CharacterID() uint16       { return d.ID }
func (d DefineBitsLossless) CharacterID() uint16 { return d.ID }
func (d DefineBitsJPEG) CharacterID() uint16     { return d.ID }
func (d DefineMorphShape) CharacterID() uint16   { return d.ID }
