package tag

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a tag dump.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the dump format from a file extension.
func FormatFromPath(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a tag dump produced by the container parser.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return DecodeBytes(data, format)
}

// DecodeBytes decodes a tag dump held in memory.
func DecodeBytes(data []byte, format Format) (*Document, error) {
	if format == FormatYAML {
		var err error
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return &doc, nil
}

// yamlToJSON re-encodes a YAML document as JSON so that both formats share
// one set of decoders.
func yamlToJSON(data []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode yaml dump: %w", err)
	}
	out, err := json.Marshal(normalizeYAML(tree))
	if err != nil {
		return nil, fmt.Errorf("convert yaml dump: %w", err)
	}
	return out, nil
}

func normalizeYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeYAML(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalizeYAML(item)
		}
		return v
	default:
		return v
	}
}

type envelope struct {
	Type string `json:"type"`
	Code *Code  `json:"code"`
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func record[T Record](raw json.RawMessage) (Record, error) {
	return decodeAs[T](raw)
}

func versioned[T Record](version int, set func(*T, int)) func(json.RawMessage) (Record, error) {
	return func(raw json.RawMessage) (Record, error) {
		v, err := decodeAs[T](raw)
		if err != nil {
			return nil, err
		}
		set(&v, version)
		return v, nil
	}
}

var (
	setPlace    = func(p *PlaceObject, v int) { p.Version = v }
	setRemove   = func(r *RemoveObject, v int) { r.Version = v }
	setShape    = func(d *DefineShape, v int) { d.Version = v }
	setLossless = func(d *DefineBitsLossless, v int) { d.Version = v }
	setJPEG     = func(d *DefineBitsJPEG, v int) { d.Version = v }
	setMorph    = func(d *DefineMorphShape, v int) { d.Version = v }
)

var recordDecoders = map[string]func(json.RawMessage) (Record, error){
	"End":                 record[End],
	"ShowFrame":           record[ShowFrame],
	"DoAction":            record[DoAction],
	"FrameLabel":          record[FrameLabel],
	"SetBackgroundColor":  record[SetBackgroundColor],
	"ExportAssets":        record[ExportAssets],
	"JPEGTables":          record[JPEGTables],
	"DefineSprite":        record[DefineSprite],
	"PlaceObject":         versioned(1, setPlace),
	"PlaceObject2":        versioned(2, setPlace),
	"PlaceObject3":        versioned(3, setPlace),
	"RemoveObject":        versioned(1, setRemove),
	"RemoveObject2":       versioned(2, setRemove),
	"DefineShape":         versioned(1, setShape),
	"DefineShape2":        versioned(2, setShape),
	"DefineShape3":        versioned(3, setShape),
	"DefineShape4":        versioned(4, setShape),
	"DefineBitsLossless":  versioned(1, setLossless),
	"DefineBitsLossless2": versioned(2, setLossless),
	"DefineBits":          versioned(1, setJPEG),
	"DefineBitsJPEG2":     versioned(2, setJPEG),
	"DefineBitsJPEG3":     versioned(3, setJPEG),
	"DefineBitsJPEG4":     versioned(4, setJPEG),
	"DefineMorphShape":    versioned(1, setMorph),
	"DefineMorphShape2":   versioned(2, setMorph),
}

// UnmarshalJSON decodes a list of records discriminated by their "type" field.
// Entries with an unrecognized type but an explicit numeric "code" become Unknown.
func (s *Stream) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(Stream, 0, len(raws))
	for i, raw := range raws {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}

		decode, ok := recordDecoders[env.Type]
		if !ok {
			if env.Code == nil {
				return fmt.Errorf("tag %d: unknown type %q", i, env.Type)
			}
			decode = record[Unknown]
		}

		rec, err := decode(raw)
		if err != nil {
			return fmt.Errorf("tag %d (%s): %w", i, env.Type, err)
		}
		out = append(out, rec)
	}

	*s = out
	return nil
}

var shapeRecordDecoders = map[string]func(json.RawMessage) (ShapeRecord, error){
	"styleChange":  shapeRecord[StyleChange],
	"straightEdge": shapeRecord[StraightEdge],
	"curvedEdge":   shapeRecord[CurvedEdge],
	"end":          shapeRecord[EndShape],
}

func shapeRecord[T ShapeRecord](raw json.RawMessage) (ShapeRecord, error) {
	return decodeAs[T](raw)
}

// UnmarshalJSON decodes shape records discriminated by their "type" field.
func (r *ShapeRecords) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(ShapeRecords, 0, len(raws))
	for i, raw := range raws {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("shape record %d: %w", i, err)
		}
		decode, ok := shapeRecordDecoders[env.Type]
		if !ok {
			return fmt.Errorf("shape record %d: unknown type %q", i, env.Type)
		}
		rec, err := decode(raw)
		if err != nil {
			return fmt.Errorf("shape record %d (%s): %w", i, env.Type, err)
		}
		out = append(out, rec)
	}

	*r = out
	return nil
}
