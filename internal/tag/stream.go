package tag

import (
	"iter"
	"slices"
)

// Position locates a record inside a Stream. HasID is set for definition
// records, and ID is then the character they define.
type Position struct {
	Index int
	Code  Code
	ID    uint16
	HasID bool
}

// Stream is an ordered sequence of tag records.
type Stream []Record

// Scan yields the records whose code is in codes, with their position.
// With no codes every record is yielded.
func (s Stream) Scan(codes ...Code) iter.Seq2[Position, Record] {
	return func(yield func(Position, Record) bool) {
		for i, rec := range s {
			code := rec.Code()
			if len(codes) > 0 && !slices.Contains(codes, code) {
				continue
			}
			pos := Position{Index: i, Code: code}
			if def, ok := rec.(Definition); ok {
				pos.ID = def.CharacterID()
				pos.HasID = true
			}
			if !yield(pos, rec) {
				return
			}
		}
	}
}

// From returns the stream resumed at index.
func (s Stream) From(index int) Stream {
	if index >= len(s) {
		return nil
	}
	return s[index:]
}

// At returns the record at pos.
func (s Stream) At(pos Position) Record {
	return s[pos.Index]
}
