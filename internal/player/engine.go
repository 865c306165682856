// Package player drives one document in process: it owns the catalog, the
// playhead and the last rendered frame. The wasm bridge is its only user.
package player

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
	"github.com/inamate/swfscene/internal/timeline"
)

var ErrNoDocument = errors.New("no document loaded")

// Engine is not safe for concurrent use; the browser calls it from one thread.
type Engine struct {
	catalog  *catalog.Catalog
	timeline *timeline.Timeline

	useContainerBounds bool

	// Playback state
	frame   int
	playing bool
	fps     float64

	// Last render, reused until the playhead moves.
	rendered string
	dirty    bool
}

func NewEngine() *Engine {
	return &Engine{fps: 24, dirty: true}
}

// --- Commands ---

// LoadDocument replaces the current document with a tag dump.
func (e *Engine) LoadDocument(data string, format tag.Format) error {
	doc, err := tag.DecodeBytes([]byte(data), format)
	if err != nil {
		return err
	}

	c := catalog.New(doc)
	tl, err := c.Timeline(e.useContainerBounds)
	if err != nil {
		return err
	}

	e.catalog = c
	e.timeline = tl
	e.fps = doc.Header.FrameRate
	if e.fps <= 0 {
		e.fps = 24
	}
	e.frame = 0
	e.playing = false
	e.dirty = true
	return nil
}

// SetContainerBounds switches between computed and declared stage bounds.
func (e *Engine) SetContainerBounds(on bool) error {
	e.useContainerBounds = on
	if e.catalog == nil {
		return nil
	}
	tl, err := e.catalog.Timeline(on)
	if err != nil {
		return err
	}
	e.timeline = tl
	e.dirty = true
	return nil
}

// SetPlayhead moves to frame, clamped to the timeline.
func (e *Engine) SetPlayhead(frame int) {
	total := e.GetTotalFrames()
	if frame >= total {
		frame = total - 1
	}
	if frame < 0 {
		frame = 0
	}
	if e.frame != frame {
		e.frame = frame
		e.dirty = true
	}
}

// SeekLabel moves to the first frame labelled name.
func (e *Engine) SeekLabel(name string) bool {
	if e.timeline == nil {
		return false
	}
	i, ok := e.timeline.FrameByLabel(name)
	if ok {
		e.SetPlayhead(i)
	}
	return ok
}

func (e *Engine) Play() {
	e.playing = true
}

func (e *Engine) Pause() {
	e.playing = false
}

func (e *Engine) TogglePlay() {
	e.playing = !e.playing
}

// Tick advances the frame if playing and returns draw commands.
// This is called once per animation frame from the frontend.
func (e *Engine) Tick() string {
	if e.playing && e.timeline != nil {
		e.frame = (e.frame + 1) % e.timeline.Len()
		e.dirty = true
	}
	return e.Render()
}

// Release drops the catalog's memoized tables, keeping the playhead.
func (e *Engine) Release() {
	if e.catalog == nil {
		return
	}
	e.catalog.Release()
	if tl, err := e.catalog.Timeline(e.useContainerBounds); err == nil {
		e.timeline = tl
	}
	e.dirty = true
}

// --- Queries ---

// Render returns the draw commands of the current frame as JSON.
func (e *Engine) Render() string {
	if e.timeline == nil {
		return "[]"
	}
	if e.dirty {
		e.rendered = commandsJSON(draw.Record(e.timeline, e.frame))
		e.dirty = false
	}
	return e.rendered
}

// RenderCharacter returns the draw commands of one character at frame.
func (e *Engine) RenderCharacter(id uint16, frame int) (string, error) {
	if e.catalog == nil {
		return "", ErrNoDocument
	}
	ch, err := e.catalog.Character(id)
	if err != nil {
		return "", err
	}
	return commandsJSON(draw.Record(ch, frame)), nil
}

// HitTest returns the topmost object under the pixel (x, y) as JSON, or ""
// when nothing is hit.
func (e *Engine) HitTest(x, y float64) string {
	if e.timeline == nil {
		return ""
	}
	obj, ok := e.timeline.Frame(e.frame).HitTest(twips(x), twips(y))
	if !ok {
		return ""
	}
	data, _ := json.Marshal(map[string]interface{}{
		"depth":       obj.Depth,
		"characterId": obj.CharacterID,
		"name":        obj.Name,
	})
	return string(data)
}

// GetPlaybackState returns the current playback state as JSON.
func (e *Engine) GetPlaybackState() string {
	data, _ := json.Marshal(map[string]interface{}{
		"frame":       e.frame,
		"label":       e.label(),
		"playing":     e.playing,
		"fps":         e.fps,
		"totalFrames": e.GetTotalFrames(),
	})
	return string(data)
}

// GetInfo returns the catalog statistics as JSON.
func (e *Engine) GetInfo() string {
	if e.catalog == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.catalog.Stats())
	return string(data)
}

func (e *Engine) GetFrame() int {
	return e.frame
}

func (e *Engine) IsPlaying() bool {
	return e.playing
}

func (e *Engine) GetFPS() float64 {
	return e.fps
}

func (e *Engine) GetTotalFrames() int {
	if e.timeline == nil {
		return 0
	}
	return e.timeline.Len()
}

func (e *Engine) label() string {
	if e.timeline == nil {
		return ""
	}
	return e.timeline.Frame(e.frame).Label
}

func twips(px float64) int {
	return int(math.Round(px * geom.TwipsPerPixel))
}

func commandsJSON(cmds []draw.Command) string {
	if len(cmds) == 0 {
		return "[]"
	}
	data, err := json.Marshal(cmds)
	if err != nil {
		return "[]"
	}
	return string(data)
}
