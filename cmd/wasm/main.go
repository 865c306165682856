//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/swfscene/internal/player"
	"github.com/inamate/swfscene/internal/tag"
)

var eng *player.Engine

func main() {
	eng = player.NewEngine()

	// Create the engine API object
	swfscene := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	swfscene.Set("loadDocument", js.FuncOf(loadDocument))
	swfscene.Set("setContainerBounds", js.FuncOf(setContainerBounds))
	swfscene.Set("setPlayhead", js.FuncOf(setPlayhead))
	swfscene.Set("seekLabel", js.FuncOf(seekLabel))
	swfscene.Set("play", js.FuncOf(play))
	swfscene.Set("pause", js.FuncOf(pause))
	swfscene.Set("togglePlay", js.FuncOf(togglePlay))
	swfscene.Set("tick", js.FuncOf(tick))
	swfscene.Set("release", js.FuncOf(release))

	// --- Queries (frontend ← backend) ---
	swfscene.Set("render", js.FuncOf(render))
	swfscene.Set("renderCharacter", js.FuncOf(renderCharacter))
	swfscene.Set("hitTest", js.FuncOf(hitTest))
	swfscene.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	swfscene.Set("getInfo", js.FuncOf(getInfo))
	swfscene.Set("getFrame", js.FuncOf(getFrame))
	swfscene.Set("isPlaying", js.FuncOf(isPlaying))
	swfscene.Set("getFPS", js.FuncOf(getFPS))
	swfscene.Set("getTotalFrames", js.FuncOf(getTotalFrames))

	// Register on global scope
	js.Global().Set("swfscene", swfscene)

	// Signal that WASM is ready
	js.Global().Set("swfsceneWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func failure(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

// loadDocument(dump, format?) where format is "json" (default) or "yaml".
func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing tag dump"})
	}

	format := tag.FormatJSON
	if len(args) > 1 && args[1].Type() == js.TypeString {
		format = tag.Format(args[1].String())
	}

	if err := eng.LoadDocument(args[0].String(), format); err != nil {
		return failure(err)
	}
	return ok()
}

func setContainerBounds(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if err := eng.SetContainerBounds(args[0].Truthy()); err != nil {
		return failure(err)
	}
	return ok()
}

func setPlayhead(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetPlayhead(args[0].Int())
	return nil
}

func seekLabel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SeekLabel(args[0].String()))
}

func play(this js.Value, args []js.Value) interface{} {
	eng.Play()
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	eng.TogglePlay()
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

func release(this js.Value, args []js.Value) interface{} {
	eng.Release()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

// renderCharacter(id, frame?)
func renderCharacter(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing character id"})
	}
	frame := 0
	if len(args) > 1 {
		frame = args[1].Int()
	}
	out, err := eng.RenderCharacter(uint16(args[0].Int()), frame)
	if err != nil {
		return failure(err)
	}
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getPlaybackState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetPlaybackState())
}

func getInfo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetInfo())
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFrame())
}

func isPlaying(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.IsPlaying())
}

func getFPS(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFPS())
}

func getTotalFrames(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetTotalFrames())
}
