package playback

import (
	"encoding/json"

	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePlay  = "play"
	TypePause = "pause"
	TypeSeek  = "seek"

	// Server to client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeError   = "error"
)

// SeekPayload selects a frame by index or by label. Label wins when both are set.
type SeekPayload struct {
	Frame *int   `json:"frame,omitempty"`
	Label string `json:"label,omitempty"`
}

type WelcomePayload struct {
	DocumentID string         `json:"documentId"`
	Frames     int            `json:"frames"`
	FrameRate  float64        `json:"frameRate"`
	Bounds     geom.Rectangle `json:"bounds"`
}

type FramePayload struct {
	Index    int            `json:"index"`
	Label    string         `json:"label,omitempty"`
	Commands []draw.Command `json:"commands"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ, sessionID string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, SessionID: sessionID, Payload: data}
}
