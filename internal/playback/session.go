package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/swfscene/internal/typeid"
)

// Session is the playback state of one client: the current frame and
// whether it advances on each tick.
type Session struct {
	ID string

	source Source
	info   Info

	mu      sync.Mutex
	current int
	playing bool
}

// NewSession loads the timeline description from source. A zero frame
// rate in the document falls back to fallbackFPS.
func NewSession(ctx context.Context, documentID string, source Source, fallbackFPS float64) (*Session, *Message, error) {
	info, err := source.Info(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load timeline: %w", err)
	}
	if info.FrameRate <= 0 {
		info.FrameRate = fallbackFPS
	}
	if info.FrameRate <= 0 {
		info.FrameRate = 24
	}

	s := &Session{
		ID:     typeid.NewSessionID(),
		source: source,
		info:   info,
	}
	welcome := newMessage(TypeWelcome, s.ID, WelcomePayload{
		DocumentID: documentID,
		Frames:     info.Frames,
		FrameRate:  info.FrameRate,
		Bounds:     info.Bounds,
	})
	return s, welcome, nil
}

// Interval is the time between two frames.
func (s *Session) Interval() time.Duration {
	return time.Duration(float64(time.Second) / s.info.FrameRate)
}

// Handle applies a client message and returns the replies.
func (s *Session) Handle(ctx context.Context, msg *Message) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case TypePlay:
		s.playing = true
		return []*Message{s.render(ctx)}

	case TypePause:
		s.playing = false
		return nil

	case TypeSeek:
		var seek SeekPayload
		if err := json.Unmarshal(msg.Payload, &seek); err != nil {
			return []*Message{s.fail("invalid seek payload")}
		}
		index, err := s.target(ctx, seek)
		if err != nil {
			return []*Message{s.fail(err.Error())}
		}
		s.current = index
		return []*Message{s.render(ctx)}

	default:
		return []*Message{s.fail(fmt.Sprintf("unknown message type %q", msg.Type))}
	}
}

func (s *Session) target(ctx context.Context, seek SeekPayload) (int, error) {
	if seek.Label != "" {
		index, ok, err := s.source.Label(ctx, seek.Label)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("no frame labelled %q", seek.Label)
		}
		return index, nil
	}
	if seek.Frame == nil {
		return 0, fmt.Errorf("seek needs a frame or a label")
	}
	if *seek.Frame < 0 || *seek.Frame >= s.info.Frames {
		return 0, fmt.Errorf("frame %d out of range [0, %d)", *seek.Frame, s.info.Frames)
	}
	return *seek.Frame, nil
}

// Tick advances a playing session by one frame, looping at the end, and
// returns the new frame. A paused session returns nil.
func (s *Session) Tick(ctx context.Context) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || s.info.Frames == 0 {
		return nil
	}
	s.current = (s.current + 1) % s.info.Frames
	return s.render(ctx)
}

func (s *Session) render(ctx context.Context) *Message {
	frame, err := s.source.Frame(ctx, s.current)
	if err != nil {
		return s.fail(err.Error())
	}
	return newMessage(TypeFrame, s.ID, frame)
}

func (s *Session) fail(msg string) *Message {
	return newMessage(TypeError, s.ID, ErrorPayload{Message: msg})
}
