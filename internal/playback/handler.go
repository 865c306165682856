package playback

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/library"
)

// Handler upgrades /ws/documents/{docId}/play requests into playback sessions.
type Handler struct {
	hub                *Hub
	library            *library.Service
	fallbackFPS        float64
	useContainerBounds bool
	originPatterns     []string
}

type Options struct {
	FallbackFPS        float64
	UseContainerBounds bool
	// AllowedOrigins are full origins such as http://localhost:5173.
	AllowedOrigins []string
}

func NewHandler(hub *Hub, lib *library.Service, opts Options) *Handler {
	h := &Handler{
		hub:                hub,
		library:            lib,
		fallbackFPS:        opts.FallbackFPS,
		useContainerBounds: opts.UseContainerBounds,
	}
	for _, origin := range opts.AllowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			h.originPatterns = append(h.originPatterns, u.Host)
		}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID := mux.Vars(r)["docId"]

	if _, err := h.library.Get(r.Context(), documentID, userID); err != nil {
		switch {
		case errors.Is(err, library.ErrNotFound):
			http.Error(w, "document not found", http.StatusNotFound)
		case errors.Is(err, library.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	source := DocumentSource{
		Library:            h.library,
		DocumentID:         documentID,
		UserID:             userID,
		UseContainerBounds: h.useContainerBounds,
	}
	session, welcome, err := NewSession(r.Context(), documentID, source, h.fallbackFPS)
	if err != nil {
		slog.Error("start playback failed", "error", err, "document", documentID)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, session, userID, documentID, uuid.New().String())
	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	client.Send(welcome)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
