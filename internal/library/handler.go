package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/geom"
	"github.com/inamate/swfscene/internal/tag"
)

const maxUploadSize = 64 << 20

var errFrameOutOfRange = errors.New("frame out of range")

type Handler struct {
	service            *Service
	useContainerBounds bool
}

// NewHandler serves the documents of service. useContainerBounds is the
// default for frame requests that do not pass ?container=.
func NewHandler(service *Service, useContainerBounds bool) *Handler {
	return &Handler{service: service, useContainerBounds: useContainerBounds}
}

// Register mounts the document routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/documents", h.List).Methods("GET")
	r.HandleFunc("/documents", h.Create).Methods("POST")
	r.HandleFunc("/documents/{docId}", h.Get).Methods("GET")
	r.HandleFunc("/documents/{docId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/documents/{docId}/characters/{charId:[0-9]+}", h.Character).Methods("GET")
	r.HandleFunc("/documents/{docId}/exports/{name}", h.Export).Methods("GET")
	r.HandleFunc("/documents/{docId}/frames/{frame:[0-9]+}", h.Frame).Methods("GET")
	r.HandleFunc("/documents/{docId}/release", h.Release).Methods("POST")
}

type details struct {
	Document
	Background *geom.Color   `json:"background,omitempty"`
	Stats      catalog.Stats `json:"stats"`
}

type characterView struct {
	ID       uint16         `json:"id"`
	Kind     string         `json:"kind"`
	Bounds   geom.Rectangle `json:"bounds"`
	Frames   int            `json:"frames"`
	Frame    int            `json:"frame"`
	Commands []draw.Command `json:"commands"`
}

type frameView struct {
	Index    int            `json:"index"`
	Count    int            `json:"count"`
	Label    string         `json:"label,omitempty"`
	Bounds   geom.Rectangle `json:"bounds"`
	Commands []draw.Command `json:"commands"`
}

// Create handles POST /documents. The body is the raw dump; ?format=yaml or
// a YAML content type selects the YAML decoder.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document body is required"})
		return
	}

	doc, created, err := h.service.Create(r.Context(), r.URL.Query().Get("name"), userID, data, requestFormat(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, doc)
}

func requestFormat(r *http.Request) tag.Format {
	switch {
	case strings.EqualFold(r.URL.Query().Get("format"), string(tag.FormatYAML)):
		return tag.FormatYAML
	case strings.Contains(r.Header.Get("Content-Type"), "yaml"):
		return tag.FormatYAML
	}
	return tag.FormatJSON
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.service.List(r.Context(), userID))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	docID := mux.Vars(r)["docId"]

	doc, err := h.service.Get(r.Context(), docID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := details{Document: *doc}
	err = h.service.With(r.Context(), docID, userID, func(c *catalog.Catalog) error {
		if bg, ok := c.Document().Background(); ok {
			resp.Background = &bg
		}
		resp.Stats = c.Stats()
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	docID := mux.Vars(r)["docId"]

	if err := h.service.Delete(r.Context(), docID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	docID := mux.Vars(r)["docId"]

	if err := h.service.Release(r.Context(), docID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Character handles GET /documents/{docId}/characters/{charId}?frame=N.
func (h *Handler) Character(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["charId"], 10, 16)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid character id"})
		return
	}
	h.character(w, r, func(c *catalog.Catalog) (draw.Character, error) {
		return c.Character(uint16(id))
	})
}

// Export handles GET /documents/{docId}/exports/{name}?frame=N.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.character(w, r, func(c *catalog.Catalog) (draw.Character, error) {
		return c.ByName(name)
	})
}

func (h *Handler) character(w http.ResponseWriter, r *http.Request, lookup func(*catalog.Catalog) (draw.Character, error)) {
	userID := auth.UserIDFromContext(r.Context())
	docID := mux.Vars(r)["docId"]

	frame, ok := queryInt(w, r, "frame")
	if !ok {
		return
	}

	var view characterView
	err := h.service.With(r.Context(), docID, userID, func(c *catalog.Catalog) error {
		ch, err := lookup(c)
		if err != nil {
			return err
		}
		view = characterView{
			ID:       ch.ID(),
			Kind:     catalog.Kind(ch),
			Bounds:   ch.Bounds(),
			Frames:   ch.FramesCount(false),
			Frame:    frame,
			Commands: draw.Record(ch, frame),
		}
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Frame handles GET /documents/{docId}/frames/{frame}?container=bool.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	docID := mux.Vars(r)["docId"]

	index, err := strconv.Atoi(mux.Vars(r)["frame"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid frame"})
		return
	}

	useContainer := h.useContainerBounds
	if v := r.URL.Query().Get("container"); v != "" {
		useContainer, err = strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid container flag"})
			return
		}
	}

	var view frameView
	err = h.service.With(r.Context(), docID, userID, func(c *catalog.Catalog) error {
		tl, err := c.Timeline(useContainer)
		if err != nil {
			return err
		}
		if index >= tl.Len() {
			return fmt.Errorf("%w: %d of %d", errFrameOutOfRange, index, tl.Len())
		}
		view = frameView{
			Index:    index,
			Count:    tl.Len(),
			Label:    tl.Frame(index).Label,
			Bounds:   tl.Bounds(),
			Commands: draw.Record(tl, index),
		}
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrInvalidDocument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotExported), errors.Is(err, errFrameOutOfRange):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, tag.ErrInvalidData):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, tag.ErrNotImplemented):
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
