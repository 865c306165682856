// Package asset serves the raster characters of loaded documents as PNG.
package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/library"
	"github.com/inamate/swfscene/internal/tag"
)

var ErrNotImage = errors.New("character is not an image")

// maxSide bounds the size of a resampled image, in pixels.
const maxSide = 4096

// Handler serves decoded bitmaps.
type Handler struct {
	library *library.Service
}

func NewHandler(lib *library.Service) *Handler {
	return &Handler{library: lib}
}

// Register mounts the image route on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/documents/{docId}/images/{charId:[0-9]+}.png", h.Image).Methods("GET")
}

// Image handles GET /documents/{docId}/images/{charId}.png. Optional width
// and height resample the bitmap; a single one keeps the aspect ratio.
// smooth=false selects nearest-neighbor sampling.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	vars := mux.Vars(r)

	id, err := strconv.ParseUint(vars["charId"], 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}

	q := r.URL.Query()
	width, okW := side(q.Get("width"))
	height, okH := side(q.Get("height"))
	if !okW || !okH {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("width and height must be 1-%d", maxSide))
		return
	}
	smooth := true
	if v := q.Get("smooth"); v != "" {
		if smooth, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid smooth flag")
			return
		}
	}

	var buf bytes.Buffer
	err = h.library.With(r.Context(), vars["docId"], userID, func(c *catalog.Catalog) error {
		images, err := c.Images()
		if err != nil {
			return err
		}
		img, ok := images[uint16(id)]
		if !ok {
			return fmt.Errorf("%w: %d", ErrNotImage, id)
		}
		iw, ih := img.Size()
		switch {
		case width == 0 && height == 0:
			width, height = iw, ih
		case width == 0:
			width = max(1, iw*height/max(ih, 1))
		case height == 0:
			height = max(1, ih*width/max(iw, 1))
		}
		pixels, err := img.Scaled(width, height, smooth)
		if err != nil {
			return err
		}
		return png.Encode(&buf, pixels)
	})
	if err != nil {
		switch {
		case errors.Is(err, library.ErrNotFound), errors.Is(err, ErrNotImage):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, library.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, tag.ErrInvalidData):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, tag.ErrNotImplemented):
			writeError(w, http.StatusNotImplemented, err.Error())
		default:
			slog.Error("encode image failed", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to encode image")
		}
		return
	}

	// Documents are immutable once loaded, so the image never changes.
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// side parses an optional dimension. Empty means unset (0).
func side(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxSide {
		return 0, false
	}
	return n, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
