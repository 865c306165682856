package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/tag"
)

const boxDump = `{
  "header": {"version": 8, "frameRate": 12, "frameCount": 1,
             "displayRect": {"xmin": 0, "xmax": 2000, "ymin": 0, "ymax": 2000}},
  "tags": [
    {"type": "SetBackgroundColor", "color": {"red": 255, "green": 255, "blue": 255}},
    {"type": "DefineShape", "id": 1,
     "bounds": {"xmin": 0, "xmax": 100, "ymin": 0, "ymax": 100},
     "styles": {"fills": [{"kind": "solid", "color": {"red": 255}}]},
     "records": [
       {"type": "styleChange", "moveTo": {"x": 0, "y": 0}, "fillStyle1": 1},
       {"type": "straightEdge", "dx": 100},
       {"type": "straightEdge", "dy": 100},
       {"type": "straightEdge", "dx": -100},
       {"type": "straightEdge", "dy": -100},
       {"type": "end"}
     ]},
    {"type": "DefineBitsLossless", "id": 5, "format": 4, "width": 1, "height": 1},
    {"type": "ExportAssets", "assets": [{"id": 1, "name": "Box"}]},
    {"type": "PlaceObject2", "depth": 1, "characterId": 1},
    {"type": "FrameLabel", "name": "start"},
    {"type": "ShowFrame"},
    {"type": "End"}
  ]
}`

const boxYAML = `
header:
  version: 8
  frameRate: 12
  frameCount: 1
tags:
  - type: ShowFrame
  - type: End
`

func newServer(t *testing.T) (*Service, *mux.Router) {
	t.Helper()
	svc := NewService()
	r := mux.NewRouter()
	NewHandler(svc, false).Register(r.PathPrefix("/api").Subrouter())
	return svc, r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, body string) Document {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/documents?name=box", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body)
	}
	var doc Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	return doc
}

func TestCreateDeduplicates(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	first, created, err := svc.Create(ctx, "box", "u1", []byte(boxDump), tag.FormatJSON)
	if err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}
	again, created, err := svc.Create(ctx, "renamed", "u1", []byte(boxDump), tag.FormatJSON)
	if err != nil || created {
		t.Fatalf("second Create = %v, %v", created, err)
	}
	if again.ID != first.ID {
		t.Errorf("duplicate upload got id %s, want %s", again.ID, first.ID)
	}

	other, created, err := svc.Create(ctx, "box", "u2", []byte(boxDump), tag.FormatJSON)
	if err != nil || !created {
		t.Fatalf("Create for another owner = %v, %v", created, err)
	}
	if other.ID == first.ID {
		t.Error("owners share a document")
	}
	if first.Fingerprint != Fingerprint([]byte(boxDump)) || len(first.Fingerprint) != 64 {
		t.Errorf("fingerprint = %q", first.Fingerprint)
	}
}

func TestCreateRejectsMalformedDump(t *testing.T) {
	svc := NewService()
	_, _, err := svc.Create(context.Background(), "", "", []byte(`{"tags": [{"type": "Bogus"}]}`), tag.FormatJSON)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("Create error = %v, want ErrInvalidDocument", err)
	}
}

func TestOwnership(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	doc, _, err := svc.Create(ctx, "box", "u1", []byte(boxDump), tag.FormatJSON)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, doc.ID, "u2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get by stranger = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, "doc_01h455vb4pex5vsknk084sn02q", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, "proj_01h455vb4pex5vsknk084sn02q", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get wrong prefix = %v, want ErrNotFound", err)
	}
	if got := svc.List(ctx, "u2"); len(got) != 0 {
		t.Errorf("List(u2) = %v", got)
	}
	var deleted []string
	svc.OnDelete(func(id string) { deleted = append(deleted, id) })
	if err := svc.Delete(ctx, doc.ID, "u2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete by stranger = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, doc.ID, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, doc.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff([]string{doc.ID}, deleted); diff != "" {
		t.Errorf("delete hooks mismatch (-want +got):\n%s", diff)
	}
}

func TestWithHonorsContext(t *testing.T) {
	svc := NewService()
	doc, _, err := svc.Create(context.Background(), "box", "", []byte(boxDump), tag.FormatJSON)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err = svc.With(ctx, doc.ID, "", func(*catalog.Catalog) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("With on cancelled context = %v, called %v", err, called)
	}
}

func TestHandlerDocumentLifecycle(t *testing.T) {
	_, r := newServer(t)
	doc := upload(t, r, boxDump)

	if rec := do(t, r, http.MethodPost, "/api/documents", boxDump); rec.Code != http.StatusOK {
		t.Errorf("duplicate upload status = %d, want 200", rec.Code)
	}

	rec := do(t, r, http.MethodGet, "/api/documents", "")
	var list []Document
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != doc.ID || list[0].Name != "box" {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, r, http.MethodGet, "/api/documents/"+doc.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var d details
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if d.Stats.Shapes != 1 || d.Stats.Images != 1 || d.Stats.Exports != 1 || d.Stats.FrameRate != 12 {
		t.Errorf("stats = %+v", d.Stats)
	}
	if d.Background == nil || d.Background.Red != 255 {
		t.Errorf("background = %+v", d.Background)
	}

	if rec := do(t, r, http.MethodPost, "/api/documents/"+doc.ID+"/release", ""); rec.Code != http.StatusNoContent {
		t.Errorf("release status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/api/documents/"+doc.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/documents/"+doc.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestHandlerUploadErrors(t *testing.T) {
	_, r := newServer(t)

	if rec := do(t, r, http.MethodPost, "/api/documents", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty upload status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/documents", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed upload status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/documents?format=yaml", boxYAML); rec.Code != http.StatusCreated {
		t.Errorf("yaml upload status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestHandlerCharacters(t *testing.T) {
	_, r := newServer(t)
	doc := upload(t, r, boxDump)
	base := "/api/documents/" + doc.ID

	tests := []struct {
		name   string
		target string
		status int
		kind   string
	}{
		{"shape", "/characters/1", http.StatusOK, "shape"},
		{"export", "/exports/Box", http.StatusOK, "shape"},
		{"not exported", "/exports/Nope", http.StatusNotFound, ""},
		{"undecodable image", "/characters/5", http.StatusOK, "image"},
		{"root", "/characters/0", http.StatusOK, "sprite"},
		{"bad frame", "/characters/1?frame=x", http.StatusBadRequest, ""},
		{"out of range id", "/characters/70000", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, base+tt.target, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if tt.kind == "" {
				return
			}
			var view characterView
			if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if view.Kind != tt.kind || len(view.Commands) == 0 {
				t.Errorf("view = %+v", view)
			}
		})
	}
}

func TestHandlerInvalidDataIsUnprocessable(t *testing.T) {
	_, r := newServer(t)
	broken := `{"header": {"version": 8}, "tags": [
	  {"type": "DefineShape", "id": 1,
	   "bounds": {"xmin": 0, "xmax": 10, "ymin": 0, "ymax": 10},
	   "styles": {"fills": [{"kind": "clippedBitmap", "bitmapId": 9}]},
	   "records": [{"type": "end"}]},
	  {"type": "End"}]}`
	doc := upload(t, r, broken)

	rec := do(t, r, http.MethodGet, "/api/documents/"+doc.ID+"/characters/1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 (body %s)", rec.Code, rec.Body)
	}
}

func TestHandlerFrames(t *testing.T) {
	_, r := newServer(t)
	doc := upload(t, r, boxDump)
	base := "/api/documents/" + doc.ID + "/frames/"

	rec := do(t, r, http.MethodGet, base+"0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var view frameView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var ops []string
	for _, cmd := range view.Commands {
		ops = append(ops, cmd.Op)
	}
	if diff := cmp.Diff([]string{"area", "area", "path"}, ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if view.Label != "start" || view.Count != 1 || view.Bounds.XMax != 100 {
		t.Errorf("view = %+v", view)
	}

	rec = do(t, r, http.MethodGet, base+"0?container=true", "")
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Bounds.XMax != 2000 {
		t.Errorf("container bounds = %+v", view.Bounds)
	}

	if rec := do(t, r, http.MethodGet, base+"3", ""); rec.Code != http.StatusNotFound {
		t.Errorf("out of range status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, base+"0?container=maybe", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad container flag status = %d", rec.Code)
	}
}

func TestHandlerScopesByUser(t *testing.T) {
	svc := NewService()
	authSvc := auth.NewService("secret")
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authSvc.AuthMiddleware)
	NewHandler(svc, false).Register(api)

	token := func(sub string) string {
		tok, err := authSvc.Issue(sub, 0)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return "Bearer " + tok
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(boxDump))
	req.Header.Set("Authorization", token("alice"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", rec.Code)
	}
	var doc Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OwnerID != "alice" {
		t.Errorf("owner = %q", doc.OwnerID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID, nil)
	req.Header.Set("Authorization", token("mallory"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger status = %d, want 403", rec.Code)
	}
}
