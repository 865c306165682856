// Package library keeps uploaded tag dumps in memory, one catalog per
// document, and serves them over HTTP.
package library

import (
	"bytes"
	"cmp"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/tag"
	"github.com/inamate/swfscene/internal/typeid"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidDocument = errors.New("invalid document")
)

type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type entry struct {
	mu      sync.Mutex
	doc     Document
	catalog *catalog.Catalog
}

// Service owns the loaded documents. Each catalog is guarded by its own
// mutex, so requests against different documents run in parallel.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
	prints  map[string]string // owner + fingerprint -> document id
	opts    []catalog.Option

	onDelete []func(id string)
}

// NewService returns an empty library. opts apply to every catalog it creates.
func NewService(opts ...catalog.Option) *Service {
	return &Service{
		entries: make(map[string]*entry),
		prints:  make(map[string]string),
		opts:    opts,
	}
}

// Fingerprint is the hex BLAKE2b-256 digest of a dump.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Create decodes data and stores it as a new document. Uploading the same
// bytes twice as the same owner returns the existing document and false.
func (s *Service) Create(ctx context.Context, name, ownerID string, data []byte, format tag.Format) (*Document, bool, error) {
	fp := Fingerprint(data)
	key := ownerID + "/" + fp

	s.mu.RLock()
	id, ok := s.prints[key]
	s.mu.RUnlock()
	if ok {
		if doc, err := s.Get(ctx, id, ownerID); err == nil {
			return doc, false, nil
		}
	}

	parsed, err := tag.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if name == "" {
		name = fp[:12]
	}

	e := &entry{
		doc: Document{
			ID:          typeid.NewDocumentID(),
			Name:        name,
			OwnerID:     ownerID,
			Fingerprint: fp,
			Size:        len(data),
			CreatedAt:   time.Now().UTC(),
		},
		catalog: catalog.New(parsed, s.opts...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.prints[key]; ok {
		if existing, ok := s.entries[id]; ok {
			doc := existing.doc
			return &doc, false, nil
		}
	}
	s.entries[e.doc.ID] = e
	s.prints[key] = e.doc.ID

	doc := e.doc
	return &doc, true, nil
}

func (s *Service) lookup(id, userID string) (*entry, error) {
	if err := typeid.Validate(id, typeid.PrefixDocument); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if e.doc.OwnerID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Document, error) {
	e, err := s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	doc := e.doc
	return &doc, nil
}

// List returns the documents owned by userID, oldest first.
func (s *Service) List(ctx context.Context, userID string) []Document {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.entries))
	for _, e := range s.entries {
		if e.doc.OwnerID == userID {
			docs = append(docs, e.doc)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return docs
}

// OnDelete registers fn to run after a document is deleted.
func (s *Service) OnDelete(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	e, err := s.lookup(id, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, id)
	delete(s.prints, e.doc.OwnerID+"/"+e.doc.Fingerprint)
	hooks := slices.Clone(s.onDelete)
	s.mu.Unlock()

	e.mu.Lock()
	e.catalog.Release()
	e.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

// With runs fn while holding the document's catalog exclusively.
func (s *Service) With(ctx context.Context, id, userID string, fn func(*catalog.Catalog) error) error {
	e, err := s.lookup(id, userID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(e.catalog)
}

// Release drops the memoized tables of a document's catalog.
func (s *Service) Release(ctx context.Context, id, userID string) error {
	return s.With(ctx, id, userID, func(c *catalog.Catalog) error {
		c.Release()
		return nil
	})
}
