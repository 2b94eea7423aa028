package repository

import (
	"context"
	"sync"
	"time"

	"github.com/coedit/coedit/internal/document"
)

// MemoryRepo is an in-memory repository used by unit tests and local
// development without MongoDB. The mutex serializes read-modify-write cycles,
// so version increments are atomic here just as $inc is on Mongo.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func accessible(d *document.Document, userID string) bool {
	if d.Owner == userID {
		return true
	}
	for _, c := range d.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

func clone(d *document.Document) *document.Document {
	cp := *d
	cp.Collaborators = append([]string(nil), d.Collaborators...)
	return &cp
}

func (m *MemoryRepo) Insert(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.LastModified.IsZero() {
		doc.LastModified = now
	}
	m.store[doc.ID] = clone(doc)
	return nil
}

func (m *MemoryRepo) FindAccessible(ctx context.Context, userID string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if accessible(d, userID) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (m *MemoryRepo) FindOneAccessible(ctx context.Context, id, userID string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok || !accessible(d, userID) {
		return nil, ErrNotFound
	}
	return clone(d), nil
}

func (m *MemoryRepo) Patch(ctx context.Context, id, userID string, p document.Patch) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || !accessible(d, userID) {
		return nil, ErrNotFound
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	d.Version++
	now := time.Now().UTC()
	d.LastModified = now
	d.UpdatedAt = now
	return clone(d), nil
}

func (m *MemoryRepo) DeleteOwned(ctx context.Context, id, ownerID string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || d.Owner != ownerID {
		return nil, ErrNotFound
	}
	delete(m.store, id)
	return clone(d), nil
}

func (m *MemoryRepo) AddCollaborator(ctx context.Context, id, ownerID, collabID string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || d.Owner != ownerID {
		return nil, ErrNotFound
	}
	present := false
	for _, c := range d.Collaborators {
		if c == collabID {
			present = true
			break
		}
	}
	if !present {
		d.Collaborators = append(d.Collaborators, collabID)
		d.UpdatedAt = time.Now().UTC()
	}
	return clone(d), nil
}
