package users

import (
	"context"
	"sync"
	"time"

	"github.com/coedit/coedit/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository used by unit tests and
// local development without MongoDB.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	email map[string]string // email -> id
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: map[string]*models.User{}, email: map[string]string{}}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.email[u.Email]; exists {
		return ErrDuplicateEmail
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Documents == nil {
		u.Documents = []string{}
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.email[u.Email] = u.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[email]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) AddDocument(ctx context.Context, userID, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil
	}
	for _, d := range u.Documents {
		if d == docID {
			return nil
		}
	}
	u.Documents = append(u.Documents, docID)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) RemoveDocument(ctx context.Context, userID, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil
	}
	out := u.Documents[:0]
	for _, d := range u.Documents {
		if d != docID {
			out = append(out, d)
		}
	}
	u.Documents = out
	u.UpdatedAt = time.Now().UTC()
	return nil
}
