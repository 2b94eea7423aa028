package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/coedit/coedit/internal/document"
	"github.com/coedit/coedit/internal/document/repository"
	"github.com/coedit/coedit/pkg/logger"
)

var (
	// ErrNotFound is returned for absent documents and for documents the
	// principal may not access; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers missing/empty required input.
	ErrValidation = errors.New("validation failed")
)

// OwnerIndex maintains the owning user's document-id list. Satisfied by
// users.Service.
type OwnerIndex interface {
	AddDocument(ctx context.Context, userID, docID string) error
	RemoveDocument(ctx context.Context, userID, docID string) error
}

// Service implements the document operations used by the handler layer.
// All access decisions are delegated to the repository's access-filtered
// queries.
type Service struct {
	repo   repository.Repository
	owners OwnerIndex
}

func NewService(repo repository.Repository, owners OwnerIndex) *Service {
	return &Service{repo: repo, owners: owners}
}

// Create stores a new document owned by userID with version 1. The owner's
// document list is updated in a second step; a failure there leaves the
// document reachable through the access filter but missing from the
// denormalized list, which we accept and log.
func (s *Service) Create(ctx context.Context, userID, title, content string) (*document.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation
	}
	d := &document.Document{
		ID:            newID(),
		Title:         title,
		Content:       content,
		Owner:         userID,
		Collaborators: []string{},
		Version:       1,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	if err := s.owners.AddDocument(ctx, userID, d.ID); err != nil {
		logger.Warnf("document %s created but owner list update failed for user %s: %v", d.ID, userID, err)
	}
	return d, nil
}

// List returns all documents where userID is owner or collaborator.
func (s *Service) List(ctx context.Context, userID string) ([]*document.Document, error) {
	return s.repo.FindAccessible(ctx, userID)
}

// Get returns the document if userID is owner or collaborator, ErrNotFound otherwise.
func (s *Service) Get(ctx context.Context, userID, id string) (*document.Document, error) {
	d, err := s.repo.FindOneAccessible(ctx, id, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return d, nil
}

// Update merges the supplied fields onto the document and bumps version by 1.
// A title supplied as empty (after trimming) is a validation error; absent
// fields are left unchanged.
func (s *Service) Update(ctx context.Context, userID, id string, p document.Patch) (*document.Document, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return nil, ErrValidation
		}
		p.Title = &t
	}
	d, err := s.repo.Patch(ctx, id, userID, p)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return d, nil
}

// Delete removes a document owned by userID and returns it. Collaborators
// cannot delete; for them the document simply appears not to exist.
func (s *Service) Delete(ctx context.Context, userID, id string) (*document.Document, error) {
	d, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.owners.RemoveDocument(ctx, userID, d.ID); err != nil {
		logger.Warnf("document %s deleted but owner list update failed for user %s: %v", d.ID, userID, err)
	}
	return d, nil
}

// AddCollaborator adds collabID to the collaborator set; only the owner may
// do this and re-adding an existing collaborator is a no-op.
func (s *Service) AddCollaborator(ctx context.Context, userID, id, collabID string) (*document.Document, error) {
	collabID = strings.TrimSpace(collabID)
	if collabID == "" {
		return nil, ErrValidation
	}
	d, err := s.repo.AddCollaborator(ctx, id, userID, collabID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return d, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func newID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "doc_" + hex.EncodeToString(b)
}
