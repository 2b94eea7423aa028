package repository

import (
	"context"
	"errors"

	"github.com/coedit/coedit/internal/document"
)

var (
	// ErrNotFound covers both genuinely absent documents and documents the
	// caller may not access; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("document not found")
)

// Repository defines persistence operations for documents. Access control is
// part of every query: lookups filter on owner/collaborator membership so an
// inaccessible document behaves exactly like a missing one.
type Repository interface {
	Insert(ctx context.Context, doc *document.Document) error
	FindAccessible(ctx context.Context, userID string) ([]*document.Document, error)
	FindOneAccessible(ctx context.Context, id, userID string) (*document.Document, error)
	// Patch applies the partial update to a document accessible to userID,
	// increments version by 1 and refreshes lastModified. Returns the updated
	// document.
	Patch(ctx context.Context, id, userID string, p document.Patch) (*document.Document, error)
	// DeleteOwned removes a document owned by ownerID and returns it.
	DeleteOwned(ctx context.Context, id, ownerID string) (*document.Document, error)
	// AddCollaborator adds collabID to the collaborator set of a document
	// owned by ownerID; adding an existing collaborator is a no-op.
	AddCollaborator(ctx context.Context, id, ownerID, collabID string) (*document.Document, error)
}
