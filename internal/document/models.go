package document

import "time"

// Document is the persistent document model. A document is visible only to
// its owner and its collaborators; version increases by 1 on every accepted
// content/title update.
type Document struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title"`
	Content       string    `json:"content" bson:"content"`
	Owner         string    `json:"owner" bson:"owner"`
	Collaborators []string  `json:"collaborators" bson:"collaborators"`
	Version       int       `json:"version" bson:"version"`
	LastModified  time.Time `json:"lastModified" bson:"lastModified"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}
