package models

import "time"

// User represents an application user (a principal that can own or
// collaborate on documents). Documents holds the ids of owned documents and
// is mutated when documents are created or deleted.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Documents    []string  `bson:"documents" json:"documents"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
