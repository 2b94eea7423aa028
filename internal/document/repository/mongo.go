package repository

import (
	"context"
	"time"

	"github.com/coedit/coedit/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed repository for documents. Access
// filters are embedded in every query (owner or collaborator), mirroring the
// collection-level `$or` lookups of the persistence layout. Version bumps use
// `$inc`, so concurrent updates never lose a counter increment even though
// field values remain last-writer-wins.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// index to make the accessible-documents listing cheap
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "collaborators", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), idx)
	return &MongoRepo{col: col}
}

func accessFilter(id, userID string) bson.M {
	f := bson.M{"$or": bson.A{
		bson.M{"owner": userID},
		bson.M{"collaborators": userID},
	}}
	if id != "" {
		f["_id"] = id
	}
	return f
}

func (m *MongoRepo) Insert(ctx context.Context, doc *document.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.LastModified.IsZero() {
		doc.LastModified = now
	}
	_, err := m.col.InsertOne(ctx, doc)
	return err
}

func (m *MongoRepo) FindAccessible(ctx context.Context, userID string) ([]*document.Document, error) {
	cur, err := m.col.Find(ctx, accessFilter("", userID))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) FindOneAccessible(ctx context.Context, id, userID string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, accessFilter(id, userID)).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Patch(ctx context.Context, id, userID string, p document.Patch) (*document.Document, error) {
	now := time.Now().UTC()
	set := bson.M{"lastModified": now, "updatedAt": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d document.Document
	err := m.col.FindOneAndUpdate(ctx, accessFilter(id, userID), update, opts).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) DeleteOwned(ctx context.Context, id, ownerID string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) AddCollaborator(ctx context.Context, id, ownerID, collabID string) (*document.Document, error) {
	update := bson.M{
		"$addToSet": bson.M{"collaborators": collabID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d document.Document
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": ownerID}, update, opts).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
