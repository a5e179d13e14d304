// Package store is the collection abstraction the services talk to. Mongo is the
// production implementation; Memory backs tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a single-document operation matches nothing.
var ErrNotFound = errors.New("document not found")

// FindOptions shapes a multi-document read. Zero values mean "no restriction".
type FindOptions struct {
	Projection bson.D
	Sort       bson.D
	Skip       int64
	Limit      int64
}

// Collection is a document collection with atomic single-document writes.
type Collection interface {
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.M, out interface{}) error
	Count(ctx context.Context, filter bson.M) (int64, error)
	Insert(ctx context.Context, doc interface{}) (primitive.ObjectID, error)
	// Update applies $set to the first match and decodes the updated document into out
	// when out is non-nil.
	Update(ctx context.Context, filter bson.M, set bson.M, out interface{}) error
	// Delete removes every match and reports how many were removed.
	Delete(ctx context.Context, filter bson.M) (int64, error)
	// Average returns the mean of a numeric field over the matches and the number of
	// documents that contributed to it.
	Average(ctx context.Context, filter bson.M, field string) (float64, int64, error)
}

// ByID is the filter for a single document id.
func ByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}
