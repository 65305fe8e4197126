package datastore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"cmdbd/src/framework"
)

// Store is the backing-store interface the framework services consume. The
// engine behind it is out of scope here; only the shape of queries and the
// responses matter.
type Store interface {
	// Find runs the query spec against a collection, decodes the matching
	// page into results (a pointer to a slice) and returns the total number
	// of matching records across all pages.
	Find(ctx context.Context, collection string, spec framework.QuerySpec, results interface{}) (int64, error)

	// FindOne decodes the first record matching the filter.
	FindOne(ctx context.Context, collection string, filter bson.M, result interface{}) error

	// NextPublicID allocates the next public id for a collection.
	NextPublicID(ctx context.Context, collection string) (int64, error)

	// Insert stores a new record and returns its public id.
	Insert(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error)

	// Update replaces the record with the given public id and returns it.
	Update(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error)

	// Delete removes the record with the given public id and returns it.
	Delete(ctx context.Context, collection string, publicID int64) (int64, error)
}
