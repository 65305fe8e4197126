package datastore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"cmdbd/src/framework"
	"cmdbd/src/settings"
)

// counterCollection tracks the highest allocated public id per collection.
const counterCollection = "framework.counters"

// MongoStore is the MongoDB implementation of Store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.SugaredLogger
}

// NewMongoStore connects to the configured mongo instance.
func NewMongoStore(ctx context.Context, args *settings.Arguments, logger *zap.SugaredLogger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(args.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to store at %s: %w", args.MongoURI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store at %s is not reachable: %w", args.MongoURI, err)
	}

	store := &MongoStore{
		client: client,
		db:     client.Database(args.DatabaseName),
		logger: logger,
	}
	if args.Debug {
		logger.Infof("Connected to store database %s", args.DatabaseName)
	}
	return store, nil
}

// Disconnect closes the underlying client.
func (s *MongoStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Find(ctx context.Context, collection string, spec framework.QuerySpec, results interface{}) (int64, error) {
	filter := spec.Filter
	if filter == nil {
		filter = bson.M{}
	}

	coll := s.db.Collection(collection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting records in %s: %w", collection, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: spec.SortField, Value: int(spec.Order)}}).
		SetSkip(spec.Skip()).
		SetLimit(int64(spec.PageSize))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, fmt.Errorf("error querying %s: %w", collection, err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return 0, fmt.Errorf("error decoding records from %s: %w", collection, err)
	}
	return total, nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, result interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(result)
	if err == mongo.ErrNoDocuments {
		nf := &framework.NotFoundError{Collection: collection}
		if id, ok := filter["public_id"].(int64); ok {
			nf.PublicID = id
		}
		if name, ok := filter["name"].(string); ok {
			nf.Name = name
		}
		return nf
	}
	if err != nil {
		return fmt.Errorf("error reading from %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) NextPublicID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Counter int64 `bson:"counter"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.db.Collection(counterCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"counter": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating public id for %s: %w", collection, err)
	}
	return counter.Counter, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error) {
	if _, err := s.db.Collection(collection).InsertOne(ctx, document); err != nil {
		return 0, fmt.Errorf("error inserting record %d into %s: %w", publicID, collection, err)
	}
	return publicID, nil
}

func (s *MongoStore) Update(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error) {
	result, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"public_id": publicID}, document)
	if err != nil {
		return 0, fmt.Errorf("error updating record %d in %s: %w", publicID, collection, err)
	}
	if result.MatchedCount == 0 {
		return 0, &framework.NotFoundError{Collection: collection, PublicID: publicID}
	}
	return publicID, nil
}

func (s *MongoStore) Delete(ctx context.Context, collection string, publicID int64) (int64, error) {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"public_id": publicID})
	if err != nil {
		return 0, fmt.Errorf("error deleting record %d from %s: %w", publicID, collection, err)
	}
	if result.DeletedCount == 0 {
		return 0, &framework.NotFoundError{Collection: collection, PublicID: publicID}
	}
	return publicID, nil
}
