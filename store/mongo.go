package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	Bootcamps = "bootcamps"
	Courses   = "courses"
	Users     = "users"
)

// Mongo adapts a *mongo.Collection to Collection.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo wraps the named collection of db.
func NewMongo(db *mongo.Database, name string) *Mongo {
	return &Mongo{coll: db.Collection(name)}
}

func (m *Mongo) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	findOptions := options.Find()
	if len(opts.Projection) > 0 {
		findOptions.SetProjection(opts.Projection)
	}
	if len(opts.Sort) > 0 {
		findOptions.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	cursor, err := m.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *Mongo) FindOne(ctx context.Context, filter bson.M, out interface{}) error {
	err := m.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return m.coll.CountDocuments(ctx, filter)
}

func (m *Mongo) Insert(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	result, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (m *Mongo) Update(ctx context.Context, filter bson.M, set bson.M, out interface{}) error {
	result := m.coll.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if result.Err() != nil || out == nil {
		return result.Err()
	}
	return result.Decode(out)
}

func (m *Mongo) Delete(ctx context.Context, filter bson.M) (int64, error) {
	result, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (m *Mongo) Average(ctx context.Context, filter bson.M, field string) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$" + field},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Average, rows[0].Count, nil
}

// EnsureIndexes creates the unique, lookup and geospatial indexes the API relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		Bootcamps: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		},
		Courses: {
			{Keys: bson.D{{Key: "bootcamp", Value: 1}}},
		},
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
