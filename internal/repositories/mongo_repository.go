// internal/repositories/mongo_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDocumentRepository struct {
	db *mongo.Database
}

func NewMongoDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{db: db}
}

// Connect opens a client for uri and pings it so an unreachable server fails
// here instead of on the first write. The caller owns the returned client.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *MongoDocumentRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return client, NewMongoDocumentRepository(client.Database(database)), nil
}

// UpsertByID issues one ordered bulk write of ReplaceOne(upsert) models.
// The bulk is not transactional: on failure the models before the failing
// one stay applied and their counts are returned along with the error.
func (r *MongoDocumentRepository) UpsertByID(ctx context.Context, collection string, docs []domain.Document) (domain.UpsertResult, error) {
	if len(docs) == 0 {
		return domain.UpsertResult{}, nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for i, doc := range docs {
		id, ok := domain.DocumentID(doc)
		if !ok {
			return domain.UpsertResult{}, fmt.Errorf("document %d: %w", i, ErrMissingID)
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: domain.IDKey, Value: id}}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	res, err := r.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	var out domain.UpsertResult
	if res != nil {
		out = domain.UpsertResult{
			Upserted: res.UpsertedCount,
			Matched:  res.MatchedCount,
			Modified: res.ModifiedCount,
		}
	}
	if err != nil {
		return out, fmt.Errorf("bulk upsert %s: %w", collection, err)
	}
	return out, nil
}

func (r *MongoDocumentRepository) InsertMany(ctx context.Context, collection string, docs []domain.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		batch[i] = doc
	}

	_, err := r.db.Collection(collection).InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		return insertedBeforeFailure(len(docs), err), fmt.Errorf("insert %s: %w", collection, err)
	}
	return int64(len(docs)), nil
}

// insertedBeforeFailure reports how many documents of an ordered insert were
// written. The driver's InsertedIDs lists every attempted document, so the
// count comes from the index of the first write error instead.
func insertedBeforeFailure(attempted int, err error) int64 {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return 0
	}
	if len(bwe.WriteErrors) == 0 {
		// only the write concern failed; the documents were sent
		return int64(attempted)
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return int64(first)
}

func (r *MongoDocumentRepository) DeleteAll(ctx context.Context, collection string) (int64, error) {
	res, err := r.db.Collection(collection).DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (r *MongoDocumentRepository) CountAll(ctx context.Context, collection string) (int64, error) {
	n, err := r.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}
