package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"IotMonitor.api/internal/models"
)

type DocumentDBOptions struct {
	URI        string
	Account    string
	AuthKey    string
	Database   string
	Collection string
}

// DocumentDBRepository stores measurements in a Mongo API compatible document
// database (Cosmos DB, DocumentDB, MongoDB).
type DocumentDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewDocumentDBRepository(ctx context.Context, opts DocumentDBOptions) (*DocumentDBRepository, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.AuthKey != "" {
		clientOpts.SetAuth(options.Credential{
			Username: opts.Account,
			Password: opts.AuthKey,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to document database")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping document database")
	}

	return &DocumentDBRepository{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// InsertMeasurement inserts the document as-is. The generated ObjectID carries
// the insert time used for history queries.
func (r *DocumentDBRepository) InsertMeasurement(ctx context.Context, doc models.Document) error {
	if _, err := r.collection.InsertOne(ctx, bson.M(doc)); err != nil {
		return errors.Wrap(err, "insert measurement document")
	}
	return nil
}

func (r *DocumentDBRepository) FindMeasurements(ctx context.Context, q models.HistoryQuery) ([]models.Record, error) {
	cur, err := r.collection.Find(ctx, historyFilter(q), options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit)))
	if err != nil {
		return nil, errors.Wrap(err, "find measurement documents")
	}
	defer cur.Close(ctx)

	records := make([]models.Record, 0, q.Limit)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode measurement document")
		}
		records = append(records, recordFromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate measurement documents")
	}
	return records, nil
}

func (r *DocumentDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func historyFilter(q models.HistoryQuery) bson.M {
	idRange := bson.M{}
	if !q.From.IsZero() {
		idRange["$gte"] = primitive.NewObjectIDFromTimestamp(q.From)
	}
	if !q.To.IsZero() {
		// ObjectIDs only carry whole seconds.
		idRange["$lt"] = primitive.NewObjectIDFromTimestamp(q.To.Truncate(time.Second).Add(time.Second))
	}
	if len(idRange) == 0 {
		return bson.M{}
	}
	return bson.M{"_id": idRange}
}

func recordFromBSON(raw bson.M) models.Record {
	var rec models.Record
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		rec.ID = oid.Hex()
		rec.Time = oid.Timestamp().UTC()
		delete(raw, "_id")
	}
	rec.Document = models.Document(raw)
	return rec
}
