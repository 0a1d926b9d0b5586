package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buffcomply/dashboard/models"
)

// MongoStore reads the collection the scraping API writes to.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logrus.Logger
}

func OpenMongo(ctx context.Context, opts Options, logger *logrus.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"database":   opts.Database,
		"collection": opts.Collection,
	}).Info("MongoDB document store connected")

	return &MongoStore{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
		logger:     logger,
	}, nil
}

func (s *MongoStore) LatestJobs(ctx context.Context, limit int) ([]models.ScrapeJobResult, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := s.collection.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find scrape results: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]models.ScrapeJobResult, 0, clampLimit(limit))
	for cursor.Next(ctx) {
		job, err := decodeDocument(cursor.Current)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate scrape results: %w", err)
	}
	return jobs, nil
}

func (s *MongoStore) GetJob(ctx context.Context, id string) (models.ScrapeJobResult, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filter = bson.D{{Key: "_id", Value: oid}}
	}

	raw, err := s.collection.FindOne(ctx, filter).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ScrapeJobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return models.ScrapeJobResult{}, fmt.Errorf("find scrape result %s: %w", id, err)
	}
	return decodeDocument(raw)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// decodeDocument renders a stored document as relaxed extended JSON, which keeps the
// field order of the BSON document, and decodes that into the job model.
func decodeDocument(raw bson.Raw) (models.ScrapeJobResult, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return models.ScrapeJobResult{}, fmt.Errorf("render scrape result: %w", err)
	}
	var job models.ScrapeJobResult
	if err := json.Unmarshal(data, &job); err != nil {
		return models.ScrapeJobResult{}, fmt.Errorf("decode scrape result: %w", err)
	}
	return job, nil
}
