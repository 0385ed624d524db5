package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reconerrors "gstrecon/internal/reconciliation/errors"
	"gstrecon/pkg/config"
	"gstrecon/pkg/model"
)

const (
	ResultsCollection = "Reconciliation_results"
)

type ResultRepository interface {
	Create(ctx context.Context, res *model.ReconciliationResult) error
	FindByID(ctx context.Context, id string) (*model.ReconciliationResult, error)
	// FindAll lists results newest first without their buckets. An empty
	// uploadID lists every result.
	FindAll(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, error)
	Count(ctx context.Context, uploadID string) (int64, error)
}

type mongoResultRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResultRepository(cfg *config.Config) ResultRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResultRepository{
		cfg:        cfg,
		collection: db.Collection(ResultsCollection),
	}
}

func (r *mongoResultRepository) Create(ctx context.Context, res *model.ReconciliationResult) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation result: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoResultRepository) FindByID(ctx context.Context, id string) (*model.ReconciliationResult, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reconerrors.ErrInvalidID, id)
	}

	var res model.ReconciliationResult
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reconerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reconciliation result: %w", err)
	}

	return &res, nil
}

func (r *mongoResultRepository) FindAll(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"result": 0})

	cursor, err := r.collection.Find(ctx, uploadFilter(uploadID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation results: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]*model.ReconciliationResult, 0)
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode reconciliation results: %w", err)
	}
	return results, nil
}

func (r *mongoResultRepository) Count(ctx context.Context, uploadID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, uploadFilter(uploadID))
	if err != nil {
		return 0, fmt.Errorf("failed to count reconciliation results: %w", err)
	}
	return count, nil
}

func uploadFilter(uploadID string) bson.M {
	if uploadID == "" {
		return bson.M{}
	}
	return bson.M{"upload_id": uploadID}
}
