package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reconerrors "gstrecon/internal/reconciliation/errors"
	"gstrecon/pkg/config"
	mongotx "gstrecon/pkg/db/mongo"
	"gstrecon/pkg/model"
)

const (
	UploadsCollection = "Uploads"
)

type UploadRepository interface {
	Create(ctx context.Context, u *model.Upload) error
	FindByID(ctx context.Context, id string) (*model.Upload, error)
	FindByChecksum(ctx context.Context, checksum string) (*model.Upload, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoUploadRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoUploadRepository(cfg *config.Config) UploadRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUploadRepository{
		cfg:        cfg,
		collection: db.Collection(UploadsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoUploadRepository) Create(ctx context.Context, u *model.Upload) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reconerrors.ErrDuplicateChecksum, u.Checksum)
		}
		return fmt.Errorf("failed to create upload: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUploadRepository) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reconerrors.ErrInvalidID, id)
	}

	var u model.Upload
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reconerrors.ErrUploadNotFound, id)
		}
		return nil, fmt.Errorf("failed to find upload: %w", err)
	}

	return &u, nil
}

func (r *mongoUploadRepository) FindByChecksum(ctx context.Context, checksum string) (*model.Upload, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var u model.Upload
	err := r.collection.FindOne(ctx, bson.M{"checksum": checksum}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: checksum %s", reconerrors.ErrUploadNotFound, checksum)
		}
		return nil, fmt.Errorf("failed to find upload by checksum: %w", err)
	}

	return &u, nil
}

func (r *mongoUploadRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
