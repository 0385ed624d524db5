package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reconerrors "gstrecon/internal/reconciliation/errors"
	"gstrecon/internal/reconciliation/validator"
	"gstrecon/pkg/config"
	mongotx "gstrecon/pkg/db/mongo"
	"gstrecon/pkg/kafka"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/model"
)

type mockUploadRepository struct {
	createFunc         func(ctx context.Context, u *model.Upload) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Upload, error)
	findByChecksumFunc func(ctx context.Context, checksum string) (*model.Upload, error)

	mu      sync.Mutex
	created []*model.Upload
}

func (m *mockUploadRepository) Create(ctx context.Context, u *model.Upload) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, u); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = fmt.Sprintf("%024x", len(m.created)+1)
	}
	m.created = append(m.created, u)
	return nil
}

func (m *mockUploadRepository) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", reconerrors.ErrUploadNotFound, id)
}

func (m *mockUploadRepository) FindByChecksum(ctx context.Context, checksum string) (*model.Upload, error) {
	if m.findByChecksumFunc != nil {
		return m.findByChecksumFunc(ctx, checksum)
	}
	return nil, fmt.Errorf("%w: checksum %s", reconerrors.ErrUploadNotFound, checksum)
}

func (m *mockUploadRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockResultRepository struct {
	createFunc   func(ctx context.Context, res *model.ReconciliationResult) error
	findByIDFunc func(ctx context.Context, id string) (*model.ReconciliationResult, error)
	findAllFunc  func(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, error)
	countFunc    func(ctx context.Context, uploadID string) (int64, error)

	created []*model.ReconciliationResult
}

func (m *mockResultRepository) Create(ctx context.Context, res *model.ReconciliationResult) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, res); err != nil {
			return err
		}
	}
	if res.ID == "" {
		res.ID = "65f1a2b3c4d5e6f708192a3c"
	}
	res.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.created = append(m.created, res)
	return nil
}

func (m *mockResultRepository) FindByID(ctx context.Context, id string) (*model.ReconciliationResult, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", reconerrors.ErrNotFound, id)
}

func (m *mockResultRepository) FindAll(ctx context.Context, uploadID string, limit int, offset int64) ([]*model.ReconciliationResult, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, uploadID, limit, offset)
	}
	return []*model.ReconciliationResult{}, nil
}

func (m *mockResultRepository) Count(ctx context.Context, uploadID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, uploadID)
	}
	return 0, nil
}

type mockPublisher struct {
	err      error
	messages []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.messages = append(m.messages, msg)
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                    logger.Discard(),
		ReadTimeout:            time.Second,
		WriteTimeout:           time.Second,
		ReconcileBaseTimeout:   5 * time.Second,
		ReconcilePerRowTimeout: time.Millisecond,
		PartialThreshold:       config.DefaultPartialThreshold,
		MaxPartialThreshold:    config.DefaultMaxPartialThreshold,
		PreviewRows:            2,
	}
}

func newTestService(uploads *mockUploadRepository, results *mockResultRepository, pub EventPublisher, cfg *config.Config) ReconciliationService {
	if cfg == nil {
		cfg = testConfig()
	}
	return NewReconciliationService(uploads, results, validator.NewReconcileValidator(cfg.Log), pub, cfg)
}
