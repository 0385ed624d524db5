package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrecon/internal/reconciliation/service"
	apperrors "gstrecon/pkg/errors"
	"gstrecon/pkg/kafka"
	"gstrecon/pkg/logger"
	"gstrecon/pkg/model"
)

// mockService only implements Reconcile; other methods panic via the nil embed.
type mockService struct {
	mock.Mock
	service.ReconciliationService
}

func (m *mockService) Reconcile(ctx context.Context, req *model.ReconcileRequest, origin service.Origin) (*model.ReconcileResponse, error) {
	args := m.Called(ctx, req, origin)
	resp, _ := args.Get(0).(*model.ReconcileResponse)
	return resp, args.Error(1)
}

func requestMessage(t *testing.T, correlationID string) kafka.Message {
	t.Helper()
	msg, err := NewRequestMessage(&model.ReconcileRequest{
		UploadID:     "65f1a2b3c4d5e6f708192a3b",
		GSTColumns:   []string{"Invoice"},
		TallyColumns: []string{"Voucher"},
	}, correlationID, EventSource)
	require.NoError(t, err)
	return msg
}

func TestNewRequestMessage(t *testing.T) {
	msg := requestMessage(t, "")

	assert.Equal(t, "65f1a2b3c4d5e6f708192a3b", msg.Key)
	assert.Equal(t, kafka.EventReconciliationRequested, msg.GetEventType())
	assert.NotEmpty(t, msg.GetCorrelationID(), "a correlation id is generated when none is given")
	assert.NotEmpty(t, msg.GetEventID())
}

func TestHandle_Success(t *testing.T) {
	svc := &mockService{}
	svc.On("Reconcile", mock.Anything,
		mock.MatchedBy(func(req *model.ReconcileRequest) bool { return req.UploadID == "65f1a2b3c4d5e6f708192a3b" }),
		service.Origin{Source: model.SourceKafka, CorrelationID: "corr-1"},
	).Return(&model.ReconcileResponse{ID: "r1"}, nil)

	err := NewRequestHandler(svc, logger.Discard()).Handle(context.Background(), requestMessage(t, "corr-1"))

	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestHandle_CorrelationFallsBackToEventID(t *testing.T) {
	msg := requestMessage(t, "corr-1")
	delete(msg.Headers, kafka.HeaderCorrelationID)

	svc := &mockService{}
	svc.On("Reconcile", mock.Anything, mock.Anything,
		service.Origin{Source: model.SourceKafka, CorrelationID: msg.GetEventID()},
	).Return(&model.ReconcileResponse{ID: "r1"}, nil)

	require.NoError(t, NewRequestHandler(svc, logger.Discard()).Handle(context.Background(), msg))
	svc.AssertExpectations(t)
}

func TestHandle_RejectsUndecodableMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) kafka.Message
	}{
		{
			name: "wrong event type",
			msg: func(t *testing.T) kafka.Message {
				msg := requestMessage(t, "")
				msg.Headers[kafka.HeaderEventType] = kafka.EventReconciliationCompleted
				return msg
			},
		},
		{
			name: "invalid json",
			msg: func(t *testing.T) kafka.Message {
				msg := requestMessage(t, "")
				msg.Value = []byte(`{"upload_id":`)
				return msg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}

			err := NewRequestHandler(svc, logger.Discard()).Handle(context.Background(), tt.msg(t))

			require.Error(t, err)
			assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
			assert.False(t, kafka.ShouldRetry(err, 0, 3))
			svc.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_ServiceErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		svcErr   error
		wantType kafka.ErrorType
	}{
		{"validation", apperrors.Validation("bad mapping", nil), kafka.ErrorTypePermanent},
		{"upload missing", apperrors.NotFoundWithID("Upload", "x"), kafka.ErrorTypePermanent},
		{"timeout", apperrors.Timeout("Reconciliation exceeded 1s"), kafka.ErrorTypePermanent},
		{"database", apperrors.Internal("Failed to store reconciliation result", errors.New("write failed")), kafka.ErrorTypeTransient},
		{"unavailable", apperrors.Unavailable("mongodb"), kafka.ErrorTypeTransient},
		{"plain error", errors.New("boom"), kafka.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Reconcile", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.svcErr)

			err := NewRequestHandler(svc, logger.Discard()).Handle(context.Background(), requestMessage(t, ""))

			require.Error(t, err)
			assert.Equal(t, tt.wantType, kafka.ClassifyError(err))
			assert.ErrorIs(t, err, tt.svcErr)
		})
	}
}
