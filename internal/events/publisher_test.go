package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goldyhq/goldy/internal/database"
	"github.com/goldyhq/goldy/internal/models"
)

// MockTx is a mock for a pgx transaction
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return pgconn.CommandTag{}, args.Error(0)
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, sql, args)
	if mockArgs.Get(0) == nil {
		return nil, mockArgs.Error(1)
	}
	return mockArgs.Get(0).(pgx.Rows), mockArgs.Error(1)
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	mockArgs := m.Called(ctx, sql, args)
	return mockArgs.Get(0).(pgx.Row)
}

func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	args := m.Called(ctx, b)
	return args.Get(0).(pgx.BatchResults)
}

func (m *MockTx) LargeObjects() pgx.LargeObjects {
	args := m.Called()
	return args.Get(0).(pgx.LargeObjects)
}

func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	args := m.Called(ctx, name, sql)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pgconn.StatementDescription), args.Error(1)
}

func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	args := m.Called(ctx, tableName, columnNames, rowSrc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTx) Conn() *pgx.Conn {
	args := m.Called()
	return args.Get(0).(*pgx.Conn)
}

func TestPublisher_PriceRecorded(t *testing.T) {
	ctx := context.Background()

	sell := 2412.30
	premium := 3.2
	record := &models.PriceRecord{
		ID:             "record-1",
		ListingID:      "listing-1",
		SellPrice:      &sell,
		PremiumPercent: &premium,
		Currency:       "USD",
		InStock:        true,
		ScrapedAt:      time.Now(),
	}

	t.Run("queues a PRICE_RECORDED event in the caller's transaction", func(t *testing.T) {
		mockTx := new(MockTx)

		var capturedSQL string
		var capturedArgs []interface{}
		mockTx.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
			capturedSQL = sql
			return strings.Contains(sql, "INSERT INTO outbox_event")
		}), mock.MatchedBy(func(args []interface{}) bool {
			capturedArgs = args
			return true
		})).Return(nil)

		p := newTestPublisher(t)

		err := p.PriceRecorded(ctx, mockTx, record)
		require.NoError(t, err)

		mockTx.AssertExpectations(t)
		assert.Contains(t, capturedSQL, "outbox_event")

		// Insert order: id, aggregate_type, aggregate_id, event_type, payload, ...
		require.GreaterOrEqual(t, len(capturedArgs), 5)
		assert.Equal(t, "listing", capturedArgs[1])
		assert.Equal(t, "listing-1", capturedArgs[2])
		assert.Equal(t, string(EventTypePriceRecorded), capturedArgs[3])

		var payload PriceRecordedPayload
		require.NoError(t, json.Unmarshal(capturedArgs[4].(json.RawMessage), &payload))
		assert.Equal(t, "record-1", payload.RecordID)
		assert.Equal(t, "listing-1", payload.ListingID)
		require.NotNil(t, payload.SellPrice)
		assert.InDelta(t, 2412.30, *payload.SellPrice, 0.0001)
		require.NotNil(t, payload.PremiumPercent)
		assert.InDelta(t, 3.2, *payload.PremiumPercent, 0.0001)
		assert.Equal(t, "scraper", payload.Source)
		assert.NotEmpty(t, payload.EventID)
	})

	t.Run("insert failure surfaces to the caller", func(t *testing.T) {
		mockTx := new(MockTx)
		mockTx.On("Exec", ctx, mock.Anything, mock.Anything).Return(assert.AnError)

		p := newTestPublisher(t)

		err := p.PriceRecorded(ctx, mockTx, record)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert outbox event")
	})
}

func newTestPublisher(t *testing.T) *Publisher {
	t.Helper()
	return &Publisher{
		outbox: database.NewOutboxRepository(nil),
		logger: slog.Default(),
	}
}
