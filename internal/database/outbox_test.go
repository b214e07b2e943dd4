package database

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	// Requires a throwaway Postgres with the schema applied; skipped until
	// the integration environment is wired into CI.
	t.Skip("Test database not configured")
	return nil
}

func TestOutboxRepository_InsertWithTx(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewOutboxRepository(db)

	t.Run("defaults are filled in on insert", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "listing",
			AggregateID:   "listing-1",
			EventType:     "PRICE_RECORDED",
			Payload:       json.RawMessage(`{"listing_id":"listing-1","sell_price":2412.30}`),
		}

		err := db.WithTx(ctx, func(tx pgx.Tx) error {
			return repo.InsertWithTx(ctx, tx, event)
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, OutboxStatusPending, event.Status)
		assert.Equal(t, DefaultTargetStream, event.TargetStream)
		assert.Equal(t, 0, event.RetryCount)
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("rollback leaves no event behind", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "listing",
			AggregateID:   "listing-2",
			EventType:     "PRICE_RECORDED",
			Payload:       json.RawMessage(`{"listing_id":"listing-2"}`),
		}

		err := db.WithTx(ctx, func(tx pgx.Tx) error {
			if err := repo.InsertWithTx(ctx, tx, event); err != nil {
				return err
			}
			return pgx.ErrTxClosed
		})
		assert.Error(t, err)

		pending, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, "listing-2", e.AggregateID)
		}
	})
}

func TestOutboxRepository_Retries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewOutboxRepository(db)

	event := &OutboxEvent{
		AggregateType: "listing",
		AggregateID:   "listing-1",
		EventType:     "PRICE_RECORDED",
		Payload:       json.RawMessage(`{"listing_id":"listing-1"}`),
	}
	require.NoError(t, db.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.InsertWithTx(ctx, tx, event)
	}))

	t.Run("failed event is parked after the retry budget", func(t *testing.T) {
		for i := 0; i < MaxRetryCount; i++ {
			require.NoError(t, repo.MarkFailed(ctx, event.ID, assert.AnError))
		}

		pending, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, event.ID, e.ID, "dead-lettered event must not be picked up")
		}
	})
}
