package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/goldyhq/goldy/internal/database"
	"github.com/goldyhq/goldy/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypePriceRecorded is published when a new price observation is persisted
	EventTypePriceRecorded EventType = "PRICE_RECORDED"
)

// PriceRecordedPayload is the payload for PRICE_RECORDED events
type PriceRecordedPayload struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	RecordID       string    `json:"record_id"`
	ListingID      string    `json:"listing_id"`
	SellPrice      *float64  `json:"sell_price,omitempty"`
	BuyPrice       *float64  `json:"buy_price,omitempty"`
	SpotPrice      *float64  `json:"spot_price,omitempty"`
	PremiumPercent *float64  `json:"premium_percent,omitempty"`
	Currency       string    `json:"currency"`
	DeliveryDays   *int      `json:"delivery_days,omitempty"`
	InStock        bool      `json:"in_stock"`
	ScrapedAt      time.Time `json:"scraped_at"`
	Source         string    `json:"source"`
}

// Publisher writes price events through the transactional outbox so a record
// and its event commit or roll back together.
type Publisher struct {
	outbox *database.OutboxRepository
	logger *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		outbox: database.NewOutboxRepository(db),
		logger: logger.With("component", "event_publisher"),
	}
}

// PriceRecorded publishes a PRICE_RECORDED event inside the caller's
// transaction. Implements database.EventPublisher.
func (p *Publisher) PriceRecorded(ctx context.Context, tx pgx.Tx, record *models.PriceRecord) error {
	payload := &PriceRecordedPayload{
		EventID:        uuid.New().String(),
		EventType:      string(EventTypePriceRecorded),
		Timestamp:      time.Now(),
		RecordID:       record.ID,
		ListingID:      record.ListingID,
		SellPrice:      record.SellPrice,
		BuyPrice:       record.BuyPrice,
		SpotPrice:      record.SpotPrice,
		PremiumPercent: record.PremiumPercent,
		Currency:       record.Currency,
		DeliveryDays:   record.DeliveryDays,
		InStock:        record.InStock,
		ScrapedAt:      record.ScrapedAt,
		Source:         "scraper",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	outboxEvent := &database.OutboxEvent{
		AggregateType: "listing",
		AggregateID:   record.ListingID,
		EventType:     string(EventTypePriceRecorded),
		Payload:       data,
		TargetStream:  database.DefaultTargetStream,
	}

	if err := p.outbox.InsertWithTx(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	p.logger.Debug("event queued to outbox",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"listing_id", record.ListingID,
		"outbox_id", outboxEvent.ID,
	)

	return nil
}
