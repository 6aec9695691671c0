package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"procurement/models"
)

// EventPublisher handles publishing procurement domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// NewBaseEvent stamps a fresh event header
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishBidSubmitted publishes BidSubmitted event
func (ep *EventPublisher) PublishBidSubmitted(ctx context.Context, event *models.BidSubmittedEvent) error {
	return ep.producer.PublishEvent(ctx, bidKey(event.BidID), event)
}

// PublishBidAwarded publishes BidAwarded event
func (ep *EventPublisher) PublishBidAwarded(ctx context.Context, event *models.BidAwardedEvent) error {
	return ep.producer.PublishEvent(ctx, bidKey(event.BidID), event)
}

// PublishBidReceived publishes BidReceived event
func (ep *EventPublisher) PublishBidReceived(ctx context.Context, event *models.BidReceivedEvent) error {
	return ep.producer.PublishEvent(ctx, bidKey(event.BidID), event)
}

// PublishSupplierRated publishes SupplierRated event
func (ep *EventPublisher) PublishSupplierRated(ctx context.Context, event *models.SupplierRatedEvent) error {
	return ep.producer.PublishEvent(ctx, bidKey(event.BidID), event)
}

func bidKey(bidID int64) string {
	return fmt.Sprintf("bid-%d", bidID)
}
