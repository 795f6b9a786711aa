// Package consumer applies platform events to the feed's read side.
package consumer

import (
	"context"
	"errors"
	"fmt"

	"girlfanz/pkg/logger"
	"girlfanz/pkg/queue"
	"girlfanz/services/feed/internal/entity"
)

const QueueName = "feed.events"

// RoutingKeys lists the events the feed binds to.
var RoutingKeys = []string{
	queue.EventPurchaseCompleted,
	queue.EventPostPublished,
	queue.EventPostDeleted,
}

type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, purchase entity.Purchase) error
}

type PageInvalidator interface {
	Invalidate(ctx context.Context) error
}

type EventHandler struct {
	purchases PurchaseRecorder
	pages     PageInvalidator
	logger    *logger.Logger
}

// NewEventHandler builds the handler. pages may be nil when no page cache is
// configured.
func NewEventHandler(purchases PurchaseRecorder, pages PageInvalidator, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		purchases: purchases,
		pages:     pages,
		logger:    logger,
	}
}

// Handle is a queue handler. A returned error asks for redelivery unless it
// wraps queue.ErrUnprocessable.
func (h *EventHandler) Handle(ctx context.Context, event queue.Event) error {
	switch event.Type {
	case queue.EventPurchaseCompleted:
		purchase := entity.Purchase{
			ViewerID:     event.ViewerID,
			PostID:       event.PostID,
			PriceInCents: event.PriceInCents,
			ExpiresAt:    event.ExpiresAt,
		}
		if err := h.purchases.RecordPurchase(ctx, purchase); err != nil {
			if errors.Is(err, entity.ErrPurchaseTargetNotFound) {
				return fmt.Errorf("%w: purchase of %s by %s: %w", queue.ErrUnprocessable, event.PostID, event.ViewerID, err)
			}
			return fmt.Errorf("record purchase of %s by %s: %w", event.PostID, event.ViewerID, err)
		}
		h.logger.Info("Recorded purchase of post %s by %s", event.PostID, event.ViewerID)

	case queue.EventPostPublished, queue.EventPostDeleted:
		if h.pages == nil {
			return nil
		}
		if err := h.pages.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate feed pages after %s %s: %w", event.Type, event.PostID, err)
		}
		h.logger.Debug("Invalidated feed pages after %s %s", event.Type, event.PostID)

	default:
		h.logger.Warn("Ignoring event of unknown type %q", event.Type)
	}
	return nil
}
