package event

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vipioko/vaxdog-commerce/internal/domain"
	"github.com/vipioko/vaxdog-commerce/internal/engine"
	"github.com/vipioko/vaxdog-commerce/pkg/kafka"
	"github.com/vipioko/vaxdog-commerce/pkg/logger"
)

const (
	TopicCartUpdated     = "vaxdog.cart.updated"
	TopicCartCleared     = "vaxdog.cart.cleared"
	TopicWishlistUpdated = "vaxdog.wishlist.updated"
	TopicWishlistCleared = "vaxdog.wishlist.cleared"

	aggregateType = "commerce_state"
	source        = "commerce-service"
)

// Producer publishes event envelopes to a topic. Satisfied by *kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// StateChanged is the payload carried by every commerce state event.
type StateChanged struct {
	SessionID     string           `json:"session_id"`
	ProductID     domain.ProductID `json:"product_id,omitempty"`
	CartItemCount int              `json:"cart_item_count"`
	CartTotal     decimal.Decimal  `json:"cart_total"`
	WishlistCount int              `json:"wishlist_count"`
}

// Publisher turns engine state changes into Kafka events. Publish failures
// are logged and swallowed; downstream consumers are advisory and must not
// fail the shopper's request.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

func NewPublisher(producer Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// Observer returns an engine observer bound to one session. A move publishes
// to both the cart and wishlist topics since both collections changed.
func (p *Publisher) Observer(sessionID string) engine.Observer {
	return func(ctx context.Context, change engine.Change) {
		switch change.Kind {
		case engine.ChangeCartUpdated:
			p.publish(ctx, TopicCartUpdated, "cart.updated", sessionID, change)
		case engine.ChangeCartCleared:
			p.publish(ctx, TopicCartCleared, "cart.cleared", sessionID, change)
		case engine.ChangeWishlistUpdated:
			p.publish(ctx, TopicWishlistUpdated, "wishlist.updated", sessionID, change)
		case engine.ChangeWishlistCleared:
			p.publish(ctx, TopicWishlistCleared, "wishlist.cleared", sessionID, change)
		case engine.ChangeItemMoved:
			p.publish(ctx, TopicCartUpdated, "cart.updated", sessionID, change)
			p.publish(ctx, TopicWishlistUpdated, "wishlist.updated", sessionID, change)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, sessionID string, change engine.Change) {
	payload := StateChanged{
		SessionID:     sessionID,
		ProductID:     change.ProductID,
		CartItemCount: change.State.CartItemCount(),
		CartTotal:     change.State.CartTotal(),
		WishlistCount: len(change.State.Wishlist),
	}

	evt, err := kafka.NewEvent(eventType, sessionID, aggregateType, source, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.logger.WarnContext(ctx, "event publish failed",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
