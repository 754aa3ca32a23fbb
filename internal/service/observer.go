package service

import (
	"context"
	"log/slog"

	"github.com/vipioko/vaxdog-commerce/internal/engine"
)

// LoggingObserver returns an observer factory that writes one structured log
// line per state change.
func LoggingObserver(log *slog.Logger) ObserverFactory {
	return func(sessionID string) engine.Observer {
		return func(ctx context.Context, change engine.Change) {
			log.InfoContext(ctx, "commerce state changed",
				slog.String("session_id", sessionID),
				slog.String("kind", string(change.Kind)),
				slog.String("product_id", change.ProductID.String()),
				slog.Int("cart_item_count", change.State.CartItemCount()),
				slog.Int("wishlist_count", len(change.State.Wishlist)),
			)
		}
	}
}
