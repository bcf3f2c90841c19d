package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"coupon-api/internal/model"
	"coupon-api/internal/store"

	"github.com/rs/zerolog"
)

// orderRepository implements OrderRepository on top of the tree store.
// Snapshots are written by order placement elsewhere; this service only
// ever reads them.
type orderRepository struct {
	store  store.TreeStore
	logger zerolog.Logger
}

// NewOrderRepository creates a tree-store-backed order snapshot repository.
func NewOrderRepository(st store.TreeStore, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		store:  st,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// GetSnapshotItems retrieves the previously accumulated items for a
// session, or an empty slice when no snapshot exists.
func (r *orderRepository) GetSnapshotItems(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	raw, err := r.store.Get(ctx, orderPath(sessionID))
	if err != nil {
		if err == store.ErrNotFound {
			return []model.CartItem{}, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read order snapshot")
		return nil, fmt.Errorf("failed to read order snapshot for %s: %w", sessionID, err)
	}

	var snapshot model.OrderSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("malformed order snapshot")
		return nil, fmt.Errorf("malformed order snapshot for %s: %w", sessionID, err)
	}

	if snapshot.Items == nil {
		return []model.CartItem{}, nil
	}
	return snapshot.Items, nil
}
