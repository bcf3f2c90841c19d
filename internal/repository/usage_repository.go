package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"coupon-api/internal/model"
	"coupon-api/internal/store"

	"github.com/rs/zerolog"
)

// usageRepository implements UsageRepository on top of the tree store.
type usageRepository struct {
	store  store.TreeStore
	logger zerolog.Logger
}

// NewUsageRepository creates a tree-store-backed usage repository.
func NewUsageRepository(st store.TreeStore, logger zerolog.Logger) UsageRepository {
	return &usageRepository{
		store:  st,
		logger: logger.With().Str("repository", "usage").Logger(),
	}
}

// Get retrieves the usage record for a session.
func (r *usageRepository) Get(ctx context.Context, sessionID string) (*model.UsageRecord, error) {
	raw, err := r.store.Get(ctx, usagePath(sessionID))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read usage record")
		return nil, fmt.Errorf("failed to read usage record for %s: %w", sessionID, err)
	}

	var record model.UsageRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("malformed usage record")
		return nil, fmt.Errorf("malformed usage record for %s: %w", sessionID, err)
	}
	if record.Coupon == "" {
		return nil, fmt.Errorf("usage record for %s missing coupon field", sessionID)
	}
	return &record, nil
}

// Put overwrites the usage record for a session (last-write-wins).
func (r *usageRepository) Put(ctx context.Context, sessionID string, record *model.UsageRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode usage record: %w", err)
	}

	if err := r.store.Set(ctx, usagePath(sessionID), raw); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to write usage record")
		return fmt.Errorf("failed to write usage record for %s: %w", sessionID, err)
	}

	r.logger.Debug().
		Str("session_id", sessionID).
		Str("coupon", record.Coupon).
		Msg("usage record written")

	return nil
}
