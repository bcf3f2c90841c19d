package coupon

import (
	"context"
	"errors"
	"fmt"

	"coupon-api/internal/model"

	"github.com/rs/zerolog"
)

// Seed loads coupon definitions from the given seed files and creates any
// that do not already exist. Duplicates are skipped rather than treated as
// failures, so re-running the seed on every startup is safe. A definition
// that is rejected for any other reason (bad type, store failure) aborts
// the seed.
func Seed(ctx context.Context, loader Loader, files []string, creator Creator, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "seeder").Logger()

	total := 0
	skipped := 0

	for _, file := range files {
		definitions, err := loader.Load(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to load seed file %s: %w", file, err)
		}

		for _, def := range definitions {
			if _, err := creator.Create(ctx, &def); err != nil {
				var domainErr *model.DomainError
				if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeDuplicateCoupon {
					skipped++
					logger.Debug().Str("code", def.Code).Msg("seed coupon already exists, skipping")
					continue
				}
				return fmt.Errorf("failed to seed coupon %s: %w", def.Code, err)
			}
			total++
		}
	}

	logger.Info().
		Int("created", total).
		Int("skipped", skipped).
		Int("files", len(files)).
		Msg("coupon seeding completed")

	return nil
}
