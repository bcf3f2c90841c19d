package coupon

import (
	"context"

	"coupon-api/internal/model"
)

// Loader defines the interface for loading coupon seed files. A seed file
// is a gzipped stream of JSON lines, one coupon definition per line.
type Loader interface {
	// Load reads a gzipped seed file and returns the coupon definitions it
	// contains.
	Load(ctx context.Context, filePath string) ([]model.CreateCouponRequest, error)
}

// Creator is the subset of the coupon service the seeder needs. Create
// must normalise the code and reject duplicates.
type Creator interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.CreateCouponResponse, error)
}
