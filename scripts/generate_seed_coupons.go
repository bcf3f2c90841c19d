package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"coupon-api/internal/model"
)

// generateSeedCoupons writes a sample gzipped JSON-lines seed file that the
// server can load at startup with SEED_ENABLED=true.
func main() {
	dataDir := "data/seeds"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	ten := 10
	one := 1
	definitions := []model.CreateCouponRequest{
		{Code: "WELCOME10", Type: model.CouponTypePercent, Amount: 10},
		{Code: "SUMMER15", Type: model.CouponTypePercent, Amount: 15, Uses: &ten},
		{Code: "ONESHOT50", Type: model.CouponTypePercent, Amount: 50, Uses: &one},
		{Code: "NEWYEAR25", Type: model.CouponTypePercent, Amount: 25, ExpiresAt: "2027-01-01T00:00:00Z"},
	}

	path := filepath.Join(dataDir, "coupons.jsonl.gz")
	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	enc := json.NewEncoder(gz)
	for _, def := range definitions {
		if err := enc.Encode(def); err != nil {
			log.Fatalf("Failed to encode %s: %v", def.Code, err)
		}
	}

	fmt.Printf("Wrote %d coupon definitions to %s\n", len(definitions), path)
}
