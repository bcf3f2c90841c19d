package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"coupon-api/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped seed files from the
// local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a gzipped seed file and returns the coupon definitions it
// contains. The file holds one JSON coupon definition per line; blank
// lines are skipped.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.CreateCouponRequest, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filePath, err)
	}
	defer gzipReader.Close()

	definitions, err := decodeSeedLines(ctx, gzipReader)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading seed file")
		return nil, fmt.Errorf("error reading seed file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("definitions", len(definitions)).
		Msg("coupon seed file loaded")

	return definitions, nil
}

// decodeSeedLines parses JSON-lines coupon definitions from r.
func decodeSeedLines(ctx context.Context, r io.Reader) ([]model.CreateCouponRequest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var definitions []model.CreateCouponRequest
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var def model.CreateCouponRequest
		if err := json.Unmarshal([]byte(line), &def); err != nil {
			return nil, fmt.Errorf("invalid coupon definition on line %d: %w", lineNo, err)
		}
		definitions = append(definitions, def)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return definitions, nil
}
