// Package bake writes the derived indices out as a static file tree that
// mirrors the HTTP API, for hosting without a running server.
package bake

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/index"
)

// Export writes the snapshot under dir:
//
//	api/locations_ex.json        year counts, same bytes the server returns
//	api/locations/<key>.json     images at one location, indented
//	api/images_ex.json           featured list, same bytes the server returns
//	api/images/<id>.json         one flattened image record, indented
func Export(snap *index.Snapshot, dir string, logger *zap.Logger) error {
	start := time.Now()

	for _, sub := range []string{"api/locations", "api/images"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	if err := writeFile(dir, "api/locations_ex.json", snap.YearsJSON); err != nil {
		return err
	}
	if err := writeFile(dir, "api/images_ex.json", snap.FeaturedJSON); err != nil {
		return err
	}

	for key, images := range snap.Locations {
		if err := writeIndented(dir, filepath.Join("api/locations", key+".json"), images); err != nil {
			return err
		}
	}
	for id, props := range snap.Images {
		if err := writeIndented(dir, filepath.Join("api/images", id+".json"), props); err != nil {
			return err
		}
	}

	logger.Info("static tree exported",
		zap.String("dir", dir),
		zap.Int("locations", len(snap.Locations)),
		zap.Int("images", len(snap.Images)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func writeFile(dir, rel string, data []byte) error {
	if err := os.WriteFile(filepath.Join(dir, rel), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

func writeIndented(dir, rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", rel, err)
	}
	return writeFile(dir, rel, data)
}
