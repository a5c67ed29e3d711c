package state

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/geojson"
	"github.com/oldto/oldto/internal/index"
	"github.com/oldto/oldto/internal/metrics"
)

// debounceDelay coalesces the event bursts editors and pipelines produce
// when rewriting a file.
const debounceDelay = 250 * time.Millisecond

// Reloader rebuilds the snapshot from the source files and publishes it.
type Reloader struct {
	GeoJSONPath  string
	FeaturedPath string
	ETagVersion  string

	holder *Holder
	logger *zap.Logger
}

// NewReloader wires a reloader to its holder.
func NewReloader(geojsonPath, featuredPath, etagVersion string, holder *Holder, logger *zap.Logger) *Reloader {
	return &Reloader{
		GeoJSONPath:  geojsonPath,
		FeaturedPath: featuredPath,
		ETagVersion:  etagVersion,
		holder:       holder,
		logger:       logger,
	}
}

// Reload performs load -> normalize -> build -> publish as one unit. On
// error nothing is published and the previous snapshot stays visible.
func (r *Reloader) Reload() (*index.Snapshot, error) {
	start := time.Now()

	raw, err := geojson.LoadCollection(r.GeoJSONPath)
	if err != nil {
		return nil, err
	}
	features := geojson.Normalize(raw, r.logger)

	featuredIDs, err := geojson.LoadFeatured(r.FeaturedPath)
	if err != nil {
		return nil, err
	}

	snap, err := index.BuildSnapshot(features, featuredIDs, r.ETagVersion)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	r.holder.Publish(snap)

	metrics.SnapshotBuildSeconds.Observe(time.Since(start).Seconds())
	metrics.SnapshotReloads.Inc()
	metrics.SnapshotFeatures.Set(float64(snap.Features))
	metrics.SnapshotLocations.Set(float64(len(snap.Locations)))

	r.logger.Info("snapshot published",
		zap.Int("features", snap.Features),
		zap.Int("locations", len(snap.Locations)),
		zap.Int("featured", len(snap.Featured)),
		zap.String("etag", snap.ETag),
		zap.Duration("took", time.Since(start)),
	)
	return snap, nil
}

// Watch reloads whenever either source file changes, until ctx is done.
// The parent directories are watched rather than the files themselves:
// most tools replace files by rename, which invalidates a direct watch.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]struct{}{
		filepath.Clean(r.GeoJSONPath):  {},
		filepath.Clean(r.FeaturedPath): {},
	}
	dirs := map[string]struct{}{
		filepath.Dir(r.GeoJSONPath):  {},
		filepath.Dir(r.FeaturedPath): {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, relevant := watched[filepath.Clean(event.Name)]; !relevant {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			if _, err := r.Reload(); err != nil {
				metrics.SnapshotReloadFailures.Inc()
				r.logger.Error("reload failed, keeping previous snapshot", zap.Error(err))
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", zap.Error(werr))
		}
	}
}
