// Package geojson loads the archive's source files: the image feature
// collection and the curated featured-id list.
package geojson

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/oldto/oldto/internal/domain"
	"github.com/oldto/oldto/internal/domain/geo"
)

// LoadCollection parses a GeoJSON feature collection from path. Features
// with null geometry are kept; the comparison engine needs them. Returns
// domain.ErrNotFound when the file cannot be located and
// domain.ErrMalformed when the content is not a feature collection.
func LoadCollection(path string) ([]domain.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %s", path, domain.ErrMalformed, err)
	}

	features := make([]domain.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		df := domain.Feature{
			ID:    domain.CanonicalID(f.ID),
			RawID: f.ID,
			Props: domain.PropertiesFromMap(f.Properties),
		}
		if pt, ok := f.Geometry.(orb.Point); ok {
			df.Point = &domain.Point{Lng: pt[0], Lat: pt[1]}
		}
		features = append(features, df)
	}
	return features, nil
}

// Normalize drops features without a point geometry and stamps the rest
// with their id and canonical location key. Re-running it on already
// normalized features yields the same result.
func Normalize(features []domain.Feature, logger *zap.Logger) []domain.Feature {
	out := make([]domain.Feature, 0, len(features))
	dropped := 0
	for _, f := range features {
		if f.Point == nil {
			dropped++
			continue
		}
		f.Props.ID = f.RawID
		f.Props.Location = geo.LocationKey(f.Point.Lat, f.Point.Lng)
		out = append(out, f)
	}
	if dropped > 0 {
		// Expected for unlocated archive entries, so informational only.
		logger.Info("dropped features without geometry",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}

// LoadFeatured parses the featured-id list: a JSON array of image ids.
// Error taxonomy matches LoadCollection.
func LoadFeatured(path string) ([]domain.ID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %s", path, domain.ErrMalformed, err)
	}

	ids := make([]domain.ID, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, domain.CanonicalID(v))
	}
	return ids, nil
}
