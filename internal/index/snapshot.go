package index

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/oldto/oldto/internal/domain"
	"github.com/oldto/oldto/internal/domain/geo"
	"github.com/oldto/oldto/internal/etag"
)

// Snapshot is the complete derived state for one load of the source files.
// It is never mutated after construction; reloads build a fresh snapshot
// and publish it with a pointer swap.
type Snapshot struct {
	Features int

	Years     YearCounts
	Locations LocationIndex
	Images    ImageIndex
	Featured  []domain.Properties

	// Serialized once: these payloads are returned on every request, so
	// they are not re-encoded per call.
	YearsJSON    []byte
	FeaturedJSON []byte

	// ETag is the content fingerprint over the serialized artifacts plus
	// the operator-managed structure version tag.
	ETag string
}

// BuildSnapshot derives all indices and the fingerprint from normalized
// features and the featured-id list. etagVersion is bumped by the operator
// when response shape changes without content changing, invalidating
// previously cached client copies.
func BuildSnapshot(features []domain.Feature, featuredIDs []domain.ID, etagVersion string) (*Snapshot, error) {
	s := &Snapshot{
		Features:  len(features),
		Years:     BuildYearCounts(features),
		Locations: BuildByLocation(features),
		Images:    BuildByImage(features),
	}
	s.Featured = RankFeatured(featuredIDs, s.Images)

	var err error
	if s.YearsJSON, err = json.Marshal(s.Years); err != nil {
		return nil, fmt.Errorf("serializing year counts: %w", err)
	}
	if s.FeaturedJSON, err = json.Marshal(s.Featured); err != nil {
		return nil, fmt.Errorf("serializing featured images: %w", err)
	}

	s.ETag = etag.Compute(etagVersion, s.YearsJSON, s.FeaturedJSON)
	return s, nil
}

// Location returns the images recorded at a canonical location key.
func (s *Snapshot) Location(key string) (map[string]domain.Properties, error) {
	images, ok := s.Locations[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrLocationNotFound)
	}
	return images, nil
}

// Image returns one flattened image record by canonical id.
func (s *Snapshot) Image(id string) (domain.Properties, error) {
	props, ok := s.Images[id]
	if !ok {
		return domain.Properties{}, fmt.Errorf("%s: %w", id, domain.ErrImageNotFound)
	}
	return props, nil
}

// Near merges the images of every location within radiusKm of the given
// coordinate. Clients round and format floats differently, so a point query
// cannot hit the canonical key directly; the small radius absorbs that.
func (s *Snapshot) Near(lat, lng, radiusKm float64) map[string]domain.Properties {
	out := make(map[string]domain.Properties)
	for key, images := range s.Locations {
		klat, klng, err := geo.ParseLocationKey(key)
		if err != nil {
			continue
		}
		if geo.HaversineKm(lat, lng, klat, klng) > radiusKm {
			continue
		}
		for id, props := range images {
			out[id] = props
		}
	}
	return out
}
