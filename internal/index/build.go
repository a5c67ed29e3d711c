// Package index builds the derived, query-serving views of a normalized
// feature collection and bundles them into an immutable snapshot.
package index

import "github.com/oldto/oldto/internal/domain"

// YearCounts maps a canonical location key to a year-string histogram.
// The "" bucket counts undated records.
type YearCounts map[string]map[string]int

// LocationIndex maps a canonical location key to the images photographed
// there, keyed by canonical image id.
type LocationIndex map[string]map[string]domain.Properties

// ImageIndex maps a canonical image id to its flattened properties.
type ImageIndex map[string]domain.Properties

// BuildYearCounts tallies features per location and year in one pass.
// The counts at a key always sum to the number of features with that key.
func BuildYearCounts(features []domain.Feature) YearCounts {
	counts := make(YearCounts)
	for _, f := range features {
		loc := f.Props.Location
		byYear := counts[loc]
		if byYear == nil {
			byYear = make(map[string]int)
			counts[loc] = byYear
		}
		byYear[f.Props.Year()]++
	}
	return counts
}

// BuildByLocation groups flattened properties by location key. Distinct
// images at the same rounded coordinate all survive; only a duplicate image
// id within one location overwrites (last write wins).
func BuildByLocation(features []domain.Feature) LocationIndex {
	locations := make(LocationIndex)
	for _, f := range features {
		loc := f.Props.Location
		images := locations[loc]
		if images == nil {
			images = make(map[string]domain.Properties)
			locations[loc] = images
		}
		images[string(f.ID)] = f.Props.Flattened()
	}
	return locations
}

// BuildByImage indexes flattened properties by image id, last write wins on
// duplicates.
func BuildByImage(features []domain.Feature) ImageIndex {
	images := make(ImageIndex, len(features))
	for _, f := range features {
		images[string(f.ID)] = f.Props.Flattened()
	}
	return images
}
