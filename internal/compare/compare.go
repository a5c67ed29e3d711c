// Package compare implements the offline accuracy assessment between a
// human-verified truth feature collection and a machine-computed one.
//
// Date mismatches where both sides carry a value collapse into the single
// "complex" bucket. The desired taxonomy distinguishes imprecise, incorrect
// and overprecise dates, but only the missing/extra cases are classified;
// the rest is one coarse category.
package compare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/oldto/oldto/internal/domain"
	"github.com/oldto/oldto/internal/domain/geo"
)

// toleranceKm is the geocode tolerance band: computed coordinates within
// this distance of the truth count as a match.
const toleranceKm = 0.25

// Zero-denominator conditions. A percentage over zero records is
// meaningless, so the run fails instead of dividing.
var (
	ErrNoDatable    = errors.New("no datable records present")
	ErrNoGeocodable = errors.New("no geocodable records present")
	ErrNoGeocoded   = errors.New("no geocoded records present")
)

// Reason describes why a comparison mismatched; empty on match.
type Reason string

const (
	ReasonMissingDate            Reason = "Missing date"
	ReasonShouldBeMissingDate    Reason = "Should be missing date"
	ReasonComplexDate            Reason = "complex"
	ReasonMissingGeocode         Reason = "Missing geocode"
	ReasonShouldBeMissingGeocode Reason = "Should be missing geocode"
)

// TooFar formats the mismatch reason for a geocode beyond the tolerance band.
func TooFar(distanceKm float64) Reason {
	return Reason(fmt.Sprintf("Too far: %.3f km", distanceKm))
}

// DiffDate compares a truth date against a computed date. A nil pointer is
// an absent ("undated") value and differs from an empty string.
func DiffDate(truth, computed *string) (bool, Reason) {
	switch {
	case truth == nil && computed == nil:
		return true, ""
	case truth != nil && computed != nil && *truth == *computed:
		return true, ""
	case computed == nil:
		return false, ReasonMissingDate
	case truth == nil:
		return false, ReasonShouldBeMissingDate
	default:
		return false, ReasonComplexDate
	}
}

// CoordString formats a coordinate for display and comparison:
// 6-decimal "lat,lng", or "None" when absent. Pastes straight into a map
// search box.
func CoordString(p *domain.Point) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// DiffGeocode compares a truth coordinate against a computed one.
// Coordinates equal after display canonicalization match exactly; both
// present but within the tolerance band also match.
func DiffGeocode(truth, computed *domain.Point) (bool, Reason) {
	if CoordString(truth) == CoordString(computed) {
		return true, ""
	}
	if computed == nil {
		return false, ReasonMissingGeocode
	}
	if truth == nil {
		return false, ReasonShouldBeMissingGeocode
	}
	distanceKm := geo.HaversineKm(truth.Lat, truth.Lng, computed.Lat, computed.Lng)
	if distanceKm > toleranceKm {
		return false, TooFar(distanceKm)
	}
	return true, ""
}

// Summary tallies comparison outcomes over all joined rows.
type Summary struct {
	Datable         int // rows where truth has a date
	DatedCorrect    int // datable rows with a date match
	Geocodable      int // rows where truth has a coordinate
	Geocoded        int // rows where computed has a coordinate
	GeocodedCorrect int // geocodable rows with a geocode match
}

// GeocodedIncorrect is the number of computed coordinates that are wrong.
func (s Summary) GeocodedIncorrect() int {
	return s.Geocoded - s.GeocodedCorrect
}

// Validate rejects summaries whose percentages would divide by zero.
func (s Summary) Validate() error {
	if s.Datable == 0 {
		return ErrNoDatable
	}
	if s.Geocodable == 0 {
		return ErrNoGeocodable
	}
	if s.Geocoded == 0 {
		return ErrNoGeocoded
	}
	return nil
}

func pct(num, den int) float64 {
	return 100.0 * float64(num) / float64(den)
}

var header = []string{
	"id",
	"title",
	"computed date",
	"true date",
	"date match",
	"date reason",
	"computed location",
	"true location",
	"location match",
	"location reason",
	"location string",
	"notes",
}

// Run joins computed features against truth features by id, writes one
// tab-separated row per joined record followed by a summary block, and
// returns the tallies. Computed features with no truth counterpart are
// skipped: the truth set is assumed to be a subset.
func Run(truth, computed []domain.Feature, out io.Writer) (Summary, error) {
	truthByID := make(map[domain.ID]domain.Feature, len(truth))
	for _, f := range truth {
		truthByID[f.ID] = f
	}

	var s Summary

	w := csv.NewWriter(out)
	w.Comma = '\t'
	if err := w.Write(header); err != nil {
		return s, fmt.Errorf("writing header: %w", err)
	}

	for _, f := range computed {
		tf, ok := truthByID[f.ID]
		if !ok {
			continue
		}

		trueDate := tf.Props.Date
		computedDate := f.Props.Date
		if trueDate != nil && *trueDate != "" {
			s.Datable++
		}
		dateMatch, dateReason := DiffDate(trueDate, computedDate)

		if tf.Point != nil {
			s.Geocodable++
		}
		if f.Point != nil {
			s.Geocoded++
		}
		geocodeMatch, geocodeReason := DiffGeocode(tf.Point, f.Point)

		if dateMatch && trueDate != nil && *trueDate != "" {
			s.DatedCorrect++
		}
		if geocodeMatch && tf.Point != nil {
			s.GeocodedCorrect++
		}

		searchTerm := ""
		if f.Point != nil {
			searchTerm = searchTermOf(f.Props)
		}

		row := []string{
			string(f.ID),
			f.Props.Title,
			strOrNone(computedDate),
			strOrNone(trueDate),
			fmt.Sprint(dateMatch),
			string(dateReason),
			CoordString(f.Point),
			CoordString(tf.Point),
			fmt.Sprint(geocodeMatch),
			string(geocodeReason),
			searchTerm,
			notesOf(tf.Props),
		}
		if err := w.Write(row); err != nil {
			return s, fmt.Errorf("writing row for id %s: %w", f.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return s, fmt.Errorf("flushing rows: %w", err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}

	_, err := fmt.Fprintf(out, `
Results:
  Dates
    %3d / %3d = %.2f%% of datable images correctly dated.

  Geocodes
    %3d / %3d = %.2f%% of locatable images correctly located.
    %3d / %3d = %.2f%% incorrectly located.
`,
		s.DatedCorrect, s.Datable, pct(s.DatedCorrect, s.Datable),
		s.GeocodedCorrect, s.Geocodable, pct(s.GeocodedCorrect, s.Geocodable),
		s.GeocodedIncorrect(), s.Geocoded, pct(s.GeocodedIncorrect(), s.Geocoded),
	)
	if err != nil {
		return s, fmt.Errorf("writing summary: %w", err)
	}
	return s, nil
}

func strOrNone(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}

// searchTermOf digs properties.geocode.search_term out of the passthrough bag.
func searchTermOf(p domain.Properties) string {
	geocode, ok := p.Extra["geocode"].(map[string]any)
	if !ok {
		return ""
	}
	term, _ := geocode["search_term"].(string)
	return term
}

func notesOf(p domain.Properties) string {
	notes, _ := p.Extra["geocoding_notes"].(string)
	return notes
}
