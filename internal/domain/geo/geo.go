// Package geo provides the canonical location key and great-circle distance
// used across the serving indices and the comparison engine.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// LocationKey returns the canonical string key for a coordinate pair:
// "<lat>,<lng>" with both values as fixed 6-decimal strings.
//
// Rounding is done in two stages, first to 7 decimals and then to 6.
// Half-to-even stacks (Python's round) and half-away stacks (JavaScript's
// Math.round) disagree on values whose 7th decimal digit is exactly 5;
// rounding through 7 decimals first lands both on the same 6-decimal
// result, so keys derived in any runtime join correctly.
func LocationKey(lat, lng float64) string {
	return formatCoord(round6(lat)) + "," + formatCoord(round6(lng))
}

func round6(f float64) float64 {
	return roundTo(roundTo(f, 7), 6)
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(f float64, decimals int) float64 {
	shift := math.Pow10(decimals)
	return math.Round(f*shift) / shift
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// ParseLocationKey splits a canonical "<lat>,<lng>" key back into its
// coordinate pair.
func ParseLocationKey(key string) (lat, lng float64, err error) {
	latStr, lngStr, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed location key %q", key)
	}
	if lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed location key %q: %w", key, err)
	}
	if lng, err = strconv.ParseFloat(lngStr, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed location key %q: %w", key, err)
	}
	return lat, lng, nil
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// HaversineKm is Haversine in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Haversine(lat1, lon1, lat2, lon2) / 1000
}

// ValidCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
