package domain

import (
	"fmt"
	"math"
	"strings"
)

// coordPrecision rounds coordinates to 5 decimal places (~1.1 m), so
// repeated queries for the same physical spot collide onto one key
// regardless of floating-point jitter.
const coordPrecision = 1e5

// RoundCoord snaps a coordinate to the key grid. Negative zero is
// normalized so values straddling zero land on one key.
func RoundCoord(v float64) float64 {
	r := math.Round(v*coordPrecision) / coordPrecision
	if r == 0 {
		return 0
	}
	return r
}

// CacheKey derives the composite key for a (location, era) pair.
// Pure function: same inputs always produce the same key, byte for byte,
// across sessions.
func CacheKey(loc Location, eraID string) string {
	return fmt.Sprintf("%.5f_%.5f_%s", RoundCoord(loc.Latitude), RoundCoord(loc.Longitude), eraID)
}

// EraFromKey extracts the era id segment of a cache key. Returns "" for
// keys that do not follow the lat_lon_era layout.
func EraFromKey(key string) string {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}
