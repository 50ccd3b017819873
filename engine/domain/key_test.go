package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_Format(t *testing.T) {
	loc := Location{Latitude: 37.7749, Longitude: -122.4194}
	assert.Equal(t, "37.77490_-122.41940_jurassic", CacheKey(loc, "jurassic"))
}

func TestCacheKey_Deterministic(t *testing.T) {
	loc := Location{Latitude: 51.500729, Longitude: -0.124625}
	first := CacheKey(loc, "cretaceous")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, CacheKey(loc, "cretaceous"))
	}
}

func TestCacheKey_CollapsesJitter(t *testing.T) {
	// GPS jitter below ~1.1m must land on the same key
	a := CacheKey(Location{Latitude: 37.774900, Longitude: -122.419400}, "jurassic")
	b := CacheKey(Location{Latitude: 37.774902, Longitude: -122.419398}, "jurassic")
	assert.Equal(t, a, b)

	// A shift at the 5th decimal is a different key
	c := CacheKey(Location{Latitude: 37.77491, Longitude: -122.41940}, "jurassic")
	assert.NotEqual(t, a, c)
}

func TestCacheKey_JitterAcrossZero(t *testing.T) {
	// Sub-grid jitter straddling the equator or prime meridian must not
	// split onto a negative-zero key.
	a := CacheKey(Location{Latitude: 0.000001, Longitude: 0}, "jurassic")
	b := CacheKey(Location{Latitude: -0.000001, Longitude: 0}, "jurassic")
	assert.Equal(t, a, b)
	assert.Equal(t, "0.00000_0.00000_jurassic", a)

	c := CacheKey(Location{Latitude: 0, Longitude: 0.000001}, "jurassic")
	d := CacheKey(Location{Latitude: 0, Longitude: -0.000001}, "jurassic")
	assert.Equal(t, c, d)
}

func TestEraFromKey(t *testing.T) {
	loc := Location{Latitude: 37.7749, Longitude: -122.4194}
	assert.Equal(t, "jurassic", EraFromKey(CacheKey(loc, "jurassic")))
	assert.Equal(t, "", EraFromKey("not-a-key"))
}

func TestRoundCoord(t *testing.T) {
	assert.InDelta(t, 37.77490, RoundCoord(37.774904), 1e-9)
	assert.InDelta(t, 37.77491, RoundCoord(37.774905), 1e-9)
	assert.InDelta(t, -122.41940, RoundCoord(-122.419401), 1e-9)
	assert.InDelta(t, 0.0, RoundCoord(0.000001), 1e-9)
	assert.False(t, math.Signbit(RoundCoord(-0.000001)), "negative zero must be normalized")
}
