package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronolens/chronolens/engine/domain"
)

func TestFallbackNarrative_Deterministic(t *testing.T) {
	loc := domain.Location{Latitude: 37.7749, Longitude: -122.4194}
	era, ok := domain.EraByID("jurassic")
	require.True(t, ok)

	first := FallbackNarrative(loc, era)
	assert.Equal(t, first, FallbackNarrative(loc, era))
	assert.Contains(t, first, "Jurassic")
	assert.Contains(t, first, "37.77490")
	assert.Contains(t, first, "201 to 145 million years ago")
}

func TestFallbackNarrative_FractionalMya(t *testing.T) {
	era, ok := domain.EraByID("quaternary")
	require.True(t, ok)

	text := FallbackNarrative(domain.Location{}, era)
	assert.Contains(t, text, "2.6 to 0 million years ago")
}

func TestFallbackContent_MediaSlotsEmpty(t *testing.T) {
	era, _ := domain.EraByID("cambrian")
	c := FallbackContent(domain.Location{Latitude: 1, Longitude: 2}, era)

	assert.NotEmpty(t, c.Narrative)
	assert.False(t, c.HasImage())
	assert.False(t, c.HasVideo())
	assert.False(t, c.VideoPending())
}

func TestPlaceholderImage_StablePerEra(t *testing.T) {
	jurassic, _ := domain.EraByID("jurassic")
	cambrian, _ := domain.EraByID("cambrian")

	a := PlaceholderImage(jurassic)
	b := PlaceholderImage(jurassic)
	c := PlaceholderImage(cambrian)

	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "same era yields identical placeholder bytes")
	assert.NotEqual(t, a, c, "eras get distinct placeholder colors")

	// JPEG magic bytes.
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, a[:3])
}
