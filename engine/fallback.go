package engine

import (
	"fmt"

	domain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/pkg/imageutil"
)

// FallbackNarrative derives deterministic offline content for a
// (location, era) pair from the static era registry. Same inputs always
// produce the same text, so a degraded device shows stable content.
func FallbackNarrative(loc domain.Location, era domain.Era) string {
	return fmt.Sprintf(
		"You are standing at %.5f, %.5f during the %s period, %s to %s million years ago. "+
			"Beneath your feet, between %.0f and %.0f meters down, the rock remembers %s. "+
			"Reconnect to generate a narrative written for this exact spot.",
		domain.RoundCoord(loc.Latitude), domain.RoundCoord(loc.Longitude),
		era.Name, formatMya(era.StartMya), formatMya(era.EndMya),
		era.DepthMinM, era.DepthMaxM, era.Description,
	)
}

// FallbackContent is the full statically-derived substitute served when
// generation is unavailable (offline, uncredentialed, or failed). Media
// slots stay empty: absence is a normal value, not an error.
func FallbackContent(loc domain.Location, era domain.Era) domain.Content {
	return domain.Content{Narrative: FallbackNarrative(loc, era)}
}

// PlaceholderImage renders the deterministic per-slot substitute used when
// image generation fails and the caller opted into fallback. The color is
// derived from the era id, so each era keeps a stable placeholder.
func PlaceholderImage(era domain.Era) []byte {
	data, err := imageutil.Placeholder(era.ID, 512, 288)
	if err != nil {
		return nil
	}
	return data
}

func formatMya(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
