package validations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainContent "github.com/chronolens/chronolens/domains/content"
	pkgError "github.com/chronolens/chronolens/pkg/error"
)

func TestValidateContentRequest_Valid(t *testing.T) {
	err := ValidateContentRequest(context.Background(), domainContent.ContentRequest{
		Latitude:  37.7749,
		Longitude: -122.4194,
		EraID:     "jurassic",
	})
	assert.NoError(t, err)
}

func TestValidateContentRequest_LatitudeOutOfRange(t *testing.T) {
	err := ValidateContentRequest(context.Background(), domainContent.ContentRequest{
		Latitude:  91,
		Longitude: 0,
		EraID:     "jurassic",
	})
	assert.Error(t, err)
	assert.IsType(t, pkgError.ValidationError(""), err)
}

func TestValidateContentRequest_LongitudeOutOfRange(t *testing.T) {
	err := ValidateContentRequest(context.Background(), domainContent.ContentRequest{
		Latitude:  0,
		Longitude: -180.5,
		EraID:     "jurassic",
	})
	assert.Error(t, err)
}

func TestValidateContentRequest_MissingEra(t *testing.T) {
	err := ValidateContentRequest(context.Background(), domainContent.ContentRequest{
		Latitude:  10,
		Longitude: 10,
	})
	assert.Error(t, err)
}

func TestValidateCoordinates_Boundaries(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateCoordinates(ctx, 90, 180, "quaternary"))
	assert.NoError(t, ValidateCoordinates(ctx, -90, -180, "precambrian"))
	assert.Error(t, ValidateCoordinates(ctx, 90.00001, 0, "quaternary"))
}
