package validations

import (
	"context"

	domainContent "github.com/chronolens/chronolens/domains/content"
	pkgError "github.com/chronolens/chronolens/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateContentRequest(ctx context.Context, request domainContent.ContentRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&request.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&request.EraID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateCoordinates(ctx context.Context, lat, lon float64, eraID string) error {
	return ValidateContentRequest(ctx, domainContent.ContentRequest{
		Latitude:  lat,
		Longitude: lon,
		EraID:     eraID,
	})
}
