package middleware

import (
	"fmt"

	pkgError "github.com/chronolens/chronolens/pkg/error"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery converts handler panics into JSON error responses. Errors
// implementing pkgError.GenericError keep their code and status.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				logrus.Errorf("Panic recovered in middleware: %v", err)

				apiErr, isAPIError := err.(pkgError.GenericError)
				if isAPIError {
					res.Status = apiErr.StatusCode()
					res.Code = apiErr.ErrCode()
					res.Message = apiErr.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
