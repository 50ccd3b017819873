package rest

import (
	domainCost "github.com/chronolens/chronolens/domains/cost"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Cost struct {
	Service domainCost.ICostUsecase
}

func InitRestCost(app fiber.Router, service domainCost.ICostUsecase) Cost {
	rest := Cost{Service: service}
	app.Get("/costs/today", rest.GetToday)
	app.Get("/costs/:date", rest.GetDay)

	return rest
}

func (handler *Cost) GetToday(c *fiber.Ctx) error {
	record, err := handler.Service.GetToday(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Daily cost retrieved",
		Results: record,
	})
}

func (handler *Cost) GetDay(c *fiber.Ctx) error {
	record, err := handler.Service.GetDay(c.UserContext(), c.Params("date"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Daily cost retrieved",
		Results: record,
	})
}
