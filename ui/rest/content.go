package rest

import (
	domainContent "github.com/chronolens/chronolens/domains/content"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Content struct {
	Service domainContent.IContentUsecase
}

func InitRestContent(app fiber.Router, service domainContent.IContentUsecase) Content {
	rest := Content{Service: service}
	app.Get("/content", rest.GetContent)
	app.Post("/content/refresh", rest.Refresh)
	app.Post("/content/video/poll", rest.PollVideo)
	app.Post("/content/preload", rest.Preload)
	app.Get("/content/media/:key/:kind", rest.GetMedia)
	app.Get("/eras", rest.ListEras)
	app.Get("/eras/:id/adjacent", rest.AdjacentEras)

	return rest
}

func (handler *Content) GetContent(c *fiber.Ctx) error {
	var request domainContent.ContentRequest
	err := c.QueryParser(&request)
	utils.PanicIfNeeded(err)

	response, err := handler.Service.GetContent(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Content retrieved",
		Results: response,
	})
}

func (handler *Content) Refresh(c *fiber.Ctx) error {
	var request domainContent.ContentRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	response, err := handler.Service.Refresh(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Content regenerated",
		Results: response,
	})
}

func (handler *Content) PollVideo(c *fiber.Ctx) error {
	var request domainContent.ContentRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	response, err := handler.Service.PollVideo(c.UserContext(), request.Latitude, request.Longitude, request.EraID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Video operation polled",
		Results: response,
	})
}

func (handler *Content) Preload(c *fiber.Ctx) error {
	var request domainContent.ContentRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	handler.Service.PreloadAdjacentEras(c.UserContext(), request.Latitude, request.Longitude, request.EraID)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Preload scheduled for adjacent eras",
	})
}

func (handler *Content) GetMedia(c *fiber.Ctx) error {
	data, mime, err := handler.Service.GetMedia(c.UserContext(), c.Params("key"), c.Params("kind"))
	utils.PanicIfNeeded(err)

	c.Set(fiber.HeaderContentType, mime)
	return c.Send(data)
}

func (handler *Content) ListEras(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Era registry retrieved",
		Results: handler.Service.ListEras(c.UserContext()),
	})
}

func (handler *Content) AdjacentEras(c *fiber.Ctx) error {
	eras, err := handler.Service.AdjacentEras(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Adjacent eras retrieved",
		Results: eras,
	})
}
