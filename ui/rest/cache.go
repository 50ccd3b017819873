package rest

import (
	domainCache "github.com/chronolens/chronolens/domains/cache"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(app fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Get("/cache/entries", rest.ListEntries)
	app.Delete("/cache/entries/:key", rest.Invalidate)
	app.Post("/cache/evict", rest.RunEviction)
	app.Post("/cache/clear", rest.Clear)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) ListEntries(c *fiber.Ctx) error {
	entries, err := handler.Service.ListEntries(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entries retrieved",
		Results: entries,
	})
}

func (handler *Cache) Invalidate(c *fiber.Ctx) error {
	err := handler.Service.Invalidate(c.UserContext(), c.Params("key"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entry invalidated",
	})
}

func (handler *Cache) RunEviction(c *fiber.Ctx) error {
	evicted, err := handler.Service.RunEviction(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Eviction pass completed",
		Results: map[string]int{"evicted": evicted},
	})
}

func (handler *Cache) Clear(c *fiber.Ctx) error {
	err := handler.Service.Clear(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared successfully",
	})
}
