package rest

import (
	"github.com/chronolens/chronolens/core/config"
	"github.com/chronolens/chronolens/engine"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	Engine *engine.Engine
}

func InitRestApp(app fiber.Router, eng *engine.Engine) App {
	rest := App{Engine: eng}
	app.Get("/app/version", rest.GetVersion)
	app.Get("/app/settings", rest.GetSettings)
	app.Get("/app/events", rest.RecentEvents)
	app.Get("/app/preload/stats", rest.PreloadStats)

	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version":     config.Global.App.Version,
		"environment": config.Global.App.Environment,
	})
}

func (handler *App) GetSettings(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: config.GetAllSettings(),
	})
}

// RecentEvents returns the ring buffer of recent cache telemetry events.
func (handler *App) RecentEvents(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recent cache events retrieved",
		Results: handler.Engine.Events.Recent(),
	})
}

// PreloadStats returns real-time preload worker pool statistics.
func (handler *App) PreloadStats(c *fiber.Ctx) error {
	return c.JSON(handler.Engine.PreloadStats())
}
