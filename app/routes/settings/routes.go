package settings

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupSettingsRoutes(app *fiber.App, svc *store.Service) {
	api := app.Group("/api/settings")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetSettingsAPI(c, svc) })
	api.Put("/", func(c *fiber.Ctx) error { return UpdateSettingsAPI(c, svc) })
	api.Get("/active-site", func(c *fiber.Ctx) error { return GetActiveSiteAPI(c, svc) })
	api.Post("/active-site", func(c *fiber.Ctx) error { return SetActiveSiteAPI(c, svc) })
	api.Get("/demo-mode", func(c *fiber.Ctx) error { return GetDemoModeAPI(c, svc) })
	api.Post("/demo-mode", func(c *fiber.Ctx) error { return SetDemoModeAPI(c, svc) })
	api.Post("/backfill", func(c *fiber.Ctx) error { return BackfillAPI(c, svc) })
	api.Get("/audit", func(c *fiber.Ctx) error { return GetAuditLogAPI(c, svc) })
}
