package sites

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupSitesRoutes(app *fiber.App, svc *store.Service) {
	api := app.Group("/api/sites")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetSitesAPI(c, svc) })
	api.Post("/", func(c *fiber.Ctx) error { return CreateSiteAPI(c, svc) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateSiteAPI(c, svc) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteSiteAPI(c, svc) })
}
