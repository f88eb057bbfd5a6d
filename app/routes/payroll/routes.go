package payroll

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupPayrollRoutes(app *fiber.App, svc *store.Service, notifier *services.Notifier) {
	api := app.Group("/api/payroll")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetPayrollAPI(c, svc) })
	api.Get("/periods", GetPeriodsAPI)
	api.Get("/rates", GetRateSheetAPI)
	api.Post("/runs", func(c *fiber.Ctx) error { return CreateRunAPI(c, svc) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateRunAPI(c, svc) })
	api.Patch("/:id/status", func(c *fiber.Ctx) error { return UpdateStatusAPI(c, svc, notifier) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteRunAPI(c, svc) })
}
