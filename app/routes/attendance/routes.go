package attendance

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupAttendanceRoutes(app *fiber.App, svc *store.Service, notifier *services.Notifier) {
	api := app.Group("/api/attendance")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetAttendanceAPI(c, svc) })
	api.Post("/", func(c *fiber.Ctx) error { return MarkAttendanceAPI(c, svc, notifier) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateAttendanceAPI(c, svc) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteAttendanceAPI(c, svc) })
}
