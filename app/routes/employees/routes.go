package employees

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupEmployeesRoutes(app *fiber.App, svc *store.Service) {
	api := app.Group("/api/employees")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetEmployeesAPI(c, svc) })
	api.Post("/", func(c *fiber.Ctx) error { return CreateEmployeeAPI(c, svc) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateEmployeeAPI(c, svc) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteEmployeeAPI(c, svc) })
}
