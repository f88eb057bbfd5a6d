package employees

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

var validate = validator.New()

// siteScope resolves the site filter: an explicit query param wins, else the
// active site selection applies.
func siteScope(c *fiber.Ctx, svc *store.Service) string {
	if siteID := c.Query("site_id"); siteID != "" {
		return siteID
	}
	return svc.ActiveSite()
}

func GetEmployeesAPI(c *fiber.Ctx, svc *store.Service) error {
	rows := svc.List(c.Context(), store.TableEmployees, store.Filter{SiteID: siteScope(c, svc)})
	return c.JSON(fiber.Map{"employees": rows, "count": len(rows)})
}

func CreateEmployeeAPI(c *fiber.Ctx, svc *store.Service) error {
	var emp models.Employee
	if err := c.BodyParser(&emp); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(emp); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Name, position and a valid email are required"})
	}
	if emp.Status == "" {
		emp.Status = models.EmployeeActive
	}
	if emp.DocumentStatus == "" {
		emp.DocumentStatus = models.DocumentsPending
	}
	if emp.SiteID == "" {
		emp.SiteID = svc.ActiveSite()
	}

	row, err := svc.Create(c.Context(), store.TableEmployees, store.ToRow(emp), auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create employee"})
	}
	return c.Status(201).JSON(row)
}

// UpdateEmployeeAPI also resyncs the denormalized employee_name on the
// employee's attendance rows when the name changes.
func UpdateEmployeeAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	var patch store.Row
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	row, err := svc.UpdateEmployee(c.Context(), id, patch, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update employee"})
	}
	if row == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Employee not found"})
	}
	return c.JSON(row)
}

func DeleteEmployeeAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	removed, err := svc.Delete(c.Context(), store.TableEmployees, id, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete employee"})
	}
	if !removed {
		return c.Status(404).JSON(fiber.Map{"error": "Employee not found"})
	}
	return c.SendStatus(204)
}
