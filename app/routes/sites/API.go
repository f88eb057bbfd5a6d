package sites

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

var validate = validator.New()

func GetSitesAPI(c *fiber.Ctx, svc *store.Service) error {
	rows := svc.List(c.Context(), store.TableSites, store.Filter{})
	return c.JSON(fiber.Map{"sites": rows, "count": len(rows)})
}

func CreateSiteAPI(c *fiber.Ctx, svc *store.Service) error {
	var site models.Site
	if err := c.BodyParser(&site); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(site); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Site name is required"})
	}
	if site.Status == "" {
		site.Status = models.SiteActive
	}

	row, err := svc.Create(c.Context(), store.TableSites, store.ToRow(site), auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create site"})
	}
	return c.Status(201).JSON(row)
}

func UpdateSiteAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	var patch store.Row
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	row, err := svc.Update(c.Context(), store.TableSites, id, patch, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update site"})
	}
	if row == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Site not found"})
	}
	return c.JSON(row)
}

func DeleteSiteAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	removed, err := svc.Delete(c.Context(), store.TableSites, id, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete site"})
	}
	if !removed {
		return c.Status(404).JSON(fiber.Map{"error": "Site not found"})
	}
	return c.SendStatus(204)
}
