package settings

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func GetSettingsAPI(c *fiber.Ctx, svc *store.Service) error {
	return c.JSON(svc.Settings())
}

func UpdateSettingsAPI(c *fiber.Ctx, svc *store.Service) error {
	if svc.DemoMode() {
		return c.Status(403).JSON(fiber.Map{"error": store.ErrDemoMode.Error()})
	}
	settings := svc.Settings()
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if settings.OvertimeThresholdHours <= 0 || settings.OvertimeMultiplier <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Overtime threshold and multiplier must be positive"})
	}
	if err := svc.SetSettings(settings); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save settings"})
	}
	svc.Audit(auth.Actor(c), models.AuditUpdate, "settings", nil)
	return c.JSON(settings)
}

func GetActiveSiteAPI(c *fiber.Ctx, svc *store.Service) error {
	return c.JSON(fiber.Map{"site_id": svc.ActiveSite()})
}

func SetActiveSiteAPI(c *fiber.Ctx, svc *store.Service) error {
	var req struct {
		SiteID string `json:"site_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := svc.SetActiveSite(req.SiteID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to set active site"})
	}
	return c.JSON(fiber.Map{"site_id": req.SiteID})
}

func GetDemoModeAPI(c *fiber.Ctx, svc *store.Service) error {
	return c.JSON(fiber.Map{"demo_mode": svc.DemoMode()})
}

func SetDemoModeAPI(c *fiber.Ctx, svc *store.Service) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := svc.SetDemoMode(req.Enabled); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to toggle demo mode"})
	}
	return c.JSON(fiber.Map{"demo_mode": req.Enabled})
}

// BackfillAPI assigns the given site to all unscoped rows. Runs at most once
// and only after the default site has been confirmed.
func BackfillAPI(c *fiber.Ctx, svc *store.Service) error {
	var req struct {
		SiteID string `json:"site_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SiteID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "site_id is required"})
	}

	ran, err := svc.Backfill(c.Context(), req.SiteID, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Backfill failed"})
	}
	return c.JSON(fiber.Map{"ran": ran})
}

func GetAuditLogAPI(c *fiber.Ctx, svc *store.Service) error {
	entries := svc.AuditLog()
	return c.JSON(fiber.Map{"audit": entries, "count": len(entries)})
}
