package reports

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/payroll"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupReportsRoutes(app *fiber.App, svc *store.Service, notifier *services.Notifier) {
	api := app.Group("/api/reports")
	api.Use(auth.AuthMiddleware)
	api.Get("/payroll", func(c *fiber.Ctx) error { return GetPayrollReportAPI(c, svc) })
	api.Post("/payroll/email", func(c *fiber.Ctx) error { return EmailPayrollReportAPI(c, svc, notifier) })
}

func loadRuns(c *fiber.Ctx, svc *store.Service) ([]models.PayrollRun, error) {
	siteID := c.Query("site_id")
	if siteID == "" {
		siteID = svc.ActiveSite()
	}
	rows := svc.List(c.Context(), store.TablePayroll, store.Filter{
		SiteID: siteID,
		Period: c.Query("period"),
	})
	var runs []models.PayrollRun
	if err := store.Decode(rows, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func summarize(runs []models.PayrollRun) (paid, pending float64) {
	for _, r := range runs {
		if r.Status == models.PayrollPaid {
			paid += r.Total
		} else {
			pending += r.Total
		}
	}
	return payroll.Round2(paid), payroll.Round2(pending)
}

// GetPayrollReportAPI summarizes payroll runs for a period and site.
func GetPayrollReportAPI(c *fiber.Ctx, svc *store.Service) error {
	runs, err := loadRuns(c, svc)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load payroll"})
	}
	paid, pending := summarize(runs)

	employees := make(map[string]bool)
	for _, r := range runs {
		for _, e := range r.Entries {
			key := e.EmployeeID
			if key == "" {
				key = e.EmployeeName
			}
			employees[key] = true
		}
	}

	return c.JSON(fiber.Map{
		"runs":          runs,
		"runs_count":    len(runs),
		"total_paid":    paid,
		"total_pending": pending,
		"employees":     len(employees),
	})
}

// EmailPayrollReportAPI sends the payroll-report-ready notification for the
// selected period.
func EmailPayrollReportAPI(c *fiber.Ctx, svc *store.Service, notifier *services.Notifier) error {
	var req struct {
		ReportURL string   `json:"report_url"`
		Period    string   `json:"period"`
		To        []string `json:"to"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	runs, err := loadRuns(c, svc)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load payroll"})
	}
	paid, pending := summarize(runs)

	if err := notifier.PayrollReport(req.ReportURL, req.Period,
		fmt.Sprintf("%g", paid), fmt.Sprintf("%g", pending), req.To); err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Failed to send report email"})
	}
	return c.JSON(fiber.Map{"message": "Report email sent"})
}
