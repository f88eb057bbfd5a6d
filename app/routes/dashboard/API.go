package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

func SetupDashboardRoutes(app *fiber.App, svc *store.Service) {
	api := app.Group("/api/dashboard")
	api.Use(auth.AuthMiddleware)
	api.Get("/summary", func(c *fiber.Ctx) error { return GetSummaryAPI(c, svc) })
}

// GetSummaryAPI aggregates the headline dashboard numbers for the active
// site: workforce size, today's attendance breakdown and pending payroll.
func GetSummaryAPI(c *fiber.Ctx, svc *store.Service) error {
	siteID := c.Query("site_id")
	if siteID == "" {
		siteID = svc.ActiveSite()
	}
	today := time.Now().Format("2006-01-02")

	sites := svc.List(c.Context(), store.TableSites, store.Filter{})

	var emps []models.Employee
	_ = store.Decode(svc.List(c.Context(), store.TableEmployees, store.Filter{SiteID: siteID}), &emps)
	activeEmployees := 0
	for _, e := range emps {
		if e.Status == models.EmployeeActive {
			activeEmployees++
		}
	}

	var records []models.AttendanceRecord
	_ = store.Decode(svc.List(c.Context(), store.TableAttendance, store.Filter{SiteID: siteID, Date: today}), &records)
	present, absent, late := 0, 0, 0
	for _, r := range records {
		switch r.Status {
		case models.Present:
			present++
		case models.Absent:
			absent++
		case models.Late:
			late++
		}
	}

	var runs []models.PayrollRun
	_ = store.Decode(svc.List(c.Context(), store.TablePayroll, store.Filter{SiteID: siteID}), &runs)
	pendingRuns := 0
	var pendingTotal float64
	for _, r := range runs {
		if r.Status == models.PayrollPending || r.Status == models.PayrollDraft {
			pendingRuns++
			pendingTotal += r.Total
		}
	}

	return c.JSON(fiber.Map{
		"sites_count":      len(sites),
		"employees_total":  len(emps),
		"employees_active": activeEmployees,
		"attendance_today": fiber.Map{
			"present": present,
			"absent":  absent,
			"late":    late,
			"total":   len(records),
		},
		"payroll_pending": fiber.Map{
			"runs":  pendingRuns,
			"total": pendingTotal,
		},
	})
}
