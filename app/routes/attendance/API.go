package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

var validate = validator.New()

func siteScope(c *fiber.Ctx, svc *store.Service) string {
	if siteID := c.Query("site_id"); siteID != "" {
		return siteID
	}
	return svc.ActiveSite()
}

func GetAttendanceAPI(c *fiber.Ctx, svc *store.Service) error {
	rows := svc.List(c.Context(), store.TableAttendance, store.Filter{
		SiteID:     siteScope(c, svc),
		Date:       c.Query("date"),
		EmployeeID: c.Query("employee_id"),
	})
	return c.JSON(fiber.Map{"attendance": rows, "count": len(rows)})
}

// MarkAttendanceAPI records one attendance row. A second non-overtime record
// for the same employee and date is rejected with a conflict; overtime
// records are exempt and additionally trigger an overtime alert.
func MarkAttendanceAPI(c *fiber.Ctx, svc *store.Service, notifier *services.Notifier) error {
	var rec models.AttendanceRecord
	if err := c.BodyParser(&rec); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(rec); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Employee, date and a valid status are required"})
	}
	if _, err := time.Parse("2006-01-02", rec.Date); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	if rec.SiteID == "" {
		rec.SiteID = svc.ActiveSite()
	}
	if rec.EmployeeName == "" {
		emps := svc.List(c.Context(), store.TableEmployees, store.Filter{})
		var matches []models.Employee
		if err := store.Decode(emps, &matches); err == nil {
			for _, e := range matches {
				if e.ID == rec.EmployeeID {
					rec.EmployeeName = e.Name
					break
				}
			}
		}
	}

	row, err := svc.CreateAttendance(c.Context(), store.ToRow(rec), auth.Actor(c))
	if err != nil {
		switch err {
		case store.ErrDemoMode:
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		case store.ErrDuplicateAttendance:
			return c.Status(409).JSON(fiber.Map{"error": "Attendance already recorded for this employee today"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to save attendance record"})
		}
	}

	if rec.Overtime && notifier != nil {
		hours := 0.0
		if rec.Hours != nil {
			hours = *rec.Hours
		}
		entry := services.OvertimeEntry{
			EmployeeName:  rec.EmployeeName,
			Date:          rec.Date,
			OvertimeHours: hours,
		}
		notifier.Go(func() error {
			return notifier.OvertimeAdded([]services.OvertimeEntry{entry}, nil)
		})
	}

	return c.Status(201).JSON(row)
}

func UpdateAttendanceAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	var patch store.Row
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	row, err := svc.Update(c.Context(), store.TableAttendance, id, patch, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update attendance record"})
	}
	if row == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Attendance record not found"})
	}
	return c.JSON(row)
}

func DeleteAttendanceAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	removed, err := svc.Delete(c.Context(), store.TableAttendance, id, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete attendance record"})
	}
	if !removed {
		return c.Status(404).JSON(fiber.Map{"error": "Attendance record not found"})
	}
	return c.SendStatus(204)
}
