package payroll

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	enginepkg "github.com/Cavel-Dev/Hurly-sub000/app/payroll"
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

func GetPayrollAPI(c *fiber.Ctx, svc *store.Service) error {
	rows := svc.List(c.Context(), store.TablePayroll, store.Filter{
		SiteID: siteScope(c, svc),
		Period: c.Query("period"),
	})
	return c.JSON(fiber.Map{"payroll": rows, "count": len(rows)})
}

// GetPeriodsAPI returns the selectable semi-monthly pay periods.
func GetPeriodsAPI(c *fiber.Ctx) error {
	now := time.Now()
	var periods []fiber.Map
	for i, name := range []string{"current", "previous", "before"} {
		p := enginepkg.PeriodsBack(now, i)
		periods = append(periods, fiber.Map{
			"name":  name,
			"label": p.Label(),
			"start": p.Start.Format("2006-01-02"),
			"end":   p.End.Format("2006-01-02"),
		})
	}
	return c.JSON(fiber.Map{"periods": periods})
}

// GetRateSheetAPI exposes the static task rate sheet.
func GetRateSheetAPI(c *fiber.Ctx) error {
	var tasks []fiber.Map
	for _, t := range enginepkg.Tasks {
		tasks = append(tasks, fiber.Map{
			"id":     t.ID,
			"label":  t.Label,
			"unit":   t.Unit,
			"day":    t.Day,
			"night":  t.Night,
			"sunday": t.Sunday,
		})
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

type entryRequest struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	TaskID         string  `json:"task_id" validate:"required"`
	Shift          string  `json:"shift"`
	Sunday         bool    `json:"sunday"`
	Days           float64 `json:"days"`
	OvertimeHours  float64 `json:"overtime_hours"`
	Bonus          float64 `json:"bonus"`
	Deduction      float64 `json:"deduction"`
	Override       bool    `json:"override"`
	OverrideAmount float64 `json:"override_amount"`
}

type createRunRequest struct {
	Period   string         `json:"period"`
	SiteID   string         `json:"site_id"`
	AutoDays bool           `json:"auto_days"`
	Entries  []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

func periodFromSelector(name string, now time.Time) enginepkg.PayPeriod {
	switch name {
	case "previous":
		return enginepkg.PeriodsBack(now, 1)
	case "before":
		return enginepkg.PeriodsBack(now, 2)
	default:
		return enginepkg.CurrentPeriod(now)
	}
}

// CreateRunAPI assembles and persists a payroll run. With auto_days set,
// days worked and overtime hours are derived from attendance within the
// selected period.
func CreateRunAPI(c *fiber.Ctx, svc *store.Service) error {
	var req createRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "At least one entry with a task is required"})
	}

	if req.SiteID == "" {
		req.SiteID = svc.ActiveSite()
	}
	period := periodFromSelector(req.Period, time.Now())
	cfg := enginepkg.ConfigFromSettings(svc.Settings())

	var records []models.AttendanceRecord
	if req.AutoDays {
		rows := svc.List(c.Context(), store.TableAttendance, store.Filter{SiteID: req.SiteID})
		if err := store.Decode(rows, &records); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to load attendance"})
		}
	}

	var employeeNames map[string]string
	lookupName := func(id string) string {
		if employeeNames == nil {
			employeeNames = make(map[string]string)
			rows := svc.List(c.Context(), store.TableEmployees, store.Filter{})
			var emps []models.Employee
			if err := store.Decode(rows, &emps); err == nil {
				for _, e := range emps {
					employeeNames[e.ID] = e.Name
				}
			}
		}
		return employeeNames[id]
	}

	entries := make([]models.PayrollEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		e := models.PayrollEntry{
			EmployeeID:     in.EmployeeID,
			EmployeeName:   in.EmployeeName,
			TaskID:         in.TaskID,
			Shift:          models.Shift(in.Shift),
			Sunday:         in.Sunday,
			Days:           in.Days,
			OvertimeHours:  in.OvertimeHours,
			Bonus:          in.Bonus,
			Deduction:      in.Deduction,
			Override:       in.Override,
			OverrideAmount: in.OverrideAmount,
		}
		if e.EmployeeName == "" && e.EmployeeID != "" {
			e.EmployeeName = lookupName(e.EmployeeID)
		}
		if req.AutoDays && e.EmployeeID != "" {
			if e.Days == 0 {
				e.Days = float64(enginepkg.DaysWorked(records, e.EmployeeID, period))
			}
			if e.OvertimeHours == 0 {
				e.OvertimeHours = enginepkg.OvertimeHours(records, e.EmployeeID, period, cfg)
			}
		}
		enginepkg.ComputeEntry(&e, cfg)
		entries = append(entries, e)
	}

	run := enginepkg.BuildRun(period, req.SiteID, entries, cfg)
	row, err := svc.Create(c.Context(), store.TablePayroll, store.ToRow(run), auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create payroll run"})
	}
	return c.Status(201).JSON(row)
}

var allowedStatuses = map[string]bool{
	string(models.PayrollPending):  true,
	string(models.PayrollApproved): true,
	string(models.PayrollPaid):     true,
	string(models.PayrollDraft):    true,
	string(models.PayrollFinal):    true,
}

// UpdateStatusAPI transitions a run's status. Moving a run to Final fires
// the payroll-finalized notification, mirroring the DB webhook the hosted
// backend used to deliver.
func UpdateStatusAPI(c *fiber.Ctx, svc *store.Service, notifier *services.Notifier) error {
	id := c.Params("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !allowedStatuses[req.Status] {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid status"})
	}

	oldStatus := ""
	for _, r := range svc.List(c.Context(), store.TablePayroll, store.Filter{}) {
		if rowID, _ := r["id"].(string); rowID == id {
			oldStatus, _ = r["status"].(string)
			break
		}
	}

	row, err := svc.Update(c.Context(), store.TablePayroll, id, store.Row{"status": req.Status}, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update payroll status"})
	}
	if row == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Payroll run not found"})
	}

	if req.Status == string(models.PayrollFinal) && oldStatus != string(models.PayrollFinal) && notifier != nil {
		var run models.PayrollRun
		if err := store.Decode(row, &run); err == nil {
			notifier.Go(func() error { return notifier.PayrollFinalized(run, nil) })
		}
	}
	return c.JSON(row)
}

func UpdateRunAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	var patch store.Row
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	row, err := svc.Update(c.Context(), store.TablePayroll, id, patch, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update payroll run"})
	}
	if row == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Payroll run not found"})
	}
	return c.JSON(row)
}

func DeleteRunAPI(c *fiber.Ctx, svc *store.Service) error {
	id := c.Params("id")
	removed, err := svc.Delete(c.Context(), store.TablePayroll, id, auth.Actor(c))
	if err != nil {
		if err == store.ErrDemoMode {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete payroll run"})
	}
	if !removed {
		return c.Status(404).JSON(fiber.Map{"error": "Payroll run not found"})
	}
	return c.SendStatus(204)
}
