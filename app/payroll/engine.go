package payroll

import (
	"math"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

// OvertimeConfig carries the overtime rules from the settings blob. The
// hourly rate used for overtime derives from the default daily rate over a
// standard 8-hour day.
type OvertimeConfig struct {
	ThresholdHours float64
	Multiplier     float64
	DailyRate      float64
}

// ConfigFromSettings applies defaults for unset values.
func ConfigFromSettings(s models.Settings) OvertimeConfig {
	cfg := OvertimeConfig{
		ThresholdHours: s.OvertimeThresholdHours,
		Multiplier:     s.OvertimeMultiplier,
		DailyRate:      s.DefaultDailyRate,
	}
	if cfg.ThresholdHours <= 0 {
		cfg.ThresholdHours = 8
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 1.5
	}
	if cfg.DailyRate <= 0 {
		cfg.DailyRate = 5000
	}
	return cfg
}

func (c OvertimeConfig) HourlyRate() float64 {
	return c.DailyRate / 8
}

// Round2 rounds a monetary amount to 2 decimals. Every monetary sub-result
// is rounded before summation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeEntry fills the derived fields of a payroll entry: resolved rate and
// unit, overtime amounts and the line total. base follows the override rule;
// total = base + overtimeTotal + bonus - deduction.
func ComputeEntry(e *models.PayrollEntry, cfg OvertimeConfig) {
	shift := e.Shift
	if e.Sunday {
		shift = models.SundayShift
	}
	if shift == "" {
		shift = models.DayShift
	}
	e.Shift = shift

	if t := TaskByID(e.TaskID); t != nil {
		e.TaskLabel = t.Label
		e.Unit = t.Unit
	}
	if e.Rate == 0 {
		e.Rate = RateFor(e.TaskID, shift)
	}

	base := Round2(e.Days * e.Rate)
	if e.Override {
		base = Round2(e.OverrideAmount)
	}
	e.OvertimeRate = Round2(cfg.HourlyRate() * cfg.Multiplier)
	e.OvertimeTotal = Round2(e.OvertimeHours * cfg.HourlyRate() * cfg.Multiplier)
	bonus := Round2(e.Bonus)
	deduction := Round2(e.Deduction)
	e.Total = Round2(base + e.OvertimeTotal + bonus - deduction)
}

// DaysWorked counts distinct calendar dates on which the employee was present
// or late within the period, bounds inclusive.
func DaysWorked(records []models.AttendanceRecord, employeeID string, p PayPeriod) int {
	seen := make(map[string]bool)
	for _, r := range records {
		if r.EmployeeID != employeeID {
			continue
		}
		if r.Status != models.Present && r.Status != models.Late {
			continue
		}
		if !p.Contains(r.Date) {
			continue
		}
		seen[r.Date] = true
	}
	return len(seen)
}

// OvertimeHours sums overtime worked by the employee within the period:
// hours beyond the daily threshold on regular records, plus the full hours of
// records flagged as overtime.
func OvertimeHours(records []models.AttendanceRecord, employeeID string, p PayPeriod, cfg OvertimeConfig) float64 {
	var total float64
	for _, r := range records {
		if r.EmployeeID != employeeID || r.Hours == nil {
			continue
		}
		if !p.Contains(r.Date) {
			continue
		}
		if r.Overtime {
			total += *r.Hours
		} else if *r.Hours > cfg.ThresholdHours {
			total += *r.Hours - cfg.ThresholdHours
		}
	}
	return total
}

// BuildRun assembles a payroll run from computed entries. Entries must have
// been passed through ComputeEntry already.
func BuildRun(period PayPeriod, siteID string, entries []models.PayrollEntry, cfg OvertimeConfig) models.PayrollRun {
	employees := make(map[string]bool)
	var total, totalHours float64
	for _, e := range entries {
		if e.EmployeeID != "" {
			employees[e.EmployeeID] = true
		} else {
			employees[e.EmployeeName] = true
		}
		total += e.Total
		totalHours += e.Days*cfg.ThresholdHours + e.OvertimeHours
	}
	return models.PayrollRun{
		PayPeriod:      period.Label(),
		SiteID:         siteID,
		EmployeesCount: len(employees),
		TotalHours:     Round2(totalHours),
		Total:          Round2(total),
		Status:         models.PayrollPending,
		Entries:        entries,
	}
}
