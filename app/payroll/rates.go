package payroll

import "github.com/Cavel-Dev/Hurly-sub000/app/models"

// Task is one rate sheet row: a payable task with up to three shift rates in
// JMD. A nil rate means the shift is not priced for that task.
type Task struct {
	ID     string
	Label  string
	Unit   string
	Day    *float64
	Night  *float64
	Sunday *float64
}

func rate(v float64) *float64 { return &v }

// Tasks is the static rate sheet.
var Tasks = []Task{
	{ID: "general-labour", Label: "General Labour", Unit: "per day", Day: rate(5000), Night: rate(6000), Sunday: rate(7500)},
	{ID: "steel-fixing", Label: "Steel Fixing", Unit: "per day", Day: rate(6500), Night: rate(7800), Sunday: rate(9750)},
	{ID: "masonry", Label: "Masonry", Unit: "per day", Day: rate(7000), Night: rate(8400), Sunday: rate(10500)},
	{ID: "carpentry", Label: "Carpentry", Unit: "per day", Day: rate(7000), Night: rate(8400)},
	{ID: "tiling", Label: "Tiling", Unit: "per day", Day: rate(7500), Sunday: rate(11250)},
	{ID: "painting", Label: "Painting", Unit: "per day", Day: rate(5500)},
	{ID: "plumbing", Label: "Plumbing", Unit: "per day", Day: rate(8000), Night: rate(9600), Sunday: rate(12000)},
	{ID: "electrical", Label: "Electrical", Unit: "per day", Day: rate(8500), Night: rate(10200), Sunday: rate(12750)},
	{ID: "site-supervision", Label: "Site Supervision", Unit: "per day", Day: rate(10000), Night: rate(11000), Sunday: rate(13000)},
	{ID: "security", Label: "Security", Unit: "per shift", Night: rate(6000), Sunday: rate(7000)},
}

// TaskByID returns the rate sheet row for a task id, or nil.
func TaskByID(id string) *Task {
	for i := range Tasks {
		if Tasks[i].ID == id {
			return &Tasks[i]
		}
	}
	return nil
}

// RateFor resolves the unit rate for a task and shift. Sunday work takes the
// sunday rate when priced, night work the night rate; otherwise the first
// priced rate wins in day, night, sunday order. Unknown tasks rate at zero.
func RateFor(taskID string, shift models.Shift) float64 {
	t := TaskByID(taskID)
	if t == nil {
		return 0
	}
	if shift == models.SundayShift && t.Sunday != nil {
		return *t.Sunday
	}
	if shift == models.NightShift && t.Night != nil {
		return *t.Night
	}
	for _, r := range []*float64{t.Day, t.Night, t.Sunday} {
		if r != nil {
			return *r
		}
	}
	return 0
}
