package models

// PayrollEntry is one line of a payroll run. Entries are embedded in the run
// record and are not separately addressable.
type PayrollEntry struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	TaskID         string  `json:"task_id"`
	TaskLabel      string  `json:"task_label"`
	Shift          Shift   `json:"shift"`
	Sunday         bool    `json:"sunday"`
	Days           float64 `json:"days"`
	Unit           string  `json:"unit"`
	Rate           float64 `json:"rate"`
	OvertimeHours  float64 `json:"overtime_hours"`
	OvertimeRate   float64 `json:"overtime_rate"`
	OvertimeTotal  float64 `json:"overtime_total"`
	Bonus          float64 `json:"bonus"`
	Deduction      float64 `json:"deduction"`
	Override       bool    `json:"override"`
	OverrideAmount float64 `json:"override_amount"`
	Total          float64 `json:"total"`
	Status         string  `json:"status,omitempty"`
}

// PayrollRun represents a computed payroll for a pay period, with its full
// entry list embedded.
type PayrollRun struct {
	ID             string         `json:"id"`
	PayPeriod      string         `json:"pay_period"`
	SiteID         string         `json:"site_id"`
	EmployeesCount int            `json:"employees_count"`
	TotalHours     float64        `json:"total_hours"`
	Total          float64        `json:"total"`
	Status         PayrollStatus  `json:"status"`
	Entries        []PayrollEntry `json:"entries"`
	CreatedAt      string         `json:"created_at,omitempty"`
}
