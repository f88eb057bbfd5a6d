package models

// AttendanceRecord represents one employee's attendance for a calendar day.
// Date carries no time component ("2006-01-02"); clock times are bare HH:MM
// strings. EmployeeName is denormalized and resynced when the employee is
// renamed. At most one non-overtime record may exist per employee and date.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	EmployeeID   string           `json:"employee_id" validate:"required"`
	EmployeeName string           `json:"employee_name"`
	Date         string           `json:"date" validate:"required"`
	Status       AttendanceStatus `json:"status" validate:"required,oneof=present absent late"`
	ClockIn      *string          `json:"clock_in,omitempty"`
	ClockOut     *string          `json:"clock_out,omitempty"`
	Hours        *float64         `json:"hours,omitempty"`
	Overtime     bool             `json:"overtime"`
	Notes        string           `json:"notes"`
	SiteID       string           `json:"site_id"`
	CreatedAt    string           `json:"created_at,omitempty"`
}
