package models

// AttendanceStatus defines the possible status values for attendance.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
)

// SiteStatus defines the lifecycle states of a work site.
type SiteStatus string

const (
	SiteActive    SiteStatus = "Active"
	SiteOnHold    SiteStatus = "On Hold"
	SiteCompleted SiteStatus = "Completed"
)

// EmployeeStatus defines whether an employee is currently engaged.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeInactive EmployeeStatus = "Inactive"
)

// DocumentStatus tracks onboarding paperwork for an employee.
type DocumentStatus string

const (
	DocumentsPending    DocumentStatus = "Pending"
	DocumentsInProgress DocumentStatus = "In Progress"
	DocumentsComplete   DocumentStatus = "Complete"
)

// PayrollStatus defines the states of a payroll run. Draft and Final are
// legacy values still accepted at the mutation layer; new runs move through
// Pending, Approved and Paid.
type PayrollStatus string

const (
	PayrollPending  PayrollStatus = "Pending"
	PayrollApproved PayrollStatus = "Approved"
	PayrollPaid     PayrollStatus = "Paid"
	PayrollDraft    PayrollStatus = "Draft"
	PayrollFinal    PayrollStatus = "Final"
)

// Shift defines the shift a payroll entry was worked under.
type Shift string

const (
	DayShift    Shift = "Day"
	NightShift  Shift = "Night"
	SundayShift Shift = "Sunday"
)

// AuditAction defines the recorded audit log actions.
type AuditAction string

const (
	AuditCreate      AuditAction = "create"
	AuditUpdate      AuditAction = "update"
	AuditDelete      AuditAction = "delete"
	AuditLogin       AuditAction = "login"
	AuditLogout      AuditAction = "logout"
	AuditLoginFailed AuditAction = "login_failed"
)
