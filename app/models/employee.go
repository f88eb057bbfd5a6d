package models

// Employee represents a worker assigned to a site.
type Employee struct {
	ID             string         `json:"id"`
	Name           string         `json:"name" validate:"required"`
	Position       string         `json:"position" validate:"required"`
	Status         EmployeeStatus `json:"status"`
	DocumentStatus DocumentStatus `json:"document_status"`
	Email          string         `json:"email" validate:"required,email"`
	Phone          string         `json:"phone"`
	SiteID         string         `json:"site_id"`
	CreatedAt      string         `json:"created_at,omitempty"`
}
