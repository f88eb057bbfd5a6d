package models

// Site represents a work site that scopes employees, attendance and payroll.
// A blank site_id on a scoped row means "unassigned", which is visible under
// every site.
type Site struct {
	ID           string     `json:"id"`
	Name         string     `json:"name" validate:"required"`
	Location     string     `json:"location"`
	Status       SiteStatus `json:"status"`
	WorkersCount int        `json:"workers_count"`
	CreatedAt    string     `json:"created_at,omitempty"`
}
