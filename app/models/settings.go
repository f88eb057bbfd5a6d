package models

// Settings is the persisted settings blob consumed by the payroll engine and
// the store layer.
type Settings struct {
	OvertimeThresholdHours float64 `json:"overtime_threshold_hours"`
	OvertimeMultiplier     float64 `json:"overtime_multiplier"`
	DefaultDailyRate       float64 `json:"default_daily_rate"`
	DefaultSiteConfirmed   bool    `json:"default_site_confirmed"`
}

// DefaultSettings returns the settings applied before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		OvertimeThresholdHours: 8,
		OvertimeMultiplier:     1.5,
		DefaultDailyRate:       5000,
	}
}
