package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

func TestRateFor(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		shift  models.Shift
		want   float64
	}{
		{"day rate", "general-labour", models.DayShift, 5000},
		{"night rate", "general-labour", models.NightShift, 6000},
		{"sunday rate", "general-labour", models.SundayShift, 7500},
		{"night falls back to day when unpriced", "tiling", models.NightShift, 7500},
		{"sunday falls back to day when unpriced", "carpentry", models.SundayShift, 7000},
		{"day falls back to night when unpriced", "security", models.DayShift, 6000},
		{"painting prices day only", "painting", models.SundayShift, 5500},
		{"unknown task rates zero", "welding", models.DayShift, 0},
		{"empty shift uses day", "masonry", "", 7000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RateFor(tt.taskID, tt.shift))
		})
	}
}

func TestTaskByID(t *testing.T) {
	task := TaskByID("security")
	require.NotNil(t, task)
	assert.Equal(t, "Security", task.Label)
	assert.Equal(t, "per shift", task.Unit)
	assert.Nil(t, task.Day)

	assert.Nil(t, TaskByID("does-not-exist"))
}
