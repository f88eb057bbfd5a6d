package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return local
}

func TestLocalStoreRows(t *testing.T) {
	local := newLocal(t)

	assert.Nil(t, local.Rows(TableSites))

	require.NoError(t, local.AppendRow(TableSites, Row{"id": "s1", "name": "Harbour View"}))
	require.NoError(t, local.AppendRow(TableSites, Row{"id": "s2", "name": "Portmore"}))

	rows := local.Rows(TableSites)
	require.Len(t, rows, 2)
	assert.Equal(t, "Harbour View", rows[0]["name"])
}

func TestLocalStoreUpdateRow(t *testing.T) {
	local := newLocal(t)
	require.NoError(t, local.AppendRow(TableEmployees, Row{"id": "e1", "name": "A. Brown", "position": "Mason"}))

	updated, err := local.UpdateRow(TableEmployees, "e1", Row{"position": "Foreman"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Foreman", updated["position"])
	assert.Equal(t, "A. Brown", updated["name"])

	missing, err := local.UpdateRow(TableEmployees, "nope", Row{"position": "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLocalStoreDeleteRow(t *testing.T) {
	local := newLocal(t)
	require.NoError(t, local.AppendRow(TableEmployees, Row{"id": "e1"}))

	removed, err := local.DeleteRow(TableEmployees, "e1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = local.DeleteRow(TableEmployees, "e1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLocalStoreNormalizesLegacyFieldNames(t *testing.T) {
	local := newLocal(t)
	require.NoError(t, local.SetRows(TableAttendance, []Row{
		{"id": "a1", "employeeId": "e1", "checkIn": "07:30", "time_out": "16:00"},
		{"id": "a2", "employee_id": "e2", "employeeId": "stale"},
	}))

	rows := local.Rows(TableAttendance)
	require.Len(t, rows, 2)
	assert.Equal(t, "e1", rows[0]["employee_id"])
	assert.Equal(t, "07:30", rows[0]["clock_in"])
	assert.Equal(t, "16:00", rows[0]["clock_out"])
	_, hasLegacy := rows[0]["employeeId"]
	assert.False(t, hasLegacy)

	// Canonical spelling wins over the legacy one.
	assert.Equal(t, "e2", rows[1]["employee_id"])
}

func TestLocalStoreSettings(t *testing.T) {
	local := newLocal(t)

	settings := local.Settings()
	assert.Equal(t, models.DefaultSettings(), settings)

	settings.OvertimeThresholdHours = 9
	settings.DefaultSiteConfirmed = true
	require.NoError(t, local.SetSettings(settings))

	got := local.Settings()
	assert.Equal(t, 9.0, got.OvertimeThresholdHours)
	assert.True(t, got.DefaultSiteConfirmed)
}

func TestLocalStoreFlagsAndStrings(t *testing.T) {
	local := newLocal(t)

	assert.False(t, local.Flag(keyDemoMode))
	require.NoError(t, local.SetFlag(keyDemoMode, true))
	assert.True(t, local.Flag(keyDemoMode))

	assert.Equal(t, "", local.GetString(keyActiveSite))
	require.NoError(t, local.SetString(keyActiveSite, "s1"))
	assert.Equal(t, "s1", local.GetString(keyActiveSite))
}

func TestAppendAuditPrunesOldEntries(t *testing.T) {
	local := newLocal(t)

	old := models.AuditEntry{
		ID:     "old",
		TS:     time.Now().Add(-366 * 24 * time.Hour).UTC().Format(time.RFC3339),
		Action: models.AuditCreate,
		Entity: "sites",
	}
	require.NoError(t, local.AppendAudit(old))

	recent := models.AuditEntry{Action: models.AuditUpdate, Entity: "employees"}
	require.NoError(t, local.AppendAudit(recent))

	entries := local.AuditLog()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditUpdate, entries[0].Action)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[0].TS)
}

func TestAuditLogNewestFirst(t *testing.T) {
	local := newLocal(t)
	require.NoError(t, local.AppendAudit(models.AuditEntry{ID: "first", Entity: "sites"}))
	require.NoError(t, local.AppendAudit(models.AuditEntry{ID: "second", Entity: "sites"}))

	entries := local.AuditLog()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].ID)
}
