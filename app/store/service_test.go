package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

// fakeRemote is an in-memory Remote for exercising the sync logic without a
// database.
type fakeRemote struct {
	mu       sync.Mutex
	rows     map[string][]Row
	offline  bool
	inserted []string
	upserts  int
	renames  map[string]string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rows:    make(map[string][]Row),
		renames: make(map[string]string),
	}
}

func (f *fakeRemote) Ping(context.Context) error {
	if f.offline {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeRemote) List(_ context.Context, table string) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Row, len(f.rows[table]))
	copy(out, f.rows[table])
	return out, nil
}

func (f *fakeRemote) Insert(_ context.Context, table string, row Row) (Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[table] = append(f.rows[table], row)
	f.inserted = append(f.inserted, rowString(row, "id"))
	return row, nil
}

func (f *fakeRemote) Update(_ context.Context, table, id string, patch Row) (Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows[table] {
		if rowString(r, "id") == id {
			for k, v := range patch {
				r[k] = v
			}
			f.rows[table][i] = r
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) Delete(_ context.Context, table, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows[table] {
		if rowString(r, "id") == id {
			f.rows[table] = append(f.rows[table][:i], f.rows[table][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRemote) Upsert(_ context.Context, table string, row Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	for i, r := range f.rows[table] {
		if rowString(r, "id") == rowString(row, "id") {
			f.rows[table][i] = row
			return nil
		}
	}
	f.rows[table] = append(f.rows[table], row)
	return nil
}

func (f *fakeRemote) SetAttendanceEmployeeName(_ context.Context, employeeID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renames[employeeID] = name
	for i, r := range f.rows[TableAttendance] {
		if rowString(r, "employee_id") == employeeID {
			f.rows[TableAttendance][i]["employee_name"] = name
		}
	}
	return nil
}

func (f *fakeRemote) AssignSite(_ context.Context, table, siteID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i, r := range f.rows[table] {
		if rowString(r, "site_id") == "" {
			f.rows[table][i]["site_id"] = siteID
			n++
		}
	}
	return n, nil
}

func newTestService(t *testing.T, remote Remote) (*Service, *LocalStore) {
	t.Helper()
	local := newLocal(t)
	svc := NewService(context.Background(), Options{Local: local, Remote: remote})
	return svc, local
}

func TestServiceOfflineFallsBackToLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.offline = true
	svc, _ := newTestService(t, remote)

	assert.False(t, svc.Healthy())

	created, err := svc.Create(context.Background(), TableSites, Row{"name": "Harbour View"}, nil)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created["id"], "offline create mints a local id")

	rows := svc.List(context.Background(), TableSites, Filter{})
	require.Len(t, rows, 1)
	assert.Empty(t, remote.inserted, "nothing reaches the remote while offline")
}

func TestServiceCreateRemoteFirst(t *testing.T) {
	remote := newFakeRemote()
	svc, local := newTestService(t, remote)
	require.True(t, svc.Healthy())

	created, err := svc.Create(context.Background(), TableSites, Row{"name": "Portmore"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created["id"])
	assert.Len(t, remote.inserted, 1)

	// The write is mirrored into the local cache.
	assert.Len(t, local.Rows(TableSites), 1)
}

func TestServiceColdCacheFillsFromRemote(t *testing.T) {
	remote := newFakeRemote()
	remote.rows[TableSites] = []Row{{"id": "s1", "name": "Harbour View"}}
	svc, local := newTestService(t, remote)

	rows := svc.List(context.Background(), TableSites, Filter{})
	require.Len(t, rows, 1)
	assert.Len(t, local.Rows(TableSites), 1, "remote rows are cached locally")
}

func TestServiceWarmCacheTriggersTrackedRefresh(t *testing.T) {
	remote := newFakeRemote()
	svc, local := newTestService(t, remote)
	require.NoError(t, local.SetRows(TableSites, []Row{{"id": "s1", "name": "Old Name"}}))
	remote.rows[TableSites] = []Row{{"id": "s1", "name": "New Name"}}

	rows := svc.List(context.Background(), TableSites, Filter{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Old Name", rows[0]["name"], "warm cache is served as-is")

	select {
	case res := <-svc.Refreshes():
		assert.Equal(t, TableSites, res.Table)
		assert.NoError(t, res.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a refresh completion")
	}
	assert.Equal(t, "New Name", local.Rows(TableSites)[0]["name"])
}

func TestServiceDemoMode(t *testing.T) {
	remote := newFakeRemote()
	remote.rows[TableSites] = []Row{{"id": "s1"}}
	svc, _ := newTestService(t, remote)
	require.NoError(t, svc.SetDemoMode(true))

	assert.Empty(t, svc.List(context.Background(), TableSites, Filter{}))

	_, err := svc.Create(context.Background(), TableSites, Row{"name": "x"}, nil)
	assert.ErrorIs(t, err, ErrDemoMode)
	_, err = svc.Update(context.Background(), TableSites, "s1", Row{"name": "y"}, nil)
	assert.ErrorIs(t, err, ErrDemoMode)
	_, err = svc.Delete(context.Background(), TableSites, "s1", nil)
	assert.ErrorIs(t, err, ErrDemoMode)
	_, err = svc.CreateAttendance(context.Background(), Row{"employee_id": "e1"}, nil)
	assert.ErrorIs(t, err, ErrDemoMode)
	_, err = svc.Backfill(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, ErrDemoMode)

	// Toggling off restores reads immediately.
	require.NoError(t, svc.SetDemoMode(false))
	assert.Len(t, svc.List(context.Background(), TableSites, Filter{}), 1)
}

func TestServiceUpdateMissingRow(t *testing.T) {
	svc, _ := newTestService(t, newFakeRemote())

	updated, err := svc.Update(context.Background(), TableSites, "missing", Row{"name": "x"}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestCreateAttendanceRejectsDuplicate(t *testing.T) {
	svc, _ := newTestService(t, newFakeRemote())

	first := Row{"employee_id": "e1", "date": "2024-08-01", "status": "present"}
	_, err := svc.CreateAttendance(context.Background(), first, nil)
	require.NoError(t, err)

	dup := Row{"employee_id": "e1", "date": "2024-08-01", "status": "late"}
	_, err = svc.CreateAttendance(context.Background(), dup, nil)
	assert.ErrorIs(t, err, ErrDuplicateAttendance)

	// Overtime records are exempt from the one-per-day rule.
	ot := Row{"employee_id": "e1", "date": "2024-08-01", "status": "present", "overtime": true}
	_, err = svc.CreateAttendance(context.Background(), ot, nil)
	require.NoError(t, err)

	// A second regular record on another date is fine.
	next := Row{"employee_id": "e1", "date": "2024-08-02", "status": "present"}
	_, err = svc.CreateAttendance(context.Background(), next, nil)
	require.NoError(t, err)
}

func TestUpdateEmployeePropagatesRename(t *testing.T) {
	remote := newFakeRemote()
	svc, local := newTestService(t, remote)

	_, err := svc.Create(context.Background(), TableEmployees, Row{"id": "e1", "name": "A. Brown"}, nil)
	require.NoError(t, err)
	require.NoError(t, local.SetRows(TableAttendance, []Row{
		{"id": "a1", "employee_id": "e1", "employee_name": "A. Brown"},
		{"id": "a2", "employee_id": "e2", "employee_name": "B. Clarke"},
	}))

	updated, err := svc.UpdateEmployee(context.Background(), "e1", Row{"name": "A. Browne"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "A. Browne", remote.renames["e1"])
	rows := local.Rows(TableAttendance)
	assert.Equal(t, "A. Browne", rows[0]["employee_name"])
	assert.Equal(t, "B. Clarke", rows[1]["employee_name"], "other employees untouched")
}

func TestMigrationRunsOnceOnFirstConnect(t *testing.T) {
	local := newLocal(t)
	require.NoError(t, local.SetRows(TableAttendance, []Row{
		{"id": "a1", "employee_id": "e1", "date": "2024-08-01", "clock_in": "07:30", "stray_field": "x"},
		{"id": "a2", "employee_id": "e2", "date": "bad-date", "clock_in": "08:00"},
	}))

	remote := newFakeRemote()
	NewService(context.Background(), Options{Local: local, Remote: remote})

	require.Len(t, remote.rows[TableAttendance], 2)
	migrated := remote.rows[TableAttendance][0]
	assert.Equal(t, "2024-08-01T07:30:00Z", migrated["clock_in"], "bare clock time combined with date")
	_, hasStray := migrated["stray_field"]
	assert.False(t, hasStray, "fields outside the allow-list are dropped")

	bad := remote.rows[TableAttendance][1]
	assert.Nil(t, bad["date"], "unparseable dates are nulled")
	assert.Nil(t, bad["clock_in"])

	assert.True(t, local.Flag(keyMigrationDone))

	// A second service over the same store must not upsert again.
	before := remote.upserts
	NewService(context.Background(), Options{Local: local, Remote: remote})
	assert.Equal(t, before, remote.upserts)
}

func TestBackfill(t *testing.T) {
	remote := newFakeRemote()
	svc, local := newTestService(t, remote)
	require.NoError(t, local.SetRows(TableEmployees, []Row{
		{"id": "e1", "name": "A. Brown"},
		{"id": "e2", "name": "B. Clarke", "site_id": "other"},
	}))

	// Refused until the default site is confirmed.
	ran, err := svc.Backfill(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.False(t, ran)

	settings := svc.Settings()
	settings.DefaultSiteConfirmed = true
	require.NoError(t, svc.SetSettings(settings))

	ran, err = svc.Backfill(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.True(t, ran)

	rows := local.Rows(TableEmployees)
	assert.Equal(t, "s1", rows[0]["site_id"])
	assert.Equal(t, "other", rows[1]["site_id"], "scoped rows are left alone")

	// One-shot: the second invocation is a no-op.
	ran, err = svc.Backfill(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestListSiteFilterKeepsUnscopedRows(t *testing.T) {
	svc, local := newTestService(t, newFakeRemote())
	require.NoError(t, local.SetRows(TableEmployees, []Row{
		{"id": "e1", "site_id": "s1", "created_at": "2024-08-02T00:00:00Z"},
		{"id": "e2", "site_id": "s2", "created_at": "2024-08-03T00:00:00Z"},
		{"id": "e3", "created_at": "2024-08-01T00:00:00Z"},
	}))

	rows := svc.List(context.Background(), TableEmployees, Filter{SiteID: "s1"})
	// Wait out the background refresh so it cannot race the next assertion.
	select {
	case <-svc.Refreshes():
	case <-time.After(2 * time.Second):
	}

	require.Len(t, rows, 2)
	assert.Equal(t, "e1", rows[0]["id"], "ordered newest first")
	assert.Equal(t, "e3", rows[1]["id"], "unscoped rows stay visible")
}

func TestServiceAudit(t *testing.T) {
	svc, _ := newTestService(t, newFakeRemote())
	actor := &models.AuditActor{ID: "u1", Email: "admin@example.com"}

	_, err := svc.Create(context.Background(), TableSites, Row{"name": "Harbour View"}, actor)
	require.NoError(t, err)
	svc.Audit(actor, models.AuditLogin, "auth", nil)

	entries := svc.AuditLog()
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditLogin, entries[0].Action)
	assert.Equal(t, models.AuditCreate, entries[1].Action)
	assert.Equal(t, "u1", entries[1].Actor.ID)
}

func TestHubDebouncesNotifications(t *testing.T) {
	svc, _ := newTestService(t, newFakeRemote())
	ch := svc.Subscribe()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), TableSites, Row{"name": "Site"}, nil)
		require.NoError(t, err)
	}

	select {
	case change := <-ch:
		assert.Equal(t, TableSites, change.Table)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	// The burst above collapses into a single notification.
	select {
	case <-ch:
		t.Fatal("expected writes to be debounced into one notification")
	case <-time.After(500 * time.Millisecond):
	}
}
