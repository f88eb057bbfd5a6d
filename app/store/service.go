package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

var (
	// ErrDemoMode is returned by every mutation while demo mode is on.
	ErrDemoMode = errors.New("demo mode is read-only")
	// ErrDuplicateAttendance guards the one non-overtime record per employee
	// and date rule.
	ErrDuplicateAttendance = errors.New("attendance already recorded for this employee and date")
)

// RefreshResult reports the outcome of one background cache refresh.
type RefreshResult struct {
	Table string
	Err   error
}

// Options configures a Service explicitly instead of reading ambient state.
type Options struct {
	Local         *LocalStore
	Remote        Remote // nil means permanently offline
	HealthTimeout time.Duration
}

// Service mediates between the local cache and the remote backend: the remote
// is authoritative while reachable, the cache serves reads immediately and
// absorbs writes while offline. Every successful mutation is audited.
type Service struct {
	local     *LocalStore
	remote    Remote
	healthy   bool
	hub       *hub
	refreshes chan RefreshResult
}

// NewService probes the remote backend once (bounded by HealthTimeout,
// default 5s) and, on the first healthy connection ever, migrates the local
// cache up to the remote.
func NewService(ctx context.Context, opts Options) *Service {
	s := &Service{
		local:     opts.Local,
		remote:    opts.Remote,
		hub:       newHub(debounceDelay),
		refreshes: make(chan RefreshResult, 16),
	}

	timeout := opts.HealthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if s.remote != nil {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := s.remote.Ping(probeCtx); err != nil {
			log.Printf("Remote backend unreachable, serving from local cache: %v", err)
		} else {
			s.healthy = true
		}
	}

	if s.healthy && !s.local.Flag(keyMigrationDone) {
		if err := s.migrateLocalToRemote(ctx); err != nil {
			log.Printf("Local-to-remote migration failed: %v", err)
		} else if err := s.local.SetFlag(keyMigrationDone, true); err != nil {
			log.Printf("Failed to persist migration flag: %v", err)
		}
	}

	return s
}

// Healthy reports whether the startup probe reached the remote backend.
func (s *Service) Healthy() bool {
	return s.healthy
}

// Subscribe returns a channel of debounced table change notifications.
func (s *Service) Subscribe() <-chan Change {
	return s.hub.subscribe()
}

// Refreshes exposes completions of background cache refreshes.
func (s *Service) Refreshes() <-chan RefreshResult {
	return s.refreshes
}

// DemoMode is re-read from the store on every call; toggling it takes effect
// immediately for all callers.
func (s *Service) DemoMode() bool {
	return s.local.Flag(keyDemoMode)
}

func (s *Service) SetDemoMode(on bool) error {
	return s.local.SetFlag(keyDemoMode, on)
}

func (s *Service) ActiveSite() string {
	return s.local.GetString(keyActiveSite)
}

func (s *Service) SetActiveSite(siteID string) error {
	return s.local.SetString(keyActiveSite, siteID)
}

func (s *Service) Settings() models.Settings {
	return s.local.Settings()
}

func (s *Service) SetSettings(settings models.Settings) error {
	return s.local.SetSettings(settings)
}

func (s *Service) AuditLog() []models.AuditEntry {
	return s.local.AuditLog()
}

// Filter narrows list results. SiteID keeps matching rows plus rows with no
// site scope, which remain visible under every site.
type Filter struct {
	SiteID     string
	Date       string
	EmployeeID string
	Period     string
}

// List returns rows for a table. A warm cache is served immediately and a
// tracked background refresh is kicked off; a cold cache is filled from the
// remote when reachable. Reads never fail: they degrade to empty.
func (s *Service) List(ctx context.Context, table string, f Filter) []Row {
	if s.DemoMode() {
		return []Row{}
	}

	local := s.local.Rows(table)
	if len(local) > 0 {
		if s.healthy {
			go s.refresh(table)
		}
		return applyFilter(table, local, f)
	}

	if s.healthy {
		rows, err := s.remote.List(ctx, table)
		if err != nil {
			log.Printf("Error fetching %s from remote: %v", table, err)
			return []Row{}
		}
		if err := s.local.SetRows(table, rows); err != nil {
			log.Printf("Error caching %s locally: %v", table, err)
		}
		return applyFilter(table, rows, f)
	}

	return applyFilter(table, local, f)
}

// refresh re-pulls one table from the remote into the cache and reports the
// outcome on the refresh channel.
func (s *Service) refresh(table string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := s.remote.List(ctx, table)
	if err == nil {
		err = s.local.SetRows(table, rows)
	}
	if err != nil {
		log.Printf("Background refresh of %s failed: %v", table, err)
	}
	select {
	case s.refreshes <- RefreshResult{Table: table, Err: err}:
	default:
	}
}

// Create inserts a row, remote-first while healthy, locally with a generated
// id otherwise. Remote write failures surface to the caller.
func (s *Service) Create(ctx context.Context, table string, row Row, actor *models.AuditActor) (Row, error) {
	if s.DemoMode() {
		return nil, ErrDemoMode
	}
	row = normalizeRow(table, row)
	if rowString(row, "created_at") == "" {
		row["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	if s.healthy {
		if rowString(row, "id") == "" {
			row["id"] = uuid.NewString()
		}
		created, err := s.remote.Insert(ctx, table, row)
		if err != nil {
			log.Printf("Error creating %s row: %v", table, err)
			return nil, err
		}
		if err := s.local.AppendRow(table, created); err != nil {
			log.Printf("Error mirroring %s row locally: %v", table, err)
		}
		s.audit(actor, models.AuditCreate, table, created)
		s.hub.notify(table)
		return created, nil
	}

	if rowString(row, "id") == "" {
		row["id"] = generateID()
	}
	if err := s.local.AppendRow(table, row); err != nil {
		log.Printf("Error creating %s row locally: %v", table, err)
		return nil, err
	}
	s.audit(actor, models.AuditCreate, table, row)
	s.hub.notify(table)
	return row, nil
}

// Update applies a partial row. Returns nil when no row matches the id.
func (s *Service) Update(ctx context.Context, table, id string, patch Row, actor *models.AuditActor) (Row, error) {
	if s.DemoMode() {
		return nil, ErrDemoMode
	}
	patch = normalizeRow(table, patch)
	delete(patch, "id")

	var updated Row
	if s.healthy {
		row, err := s.remote.Update(ctx, table, id, patch)
		if err != nil {
			log.Printf("Error updating %s/%s: %v", table, id, err)
			return nil, err
		}
		updated = row
		if _, err := s.local.UpdateRow(table, id, patch); err != nil {
			log.Printf("Error mirroring %s/%s update locally: %v", table, id, err)
		}
	} else {
		row, err := s.local.UpdateRow(table, id, patch)
		if err != nil {
			log.Printf("Error updating %s/%s locally: %v", table, id, err)
			return nil, err
		}
		updated = row
	}

	if updated == nil {
		return nil, nil
	}
	s.audit(actor, models.AuditUpdate, table, updated)
	s.hub.notify(table)
	return updated, nil
}

// Delete removes a row by id. Reports whether a row was removed.
func (s *Service) Delete(ctx context.Context, table, id string, actor *models.AuditActor) (bool, error) {
	if s.DemoMode() {
		return false, ErrDemoMode
	}

	var removed bool
	if s.healthy {
		ok, err := s.remote.Delete(ctx, table, id)
		if err != nil {
			log.Printf("Error deleting %s/%s: %v", table, id, err)
			return false, err
		}
		removed = ok
		if _, err := s.local.DeleteRow(table, id); err != nil {
			log.Printf("Error mirroring %s/%s delete locally: %v", table, id, err)
		}
	} else {
		ok, err := s.local.DeleteRow(table, id)
		if err != nil {
			log.Printf("Error deleting %s/%s locally: %v", table, id, err)
			return false, err
		}
		removed = ok
	}

	if removed {
		s.audit(actor, models.AuditDelete, table, Row{"id": id})
		s.hub.notify(table)
	}
	return removed, nil
}

// CreateAttendance inserts an attendance row, refusing a second non-overtime
// record for the same employee and date. The remote schema backs this with a
// partial unique index, so concurrent writers cannot slip past the check.
func (s *Service) CreateAttendance(ctx context.Context, row Row, actor *models.AuditActor) (Row, error) {
	if s.DemoMode() {
		return nil, ErrDemoMode
	}
	row = normalizeRow(TableAttendance, row)

	if !rowBool(row, "overtime") {
		existing := s.List(ctx, TableAttendance, Filter{
			EmployeeID: rowString(row, "employee_id"),
			Date:       rowString(row, "date"),
		})
		for _, r := range existing {
			if !rowBool(r, "overtime") {
				return nil, ErrDuplicateAttendance
			}
		}
	}

	created, err := s.Create(ctx, TableAttendance, row, actor)
	if err != nil && isUniqueViolation(err) {
		return nil, ErrDuplicateAttendance
	}
	return created, err
}

// UpdateEmployee updates an employee and, on a rename, resyncs the
// denormalized employee_name across attendance rows. The remote and local
// propagations are independent; either may fail without rolling back the
// other.
func (s *Service) UpdateEmployee(ctx context.Context, id string, patch Row, actor *models.AuditActor) (Row, error) {
	updated, err := s.Update(ctx, TableEmployees, id, patch, actor)
	if err != nil || updated == nil {
		return updated, err
	}

	name, renamed := patch["name"].(string)
	if !renamed || name == "" {
		return updated, nil
	}

	if s.healthy {
		if err := s.remote.SetAttendanceEmployeeName(ctx, id, name); err != nil {
			log.Printf("Error propagating employee rename to remote attendance: %v", err)
		}
	}
	rows := s.local.Rows(TableAttendance)
	changed := false
	for i, r := range rows {
		if rowString(r, "employee_id") == id {
			rows[i]["employee_name"] = name
			changed = true
		}
	}
	if changed {
		if err := s.local.SetRows(TableAttendance, rows); err != nil {
			log.Printf("Error propagating employee rename to local attendance: %v", err)
		}
		s.hub.notify(TableAttendance)
	}
	return updated, nil
}

// Backfill assigns the given site id to every unscoped row, once, and only
// after the default site has been confirmed in settings.
func (s *Service) Backfill(ctx context.Context, siteID string, actor *models.AuditActor) (bool, error) {
	if s.DemoMode() {
		return false, ErrDemoMode
	}
	if !s.local.Settings().DefaultSiteConfirmed {
		return false, nil
	}
	if s.local.Flag(keyBackfillDone) {
		return false, nil
	}

	for _, table := range []string{TableEmployees, TableAttendance, TablePayroll} {
		if s.healthy {
			if n, err := s.remote.AssignSite(ctx, table, siteID); err != nil {
				log.Printf("Error backfilling site on remote %s: %v", table, err)
			} else if n > 0 {
				log.Printf("Backfilled site on %d remote %s rows", n, table)
			}
		}
		rows := s.local.Rows(table)
		changed := false
		for i, r := range rows {
			if rowString(r, "site_id") == "" {
				rows[i]["site_id"] = siteID
				changed = true
			}
		}
		if changed {
			if err := s.local.SetRows(table, rows); err != nil {
				log.Printf("Error backfilling site on local %s: %v", table, err)
			}
			s.hub.notify(table)
		}
	}

	if err := s.local.SetFlag(keyBackfillDone, true); err != nil {
		return true, err
	}
	s.audit(actor, models.AuditUpdate, "backfill", Row{"site_id": siteID})
	return true, nil
}

// Audit records an action that happened outside the generic write paths,
// such as logins.
func (s *Service) Audit(actor *models.AuditActor, action models.AuditAction, entity string, details map[string]interface{}) {
	entry := models.AuditEntry{
		Actor:   actor,
		Action:  action,
		Entity:  entity,
		Details: details,
	}
	if err := s.local.AppendAudit(entry); err != nil {
		log.Printf("Error appending audit entry: %v", err)
	}
}

func (s *Service) audit(actor *models.AuditActor, action models.AuditAction, table string, row Row) {
	s.Audit(actor, action, table, map[string]interface{}{
		"table": table,
		"id":    rowString(row, "id"),
	})
}

// migrateLocalToRemote upserts every cached row into the remote backend. Rows
// pass through the per-table field allow-list and date/time normalization so
// years of loosely shaped local data land cleanly.
func (s *Service) migrateLocalToRemote(ctx context.Context) error {
	for _, table := range Tables() {
		spec := tableSpecs[table]
		rows := s.local.Rows(table)
		for _, row := range rows {
			if rowString(row, "id") == "" {
				continue
			}
			migrated := make(Row, len(spec.columns))
			for _, col := range spec.columns {
				if v, ok := row[col]; ok {
					migrated[col] = v
				}
			}
			normalizeMigrationTimes(spec, migrated)
			if err := s.remote.Upsert(ctx, table, migrated); err != nil {
				return fmt.Errorf("upsert %s/%s: %w", table, rowString(row, "id"), err)
			}
		}
		if len(rows) > 0 {
			log.Printf("Migrated %d local %s rows to remote", len(rows), table)
		}
	}
	return nil
}

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// normalizeMigrationTimes combines bare HH:MM clock fields with the row's
// date into full timestamps. Unparseable dates are nulled rather than
// rejected so a single bad record cannot wedge the migration.
func normalizeMigrationTimes(spec tableSpec, row Row) {
	if len(spec.timeOfDay) == 0 {
		return
	}
	dateStr := rowString(row, "date")
	day, dayErr := time.Parse("2006-01-02", dateStr)
	if dateStr != "" && dayErr != nil {
		row["date"] = nil
	}
	for _, field := range spec.timeOfDay {
		v := rowString(row, field)
		if v == "" || !clockPattern.MatchString(v) {
			continue
		}
		if dayErr != nil {
			row[field] = nil
			continue
		}
		clock, err := time.Parse("15:04", v)
		if err != nil {
			row[field] = nil
			continue
		}
		combined := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		row[field] = combined.Format(time.RFC3339)
	}
}

// applyFilter narrows and orders rows newest first.
func applyFilter(table string, rows []Row, f Filter) []Row {
	spec := tableSpecs[table]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if spec.siteScoped && f.SiteID != "" {
			siteID := rowString(r, "site_id")
			if siteID != "" && siteID != f.SiteID {
				continue
			}
		}
		if f.Date != "" && rowString(r, "date") != f.Date {
			continue
		}
		if f.EmployeeID != "" && rowString(r, "employee_id") != f.EmployeeID {
			continue
		}
		if f.Period != "" && rowString(r, "pay_period") != f.Period {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rowString(out[i], "created_at") > rowString(out[j], "created_at")
	})
	return out
}

// generateID builds a local row id from the current time plus a random
// suffix, matching the ids minted by the browser build while offline.
func generateID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 10)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			n = big.NewInt(int64(i))
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return ts + string(suffix)
}
