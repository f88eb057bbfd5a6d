package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Remote is the authoritative backend contract the sync service mediates
// against. *RemoteStore implements it over Postgres; tests substitute an
// in-memory fake.
type Remote interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, table string) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, patch Row) (Row, error)
	Delete(ctx context.Context, table, id string) (bool, error)
	Upsert(ctx context.Context, table string, row Row) error
	SetAttendanceEmployeeName(ctx context.Context, employeeID, name string) error
	AssignSite(ctx context.Context, table, siteID string) (int64, error)
}

// RemoteStore talks to the hosted Postgres backend with raw SQL.
type RemoteStore struct {
	db *sql.DB
}

func NewRemoteStore(db *sql.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

func (r *RemoteStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *RemoteStore) List(ctx context.Context, table string) ([]Row, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`,
		strings.Join(spec.columns, ", "), spec.name)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]interface{}, len(spec.columns))
		ptrs := make([]interface{}, len(spec.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(spec.columns))
		for i, col := range spec.columns {
			row[col] = sqlValue(col, vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RemoteStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	var cols []string
	var placeholders []string
	var args []interface{}
	for _, col := range spec.columns {
		v, present := row[col]
		if !present {
			continue
		}
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(cols)))
		args = append(args, sqlParam(col, v))
	}
	if len(cols) == 0 {
		return nil, errors.New("empty row")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		spec.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *RemoteStore) Update(ctx context.Context, table, id string, patch Row) (Row, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	var sets []string
	var args []interface{}
	for _, col := range spec.columns {
		if col == "id" {
			continue
		}
		v, present := patch[col]
		if !present {
			continue
		}
		args = append(args, sqlParam(col, v))
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return nil, errors.New("empty patch")
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		spec.name, strings.Join(sets, ", "), len(args), strings.Join(spec.columns, ", "))

	vals := make([]interface{}, len(spec.columns))
	ptrs := make([]interface{}, len(spec.columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(ptrs...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row := make(Row, len(spec.columns))
	for i, col := range spec.columns {
		row[col] = sqlValue(col, vals[i])
	}
	return row, nil
}

func (r *RemoteStore) Delete(ctx context.Context, table, id string) (bool, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return false, fmt.Errorf("unknown table %q", table)
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, spec.name), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Upsert writes a row keyed by id, replacing any existing copy. Used by the
// one-shot local-to-remote migration so re-running it never duplicates rows.
func (r *RemoteStore) Upsert(ctx context.Context, table string, row Row) error {
	spec, ok := tableSpecs[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	var cols []string
	var placeholders []string
	var updates []string
	var args []interface{}
	for _, col := range spec.columns {
		v, present := row[col]
		if !present {
			continue
		}
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(cols)))
		args = append(args, sqlParam(col, v))
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	if len(cols) == 0 {
		return errors.New("empty row")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s`,
		spec.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SetAttendanceEmployeeName resyncs the denormalized employee_name on all of
// an employee's attendance rows.
func (r *RemoteStore) SetAttendanceEmployeeName(ctx context.Context, employeeID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attendance SET employee_name = $1 WHERE employee_id = $2`, name, employeeID)
	return err
}

// AssignSite backfills the given site id onto rows that have no site scope.
func (r *RemoteStore) AssignSite(ctx context.Context, table, siteID string) (int64, error) {
	spec, ok := tableSpecs[table]
	if !ok || !spec.siteScoped {
		return 0, fmt.Errorf("table %q is not site scoped", table)
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET site_id = $1 WHERE site_id IS NULL OR site_id = ''`, spec.name), siteID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error,
// e.g. the partial index guarding one non-overtime attendance row per
// employee and date.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// sqlParam converts a JSON-typed row value into a driver-friendly argument.
func sqlParam(col string, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if col == "entries" {
		b, err := json.Marshal(v)
		if err != nil {
			return []byte("[]")
		}
		return b
	}
	return v
}

// sqlValue converts a scanned column back into the canonical JSON typing.
func sqlValue(col string, v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		if col == "date" {
			return t.Format("2006-01-02")
		}
		return t.UTC().Format(time.RFC3339)
	case []byte:
		if col == "entries" {
			var out interface{}
			if err := json.Unmarshal(t, &out); err == nil {
				return out
			}
		}
		return string(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}
