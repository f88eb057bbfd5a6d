package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

// Key prefix shared with the browser build of the dashboard so exported
// snapshots stay interchangeable.
const keyPrefix = "huly_"

// Well-known local keys besides the per-table row arrays.
const (
	keySettings      = "settings"
	keyActiveSite    = "active_site"
	keyAuditLog      = "audit_log"
	keyDemoMode      = "demo_mode"
	keyMigrationDone = "migration_done"
	keyBackfillDone  = "site_backfill_done"
)

// LocalStore is the offline-first persistence layer: one JSON document per
// namespaced key under a data directory. It is the source of truth whenever
// the remote backend is unreachable.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, keyPrefix+key+".json")
}

func (s *LocalStore) readJSON(key string, v interface{}) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *LocalStore) writeJSON(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Rows returns the cached rows for a table, with legacy field names rewritten
// to their canonical spellings at the load boundary.
func (s *LocalStore) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []Row
	if err := s.readJSON(table, &rows); err != nil {
		return nil
	}
	return normalizeRows(table, rows)
}

func (s *LocalStore) SetRows(table string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows == nil {
		rows = []Row{}
	}
	return s.writeJSON(table, rows)
}

// AppendRow adds a row to a table's cached array.
func (s *LocalStore) AppendRow(table string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []Row
	if err := s.readJSON(table, &rows); err != nil {
		return err
	}
	rows = append(rows, row)
	return s.writeJSON(table, rows)
}

// UpdateRow merges a partial row into the cached row with the given id.
// Returns the merged row, or nil when no row matches.
func (s *LocalStore) UpdateRow(table, id string, patch Row) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []Row
	if err := s.readJSON(table, &rows); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if rowString(r, "id") == id {
			for k, v := range patch {
				r[k] = v
			}
			rows[i] = r
			if err := s.writeJSON(table, rows); err != nil {
				return nil, err
			}
			return r, nil
		}
	}
	return nil, nil
}

// DeleteRow removes the row with the given id. Reports whether a row was
// removed.
func (s *LocalStore) DeleteRow(table, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []Row
	if err := s.readJSON(table, &rows); err != nil {
		return false, err
	}
	kept := rows[:0]
	removed := false
	for _, r := range rows {
		if rowString(r, "id") == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}
	return true, s.writeJSON(table, kept)
}

func (s *LocalStore) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := models.DefaultSettings()
	if err := s.readJSON(keySettings, &settings); err != nil {
		return models.DefaultSettings()
	}
	return settings
}

func (s *LocalStore) SetSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(keySettings, settings)
}

func (s *LocalStore) GetString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v string
	if err := s.readJSON(key, &v); err != nil {
		return ""
	}
	return v
}

func (s *LocalStore) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(key, value)
}

// Flag reads a one-shot boolean guard.
func (s *LocalStore) Flag(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v bool
	if err := s.readJSON(key, &v); err != nil {
		return false
	}
	return v
}

func (s *LocalStore) SetFlag(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(key, value)
}

func (s *LocalStore) auditEntries() []models.AuditEntry {
	var entries []models.AuditEntry
	if err := s.readJSON(keyAuditLog, &entries); err != nil {
		return nil
	}
	return entries
}

func (s *LocalStore) setAuditEntries(entries []models.AuditEntry) error {
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return s.writeJSON(keyAuditLog, entries)
}
