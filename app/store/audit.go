package store

import (
	"time"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

// auditWindow is the rolling retention applied on every audit write.
const auditWindow = 365 * 24 * time.Hour

// AppendAudit records one audit entry and prunes anything older than the
// retention window.
func (s *LocalStore) AppendAudit(entry models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = generateID()
	}
	if entry.TS == "" {
		entry.TS = time.Now().UTC().Format(time.RFC3339)
	}

	cutoff := time.Now().Add(-auditWindow)
	entries := s.auditEntries()
	kept := entries[:0]
	for _, e := range entries {
		ts, err := time.Parse(time.RFC3339, e.TS)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	kept = append(kept, entry)
	return s.setAuditEntries(kept)
}

// AuditLog returns the retained audit entries, newest first.
func (s *LocalStore) AuditLog() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.auditEntries()
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}
