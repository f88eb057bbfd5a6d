package models

// AuditActor is a snapshot of who performed an audited action. Nil when the
// action happened outside an authenticated session.
type AuditActor struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuditEntry is one append-only audit log record. Entries older than the
// rolling 365-day window are pruned on every write.
type AuditEntry struct {
	ID      string                 `json:"id"`
	TS      string                 `json:"ts"`
	Actor   *AuditActor            `json:"actor"`
	Action  AuditAction            `json:"action"`
	Entity  string                 `json:"entity"`
	Details map[string]interface{} `json:"details,omitempty"`
}
