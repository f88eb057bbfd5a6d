package mfasetup

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// Store persists short-lived setup codes and enrolled TOTP factors.
type Store interface {
	InsertCode(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	// ConsumeCode marks the newest matching unused, unexpired code as used.
	// Returns false when no such code exists.
	ConsumeCode(ctx context.Context, email, codeHash string, now time.Time) (bool, error)
	SaveFactor(ctx context.Context, email, secret string) error
	FactorSecret(ctx context.Context, email string) (secret string, verified bool, err error)
	MarkFactorVerified(ctx context.Context, email string) error
}

// SQLStore keeps codes and factors in Postgres.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) InsertCode(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO mfa_setup_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)`, email, codeHash, expiresAt)
	return err
}

func (s *SQLStore) ConsumeCode(ctx context.Context, email, codeHash string, now time.Time) (bool, error) {
	// Single conditional write so a code cannot be redeemed twice.
	res, err := s.DB.ExecContext(ctx, `
		UPDATE mfa_setup_codes SET used = true
		WHERE id = (
			SELECT id FROM mfa_setup_codes
			WHERE email = $1 AND code_hash = $2 AND used = false AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
		)`, email, codeHash, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) SaveFactor(ctx context.Context, email, secret string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO mfa_factors (email, secret, verified)
		VALUES ($1, $2, false)
		ON CONFLICT (email) DO UPDATE SET secret = $2, verified = false, updated_at = NOW()`,
		email, secret)
	return err
}

func (s *SQLStore) FactorSecret(ctx context.Context, email string) (string, bool, error) {
	var secret string
	var verified bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT secret, verified FROM mfa_factors WHERE email = $1`, email).
		Scan(&secret, &verified)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return secret, verified, nil
}

func (s *SQLStore) MarkFactorVerified(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE mfa_factors SET verified = true, updated_at = NOW() WHERE email = $1`, email)
	return err
}

// MemoryStore backs the handler in tests and when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	codes   []memCode
	factors map[string]*memFactor
}

type memCode struct {
	email     string
	codeHash  string
	expiresAt time.Time
	used      bool
}

type memFactor struct {
	secret   string
	verified bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{factors: make(map[string]*memFactor)}
}

func (m *MemoryStore) InsertCode(_ context.Context, email, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, memCode{email: email, codeHash: codeHash, expiresAt: expiresAt})
	return nil
}

func (m *MemoryStore) ConsumeCode(_ context.Context, email, codeHash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.codes) - 1; i >= 0; i-- {
		c := &m.codes[i]
		if c.email == email && c.codeHash == codeHash && !c.used && c.expiresAt.After(now) {
			c.used = true
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) SaveFactor(_ context.Context, email, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factors[email] = &memFactor{secret: secret}
	return nil
}

func (m *MemoryStore) FactorSecret(_ context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.factors[email]
	if !ok {
		return "", false, nil
	}
	return f.secret, f.verified, nil
}

func (m *MemoryStore) MarkFactorVerified(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.factors[email]; ok {
		f.verified = true
	}
	return nil
}
