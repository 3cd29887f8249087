// Package sqldb implements the storage contract on SQLite.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	email         TEXT PRIMARY KEY,
	id            TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolios (
	owner TEXT PRIMARY KEY,
	data  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS otps (
	email      TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	expires_at TEXT NOT NULL
);
`

// Store is a SQLite-backed implementation of interfaces.Store.
// Portfolios persist as JSON documents keyed by owner, matching the
// flat-file backend's layout.
type Store struct {
	db     *sql.DB
	logger *common.Logger
	now    func() time.Time
}

// New opens (or creates) the SQLite database under dir.
func New(dir string, logger *common.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, "folio.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite is single-writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// FindUser looks up a user by email.
func (s *Store) FindUser(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

// CreateUser persists a new user and their initial portfolio in one
// transaction.
func (s *Store) CreateUser(ctx context.Context, user *models.User, portfolio *models.Portfolio) error {
	data, err := json.Marshal(portfolio)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, id, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.Email, user.ID, user.PasswordHash, user.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO portfolios (owner, data) VALUES (?, ?)`,
		user.Email, string(data)); err != nil {
		return fmt.Errorf("insert portfolio: %w", err)
	}

	return tx.Commit()
}

// GetPortfolio loads the portfolio persisted under owner.
func (s *Store) GetPortfolio(ctx context.Context, owner string) (*models.Portfolio, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM portfolios WHERE owner = ?`, owner).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query portfolio: %w", err)
	}

	var p models.Portfolio
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("parse portfolio: %w", err)
	}
	if p.Holdings == nil {
		p.Holdings = []models.Holding{}
	}
	return &p, nil
}

// SavePortfolio overwrites the portfolio persisted under owner.
func (s *Store) SavePortfolio(ctx context.Context, owner string, p *models.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO portfolios (owner, data) VALUES (?, ?)`,
		owner, string(data)); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// SaveOTP stores a verification code, replacing any prior one.
func (s *Store) SaveOTP(ctx context.Context, otp *models.OTPRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO otps (email, code, expires_at) VALUES (?, ?, ?)`,
		otp.Email, otp.Code, otp.ExpiresAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// VerifyOTP checks a code and consumes it on success.
func (s *Store) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	var stored, expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT code, expires_at FROM otps WHERE email = ?`, email).Scan(&stored, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query otp: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil || stored != code || s.now().After(expiry) {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, email); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}

// ListOwners returns every portfolio key.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT owner FROM portfolios ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements the storage contract
var _ interfaces.Store = (*Store)(nil)
