// Package filedb implements the storage contract over a single JSON
// database file with atomic writes.
package filedb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

// database is the on-disk document. Portfolios are keyed by owner, the
// guest record included; OTP codes by email.
type database struct {
	Users      map[string]*userRecord       `json:"users"`
	Portfolios map[string]*models.Portfolio `json:"portfolios"`
	OTPs       map[string]*models.OTPRecord `json:"otps"`
}

// userRecord persists the credential fields json-hidden on models.User.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is a file-backed implementation of interfaces.Store. All access
// goes through one mutex; every mutation rewrites the whole file via a
// temp file and rename.
type Store struct {
	path   string
	mu     sync.Mutex
	db     *database
	logger *common.Logger
	now    func() time.Time
}

// New opens (or creates) the database file under dir.
func New(dir string, logger *common.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		path:   filepath.Join(dir, "folio.json"),
		logger: logger,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.db = &database{
		Users:      make(map[string]*userRecord),
		Portfolios: make(map[string]*models.Portfolio),
		OTPs:       make(map[string]*models.OTPRecord),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read database: %w", err)
	}

	if err := json.Unmarshal(data, s.db); err != nil {
		return fmt.Errorf("parse database: %w", err)
	}
	// Guard maps against a hand-edited file.
	if s.db.Users == nil {
		s.db.Users = make(map[string]*userRecord)
	}
	if s.db.Portfolios == nil {
		s.db.Portfolios = make(map[string]*models.Portfolio)
	}
	if s.db.OTPs == nil {
		s.db.OTPs = make(map[string]*models.OTPRecord)
	}
	return nil
}

// save writes the document atomically. Callers hold the mutex.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

// FindUser looks up a user by email.
func (s *Store) FindUser(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.db.Users[email]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &models.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// CreateUser persists a new user and their initial portfolio.
func (s *Store) CreateUser(_ context.Context, user *models.User, portfolio *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.db.Users[user.Email]; exists {
		return fmt.Errorf("user %s already exists", user.Email)
	}

	s.db.Users[user.Email] = &userRecord{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	s.db.Portfolios[user.Email] = portfolio.Clone()
	return s.save()
}

// GetPortfolio loads the portfolio persisted under owner.
func (s *Store) GetPortfolio(_ context.Context, owner string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.db.Portfolios[owner]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return p.Clone(), nil
}

// SavePortfolio overwrites the portfolio persisted under owner.
func (s *Store) SavePortfolio(_ context.Context, owner string, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Portfolios[owner] = p.Clone()
	return s.save()
}

// SaveOTP stores a verification code, replacing any prior one.
func (s *Store) SaveOTP(_ context.Context, otp *models.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *otp
	s.db.OTPs[otp.Email] = &cp
	return s.save()
}

// VerifyOTP checks a code and consumes it on success.
func (s *Store) VerifyOTP(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.db.OTPs[email]
	if !ok || otp.Code != code || otp.Expired(s.now()) {
		return false, nil
	}

	delete(s.db.OTPs, email)
	if err := s.save(); err != nil {
		return false, err
	}
	return true, nil
}

// ListOwners returns every portfolio key, sorted for stable sweeps.
func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owners := make([]string, 0, len(s.db.Portfolios))
	for owner := range s.db.Portfolios {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}

// Close is a no-op; every mutation is already flushed.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements the storage contract
var _ interfaces.Store = (*Store)(nil)
