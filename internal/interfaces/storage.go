// Package interfaces defines the contracts between Folio's services,
// clients, and storage backends.
package interfaces

import (
	"context"
	"errors"

	"github.com/foliohq/folio/internal/models"
)

// ErrNotFound is returned by storage lookups that match no record.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract. Two backends implement it, a
// flat-file JSON database and SQLite; the driver is chosen by
// configuration at startup.
type Store interface {
	// FindUser looks up a user by email. Returns ErrNotFound when the
	// email is not registered.
	FindUser(ctx context.Context, email string) (*models.User, error)

	// CreateUser persists a new user together with their initial
	// portfolio.
	CreateUser(ctx context.Context, user *models.User, portfolio *models.Portfolio) error

	// GetPortfolio loads the portfolio persisted under owner (an email
	// or the guest key). Returns ErrNotFound when nothing is stored yet.
	GetPortfolio(ctx context.Context, owner string) (*models.Portfolio, error)

	// SavePortfolio overwrites the portfolio persisted under owner.
	SavePortfolio(ctx context.Context, owner string, p *models.Portfolio) error

	// SaveOTP stores a verification code, replacing any prior code for
	// the same email.
	SaveOTP(ctx context.Context, otp *models.OTPRecord) error

	// VerifyOTP checks a code against the stored record and consumes it
	// on success. Absent, expired, or mismatched codes return false.
	VerifyOTP(ctx context.Context, email, code string) (bool, error)

	// ListOwners returns every key a portfolio is persisted under,
	// including the guest record.
	ListOwners(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
