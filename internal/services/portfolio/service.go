// Package portfolio applies validated mutations to persisted portfolios.
// The arithmetic lives on models.Portfolio; this service does the
// load, apply, save cycle and input validation in front of it.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

// ErrValidation marks caller-side input errors, rejected before any
// state is touched.
var ErrValidation = errors.New("validation")

// Service owns the load-apply-save cycle for one storage backend.
type Service struct {
	store    interfaces.Store
	logger   *common.Logger
	onChange func()
}

// NewService creates a portfolio service. onChange fires after every
// persisted mutation (the refresh loop hooks it to restart against the
// new holding set); nil is allowed.
func NewService(store interfaces.Store, logger *common.Logger, onChange func()) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		onChange: onChange,
	}
}

// Get loads the owner's portfolio, returning an empty one when nothing
// has been persisted yet.
func (s *Service) Get(ctx context.Context, owner string) (*models.Portfolio, error) {
	p, err := s.store.GetPortfolio(ctx, owner)
	if errors.Is(err, interfaces.ErrNotFound) {
		return models.NewPortfolio(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return p, nil
}

// Replace overwrites the owner's portfolio wholesale. Used for the
// one-way guest upload and direct state writes from the client.
func (s *Service) Replace(ctx context.Context, owner string, p *models.Portfolio) error {
	if p == nil {
		return fmt.Errorf("%w: portfolio required", ErrValidation)
	}
	for _, h := range p.Holdings {
		if h.Quantity <= 0 {
			return fmt.Errorf("%w: holding %s has non-positive quantity", ErrValidation, h.Symbol)
		}
	}
	if err := s.store.SavePortfolio(ctx, owner, p); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	s.notify()
	return nil
}

// Buy purchases shares for the owner.
func (s *Service) Buy(ctx context.Context, owner, symbol string, quantity, price float64) (*models.Portfolio, error) {
	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validPositive("quantity", quantity); err != nil {
		return nil, err
	}
	if err := validPositive("price", price); err != nil {
		return nil, err
	}

	return s.apply(ctx, owner, func(p *models.Portfolio) {
		p.Buy(symbol, quantity, price)
	})
}

// Sell disposes of shares for the owner. A sell against a symbol the
// owner does not hold still credits cash; logged because it usually
// signals a client-side mistake.
func (s *Service) Sell(ctx context.Context, owner, symbol string, quantity, price float64) (*models.Portfolio, error) {
	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validPositive("quantity", quantity); err != nil {
		return nil, err
	}
	if err := validPositive("price", price); err != nil {
		return nil, err
	}

	return s.apply(ctx, owner, func(p *models.Portfolio) {
		if p.FindHolding(symbol) == nil {
			s.logger.Warn().
				Str("owner", owner).
				Str("symbol", symbol).
				Msg("Sell against unheld symbol, cash credited anyway")
		}
		p.Sell(symbol, quantity, price)
	})
}

// AdjustCash applies a signed cash delta for the owner.
func (s *Service) AdjustCash(ctx context.Context, owner, currency string, delta float64) (*models.Portfolio, error) {
	if err := validCurrency(currency); err != nil {
		return nil, err
	}
	if err := validFinite("delta", delta); err != nil {
		return nil, err
	}

	return s.apply(ctx, owner, func(p *models.Portfolio) {
		p.AdjustCash(currency, delta)
	})
}

// SetCash overwrites a cash balance for the owner.
func (s *Service) SetCash(ctx context.Context, owner, currency string, value float64) (*models.Portfolio, error) {
	if err := validCurrency(currency); err != nil {
		return nil, err
	}
	if err := validFinite("value", value); err != nil {
		return nil, err
	}

	return s.apply(ctx, owner, func(p *models.Portfolio) {
		p.SetCash(currency, value)
	})
}

// RemoveHolding deletes a holding by ID without touching cash.
func (s *Service) RemoveHolding(ctx context.Context, owner, id string) (*models.Portfolio, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id required", ErrValidation)
	}

	return s.apply(ctx, owner, func(p *models.Portfolio) {
		p.RemoveHolding(id)
	})
}

// apply runs the load-mutate-save cycle. The mutation itself is total;
// only the I/O edges can fail.
func (s *Service) apply(ctx context.Context, owner string, mutate func(*models.Portfolio)) (*models.Portfolio, error) {
	p, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	mutate(p)

	if err := s.store.SavePortfolio(ctx, owner, p); err != nil {
		return nil, fmt.Errorf("save portfolio: %w", err)
	}
	s.notify()
	return p, nil
}

func (s *Service) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

func validSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol required", ErrValidation)
	}
	return symbol, nil
}

func validPositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number", ErrValidation, field)
	}
	return nil
}

func validFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrValidation, field)
	}
	return nil
}

func validCurrency(code string) error {
	if !models.ValidCurrency(code) {
		return fmt.Errorf("%w: unknown currency %q", ErrValidation, code)
	}
	return nil
}
