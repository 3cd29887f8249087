package app

import (
	"context"
	"sync"
	"time"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

// Refresher polls quotes for every held symbol across all portfolios.
// Each cycle builds a fresh quote map and swaps it in whole; handlers
// read the latest snapshot via Quotes. Mutations restart the loop
// through Kick so the next pass runs against the new holding set.
type Refresher struct {
	store    interfaces.Store
	quotes   interfaces.QuoteProvider
	logger   *common.Logger
	interval time.Duration

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	cacheMu sync.RWMutex
	cache   map[string]models.Quote
}

// NewRefresher creates a refresher. Call Start to begin polling.
func NewRefresher(store interfaces.Store, quotes interfaces.QuoteProvider, logger *common.Logger, interval time.Duration) *Refresher {
	return &Refresher{
		store:    store,
		quotes:   quotes,
		logger:   logger,
		interval: interval,
		cache:    make(map[string]models.Quote),
	}
}

// Start launches the polling loop: one immediate pass, then one pass
// per interval.
func (r *Refresher) Start() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.startLocked()
}

func (r *Refresher) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go r.run(ctx, done)
}

func (r *Refresher) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

// Kick tears down the current loop and starts a fresh one. Called after
// every persisted mutation so the sweep reflects the new holding set
// immediately instead of waiting out the interval.
func (r *Refresher) Kick() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	if r.cancel == nil {
		return // not started, or already stopped
	}
	r.stopLocked()
	r.startLocked()
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (r *Refresher) Stop() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.stopLocked()
}

// Quotes returns a copy of the latest quote snapshot.
func (r *Refresher) Quotes() map[string]models.Quote {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	out := make(map[string]models.Quote, len(r.cache))
	for k, v := range r.cache {
		out[k] = v
	}
	return out
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh runs one pass: snapshot the held symbol set, fetch a complete
// fresh quote map, swap it in.
func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()

	symbols, err := r.heldSymbols(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Refresh pass failed to list holdings")
		return
	}

	quotes := r.quotes.GetQuotes(ctx, symbols)
	if ctx.Err() != nil {
		return // cancelled mid-pass, drop the partial result
	}

	r.cacheMu.Lock()
	r.cache = quotes
	r.cacheMu.Unlock()

	failed := 0
	for _, q := range quotes {
		if q.IsError() {
			failed++
		}
	}
	r.logger.Debug().
		Int("symbols", len(symbols)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Quote refresh pass complete")
}

// heldSymbols collects the union of symbols across every stored
// portfolio, the guest record included.
func (r *Refresher) heldSymbols(ctx context.Context) ([]string, error) {
	owners, err := r.store.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var symbols []string
	for _, owner := range owners {
		p, err := r.store.GetPortfolio(ctx, owner)
		if err != nil {
			continue
		}
		for _, sym := range p.Symbols() {
			if !seen[sym] {
				seen[sym] = true
				symbols = append(symbols, sym)
			}
		}
	}
	return symbols, nil
}
