package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

// memStore holds portfolios for the symbol sweep.
type memStore struct {
	mu         sync.Mutex
	portfolios map[string]*models.Portfolio
}

func newMemStore() *memStore {
	return &memStore{portfolios: make(map[string]*models.Portfolio)}
}

func (m *memStore) FindUser(context.Context, string) (*models.User, error) {
	return nil, interfaces.ErrNotFound
}
func (m *memStore) CreateUser(context.Context, *models.User, *models.Portfolio) error { return nil }
func (m *memStore) SaveOTP(context.Context, *models.OTPRecord) error                  { return nil }
func (m *memStore) VerifyOTP(context.Context, string, string) (bool, error)           { return false, nil }
func (m *memStore) Close() error                                                      { return nil }

func (m *memStore) GetPortfolio(_ context.Context, owner string) (*models.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.portfolios[owner]; ok {
		return p.Clone(), nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *memStore) SavePortfolio(_ context.Context, owner string, p *models.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[owner] = p.Clone()
	return nil
}

func (m *memStore) ListOwners(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.portfolios))
	for k := range m.portfolios {
		out = append(out, k)
	}
	return out, nil
}

// countingProvider serves fixed-price quotes and counts passes.
type countingProvider struct {
	calls atomic.Int64
}

func (c *countingProvider) GetQuote(_ context.Context, symbol string) models.Quote {
	return models.Quote{Symbol: strings.ToUpper(symbol), Name: symbol, Price: 100, Currency: "USD", Market: models.MarketUS}
}

func (c *countingProvider) GetQuotes(ctx context.Context, symbols []string) map[string]models.Quote {
	c.calls.Add(1)
	out := make(map[string]models.Quote, len(symbols))
	for _, s := range symbols {
		out[s] = c.GetQuote(ctx, s)
	}
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRefresherImmediatePass(t *testing.T) {
	store := newMemStore()
	p := models.NewPortfolio()
	p.Buy("AAPL", 1, 100)
	_ = store.SavePortfolio(context.Background(), "guest", p)

	provider := &countingProvider{}
	r := NewRefresher(store, provider, common.NewSilentLogger(), time.Hour)
	r.Start()
	defer r.Stop()

	waitFor(t, time.Second, func() bool {
		_, ok := r.Quotes()["AAPL"]
		return ok
	})
	// Interval is an hour, so exactly the immediate pass ran.
	if got := provider.calls.Load(); got != 1 {
		t.Errorf("passes = %d, want 1", got)
	}
}

func TestRefresherPeriodicPasses(t *testing.T) {
	store := newMemStore()
	provider := &countingProvider{}
	r := NewRefresher(store, provider, common.NewSilentLogger(), 5*time.Millisecond)
	r.Start()
	defer r.Stop()

	waitFor(t, time.Second, func() bool { return provider.calls.Load() >= 3 })
}

func TestKickPicksUpNewSymbols(t *testing.T) {
	store := newMemStore()
	p := models.NewPortfolio()
	p.Buy("AAPL", 1, 100)
	_ = store.SavePortfolio(context.Background(), "guest", p)

	provider := &countingProvider{}
	r := NewRefresher(store, provider, common.NewSilentLogger(), time.Hour)
	r.Start()
	defer r.Stop()

	waitFor(t, time.Second, func() bool {
		_, ok := r.Quotes()["AAPL"]
		return ok
	})

	p.Buy("0700.HK", 100, 350)
	_ = store.SavePortfolio(context.Background(), "guest", p)
	r.Kick()

	waitFor(t, time.Second, func() bool {
		_, ok := r.Quotes()["0700.HK"]
		return ok
	})
}

func TestKickBeforeStartIsNoop(t *testing.T) {
	provider := &countingProvider{}
	r := NewRefresher(newMemStore(), provider, common.NewSilentLogger(), time.Hour)
	r.Kick() // must not panic or start a loop
	r.Stop()

	time.Sleep(10 * time.Millisecond)
	if n := provider.calls.Load(); n != 0 {
		t.Errorf("passes = %d, want 0", n)
	}
}

func TestStopHaltsPasses(t *testing.T) {
	store := newMemStore()
	provider := &countingProvider{}
	r := NewRefresher(store, provider, common.NewSilentLogger(), 5*time.Millisecond)
	r.Start()

	waitFor(t, time.Second, func() bool { return provider.calls.Load() >= 2 })
	r.Stop()

	after := provider.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if provider.calls.Load() != after {
		t.Error("passes continued after Stop")
	}
}

func TestQuotesReturnsCopy(t *testing.T) {
	store := newMemStore()
	p := models.NewPortfolio()
	p.Buy("AAPL", 1, 100)
	_ = store.SavePortfolio(context.Background(), "guest", p)

	r := NewRefresher(store, &countingProvider{}, common.NewSilentLogger(), time.Hour)
	r.Start()
	defer r.Stop()

	waitFor(t, time.Second, func() bool { return len(r.Quotes()) == 1 })

	snapshot := r.Quotes()
	delete(snapshot, "AAPL")
	if len(r.Quotes()) != 1 {
		t.Error("mutating the snapshot must not affect the cache")
	}
}
