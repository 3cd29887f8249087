// Package app wires configuration, storage, clients, and services into
// a running application.
package app

import (
	"fmt"

	"github.com/foliohq/folio/internal/clients/resend"
	"github.com/foliohq/folio/internal/clients/yahoo"
	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/services/auth"
	"github.com/foliohq/folio/internal/services/portfolio"
	"github.com/foliohq/folio/internal/services/quote"
	"github.com/foliohq/folio/internal/storage"
)

// App holds all initialized components.
type App struct {
	Config *common.Config
	Logger *common.Logger

	Store      interfaces.Store
	Quotes     interfaces.QuoteProvider
	Portfolios *portfolio.Service
	Auth       *auth.Service
	Refresher  *Refresher
}

// NewApp initializes the application from config files and environment
// overrides.
func NewApp(configPath string) (*App, error) {
	cfg, err := common.LoadConfig(configPath, "folio.toml")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(cfg.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(cfg.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)
	mailer := resend.NewClient(cfg.Clients.Resend.APIKey,
		resend.WithBaseURL(cfg.Clients.Resend.BaseURL),
		resend.WithFrom(cfg.Clients.Resend.From),
		resend.WithTimeout(cfg.Clients.Resend.GetTimeout()),
		resend.WithLogger(logger),
	)

	quotes := quote.NewService(yahooClient, logger)
	refresher := NewRefresher(store, quotes, logger, cfg.Refresh.GetInterval())
	portfolios := portfolio.NewService(store, logger, refresher.Kick)
	authSvc := auth.NewService(store, mailer, logger, cfg.Auth.GetCodeExpiry())

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Quotes:     quotes,
		Portfolios: portfolios,
		Auth:       authSvc,
		Refresher:  refresher,
	}, nil
}

// StartRefresher begins the background quote polling loop.
func (a *App) StartRefresher() {
	a.Refresher.Start()
	a.Logger.Info().
		Dur("interval", a.Config.Refresh.GetInterval()).
		Msg("Quote refresher started")
}

// Close stops background work and releases resources.
func (a *App) Close() {
	a.Refresher.Stop()
	if err := a.Store.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("Storage close failed")
	}
}
