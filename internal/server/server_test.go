package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/app"
	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/services/auth"
	"github.com/foliohq/folio/internal/services/portfolio"
	"github.com/foliohq/folio/internal/services/quote"
	"github.com/foliohq/folio/internal/storage"
)

// stubFetcher serves canned quotes; unknown symbols error and collapse
// into placeholder quotes at the service layer.
type stubFetcher struct {
	mu     sync.Mutex
	quotes map[string]models.Quote
}

func (f *stubFetcher) set(q models.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quotes == nil {
		f.quotes = make(map[string]models.Quote)
	}
	f.quotes[q.Symbol] = q
}

func (f *stubFetcher) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.quotes[symbol]; ok {
		return &q, nil
	}
	return nil, errors.New("unknown symbol")
}

// fakeMailer records sent verification codes.
type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeMailer) SendCode(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = make(map[string]string)
	}
	f.codes[to] = code
	return nil
}

func (f *fakeMailer) codeFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

type testServer struct {
	*Server
	ts      *httptest.Server
	fetcher *stubFetcher
	mailer  *fakeMailer
}

// newTestServer builds a file-backed server with stub upstreams.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Refresh.Interval = "20ms"

	logger := common.NewSilentLogger()

	store, err := storage.New(cfg.Storage, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fetcher := &stubFetcher{}
	mailer := &fakeMailer{}

	quotes := quote.NewService(fetcher, logger)
	refresher := app.NewRefresher(store, quotes, logger, cfg.Refresh.GetInterval())
	portfolios := portfolio.NewService(store, logger, refresher.Kick)
	authSvc := auth.NewService(store, mailer, logger, cfg.Auth.GetCodeExpiry())

	a := &app.App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Quotes:     quotes,
		Portfolios: portfolios,
		Auth:       authSvc,
		Refresher:  refresher,
	}
	refresher.Start()
	t.Cleanup(refresher.Stop)

	srv := NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testServer{Server: srv, ts: ts, fetcher: fetcher, mailer: mailer}
}

// do issues a request with optional JSON body and headers.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.ts.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	return resp, data
}

// register walks the full OTP flow and returns the session token.
func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()

	resp, _ := s.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": email}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/auth", authRequest{
		Action:   "register",
		Email:    email,
		Password: password,
		Code:     s.mailer.codeFor(email),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out authResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// waitFor polls until cond passes or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = s.do(t, http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v map[string]string
	require.NoError(t, json.Unmarshal(body, &v))
	require.Contains(t, v, "version")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodDelete, "/api/health", nil, nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, "GET, HEAD", resp.Header.Get("Allow"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodOptions, "/api/portfolio", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDEcho(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/health", nil, map[string]string{"X-Request-ID": "abc123"})
	require.Equal(t, "abc123", resp.Header.Get("X-Correlation-ID"))

	resp, _ = s.do(t, http.MethodGet, "/api/health", nil, nil)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}
