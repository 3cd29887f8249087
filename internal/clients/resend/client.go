// Package resend provides a client for the Resend email API
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	DefaultTimeout = 15 * time.Second
	DefaultFrom    = "Folio <onboarding@resend.dev>"
)

// Client sends transactional mail through the Resend API.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithFrom sets the sender address
func WithFrom(from string) ClientOption {
	return func(c *Client) {
		c.from = from
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Resend client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		from:    DefaultFrom,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendCode delivers a verification code to the address. Delivery failure
// surfaces as an error to the caller.
func (c *Client) SendCode(ctx context.Context, to, code string) error {
	if c.apiKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	payload := sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: "Your Folio verification code",
		HTML: fmt.Sprintf(
			`<p>Your verification code is:</p><h2 style="letter-spacing:4px">%s</h2><p>It expires in 10 minutes.</p>`,
			code),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(msg))
	}

	c.logger.Info().Str("to", to).Msg("Verification email sent")
	return nil
}

// Ensure Client implements EmailSender
var _ interfaces.EmailSender = (*Client)(nil)
