// Package startbutton implements the payment-provider gateway. When no
// provider endpoint is configured the client runs in local mode: it mints
// payment identifiers and redirect URLs itself and Register is a no-op,
// which mirrors how the platform is exercised in development.
package startbutton

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/reliability/circuitbreaker"
	"github.com/yourorg/swiftstore/internal/reliability/retry"
)

// Client talks to the Startbutton payment API.
type Client struct {
	baseURL    string // provider API, empty for local mode
	apiKey     string
	appBaseURL string // our public origin for the process redirect
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   *retry.Config
	logger     *slog.Logger
}

// NewClient creates a payment gateway client.
func NewClient(providerURL, apiKey, appBaseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    providerURL,
		apiKey:     apiKey,
		appBaseURL: appBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second),
		retryCfg: &retry.Config{
			MaxAttempts:       3,
			InitialBackoff:    200 * time.Millisecond,
			MaxBackoff:        2 * time.Second,
			BackoffMultiplier: 2.0,
		},
		logger: logger,
	}
}

var _ domain.PaymentGateway = (*Client)(nil)

// ProvisionalPaymentID mints an identifier usable before the order exists.
func (c *Client) ProvisionalPaymentID() string {
	return fmt.Sprintf("sb_%d_%s", time.Now().UnixNano(), nonce())
}

// PaymentIDFor mints the final identifier encoding the order id.
func (c *Client) PaymentIDFor(orderID string) string {
	return fmt.Sprintf("sb_%d_%s", time.Now().UnixNano(), orderID)
}

// RedirectURL points the shopper at our process endpoint, which looks the
// order up by payment id once the provider sends the shopper back.
func (c *Client) RedirectURL(paymentID string) string {
	return fmt.Sprintf("%s/api/startbutton/process?paymentId=%s", c.appBaseURL, url.QueryEscape(paymentID))
}

type registerRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Reference string `json:"reference"`
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

// Register announces the transaction to the provider, with retries behind a
// circuit breaker. Local mode (no provider URL) is a no-op.
func (c *Client) Register(ctx context.Context, tx *domain.PaymentTransaction) error {
	if c.baseURL == "" {
		c.logger.Debug("payment provider in local mode, skipping register",
			slog.String("payment_id", tx.PaymentID),
		)
		return nil
	}

	if !c.breaker.AllowRequest() {
		return fmt.Errorf("payment provider circuit open")
	}

	_, err := retry.Do(ctx, c.retryCfg, c.logger, "startbutton_register", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.register(ctx, tx)
	})
	if err != nil {
		c.breaker.RecordFailure()
		return err
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) register(ctx context.Context, tx *domain.PaymentTransaction) error {
	body, err := json.Marshal(registerRequest{
		PaymentID: tx.PaymentID,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Email:     tx.Email,
		Phone:     tx.Phone,
		Reference: tx.OrderID,
		ReturnURL: tx.ReturnURL,
		CancelURL: tx.CancelURL,
	})
	if err != nil {
		return fmt.Errorf("failed to encode register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}
	return nil
}

func nonce() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
