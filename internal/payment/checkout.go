// Package payment wraps the hosted checkout API of the external payment
// processor. The processor later calls back into the webhook, which flips
// the match-fee gate through its own guarded transition.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appErrors "fleetlease/pkg/errors"

	"fleetlease/internal/config"
)

// SessionCreator creates a hosted checkout session for the match fee.
type SessionCreator interface {
	CreateSession(ctx context.Context, customerRef string, amountCents int64, metadata map[string]string) (string, error)
}

type Client struct {
	cfg        *config.PaymentConfig
	httpClient *http.Client
}

func NewClient(cfg *config.PaymentConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sessionRequest struct {
	CustomerRef string            `json:"customer_ref"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type sessionResponse struct {
	SessionURL string `json:"session_url"`
	Error      string `json:"error,omitempty"`
}

// CreateSession asks the processor for a checkout URL the lessee is
// redirected to. Any failure is an external-service error; nothing about
// the agreement changes until the webhook arrives.
func (c *Client) CreateSession(ctx context.Context, customerRef string, amountCents int64, metadata map[string]string) (string, error) {
	payload, err := json.Marshal(sessionRequest{
		CustomerRef: customerRef,
		AmountCents: amountCents,
		Currency:    "usd",
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", appErrors.NewAppError(appErrors.CodeExternal, "payment processor unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", appErrors.NewAppError(appErrors.CodeExternal, "failed to read processor response", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", appErrors.NewAppError(appErrors.CodeExternal,
			fmt.Sprintf("payment processor returned status %d", resp.StatusCode), nil)
	}

	var parsed sessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", appErrors.NewAppError(appErrors.CodeExternal, "malformed processor response", err)
	}
	if parsed.SessionURL == "" {
		return "", appErrors.NewAppError(appErrors.CodeExternal, "processor returned no session URL", nil)
	}

	return parsed.SessionURL, nil
}
