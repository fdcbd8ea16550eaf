// Package authclient talks to the identity authority that owns token
// validation. The service never inspects tokens itself; every decision is
// delegated over HTTP.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shopium/payments-service/internal/metrics"
)

// ErrAuthorityUnreachable means the validation call itself could not
// complete. Callers must gate requests as if the token were invalid, but
// the condition is kept distinguishable for logs.
var ErrAuthorityUnreachable = errors.New("identity authority unreachable")

// ValidationCache remembers recent validation decisions. Optional.
type ValidationCache interface {
	GetValidation(ctx context.Context, token string) (valid bool, ok bool)
	SetValidation(ctx context.Context, token string, valid bool)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ValidationCache
	logger     *slog.Logger
}

// New builds a client with a bounded request timeout so a slow authority
// cannot stall request handling. cache may be nil.
func New(baseURL string, timeout time.Duration, cache ValidationCache, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

type validatePayload struct {
	Status string `json:"status"`
	Data   *struct {
		Valid  bool   `json:"valid"`
		UserID string `json:"userId"`
		Email  string `json:"email"`
	} `json:"data"`
}

// ValidateToken asks the authority whether the token is currently valid.
// Closed world: any non-success response shape, malformed payload, or
// explicit invalid flag is false. Transport failures return false with
// ErrAuthorityUnreachable wrapped in.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	if c.cache != nil {
		if valid, ok := c.cache.GetValidation(ctx, token); ok {
			return valid, nil
		}
	}

	payload, err := c.callValidate(ctx, token)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}

	valid := payload.Status == "success" && payload.Data != nil && payload.Data.Valid

	if c.cache != nil {
		c.cache.SetValidation(ctx, token, valid)
	}
	return valid, nil
}

// ResolveSubject extracts the subject identifier the authority embeds in a
// success payload. Empty when the authority does not report success. It
// does not re-validate; pair it with ValidateToken when validity matters.
func (c *Client) ResolveSubject(ctx context.Context, token string) (string, error) {
	payload, err := c.callValidate(ctx, token)
	if err != nil {
		return "", err
	}
	if payload == nil || payload.Status != "success" || payload.Data == nil {
		return "", nil
	}
	return payload.Data.UserID, nil
}

// callValidate performs one validation round trip. A nil payload with nil
// error means the authority answered but not with a usable success shape.
func (c *Client) callValidate(ctx context.Context, token string) (*validatePayload, error) {
	start := time.Now()
	defer func() {
		metrics.TokenValidationDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/validate", nil)
	if err != nil {
		return nil, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorityUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("token validation rejected", "status_code", resp.StatusCode)
		return nil, nil
	}

	var payload validatePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("malformed validation payload", "err", err)
		return nil, nil
	}
	return &payload, nil
}
