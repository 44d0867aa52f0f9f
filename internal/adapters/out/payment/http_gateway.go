// Package payment holds the card processor adapters: an HTTP client for the
// real gateway and an in-process sandbox for development.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

type authorizeRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type refundRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type transactionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPGateway talks JSON to the card processor. 4xx answers are reported as
// ports.ErrGatewayRejected; transport errors and 5xx answers are returned
// as plain errors for the caller to retry.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string, client *http.Client) (*HTTPGateway, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("payment gateway url must be http or https, got %q", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPGateway{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		apiKey:  apiKey,
		client:  client,
	}, nil
}

func (g *HTTPGateway) Authorize(ctx context.Context, methodID string, amount kernel.Money, idempotencyKey string) (string, error) {
	var resp transactionResponse
	err := g.do(ctx, "/v1/authorizations", idempotencyKey, authorizeRequest{
		PaymentMethodID: methodID,
		Amount:          amount.Minor(),
		Currency:        amount.Currency(),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("payment gateway returned an authorization without id")
	}
	return resp.ID, nil
}

func (g *HTTPGateway) Capture(ctx context.Context, gatewayTxnID string) error {
	path := "/v1/authorizations/" + url.PathEscape(gatewayTxnID) + "/capture"
	return g.do(ctx, path, gatewayTxnID+":capture", nil, nil)
}

func (g *HTTPGateway) Refund(ctx context.Context, gatewayTxnID string, amount kernel.Money) error {
	path := "/v1/authorizations/" + url.PathEscape(gatewayTxnID) + "/refunds"
	key := fmt.Sprintf("%s:refund:%d", gatewayTxnID, amount.Minor())
	return g.do(ctx, path, key, refundRequest{Amount: amount.Minor(), Currency: amount.Currency()}, nil)
}

func (g *HTTPGateway) do(ctx context.Context, path, idempotencyKey string, body any, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("payment gateway response %s: %w", path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, out)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusConflict:
		// rate limited or a concurrent request with the same key
		return fmt.Errorf("payment gateway %s: status %d", path, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", ports.ErrGatewayRejected, describe(resp.StatusCode, raw))
	default:
		return fmt.Errorf("payment gateway %s: %s", path, describe(resp.StatusCode, raw))
	}
}

func describe(status int, raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		if e.Code != "" {
			return fmt.Sprintf("status %d %s: %s", status, e.Code, e.Message)
		}
		return fmt.Sprintf("status %d: %s", status, e.Message)
	}
	return fmt.Sprintf("status %d", status)
}
