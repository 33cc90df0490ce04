// Package paystack implements a minimal client for the Paystack transaction
// verification API. Verification is the single source of truth for whether a
// payment succeeded; nothing in this service ever trusts a client's claim of
// success.
package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Customer is the payer block of a verified transaction.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Metadata carries the custom fields the checkout widget attaches to a
// transaction. All fields are optional.
type Metadata struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	UserID  string `json:"userId"`
}

// UnmarshalJSON tolerates the empty-string metadata Paystack returns for
// transactions initialized without custom fields.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '{' {
		*m = Metadata{}
		return nil
	}
	type plain Metadata
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = Metadata(p)
	return nil
}

// Transaction is the verified transaction payload. Amount is in minor
// currency units (kobo/cents) exactly as the gateway reports it.
type Transaction struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	PaidAt    string   `json:"paid_at,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	Customer  Customer `json:"customer"`
	Metadata  Metadata `json:"metadata"`
}

// envelope is the outer response shape of the Paystack API.
type envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// Client calls the Paystack REST API with a server-held secret key.
// The zero value is not usable; construct with New.
type Client struct {
	secretKey string
	baseURL   string
	httpc     *http.Client
}

// New returns a Client authenticated with secretKey against baseURL
// (e.g. "https://api.paystack.co"). timeout bounds each verification call;
// a timeout surfaces as an ordinary transport error.
func New(secretKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   baseURL,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// Verify confirms the transaction identified by reference with the gateway
// and returns the verified payload. It returns an error for transport
// failures, non-2xx responses, and undecodable bodies; a non-"success"
// transaction status is NOT an error here, callers branch on
// Transaction.Status.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	u := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("paystack verify: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paystack verify: unexpected status %d: %s", resp.StatusCode, truncateForError(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("paystack verify: decode: %w", err)
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack verify: api error: %s", env.Message)
	}
	return &env.Data, nil
}

// truncateForError keeps gateway error bodies short in wrapped errors.
func truncateForError(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
