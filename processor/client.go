// Package processor provides the HTTP client for the external payment
// processor. Ordinary business failures (declined charge, invalid funding
// reference) are reported as values, never as errors: the settlement
// engine records them and moves on.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a client for the processor API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new processor API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// transferRequest is the payload for the processor's debit and credit
// endpoints. Amounts are integer cents; the idempotency key lets the
// processor dedupe a retransmitted request after a crash.
type transferRequest struct {
	FundingAccountURI string `json:"funding_account_uri"`
	AmountCents       int64  `json:"amount_cents"`
	Description       string `json:"description"`
	IdempotencyKey    string `json:"idempotency_key"`
}

// transferResponse is the processor's answer for both endpoints
type transferResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const statusSucceeded = "succeeded"

// Charge pulls the given amount from a funding source. A non-empty
// decline message means the processor refused the charge for business
// reasons; err is reserved for transport and protocol faults.
func (c *Client) Charge(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (string, error) {
	return c.transfer(ctx, "/v1/debits", fundingURI, amount, participantID)
}

// Credit pushes the given amount to a payout destination
func (c *Client) Credit(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (string, error) {
	return c.transfer(ctx, "/v1/credits", fundingURI, amount, participantID)
}

func (c *Client) transfer(ctx context.Context, path, fundingURI string, amount decimal.Decimal, participantID string) (string, error) {
	payload := transferRequest{
		FundingAccountURI: fundingURI,
		AmountCents:       amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Description:       participantID,
		IdempotencyKey:    uuid.NewString(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var result transferResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if result.Status != statusSucceeded {
			if result.Message == "" {
				return "transfer declined", nil
			}
			return result.Message, nil
		}
		return "", nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Business refusal; the message is a reported value for audit
		var result transferResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Message == "" {
			return fmt.Sprintf("processor refused with status %d", resp.StatusCode), nil
		}
		return result.Message, nil

	default:
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
}
