// Package ticket files support tickets against the external ticket service.
package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// ErrTicketRejected is returned when the ticket service answers with a non-2xx status.
var ErrTicketRejected = errors.New("ticket service rejected request")

// maxResponseBodySize bounds how much of a success response is decoded.
const maxResponseBodySize = 1 << 20 // 1MB

// Creator creates a ticket in the ticket service.
type Creator interface {
	Create(ctx context.Context, req domain.TicketRequest) (*domain.Ticket, error)
}

// Client calls POST {baseURL}/tickets. It never retries and sends no
// idempotency key, so a caller-side retry may create a duplicate ticket.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a ticket service client.
func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createResponse struct {
	Ticket *domain.Ticket `json:"ticket"`
}

// Create submits req and returns the server-assigned ticket.
func (c *Client) Create(ctx context.Context, req domain.TicketRequest) (*domain.Ticket, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode ticket request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tickets", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ticket request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send ticket request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("failed to close ticket response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrTicketRejected, resp.StatusCode)
	}

	var out createResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ticket response: %w", err)
	}
	if out.Ticket == nil || out.Ticket.ID == "" {
		return nil, fmt.Errorf("decode ticket response: missing ticket id")
	}
	return out.Ticket, nil
}
