// Package operator dispatches a single message to the upstream SMS
// operators, trying each in priority order with a bounded per-operator
// retry before failing over to the next.
package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/oggyb/sms-gateway/internal/config"
)

// SendResult is the structured response body an operator returns.
type SendResult struct {
	Status      string `json:"status"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
	RawResponse string `json:"-"`
}

// sendRequest is the payload posted to an operator endpoint. MessageID is
// passed through as an idempotency key: if the operator supports one, a
// worker crash between a successful send and the broker ack can redeliver
// without double-billing the upstream operator for the same message.
type sendRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	MessageID   string `json:"message_id,omitempty"`
}

// client is one upstream operator endpoint.
type client struct {
	name       string
	url        string
	priority   int
	httpClient *http.Client
}

// Dispatcher tries each configured operator in priority order.
type Dispatcher struct {
	clients []client
}

// New builds a Dispatcher from the configured operator list, sorted by
// ascending priority (1 = tried first).
func New(operators []config.Operator) *Dispatcher {
	clients := make([]client, len(operators))
	for i, o := range operators {
		clients[i] = client{
			name:     o.Name,
			url:      o.URL,
			priority: o.Priority,
			httpClient: &http.Client{
				Timeout: o.Timeout,
			},
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].priority < clients[j].priority })

	return &Dispatcher{clients: clients}
}

var ErrAllOperatorsFailed = errors.New("all operators failed")

// Send tries each operator in priority order. Within one operator it
// makes up to 3 attempts with 1s/2s backoff on transport or HTTP-level
// errors; a structured {"status":"failed"} 200 response is a decision, not
// a fault, so it fails over to the next operator immediately with no
// retry. messageID is forwarded to the operator as an idempotency key.
func (d *Dispatcher) Send(ctx context.Context, messageID, phoneNumber, text string) (*SendResult, error) {
	var lastErr error

	for _, c := range d.clients {
		result, err := c.sendWithRetry(ctx, messageID, phoneNumber, text)
		if err == nil && result.Status == "sent" {
			return result, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("operator %s rejected message: %s", c.name, result.Error)
			continue
		}
		lastErr = fmt.Errorf("operator %s: %w", c.name, err)

		// A cancelled context is the caller shutting down, not the
		// operators failing; report it as such so the message is
		// redelivered instead of marked FAILED.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrAllOperatorsFailed, lastErr)
}

func (c *client) sendWithRetry(ctx context.Context, messageID, phoneNumber, text string) (*SendResult, error) {
	var result *SendResult

	err := retry.Do(
		func() error {
			r, err := c.doSend(ctx, messageID, phoneNumber, text)
			if err != nil {
				return err
			}
			result = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(1*time.Second),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) doSend(ctx context.Context, messageID, phoneNumber, text string) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{PhoneNumber: phoneNumber, Message: text, MessageID: messageID})
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Any non-200 is treated as transient (operator overload, proxy
	// hiccup) and retried; only a structured 200 body can reject a
	// message outright.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("operator returned status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("parse response: %w", err))
	}
	result.RawResponse = string(raw)

	return &result, nil
}
