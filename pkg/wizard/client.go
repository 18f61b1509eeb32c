package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Receipt is what a successful submission returns: the server-generated
// ticket number the reporter uses to track their case.
type Receipt struct {
	TicketNumber string `json:"ticket_number"`
}

// SubmissionClient delivers an assembled payload to the reporting backend.
type SubmissionClient interface {
	Submit(ctx context.Context, p *Payload) (*Receipt, error)
}

// HTTPSubmissionClient posts payloads to the report-service.
type HTTPSubmissionClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHTTPSubmissionClient(baseURL string) *HTTPSubmissionClient {
	return &HTTPSubmissionClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Submit POSTs the payload. Any non-2xx response is a failure; the server's
// message is surfaced when it sent one, without further interpretation of
// the status code.
func (c *HTTPSubmissionClient) Submit(ctx context.Context, p *Payload) (*Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/reports", bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", p.ContentType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Error   string  `json:"error"`
		Data    Receipt `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("submission rejected (HTTP %d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("submission rejected: %s", msg)
	}

	if envelope.Data.TicketNumber == "" {
		return nil, fmt.Errorf("server response missing ticket number")
	}
	return &envelope.Data, nil
}
