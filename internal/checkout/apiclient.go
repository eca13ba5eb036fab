package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIClient talks to the site's own API endpoints on behalf of the flow.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *APIClient) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	var out struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.postJSON(ctx, "/api/create-payment-intent", req, &out); err != nil {
		return nil, err
	}
	if out.ClientSecret == "" {
		return nil, errors.New("Failed to create payment intent")
	}
	return &IntentResult{
		ClientSecret:    out.ClientSecret,
		PaymentIntentID: out.PaymentIntentID,
	}, nil
}

func (c *APIClient) SendBookingNotification(ctx context.Context, n BookingNotification) error {
	payload := struct {
		Type string `json:"type"`
		BookingNotification
	}{Type: "booking", BookingNotification: n}
	return c.postJSON(ctx, "/api/send-email", payload, nil)
}

func (c *APIClient) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
