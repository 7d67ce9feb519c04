// Package stripe is a thin client for the parts of the Stripe API the
// backend uses: immediate off-session charges for ad-spend settlement and
// manual-capture payment intents for shop checkout.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// Config holds Stripe client configuration
type Config struct {
	APIKey  string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// Client talks to the Stripe REST API
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Stripe client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ChargeRequest describes a charge against a stored payment method
type ChargeRequest struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	Description     string
	Metadata        map[string]string
}

// PaymentIntent is the subset of Stripe's payment intent object we read
type PaymentIntent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// APIError is a structured error returned by the Stripe API
type APIError struct {
	StatusCode  int    `json:"-"`
	Type        string `json:"type"`
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
	Message     string `json:"message"`
}

func (e *APIError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("stripe: %s (%s/%s)", e.Message, e.Code, e.DeclineCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// ChargePaymentMethod creates and confirms a payment intent against a
// stored payment method in one step. This is the settlement path: the
// charge is immediate, with no separate capture step.
func (c *Client) ChargePaymentMethod(ctx context.Context, req ChargeRequest) (*PaymentIntent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("stripe: charge amount must be > 0, got %d", req.AmountCents)
	}
	if req.CustomerID == "" || req.PaymentMethodID == "" {
		return nil, fmt.Errorf("stripe: customer and payment method are required")
	}

	form := c.intentForm(req)
	form.Set("confirm", "true")
	form.Set("off_session", "true")

	intent, err := c.postForm(ctx, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, &APIError{
			Type:    "charge_incomplete",
			Code:    intent.Status,
			Message: fmt.Sprintf("payment intent %s did not complete", intent.ID),
		}
	}
	return intent, nil
}

// AuthorizePayment creates and confirms a manual-capture payment intent.
// Funds are held but not taken until CapturePayment is called. This is the
// checkout path, distinct from the immediate settlement charge above.
func (c *Client) AuthorizePayment(ctx context.Context, req ChargeRequest) (*PaymentIntent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("stripe: authorize amount must be > 0, got %d", req.AmountCents)
	}

	form := c.intentForm(req)
	form.Set("confirm", "true")
	form.Set("capture_method", "manual")

	return c.postForm(ctx, "/v1/payment_intents", form)
}

// CapturePayment captures a previously authorized payment intent
func (c *Client) CapturePayment(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("stripe: intent id is required")
	}
	return c.postForm(ctx, "/v1/payment_intents/"+intentID+"/capture", url.Values{})
}

// CancelPayment cancels a payment intent, releasing any held funds
func (c *Client) CancelPayment(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("stripe: intent id is required")
	}
	return c.postForm(ctx, "/v1/payment_intents/"+intentID+"/cancel", url.Values{})
}

func (c *Client) intentForm(req ChargeRequest) url.Values {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", currency)
	form.Set("customer", req.CustomerID)
	form.Set("payment_method", req.PaymentMethodID)
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	return form
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*PaymentIntent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stripe: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Type:       "api_error",
				Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			}
		}
		apiErr := envelope.Error
		apiErr.StatusCode = resp.StatusCode
		return nil, &apiErr
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("stripe: decoding response: %w", err)
	}
	return &intent, nil
}
