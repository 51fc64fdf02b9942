package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spec-kit/redemption-intake/internal/config"
)

// SendResult is the provider's answer to a send request. The provider
// reports the issued code so it can be mirrored into the local store.
type SendResult struct {
	Message string `json:"message"`
	OTP     string `json:"otp"`
}

// Status carries the provider's self-reported state, passed through opaquely.
type Status map[string]any

// Client talks to the external OTP provider. Every call carries the
// configured client-side timeout; failures surface the provider's error
// message when the response carries one, else a fixed fallback.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.OTPConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ProviderBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// SendUserOTP asks the provider to issue and mail a passcode for email.
func (c *Client) SendUserOTP(ctx context.Context, email string) (*SendResult, error) {
	var result SendResult
	err := c.post(ctx, "/send-otp", map[string]string{"email": email}, &result, "failed to send OTP")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyUserOTP asks the provider to check a passcode for email.
func (c *Client) VerifyUserOTP(ctx context.Context, email, code string) error {
	return c.post(ctx, "/verify-otp", map[string]string{"email": email, "otp": code}, nil, "failed to verify OTP")
}

// SendAdminOTP asks the provider to issue a passcode for the operator identity.
func (c *Client) SendAdminOTP(ctx context.Context) (*SendResult, error) {
	var result SendResult
	err := c.post(ctx, "/admin/send-otp", nil, &result, "failed to send admin OTP")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyAdminOTP asks the provider to check an operator passcode.
func (c *Client) VerifyAdminOTP(ctx context.Context, code string) error {
	return c.post(ctx, "/admin/verify-otp", map[string]string{"otp": code}, nil, "failed to verify admin OTP")
}

// CheckStatus fetches the provider's passcode bookkeeping state.
func (c *Client) CheckStatus(ctx context.Context) (Status, error) {
	var status Status
	if err := c.get(ctx, "/otp-status", &status, "failed to check OTP status"); err != nil {
		return nil, err
	}
	return status, nil
}

// CheckHealth probes the provider.
func (c *Client) CheckHealth(ctx context.Context) error {
	return c.get(ctx, "/health", nil, "failed to check API health")
}

// ProviderError reports a non-2xx provider response.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("otp provider: %s (status %d)", e.Message, e.StatusCode)
}

func (c *Client) post(ctx context.Context, path string, body any, out any, fallback string) error {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, fallback)
}

func (c *Client) get(ctx context.Context, path string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out, fallback)
}

func (c *Client) do(req *http.Request, out any, fallback string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fallback
		var errBody struct {
			Error string `json:"error"`
		}
		if err := decoder.Decode(&errBody); err == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &ProviderError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := decoder.Decode(out); err != nil {
		return &ProviderError{StatusCode: resp.StatusCode, Message: fallback}
	}
	return nil
}

// ExpiryFrom computes a mirrored record's expiry from issue time and TTL.
func ExpiryFrom(issuedAt time.Time, ttl time.Duration) time.Time {
	return issuedAt.Add(ttl)
}
