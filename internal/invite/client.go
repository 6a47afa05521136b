package invite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerAccountID  = "chatgpt-account-id"
	upstreamOrigin   = "https://chatgpt.com"
	upstreamReferer  = "https://chatgpt.com/"
	maxResponseBytes = 1 << 20
)

// Doer is the subset of *http.Client the upstream client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the upstream invite client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client issues invite calls against the upstream account API.
type Client struct {
	baseURL   string
	userAgent string
	doer      Doer
}

// NewClient builds a Client. A nil doer gets an *http.Client honoring cfg.Timeout.
func NewClient(cfg ClientConfig, doer Doer) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: baseURL, userAgent: userAgent, doer: doer}
}

// InviteURL returns the invites endpoint for accountID.
func (c *Client) InviteURL(accountID string) string {
	return fmt.Sprintf("%s/accounts/%s/invites", c.baseURL, url.PathEscape(accountID))
}

// NewRequest builds the upstream POST for req.
func (c *Client) NewRequest(ctx context.Context, creds Credentials, req Request) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode invite payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.InviteURL(creds.AccountID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	h := httpReq.Header
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+creds.Token)
	h.Set(headerAccountID, creds.AccountID)
	h.Set("Origin", upstreamOrigin)
	h.Set("Referer", upstreamReferer)
	h.Set("User-Agent", c.userAgent)

	return httpReq, nil
}

// upstreamReply is what came back from a call that reached the upstream.
type upstreamReply struct {
	Status    int
	Data      any
	Truncated bool
}

// Do sends req and decodes the reply. A non-nil error means no complete
// response was received; a body over maxResponseBytes is cut and flagged.
func (c *Client) Do(ctx context.Context, creds Credentials, req Request) (*upstreamReply, error) {
	httpReq, err := c.NewRequest(ctx, creds, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	reply := &upstreamReply{Status: resp.StatusCode}
	if len(raw) > maxResponseBytes {
		raw = raw[:maxResponseBytes]
		reply.Truncated = true
	}
	reply.Data = decodeBody(raw)
	return reply, nil
}

func decodeBody(raw []byte) any {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]any{"raw_response": string(raw)}
	}
	return data
}
