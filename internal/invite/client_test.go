package invite

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestClient_SendsBrowserHeaders(t *testing.T) {
	var (
		gotHeader http.Header
		gotPath   string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotPath = r.URL.EscapedPath()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"account_invites":[]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/backend-api/", UserAgent: "agent/2.0"}, srv.Client())
	resolver := NewResolver(client, zap.NewNop(), nil)

	result := resolver.Send(context.Background(), []string{"a@x.com"}, "admin", true, staticSource("tok-123", "acct/1"))
	require.True(t, result.Succeeded())

	assert.Equal(t, "/backend-api/accounts/acct%2F1/invites", gotPath)
	assert.Equal(t, "Bearer tok-123", gotHeader.Get("Authorization"))
	assert.Equal(t, "acct/1", gotHeader.Get("chatgpt-account-id"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "application/json, text/plain, */*", gotHeader.Get("Accept"))
	assert.Equal(t, "en-US,en;q=0.9", gotHeader.Get("Accept-Language"))
	assert.Equal(t, "no-cache", gotHeader.Get("Cache-Control"))
	assert.Equal(t, "no-cache", gotHeader.Get("Pragma"))
	assert.Equal(t, "https://chatgpt.com", gotHeader.Get("Origin"))
	assert.Equal(t, "https://chatgpt.com/", gotHeader.Get("Referer"))
	assert.Equal(t, "agent/2.0", gotHeader.Get("User-Agent"))

	assert.Equal(t, map[string]any{
		"email_addresses": []any{"a@x.com"},
		"role":            "admin",
		"resend_emails":   true,
	}, gotBody)
}

func TestClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{}, nil)

	assert.Equal(t, DefaultAPIBase+"/accounts/abc/invites", client.InviteURL("abc"))

	req, err := client.NewRequest(context.Background(), Credentials{Token: "t", AccountID: "abc"}, Request{Emails: []string{"a@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, DefaultUserAgent, req.Header.Get("User-Agent"))
}

func TestClient_CancelledContextIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := NewResolver(NewClient(ClientConfig{BaseURL: srv.URL}, nil), zap.NewNop(), nil)
	result := resolver.Send(ctx, []string{"a@x.com"}, "", false, staticSource("tok", "acct"))

	failure, ok := result.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindTransport, failure.Kind)
	assert.Nil(t, failure.Status)
	assert.True(t, strings.HasPrefix(failure.Message, "Request failed:"))
	assert.Contains(t, failure.Message, "context canceled")
}

func TestClient_EmptyBodyWrappedAsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resolver := NewResolver(NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client()), zap.NewNop(), nil)
	result := resolver.Send(context.Background(), []string{"a@x.com"}, "", false, staticSource("tok", "acct"))

	resp := result.Response()
	assert.False(t, resp.Success)
	assert.Equal(t, map[string]any{"raw_response": ""}, resp.Data)
	assert.Equal(t, "HTTP 204", resp.Error)
}

// stallingUpstream answers with status and a partial body, then hangs until
// the client goes away.
func stallingUpstream(t *testing.T, status int) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"account_invites":[`))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv
}

func TestClient_BodyTimeoutIsTransportFailure(t *testing.T) {
	srv := stallingUpstream(t, http.StatusOK)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 300 * time.Millisecond}, nil)
	result := NewResolver(client, zap.NewNop(), nil).Send(context.Background(), []string{"a@x.com"}, "", false, staticSource("tok", "acct"))

	require.False(t, result.Succeeded())
	failure := result.(Failure)
	assert.Equal(t, KindTransport, failure.Kind)
	assert.Nil(t, failure.Status)
	assert.Nil(t, failure.Data)
	assert.True(t, strings.HasPrefix(failure.Message, "Request failed:"))
}

func TestClient_CancelledWhileReadingBodyIsTransportFailure(t *testing.T) {
	srv := stallingUpstream(t, http.StatusForbidden)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	result := NewResolver(NewClient(ClientConfig{BaseURL: srv.URL}, nil), zap.NewNop(), nil).
		Send(ctx, []string{"a@x.com"}, "", false, staticSource("tok", "acct"))

	failure, ok := result.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindTransport, failure.Kind)
	assert.Nil(t, failure.Status)
}

func TestClient_OversizedBodyIsTruncatedAndFlagged(t *testing.T) {
	body := `{"pad":"` + strings.Repeat("x", maxResponseBytes) + `"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client())
	reply, err := client.Do(context.Background(), Credentials{Token: "tok", AccountID: "acct"}, Request{Emails: []string{"a@x.com"}})
	require.NoError(t, err)
	assert.True(t, reply.Truncated)
	raw := reply.Data.(map[string]any)["raw_response"].(string)
	assert.Len(t, raw, maxResponseBytes)

	core, logs := observer.New(zap.WarnLevel)
	result := NewResolver(client, zap.New(core), nil).Send(context.Background(), []string{"a@x.com"}, "", false, staticSource("tok", "acct"))
	assert.True(t, result.Succeeded())
	assert.Equal(t, 1, logs.FilterMessage("upstream response body truncated").Len())
}

func TestClient_SmallBodyIsNotFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	reply, err := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client()).
		Do(context.Background(), Credentials{Token: "tok", AccountID: "acct"}, Request{Emails: []string{"a@x.com"}})
	require.NoError(t, err)
	assert.False(t, reply.Truncated)
	assert.Equal(t, map[string]any{"ok": true}, reply.Data)
}
