package server

import (
	"net/http"
	"testing"

	"github.com/smallbiznis/inviteportal/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminConfig_RequiresKeyWhenConfigured(t *testing.T) {
	ts := newTestServer(t, testOptions{adminAPIKey: "s3cret", envToken: "env-token-123"})

	w := ts.do(t, call{method: http.MethodGet, path: "/api/admin/config"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decode(t, w)["error"].(map[string]any)["type"])

	w = ts.do(t, call{method: http.MethodGet, path: "/api/admin/config", headers: map[string]string{HeaderAdminKey: "wrong"}})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, call{method: http.MethodGet, path: "/api/admin/config", headers: map[string]string{HeaderAdminKey: "s3cret"}})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminConfig_Get(t *testing.T) {
	ts := newTestServer(t, testOptions{envToken: "env-token-1234567890"})

	w := ts.do(t, call{method: http.MethodGet, path: "/api/admin/config"})

	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, invite.DefaultAccountID, got["account_id"])
	assert.Equal(t, true, got["token_configured"])
	assert.Equal(t, "env-token-...", got["token_preview"])
	assert.Equal(t, false, got["override_active"])
	assert.NotContains(t, w.Body.String(), "env-token-1234567890")
}

func TestAdminConfig_UpdateValidation(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{name: "short token", body: map[string]string{"token": "abc"}, field: "token"},
		{name: "bad account", body: map[string]string{"account_id": "not-a-uuid"}, field: "account_id"},
		{name: "empty", body: map[string]string{}, field: "request"},
		{name: "not json", body: "{", field: "request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, call{method: http.MethodPost, path: "/api/admin/config", body: tt.body})

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			payload := decode(t, w)["error"].(map[string]any)
			assert.Equal(t, "validation_error", payload["type"])
			errs := payload["errors"].([]any)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].(map[string]any)["field"])
		})
	}
}

func TestAdminConfig_UpdateAppliesToInvites(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, `{}`)
	ts := newTestServer(t, testOptions{envToken: "env-token-123", upstreamURL: upstream.URL})

	w := ts.do(t, call{
		method: http.MethodPost,
		path:   "/api/admin/config",
		body:   map[string]string{"token": "Bearer runtime-token-789", "account_id": testAccountID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"token_configured":true,"account_id":"`+testAccountID+`"}`, w.Body.String())

	w = ts.do(t, call{method: http.MethodPost, path: "/api/invite", body: map[string]any{"emails": []string{"a@x.com"}}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bearer runtime-token-789", upstream.LastAuth())
	assert.Equal(t, testAccountID, upstream.LastAccount())

	w = ts.do(t, call{method: http.MethodGet, path: "/api/admin/config"})
	got := decode(t, w)
	assert.Equal(t, true, got["override_active"])
	assert.NotEmpty(t, got["updated_at"])
}

func TestAdminConfig_PartialUpdateKeepsOtherField(t *testing.T) {
	ts := newTestServer(t, testOptions{envToken: "env-token-123"})

	w := ts.do(t, call{method: http.MethodPost, path: "/api/admin/config", body: map[string]string{"account_id": testAccountID}})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, call{method: http.MethodGet, path: "/api/config"})
	got := decode(t, w)
	assert.Equal(t, testAccountID, got["account_id"])
	assert.Equal(t, true, got["token_configured"])
}

func TestAdminConfig_ClearRevertsToEnvironment(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, `{}`)
	ts := newTestServer(t, testOptions{envToken: "env-token-123", upstreamURL: upstream.URL})

	w := ts.do(t, call{method: http.MethodPost, path: "/api/admin/config", body: map[string]string{"token": "runtime-token-789"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, call{method: http.MethodDelete, path: "/api/admin/config"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["override_active"])

	ts.do(t, call{method: http.MethodPost, path: "/api/invite", body: map[string]any{"emails": []string{"a@x.com"}}})
	assert.Equal(t, "Bearer env-token-123", upstream.LastAuth())
}
