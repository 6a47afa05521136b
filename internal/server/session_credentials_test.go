package server

import (
	"net/http"
	"testing"

	"github.com/smallbiznis/inviteportal/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == credentials.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("cookie %s not set", credentials.DefaultCookieName)
	return nil
}

func TestSessionCredentials_CookieScopesOverride(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, `{}`)
	ts := newTestServer(t, testOptions{envToken: "env-token-123", upstreamURL: upstream.URL})

	w := ts.do(t, call{method: http.MethodPost, path: "/api/session/credentials", body: map[string]string{"token": "session-token-456"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := sessionCookie(t, w.Result())
	assert.True(t, cookie.HttpOnly)

	ts.do(t, call{
		method:  http.MethodPost,
		path:    "/api/invite",
		body:    map[string]any{"emails": []string{"a@x.com"}},
		cookies: []*http.Cookie{cookie},
	})
	assert.Equal(t, "Bearer session-token-456", upstream.LastAuth())

	// other callers still use the environment token
	ts.do(t, call{method: http.MethodPost, path: "/api/invite", body: map[string]any{"emails": []string{"a@x.com"}}})
	assert.Equal(t, "Bearer env-token-123", upstream.LastAuth())
}

func TestSessionCredentials_MergesExistingCookie(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	w := ts.do(t, call{method: http.MethodPost, path: "/api/session/credentials", body: map[string]string{"token": "session-token-456"}})
	require.Equal(t, http.StatusOK, w.Code)
	first := sessionCookie(t, w.Result())

	w = ts.do(t, call{
		method:  http.MethodPost,
		path:    "/api/session/credentials",
		body:    map[string]string{"account_id": testAccountID},
		cookies: []*http.Cookie{first},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"token_configured":true,"account_id":"`+testAccountID+`"}`, w.Body.String())

	got, err := ts.cookies.Decode(sessionCookie(t, w.Result()).Value)
	require.NoError(t, err)
	assert.Equal(t, "session-token-456", got.Token)
	assert.Equal(t, testAccountID, got.AccountID)
}

func TestSessionCredentials_RejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	w := ts.do(t, call{method: http.MethodPost, path: "/api/session/credentials", body: map[string]string{"token": "bad token!"}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestSessionCredentials_Clear(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	w := ts.do(t, call{method: http.MethodDelete, path: "/api/session/credentials"})

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w.Result())
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
