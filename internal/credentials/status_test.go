package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/smallbiznis/inviteportal/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeEnvOnly(t *testing.T) {
	status, err := Describe(context.Background(), NewMemoryStore(), NewEnvSource("env-token-abcdef", ""))
	require.NoError(t, err)

	assert.True(t, status.TokenConfigured)
	assert.True(t, status.EnvTokenConfigured)
	require.NotNil(t, status.TokenPreview)
	assert.Equal(t, "env-token-...", *status.TokenPreview)
	assert.Equal(t, invite.DefaultAccountID, status.AccountID)
	assert.Equal(t, invite.DefaultAccountID, status.EnvAccountID)
	assert.False(t, status.OverrideActive)
	assert.Nil(t, status.UpdatedAt)
}

func TestDescribeWithOverride(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Apply(ctx, Patch{Token: "override-token", AccountID: "acct-override"})
	require.NoError(t, err)

	status, err := Describe(ctx, store, NewEnvSource("", "acct-env"))
	require.NoError(t, err)

	assert.True(t, status.TokenConfigured)
	assert.False(t, status.EnvTokenConfigured)
	assert.Equal(t, "acct-override", status.AccountID)
	assert.Equal(t, "acct-env", status.EnvAccountID)
	assert.True(t, status.OverrideActive)
	assert.NotNil(t, status.UpdatedAt)
}

func TestDescribeNoTokenSerializesNullPreview(t *testing.T) {
	status, err := Describe(context.Background(), nil, NewEnvSource("", ""))
	require.NoError(t, err)

	raw, err := json.Marshal(status)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"token_preview":null`)
	assert.Contains(t, string(raw), `"token_configured":false`)
}

func TestDescribeStoreError(t *testing.T) {
	_, err := Describe(context.Background(), failingLoader{err: errors.New("down")}, NewEnvSource("", ""))
	require.Error(t, err)
}

func TestPreviewToken(t *testing.T) {
	assert.Nil(t, PreviewToken(""))
	assert.Equal(t, "short...", *PreviewToken("short"))
	assert.Equal(t, "0123456789...", *PreviewToken("0123456789abcdef"))
}
