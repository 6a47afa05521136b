package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/inviteportal/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context) (Override, error) { return Override{}, f.err }

func TestEnvSourceDefaultsAccount(t *testing.T) {
	creds, err := NewEnvSource("  tok-env  ", " ").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-env", creds.Token)
	assert.Equal(t, invite.DefaultAccountID, creds.AccountID)
}

func TestLayeredPrecedence(t *testing.T) {
	env := NewEnvSource("env-token", "env-account")

	cases := []struct {
		name   string
		layers []Loader
		want   invite.Credentials
	}{
		{
			name: "no override",
			want: invite.Credentials{Token: "env-token", AccountID: "env-account"},
		},
		{
			name:   "token override only",
			layers: []Loader{Static{Token: "override-token"}},
			want:   invite.Credentials{Token: "override-token", AccountID: "env-account"},
		},
		{
			name:   "account override only",
			layers: []Loader{Static{AccountID: "override-account"}},
			want:   invite.Credentials{Token: "env-token", AccountID: "override-account"},
		},
		{
			name:   "blank override ignored",
			layers: []Loader{Static{Token: "   "}},
			want:   invite.Credentials{Token: "env-token", AccountID: "env-account"},
		},
		{
			name: "first layer wins per field",
			layers: []Loader{
				Static{Token: "cookie-token"},
				Static{Token: "admin-token", AccountID: "admin-account"},
			},
			want: invite.Credentials{Token: "cookie-token", AccountID: "admin-account"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewLayered(env, tc.layers...).Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLayeredWithPlacesLayerOnTop(t *testing.T) {
	runtime := NewLayered(NewEnvSource("env-token", ""), Static{Token: "admin-token"})
	perRequest := runtime.With(Static{Token: "cookie-token"})

	got, err := perRequest.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", got.Token)
	assert.Equal(t, invite.DefaultAccountID, got.AccountID)

	got, err = runtime.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin-token", got.Token)
}

func TestLayeredNoTokenAnywhere(t *testing.T) {
	source := NewLayered(NewEnvSource("", ""), NewMemoryStore())
	assert.False(t, invite.IsConfigured(context.Background(), source))
}

func TestLayeredPropagatesLoaderError(t *testing.T) {
	boom := errors.New("redis down")
	_, err := NewLayered(NewEnvSource("tok", ""), failingLoader{err: boom}).Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestOverrideMerge(t *testing.T) {
	o := Override{Token: "old-token", AccountID: "old-account"}

	assert.Equal(t, Override{Token: "new-token", AccountID: "old-account"}, o.Merge(Patch{Token: "new-token"}))
	assert.Equal(t, Override{Token: "old-token", AccountID: "new-account"}, o.Merge(Patch{AccountID: "new-account"}))
	assert.True(t, Override{}.IsZero())
}
