package credentials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/inviteportal/internal/invite"
)

// EnvSource is the process-wide default read once from the environment.
type EnvSource struct {
	creds invite.Credentials
}

func NewEnvSource(token, accountID string) EnvSource {
	token = strings.TrimSpace(token)
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		accountID = invite.DefaultAccountID
	}
	return EnvSource{creds: invite.Credentials{Token: token, AccountID: accountID}}
}

func (s EnvSource) Resolve(context.Context) (invite.Credentials, error) {
	return s.creds, nil
}

func (s EnvSource) Token() string     { return s.creds.Token }
func (s EnvSource) AccountID() string { return s.creds.AccountID }

// Override holds values that take precedence over the environment. Blank
// fields defer to the next layer.
type Override struct {
	Token     string    `json:"token,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (o Override) IsZero() bool {
	return o.Token == "" && o.AccountID == ""
}

// Merge returns o with the non-blank fields of p applied.
func (o Override) Merge(p Patch) Override {
	if p.Token != "" {
		o.Token = p.Token
	}
	if p.AccountID != "" {
		o.AccountID = p.AccountID
	}
	return o
}

// Loader yields the current override for one layer.
type Loader interface {
	Load(ctx context.Context) (Override, error)
}

// Static is an override fixed for the lifetime of a request.
type Static Override

func (s Static) Load(context.Context) (Override, error) {
	return Override(s), nil
}

var _ invite.CredentialSource = (*Layered)(nil)

// Layered resolves each field from the first layer that sets it, falling back
// to the base source.
type Layered struct {
	base   invite.CredentialSource
	layers []Loader
}

func NewLayered(base invite.CredentialSource, layers ...Loader) *Layered {
	return &Layered{base: base, layers: layers}
}

// With returns a copy with layer placed above the existing ones.
func (l *Layered) With(layer Loader) *Layered {
	layers := make([]Loader, 0, len(l.layers)+1)
	layers = append(layers, layer)
	layers = append(layers, l.layers...)
	return &Layered{base: l.base, layers: layers}
}

func (l *Layered) Resolve(ctx context.Context) (invite.Credentials, error) {
	var out invite.Credentials
	for _, layer := range l.layers {
		if layer == nil {
			continue
		}
		o, err := layer.Load(ctx)
		if err != nil {
			return invite.Credentials{}, fmt.Errorf("load override: %w", err)
		}
		if out.Token == "" {
			out.Token = strings.TrimSpace(o.Token)
		}
		if out.AccountID == "" {
			out.AccountID = strings.TrimSpace(o.AccountID)
		}
	}

	if l.base != nil && (out.Token == "" || out.AccountID == "") {
		base, err := l.base.Resolve(ctx)
		if err != nil {
			return invite.Credentials{}, err
		}
		if out.Token == "" {
			out.Token = base.Token
		}
		if out.AccountID == "" {
			out.AccountID = base.AccountID
		}
	}

	if out.AccountID == "" {
		out.AccountID = invite.DefaultAccountID
	}
	return out, nil
}
