package credentials

import (
	"context"
	"time"
)

const tokenPreviewLength = 10

// Status is the admin view of the effective runtime credentials. The token
// itself is never included.
type Status struct {
	AccountID          string     `json:"account_id"`
	TokenConfigured    bool       `json:"token_configured"`
	TokenPreview       *string    `json:"token_preview"`
	EnvTokenConfigured bool       `json:"env_token_configured"`
	EnvAccountID       string     `json:"env_account_id"`
	OverrideActive     bool       `json:"override_active"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func Describe(ctx context.Context, store Loader, env EnvSource) (Status, error) {
	var current Override
	if store != nil {
		var err error
		if current, err = store.Load(ctx); err != nil {
			return Status{}, err
		}
	}

	effective, err := NewLayered(env, Static(current)).Resolve(ctx)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		AccountID:          effective.AccountID,
		TokenConfigured:    effective.Token != "",
		TokenPreview:       PreviewToken(effective.Token),
		EnvTokenConfigured: env.Token() != "",
		EnvAccountID:       env.AccountID(),
		OverrideActive:     !current.IsZero(),
	}
	if !current.UpdatedAt.IsZero() {
		updated := current.UpdatedAt
		status.UpdatedAt = &updated
	}
	return status, nil
}

// PreviewToken returns the first characters of token followed by "...", or
// nil when there is no token.
func PreviewToken(token string) *string {
	if token == "" {
		return nil
	}
	preview := token
	if len(preview) > tokenPreviewLength {
		preview = preview[:tokenPreviewLength]
	}
	preview += "..."
	return &preview
}
