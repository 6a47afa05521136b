package invite

import "errors"

// Kind classifies a failed invitation.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindConfiguration Kind = "configuration_error"
	KindUpstream      Kind = "upstream_error"
	KindTransport     Kind = "transport_error"
)

var (
	ErrValidation    = errors.New("invite: validation failed")
	ErrConfiguration = errors.New("invite: credentials not configured")
	ErrUpstream      = errors.New("invite: upstream rejected request")
	ErrTransport     = errors.New("invite: transport failure")
)

const (
	msgEmailsRequired     = "emails field is required and must be a non-empty list"
	msgTokenNotConfigured = "token not configured"
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConfiguration:
		return ErrConfiguration
	case KindUpstream:
		return ErrUpstream
	default:
		return ErrTransport
	}
}
