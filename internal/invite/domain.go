package invite

import (
	"context"
	"regexp"
	"strings"
)

const (
	DefaultRole      = "standard-user"
	DefaultAccountID = "11045a20-bdb4-444f-9bd6-768640226554"
	DefaultAPIBase   = "https://chatgpt.com/backend-api"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Request is a single invitation batch as handed to the upstream API.
type Request struct {
	Emails []string `json:"email_addresses"`
	Role   string   `json:"role"`
	Resend bool     `json:"resend_emails"`
}

// Credentials is the resolved token/account pair used for one upstream call.
type Credentials struct {
	Token     string
	AccountID string
}

// CredentialSource resolves the effective credentials for a call.
type CredentialSource interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// SourceFunc adapts a plain function to CredentialSource.
type SourceFunc func(ctx context.Context) (Credentials, error)

func (f SourceFunc) Resolve(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LooksLikeEmail reports whether value has the local@domain.tld shape.
// The resolver itself never rejects on this check.
func LooksLikeEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// NormalizeEmails trims each entry and drops blanks, preserving order.
func NormalizeEmails(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, email := range raw {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		out = append(out, email)
	}
	return out
}

// Dedupe removes repeated addresses, keeping the first occurrence.
func Dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

var emailSeparators = regexp.MustCompile(`[,;\r\n]+`)

// SplitEmails splits free-form input on commas, semicolons and newlines.
func SplitEmails(raw string) []string {
	return NormalizeEmails(emailSeparators.Split(raw, -1))
}

// ResolveRole returns role or DefaultRole when it is blank.
func ResolveRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return DefaultRole
	}
	return role
}
