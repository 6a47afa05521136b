package credentials

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyPatch       = errors.New("token or account_id is required")
	ErrInvalidToken     = errors.New("token must be at least 10 characters of letters, digits, '-', '_' or '.'")
	ErrInvalidAccountID = errors.New("account_id must be a UUID")
)

const minTokenLength = 10

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.]+$`)

// Patch is a validated override update. Blank fields leave the stored value
// untouched.
type Patch struct {
	Token     string
	AccountID string
}

// ParsePatch validates raw admin input. A leading "Bearer " on the token is
// dropped and the account id is canonicalized.
func ParsePatch(token, accountID string) (Patch, error) {
	token = strings.TrimSpace(token)
	if len(token) >= len("bearer ") && strings.EqualFold(token[:len("bearer ")], "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	accountID = strings.TrimSpace(accountID)

	if token == "" && accountID == "" {
		return Patch{}, ErrEmptyPatch
	}

	var p Patch
	if token != "" {
		if len(token) < minTokenLength || !tokenPattern.MatchString(token) {
			return Patch{}, ErrInvalidToken
		}
		p.Token = token
	}
	if accountID != "" {
		parsed, err := uuid.Parse(accountID)
		if err != nil {
			return Patch{}, ErrInvalidAccountID
		}
		p.AccountID = parsed.String()
	}
	return p, nil
}
