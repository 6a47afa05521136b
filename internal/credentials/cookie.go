package credentials

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/inviteportal/internal/clock"
)

const (
	DefaultCookieName = "_invite_creds"
	DefaultCookieTTL  = 30 * 24 * time.Hour
)

var ErrInvalidCookie = errors.New("invalid credentials cookie")

type overrideClaims struct {
	Token     string `json:"tok,omitempty"`
	AccountID string `json:"acct,omitempty"`
	jwt.RegisteredClaims
}

// CookieCodec stores a per-user override in a signed HS256 cookie.
type CookieCodec struct {
	name   string
	secret []byte
	secure bool
	ttl    time.Duration
	clock  clock.Clock
}

// NewCookieCodec builds a codec. An empty secret is replaced by a random one,
// so cookies do not survive a restart.
func NewCookieCodec(secret string, secure bool) (*CookieCodec, error) {
	key := []byte(strings.TrimSpace(secret))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate cookie secret: %w", err)
		}
	}
	return &CookieCodec{
		name:   DefaultCookieName,
		secret: key,
		secure: secure,
		ttl:    DefaultCookieTTL,
		clock:  clock.System,
	}, nil
}

func (c *CookieCodec) CookieName() string {
	return c.name
}

func (c *CookieCodec) Encode(o Override) (string, error) {
	now := c.clock.Now()
	claims := overrideClaims{
		Token:     o.Token,
		AccountID: o.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *CookieCodec) Decode(raw string) (Override, error) {
	claims := &overrideClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.clock.Now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Override{}, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	o := Override{
		Token:     strings.TrimSpace(claims.Token),
		AccountID: strings.TrimSpace(claims.AccountID),
	}
	if claims.IssuedAt != nil {
		o.UpdatedAt = claims.IssuedAt.Time
	}
	return o, nil
}

// Read returns the override carried by the request cookie. Missing, expired
// or tampered cookies yield false.
func (c *CookieCodec) Read(ctx *gin.Context) (Override, bool) {
	raw, err := ctx.Cookie(c.name)
	if err != nil || strings.TrimSpace(raw) == "" {
		return Override{}, false
	}
	o, err := c.Decode(raw)
	if err != nil || o.IsZero() {
		return Override{}, false
	}
	return o, true
}

func (c *CookieCodec) Write(ctx *gin.Context, o Override) error {
	value, err := c.Encode(o)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.name, value, int(c.ttl.Seconds()), "/", "", c.secure, true)
	return nil
}

func (c *CookieCodec) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.name, "", -1, "/", "", c.secure, true)
}
