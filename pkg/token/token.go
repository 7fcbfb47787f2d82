// Package token issues and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure. Malformed,
// forged and expired tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried by a session token.
type Claims struct {
	Subject string
	Role    string
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	roles  map[string]struct{}
}

type Option func(*Codec)

func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// WithRoles restricts verification to tokens carrying one of roles.
func WithRoles(roles ...string) Option {
	return func(c *Codec) {
		c.roles = make(map[string]struct{}, len(roles))
		for _, r := range roles {
			c.roles[r] = struct{}{}
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token: lifetime must be positive, got %s", ttl)
	}

	c := &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for claims and returns it with its expiry time.
func (c *Codec) Issue(claims Claims) (string, time.Time, error) {
	if claims.Subject == "" || claims.Role == "" {
		return "", time.Time{}, errors.New("token: subject and role are required")
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenString and returns its claims.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	sc, ok := parsed.Claims.(*sessionClaims)
	if !ok || sc.Subject == "" || sc.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	if c.roles != nil {
		if _, known := c.roles[sc.Role]; !known {
			return Claims{}, ErrInvalidToken
		}
	}

	return Claims{Subject: sc.Subject, Role: sc.Role}, nil
}
