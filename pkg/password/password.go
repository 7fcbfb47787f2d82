// Package password hashes and verifies account secrets with bcrypt.
package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest work factor accepted for stored secrets.
const MinCost = 10

// MaxBytes is the longest secret bcrypt accepts, counted in bytes.
const MaxBytes = 72

var (
	ErrEmptySecret   = errors.New("secret must not be empty")
	ErrAlreadyHashed = errors.New("secret is already a bcrypt hash")
	ErrTooLong       = errors.New("secret exceeds 72 bytes")
)

type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a Hasher with the given cost, raised to MinCost
// when lower and capped at bcrypt.MaxCost.
func NewBcryptHasher(cost int) Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxBytes {
		return "", ErrTooLong
	}
	if IsHash(secret) {
		return "", ErrAlreadyHashed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Verify(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// IsHash reports whether s already looks like a bcrypt hash.
func IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	if !strings.HasPrefix(s, "$2a$") && !strings.HasPrefix(s, "$2b$") && !strings.HasPrefix(s, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
