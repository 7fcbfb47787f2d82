package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent     Role = "student"
	RoleTeacher     Role = "teacher"
	RoleAdmin       Role = "admin"
	RoleReview      Role = "review"
	RoleTransaction Role = "transaction"
)

// Roles lists every known role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleReview, RoleTransaction}

// RoleNames returns Roles as plain strings.
func RoleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleReview, RoleTransaction:
		return true
	default:
		return false
	}
}

// Moderated reports whether the role needs an approved profile before login.
func (r Role) Moderated() bool {
	return r == RoleStudent || r == RoleTeacher
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an allow-list of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;index;not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NewAccount builds an active account. passwordHash must already be hashed.
func NewAccount(email string, role Role, passwordHash string) *Account {
	return &Account{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
}

func (a *Account) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	a.Email = NormalizeEmail(a.Email)
	return
}

// PublicAccount is the outward representation of an Account.
type PublicAccount struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	IsActive *bool     `json:"isActive,omitempty"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Email: a.Email, Role: a.Role}
}

func (a *Account) PublicWithStatus() PublicAccount {
	p := a.Public()
	active := a.IsActive
	p.IsActive = &active
	return p
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
