package dto

import (
	"time"

	"anoa.com/learnhub/internal/entity"
)

type RegisterStudentRequest struct {
	Email       string         `json:"email" binding:"required,email"`
	Password    string         `json:"password" binding:"required,min=6,max=72"`
	FirstName   string         `json:"firstName" binding:"omitempty,max=100"`
	LastName    string         `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber string         `json:"phoneNumber" binding:"omitempty,max=30"`
	DateOfBirth string         `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Address     entity.Address `json:"address"`
}

type RegisterTeacherRequest struct {
	Email          string                 `json:"email" binding:"required,email"`
	Password       string                 `json:"password" binding:"required,min=6,max=72"`
	FirstName      string                 `json:"firstName" binding:"omitempty,max=100"`
	LastName       string                 `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber    string                 `json:"phoneNumber" binding:"omitempty,max=30"`
	Bio            string                 `json:"bio" binding:"omitempty,max=2000"`
	Specialization []string               `json:"specialization" binding:"omitempty,dive,max=100"`
	Qualifications []entity.Qualification `json:"qualifications"`
	Experience     int                    `json:"experience" binding:"omitempty,min=0"`
}

type RegisterReviewRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// ClientIP is filled by the handler and scopes login throttling.
	ClientIP string `json:"-"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72,nefield=CurrentPassword"`
}

// RegistrationResponse is returned for moderated registrations; no token is
// issued until an admin approves the profile.
type RegistrationResponse struct {
	User    entity.PublicAccount `json:"user"`
	Profile entity.Profile       `json:"profile"`
}

type AuthResponse struct {
	User      entity.PublicAccount `json:"user"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// MeResponse carries profile as null for roles without one.
type MeResponse struct {
	User    entity.PublicAccount `json:"user"`
	Profile entity.Profile       `json:"profile"`
}
