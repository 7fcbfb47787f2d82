package dto

import (
	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
)

// TeacherFilter is honoured in full for admins. Everyone else only ever
// sees approved teachers.
type TeacherFilter struct {
	commonDto.PageQuery
	Status         string `form:"status" binding:"omitempty,oneof=pending approved rejected suspended"`
	Specialization string `form:"specialization" binding:"omitempty,max=100"`
	Search         string `form:"search" binding:"omitempty,max=100"`
}

type UpdateTeacherRequest struct {
	FirstName      *string                `json:"firstName" binding:"omitempty,max=100"`
	LastName       *string                `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber    *string                `json:"phoneNumber" binding:"omitempty,max=30"`
	Bio            *string                `json:"bio" binding:"omitempty,max=2000"`
	Specialization []string               `json:"specialization" binding:"omitempty,dive,max=100"`
	Qualifications []entity.Qualification `json:"qualifications"`
	Experience     *int                   `json:"experience" binding:"omitempty,min=0"`
}
