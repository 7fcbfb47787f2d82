package dto

import (
	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
)

type StudentFilter struct {
	commonDto.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected suspended"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// UpdateStudentRequest only carries identity fields; status, reason and
// verifiedAt cannot be changed through it.
type UpdateStudentRequest struct {
	FirstName   *string         `json:"firstName" binding:"omitempty,max=100"`
	LastName    *string         `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber *string         `json:"phoneNumber" binding:"omitempty,max=30"`
	DateOfBirth *string         `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Address     *entity.Address `json:"address"`
}
