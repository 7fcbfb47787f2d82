package dto

import (
	commonDto "anoa.com/learnhub/pkg/dto"
)

type CreateReviewRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"omitempty,max=1000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
}

type ReviewFilter struct {
	commonDto.PageQuery
	CourseID string `form:"courseId" binding:"omitempty,uuid"`
}
