package dto

import (
	"github.com/google/uuid"

	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/search"
)

type CreateCourseRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description" binding:"required,max=5000"`
	Author      string                  `json:"author" binding:"omitempty,max=150"`
	Thumbnail   string                  `json:"thumbnail" binding:"omitempty,url"`
	Price       float64                 `json:"price" binding:"min=0"`
	CourseName  string                  `json:"courseName" binding:"omitempty,max=200"`
	Category    string                  `json:"category" binding:"omitempty,max=100"`
	Duration    float64                 `json:"duration" binding:"omitempty,min=0"`
	Level       string                  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Documents   []entity.CourseDocument `json:"documents" binding:"omitempty,dive"`
	Syllabus    []entity.SyllabusModule `json:"syllabus" binding:"omitempty,dive"`
	// AttachmentIDs links previously uploaded files to the course.
	AttachmentIDs []uuid.UUID `json:"attachmentIds" binding:"omitempty,max=20"`
}

// UpdateCourseRequest cannot move a course to another teacher or change its
// moderation state.
type UpdateCourseRequest struct {
	Title       *string                 `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string                 `json:"description" binding:"omitempty,min=1,max=5000"`
	Author      *string                 `json:"author" binding:"omitempty,max=150"`
	Thumbnail   *string                 `json:"thumbnail" binding:"omitempty,url"`
	Price       *float64                `json:"price" binding:"omitempty,min=0"`
	CourseName  *string                 `json:"courseName" binding:"omitempty,max=200"`
	Category    *string                 `json:"category" binding:"omitempty,max=100"`
	Duration    *float64                `json:"duration" binding:"omitempty,min=0"`
	Level       *string                 `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Documents   []entity.CourseDocument `json:"documents" binding:"omitempty,dive"`
	Syllabus    []entity.SyllabusModule `json:"syllabus" binding:"omitempty,dive"`
	// AttachmentIDs links previously uploaded files to the course.
	AttachmentIDs []uuid.UUID `json:"attachmentIds" binding:"omitempty,max=20"`
}

type CourseFilter struct {
	commonDto.PageQuery
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected suspended"`
	TeacherID string `form:"teacherId" binding:"omitempty,uuid"`
	Category  string `form:"category" binding:"omitempty,max=100"`
	Level     string `form:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type SearchCourseRequest struct {
	commonDto.PageQuery
	Query    string `form:"q" binding:"omitempty,max=200"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Level    string `form:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type SearchResponse = commonDto.Paginated[search.CourseHit]
