package dto

import commonDto "anoa.com/learnhub/pkg/dto"

type EventFilter struct {
	commonDto.PageQuery
	SubjectType string `form:"subjectType" binding:"omitempty,oneof=student teacher course transaction review account"`
	SubjectID   string `form:"subjectId" binding:"omitempty,uuid"`
}
