package dto

import (
	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
)

type UserFilter struct {
	commonDto.PageQuery
	Role     string `form:"role" binding:"omitempty,oneof=student teacher admin review transaction"`
	IsActive *bool  `form:"isActive"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// PendingQueue lists the oldest part of each moderation queue with the
// total size of every queue.
type PendingQueue struct {
	Students     []entity.Student     `json:"students"`
	Teachers     []entity.Teacher     `json:"teachers"`
	Courses      []entity.Course      `json:"courses"`
	Transactions []entity.Transaction `json:"transactions"`
	Counts       PendingCounts        `json:"counts"`
}

type PendingCounts struct {
	Students     int64 `json:"students"`
	Teachers     int64 `json:"teachers"`
	Courses      int64 `json:"courses"`
	Transactions int64 `json:"transactions"`
}
