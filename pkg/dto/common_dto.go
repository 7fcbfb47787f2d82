package dto

import "math"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageQuery is bound from ?page=&limit=.
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize fills defaults and returns limit and offset.
func (q *PageQuery) Normalize() (limit, offset int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q.Limit, (q.Page - 1) * q.Limit
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
}

type Paginated[T any] struct {
	Items []T            `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}

func NewPaginated[T any](items []T, total int64, q PageQuery) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	limit, _ := q.Normalize()
	return Paginated[T]{
		Items: items,
		Meta: PaginationMeta{
			CurrentPage: q.Page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:  total,
			Limit:       limit,
		},
	}
}

// ReasonRequest is the optional body of reject and suspend actions.
type ReasonRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}
