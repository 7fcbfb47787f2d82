package dto

import (
	commonDto "anoa.com/learnhub/pkg/dto"
)

type CreateTransactionRequest struct {
	StudentID       string  `json:"studentId" binding:"omitempty,uuid"`
	TeacherID       string  `json:"teacherId" binding:"omitempty,uuid"`
	CourseID        string  `json:"courseId" binding:"omitempty,uuid"`
	Amount          float64 `json:"amount" binding:"min=0"`
	Currency        string  `json:"currency" binding:"omitempty,len=3,alpha"`
	TransactionType string  `json:"transactionType" binding:"required,oneof=enrollment refund payment withdrawal"`
	PaymentMethod   string  `json:"paymentMethod" binding:"required,oneof=credit_card debit_card paypal bank_transfer wallet"`
}

// UpdateTransactionRequest only moves the status; amounts, owner and code
// are fixed once created.
type UpdateTransactionRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected completed failed refunded"`
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

type TransactionFilter struct {
	commonDto.PageQuery
	Status          string `form:"status" binding:"omitempty,oneof=pending approved rejected completed failed refunded"`
	TransactionType string `form:"transactionType" binding:"omitempty,oneof=enrollment refund payment withdrawal"`
	UserID          string `form:"userId" binding:"omitempty,uuid"`
}
