package entity

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionEnrollment = "enrollment"
	TransactionRefund     = "refund"
	TransactionPayment    = "payment"
	TransactionWithdrawal = "withdrawal"

	PaymentCreditCard   = "credit_card"
	PaymentDebitCard    = "debit_card"
	PaymentPaypal       = "paypal"
	PaymentBankTransfer = "bank_transfer"
	PaymentWallet       = "wallet"

	DefaultCurrency = "USD"
)

type Transaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	Account         *Account   `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	StudentID       *uuid.UUID `gorm:"type:uuid;index" json:"studentId,omitempty"`
	TeacherID       *uuid.UUID `gorm:"type:uuid;index" json:"teacherId,omitempty"`
	CourseID        *uuid.UUID `gorm:"type:uuid;index" json:"courseId,omitempty"`
	Amount          float64    `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string     `gorm:"size:3;not null;default:USD" json:"currency"`
	TransactionType string     `gorm:"size:20;not null" json:"transactionType"`
	PaymentMethod   string     `gorm:"size:20;not null" json:"paymentMethod"`
	Code            string     `gorm:"column:transaction_code;size:40;uniqueIndex;not null" json:"transactionId"`
	Moderation      `gorm:"embedded"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
		if err != nil {
			return err
		}
	}
	if t.Code == "" {
		t.Code, err = NewTransactionCode(time.Now())
		if err != nil {
			return err
		}
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	return nil
}

func (t *Transaction) GetModeration() *Moderation { return &t.Moderation }

func (t *Transaction) ModerationSubject() (string, uuid.UUID) { return SubjectTransaction, t.ID }

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewTransactionCode returns a business identifier such as TXN-1718000000000-K3J9QZ1AB.
func NewTransactionCode(now time.Time) (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate transaction code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), buf), nil
}
