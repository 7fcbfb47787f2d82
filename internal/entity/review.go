package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Account    *Account  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_student_course,priority:2" json:"courseId"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_student_course,priority:1" json:"studentId"`
	Student    *Student  `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"size:1000" json:"comment,omitempty"`
	Moderation `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate auto-approves reviews; they never enter the moderation queue.
func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	if r.Status == "" {
		r.Status = StatusApproved
	}
	if r.VerifiedAt == nil {
		now := time.Now()
		r.VerifiedAt = &now
	}
	return
}

func (r *Review) GetModeration() *Moderation { return &r.Moderation }

func (r *Review) ModerationSubject() (string, uuid.UUID) { return SubjectReview, r.ID }
