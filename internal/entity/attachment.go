package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is an uploaded course asset. It stays unlinked until a course
// claims it; unlinked attachments are swept after a grace period.
type Attachment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	CourseID  *uuid.UUID `gorm:"type:uuid;index" json:"courseId,omitempty"`
	FileURL   string     `gorm:"type:text;not null" json:"fileUrl"`
	FileType  string     `gorm:"size:50" json:"fileType"`
	FileName  string     `gorm:"size:255" json:"fileName,omitempty"`
	Bytes     int        `json:"bytes,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
