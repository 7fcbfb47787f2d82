package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"

	// transaction only
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Moderation is the status block shared by every moderated record.
type Moderation struct {
	Status     Status     `gorm:"size:20;index;not null;default:pending" json:"status"`
	Reason     *string    `gorm:"type:text" json:"reason,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

func (m *Moderation) IsApproved() bool {
	return m != nil && m.Status == StatusApproved
}

// Moderatable is implemented by records carrying a Moderation block.
type Moderatable interface {
	GetModeration() *Moderation
	ModerationSubject() (kind string, id uuid.UUID)
}

// ModerationEvent is the audit log of status changes and queue entries.
type ModerationEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID     *uuid.UUID `gorm:"type:uuid;index" json:"actorId,omitempty"`
	SubjectType string     `gorm:"size:30;index;not null" json:"subjectType"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"subjectId"`
	Action      string     `gorm:"size:40;not null" json:"action"`
	FromStatus  Status     `gorm:"size:20" json:"fromStatus,omitempty"`
	ToStatus    Status     `gorm:"size:20" json:"toStatus,omitempty"`
	Reason      *string    `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (e *ModerationEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

// Columns returns the moderation block as an update map. Nil pointers clear
// their column.
func (m Moderation) Columns() map[string]any {
	return map[string]any{
		"status":      m.Status,
		"reason":      m.Reason,
		"verified_at": m.VerifiedAt,
	}
}
