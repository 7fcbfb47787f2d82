package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubjectStudent     = "student"
	SubjectTeacher     = "teacher"
	SubjectCourse      = "course"
	SubjectTransaction = "transaction"
	SubjectReview      = "review"
	SubjectAccount     = "account"
)

// Profile is the moderated, role specific extension of an Account.
type Profile interface {
	Moderatable
	SetAccountID(id uuid.UUID)
	OwnerID() uuid.UUID
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type Student struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID   uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Account     *Account                    `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FirstName   string                      `gorm:"size:100" json:"firstName,omitempty"`
	LastName    string                      `gorm:"size:100" json:"lastName,omitempty"`
	PhoneNumber string                      `gorm:"size:30" json:"phoneNumber,omitempty"`
	DateOfBirth *time.Time                  `json:"dateOfBirth,omitempty"`
	Address     datatypes.JSONType[Address] `gorm:"type:jsonb" json:"address"`
	Moderation  `gorm:"embedded"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return
}

func (s *Student) GetModeration() *Moderation { return &s.Moderation }

func (s *Student) ModerationSubject() (string, uuid.UUID) { return SubjectStudent, s.ID }

func (s *Student) SetAccountID(id uuid.UUID) { s.AccountID = id }

func (s *Student) OwnerID() uuid.UUID { return s.AccountID }

type Qualification struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
}

type Teacher struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID      uuid.UUID                          `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Account        *Account                           `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FirstName      string                             `gorm:"size:100" json:"firstName,omitempty"`
	LastName       string                             `gorm:"size:100" json:"lastName,omitempty"`
	PhoneNumber    string                             `gorm:"size:30" json:"phoneNumber,omitempty"`
	Bio            string                             `gorm:"type:text" json:"bio,omitempty"`
	Specialization datatypes.JSONSlice[string]        `gorm:"type:jsonb" json:"specialization"`
	Qualifications datatypes.JSONSlice[Qualification] `gorm:"type:jsonb" json:"qualifications"`
	Experience     int                                `gorm:"not null;default:0" json:"experience"`
	Courses        []Course                           `gorm:"foreignKey:TeacherID" json:"coursesCreated,omitempty"`
	Moderation     `gorm:"embedded"`
	CreatedAt      time.Time                          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time                          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return
}

func (t *Teacher) GetModeration() *Moderation { return &t.Moderation }

func (t *Teacher) ModerationSubject() (string, uuid.UUID) { return SubjectTeacher, t.ID }

func (t *Teacher) SetAccountID(id uuid.UUID) { t.AccountID = id }

func (t *Teacher) OwnerID() uuid.UUID { return t.AccountID }
