package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type CourseDocument struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

type SyllabusModule struct {
	Module   string   `json:"module"`
	Topics   []string `json:"topics,omitempty"`
	Duration float64  `json:"duration,omitempty"`
}

type Course struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID        uuid.UUID                           `gorm:"type:uuid;index;not null" json:"teacherId"`
	Teacher          *Teacher                            `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Title            string                              `gorm:"size:200;not null" json:"title"`
	Description      string                              `gorm:"type:text;not null" json:"description"`
	Author           string                              `gorm:"size:150" json:"author,omitempty"`
	Thumbnail        string                              `gorm:"type:text" json:"thumbnail,omitempty"`
	Price            float64                             `gorm:"type:numeric(12,2);not null" json:"price"`
	CourseName       string                              `gorm:"size:200" json:"courseName,omitempty"`
	Category         string                              `gorm:"size:100;index" json:"category,omitempty"`
	Duration         float64                             `json:"duration,omitempty"`
	Level            string                              `gorm:"size:20;not null;default:beginner" json:"level"`
	Documents        datatypes.JSONSlice[CourseDocument] `gorm:"type:jsonb" json:"documents"`
	Syllabus         datatypes.JSONSlice[SyllabusModule] `gorm:"type:jsonb" json:"syllabus"`
	EnrolledStudents []Student                           `gorm:"many2many:course_enrollments;constraint:OnDelete:CASCADE" json:"enrolledStudents,omitempty"`
	Attachments      []Attachment                        `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"attachments,omitempty"`
	Moderation       `gorm:"embedded"`
	CreatedAt        time.Time                           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time                           `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Level == "" {
		c.Level = LevelBeginner
	}
	return
}

func (c *Course) GetModeration() *Moderation { return &c.Moderation }

func (c *Course) ModerationSubject() (string, uuid.UUID) { return SubjectCourse, c.ID }
