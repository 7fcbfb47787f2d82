package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	AttachToCourse(ctx context.Context, attachmentIDs []uuid.UUID, courseID uuid.UUID, accountID uuid.UUID) error
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// AttachToCourse only claims attachments uploaded by accountID that are not
// already linked to a different course.
func (r *attachmentRepository) AttachToCourse(ctx context.Context, attachmentIDs []uuid.UUID, courseID uuid.UUID, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("id IN ? AND account_id = ?", attachmentIDs, accountID).
		Where("course_id IS NULL OR course_id = ?", courseID).
		Update("course_id", courseID).Error
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("course_id IS NULL AND created_at < ?", cutoffTime).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, "id = ?", id).Error
}
