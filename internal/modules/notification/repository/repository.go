package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type EventFilter struct {
	SubjectType string
	SubjectID   *uuid.UUID
	Limit       int
	Offset      int
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.ModerationEvent) error
	List(ctx context.Context, filter EventFilter) ([]entity.ModerationEvent, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.ModerationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]entity.ModerationEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ModerationEvent{})
	if filter.SubjectType != "" {
		query = query.Where("subject_type = ?", filter.SubjectType)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []entity.ModerationEvent
	err := query.Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&events).Error
	return events, total, err
}
