package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type CourseFilter struct {
	Status    entity.Status
	TeacherID *uuid.UUID
	// OrTeacherID widens a status filter with every course of that teacher.
	OrTeacherID *uuid.UUID
	Category    string
	Level       string
	Limit       int
	Offset      int
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindAll(ctx context.Context, filter CourseFilter) ([]entity.Course, int64, error)
	Update(ctx context.Context, course *entity.Course) error
	UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Attachments").
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAll(ctx context.Context, filter CourseFilter) ([]entity.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Course{})

	switch {
	case filter.Status != "" && filter.OrTeacherID != nil:
		query = query.Where("status = ? OR teacher_id = ?", filter.Status, *filter.OrTeacherID)
	case filter.Status != "":
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []entity.Course
	err := query.Preload("Teacher").
		Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&courses).Error
	return courses, total, err
}

// Update never writes teacher_id or the moderation columns.
func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Select("title", "description", "author", "thumbnail", "price", "course_name",
			"category", "duration", "level", "documents", "syllabus").
		Updates(course).Error
}

func (r *courseRepository) UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error {
	return r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Where("id = ?", id).
		Updates(m.Columns()).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Course{}, "id = ?", id).Error
}
