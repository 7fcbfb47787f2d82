package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type TeacherFilter struct {
	Status         entity.Status
	Specialization string
	Search         string
	Limit          int
	Offset         int
}

type TeacherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Teacher, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Teacher, error)
	FindAll(ctx context.Context, filter TeacherFilter) ([]entity.Teacher, int64, error)
	Update(ctx context.Context, teacher *entity.Teacher) error
	UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error
	DeleteWithAccount(ctx context.Context, teacher *entity.Teacher) error
}

type teacherRepository struct {
	db *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Courses", "status = ?", entity.StatusApproved).
		First(&teacher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) FindAll(ctx context.Context, filter TeacherFilter) ([]entity.Teacher, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Teacher{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Specialization != "" {
		// jsonb array containment
		needle, _ := json.Marshal([]string{filter.Specialization})
		query = query.Where("specialization @> ?", string(needle))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []entity.Teacher
	err := query.Preload("Account").
		Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&teachers).Error
	return teachers, total, err
}

func (r *teacherRepository) Update(ctx context.Context, teacher *entity.Teacher) error {
	return r.db.WithContext(ctx).
		Model(teacher).
		Select("first_name", "last_name", "phone_number", "bio", "specialization", "qualifications", "experience").
		Updates(teacher).Error
}

func (r *teacherRepository) UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error {
	return r.db.WithContext(ctx).
		Model(&entity.Teacher{}).
		Where("id = ?", id).
		Updates(m.Columns()).Error
}

func (r *teacherRepository) DeleteWithAccount(ctx context.Context, teacher *entity.Teacher) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Teacher{}, "id = ?", teacher.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Account{}, "id = ?", teacher.AccountID).Error
	})
}
