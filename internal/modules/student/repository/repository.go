package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type StudentFilter struct {
	Status entity.Status
	Search string
	Limit  int
	Offset int
}

type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Student, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Student, error)
	FindAll(ctx context.Context, filter StudentFilter) ([]entity.Student, int64, error)
	Update(ctx context.Context, student *entity.Student) error
	UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error
	// DeleteWithAccount removes the profile and its owning account together.
	DeleteWithAccount(ctx context.Context, student *entity.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	var student entity.Student
	if err := r.db.WithContext(ctx).
		Preload("Account").
		First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Student, error) {
	var student entity.Student
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindAll(ctx context.Context, filter StudentFilter) ([]entity.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Student{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []entity.Student
	err := query.Preload("Account").
		Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&students).Error
	return students, total, err
}

// Update writes identity fields only; moderation columns are owned by
// UpdateModeration.
func (r *studentRepository) Update(ctx context.Context, student *entity.Student) error {
	return r.db.WithContext(ctx).
		Model(student).
		Select("first_name", "last_name", "phone_number", "date_of_birth", "address").
		Updates(student).Error
}

func (r *studentRepository) UpdateModeration(ctx context.Context, id uuid.UUID, m entity.Moderation) error {
	return r.db.WithContext(ctx).
		Model(&entity.Student{}).
		Where("id = ?", id).
		Updates(m.Columns()).Error
}

func (r *studentRepository) DeleteWithAccount(ctx context.Context, student *entity.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Student{}, "id = ?", student.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Account{}, "id = ?", student.AccountID).Error
	})
}
