package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type AccountFilter struct {
	Role     entity.Role
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

type AccountRepository interface {
	// Create inserts account and, when profile is non-nil, the profile bound
	// to it, atomically.
	Create(ctx context.Context, account *entity.Account, profile entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, filter AccountFilter) ([]entity.Account, int64, error)
	UpdateActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	FindOrphans(ctx context.Context, createdBefore time.Time) ([]entity.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account, profile entity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		if profile != nil {
			profile.SetAccountID(account.ID)
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).
		Where("email = ?", entity.NormalizeEmail(email)).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("email = ?", entity.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) FindAll(ctx context.Context, filter AccountFilter) ([]entity.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Account{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []entity.Account
	err := query.Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&accounts).Error
	return accounts, total, err
}

// UpdateActive writes the column explicitly so false is not skipped as a
// zero value.
func (r *accountRepository) UpdateActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindOrphans lists student and teacher accounts that have no profile row.
func (r *accountRepository) FindOrphans(ctx context.Context, createdBefore time.Time) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Joins("LEFT JOIN students ON students.account_id = accounts.id").
		Joins("LEFT JOIN teachers ON teachers.account_id = accounts.id").
		Where("accounts.created_at < ?", createdBefore).
		Where(
			r.db.Where("accounts.role = ? AND students.id IS NULL", entity.RoleStudent).
				Or("accounts.role = ? AND teachers.id IS NULL", entity.RoleTeacher),
		).
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Account{}, "id = ?", id).Error
}
