package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
)

type TransactionFilter struct {
	Status          entity.Status
	AccountID       *uuid.UUID
	TransactionType string
	Limit           int
	Offset          int
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]entity.Transaction, int64, error)
	// UpdateStatus writes the moderation block and completedAt.
	UpdateStatus(ctx context.Context, tx *entity.Transaction) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Account").
		First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindAll(ctx context.Context, filter TransactionFilter) ([]entity.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Transaction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.TransactionType != "" {
		query = query.Where("transaction_type = ?", filter.TransactionType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []entity.Transaction
	err := query.Preload("Account").
		Order("created_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, tx *entity.Transaction) error {
	columns := tx.Moderation.Columns()
	columns["completed_at"] = tx.CompletedAt
	return r.db.WithContext(ctx).
		Model(&entity.Transaction{}).
		Where("id = ?", tx.ID).
		Updates(columns).Error
}
