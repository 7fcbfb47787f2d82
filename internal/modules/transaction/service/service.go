package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/internal/modules/transaction/dto"
	"anoa.com/learnhub/internal/modules/transaction/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
)

type TransactionService interface {
	Create(ctx context.Context, actor *entity.Account, req dto.CreateTransactionRequest) (*entity.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) (*commonDto.Paginated[entity.Transaction], error)
	Get(ctx context.Context, actor *entity.Account, id uuid.UUID) (*entity.Transaction, error)
	SetStatus(ctx context.Context, actor *entity.Account, id uuid.UUID, target entity.Status, reason string) (*entity.Transaction, error)
	Moderate(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Transaction, error)
}

type transactionService struct {
	repo     repository.TransactionRepository
	machine  *approval.Machine
	notifier notification.ModerationNotifier
}

func NewTransactionService(repo repository.TransactionRepository, machine *approval.Machine, notifier notification.ModerationNotifier) TransactionService {
	if machine == nil {
		machine = approval.NewTransactionMachine()
	}
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &transactionService{repo: repo, machine: machine, notifier: notifier}
}

func optionalID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (s *transactionService) Create(ctx context.Context, actor *entity.Account, req dto.CreateTransactionRequest) (*entity.Transaction, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}

	tx := &entity.Transaction{
		AccountID:       actor.ID,
		StudentID:       optionalID(req.StudentID),
		TeacherID:       optionalID(req.TeacherID),
		CourseID:        optionalID(req.CourseID),
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		TransactionType: req.TransactionType,
		PaymentMethod:   req.PaymentMethod,
		Moderation:      entity.Moderation{Status: entity.StatusPending},
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	event := notification.NewEvent(actor, entity.SubjectTransaction, tx.ID, notification.ActionCreated,
		approval.Change{To: entity.StatusPending})
	if err := s.notifier.Record(ctx, event); err != nil {
		log.Printf("[Transaction] failed to record %s: %v", tx.Code, err)
	}
	return tx, nil
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) (*commonDto.Paginated[entity.Transaction], error) {
	limit, offset := filter.Normalize()
	txs, total, err := s.repo.FindAll(ctx, repository.TransactionFilter{
		Status:          entity.Status(filter.Status),
		AccountID:       optionalID(filter.UserID),
		TransactionType: filter.TransactionType,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(txs, total, filter.PageQuery)
	return &page, nil
}

func (s *transactionService) find(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Transaction not found")
		}
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) Get(ctx context.Context, actor *entity.Account, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (actor.Role != entity.RoleAdmin && actor.ID != tx.AccountID) {
		return nil, apperror.Forbidden("Access denied")
	}
	return tx, nil
}

// SetStatus moves a transaction through its lifecycle. Reaching completed
// stamps completedAt once.
func (s *transactionService) SetStatus(ctx context.Context, actor *entity.Account, id uuid.UUID, target entity.Status, reason string) (*entity.Transaction, error) {
	tx, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := s.machine.Transition(&tx.Moderation, target, sanitize.Text(reason))
	if err != nil {
		return nil, approval.AsConflict(err)
	}
	return tx, s.persist(ctx, actor, tx, change)
}

func (s *transactionService) Moderate(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Transaction, error) {
	tx, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	change, err := s.machine.Apply(&tx.Moderation, action, sanitize.Text(reason))
	if err != nil {
		return nil, err
	}
	return tx, s.persist(ctx, actor, tx, change)
}

func (s *transactionService) persist(ctx context.Context, actor *entity.Account, tx *entity.Transaction, change approval.Change) error {
	if !change.Changed() {
		return nil
	}
	if change.To == entity.StatusCompleted && tx.CompletedAt == nil {
		at := change.At
		tx.CompletedAt = &at
	}
	if err := s.repo.UpdateStatus(ctx, tx); err != nil {
		return err
	}
	if err := s.notifier.RecordChange(ctx, actor, tx, change); err != nil {
		log.Printf("[Transaction] failed to record status change of %s: %v", tx.Code, err)
	}
	return nil
}
