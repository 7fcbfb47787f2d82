package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/internal/modules/student/dto"
	"anoa.com/learnhub/internal/modules/student/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
)

type StudentService interface {
	List(ctx context.Context, filter dto.StudentFilter) (*commonDto.Paginated[entity.Student], error)
	Get(ctx context.Context, actor *entity.Account, id uuid.UUID) (*entity.Student, error)
	Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateStudentRequest) (*entity.Student, error)
	Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error
}

type studentService struct {
	repo     repository.StudentRepository
	notifier notification.ModerationNotifier
}

func NewStudentService(repo repository.StudentRepository, notifier notification.ModerationNotifier) StudentService {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &studentService{repo: repo, notifier: notifier}
}

func (s *studentService) List(ctx context.Context, filter dto.StudentFilter) (*commonDto.Paginated[entity.Student], error) {
	limit, offset := filter.Normalize()
	students, total, err := s.repo.FindAll(ctx, repository.StudentFilter{
		Status: entity.Status(filter.Status),
		Search: strings.TrimSpace(filter.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(students, total, filter.PageQuery)
	return &page, nil
}

func (s *studentService) find(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}
	return student, nil
}

func canAccess(actor *entity.Account, student *entity.Student) bool {
	return actor != nil && (actor.Role == entity.RoleAdmin || actor.ID == student.AccountID)
}

func (s *studentService) Get(ctx context.Context, actor *entity.Account, id uuid.UUID) (*entity.Student, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, student) {
		return nil, apperror.Forbidden("Access denied")
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateStudentRequest) (*entity.Student, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, student) {
		return nil, apperror.Forbidden("Access denied")
	}

	if req.FirstName != nil {
		student.FirstName = sanitize.Text(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = sanitize.Text(*req.LastName)
	}
	if req.PhoneNumber != nil {
		student.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			student.DateOfBirth = nil
		} else {
			dob, err := time.Parse(time.DateOnly, *req.DateOfBirth)
			if err != nil {
				return nil, apperror.Invalid("dateOfBirth", "dateOfBirth must be a date formatted as 2006-01-02")
			}
			student.DateOfBirth = &dob
		}
	}
	if req.Address != nil {
		student.Address = datatypes.NewJSONType(*req.Address)
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error {
	student, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWithAccount(ctx, student); err != nil {
		return err
	}

	change := approval.Change{From: student.Status}
	if err := s.notifier.Record(ctx, notification.NewEvent(actor, entity.SubjectStudent, student.ID, notification.ActionDeleted, change)); err != nil {
		log.Printf("[Student] failed to record deletion of %s: %v", student.ID, err)
	}
	return nil
}
