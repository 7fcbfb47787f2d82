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
	"anoa.com/learnhub/internal/modules/teacher/dto"
	"anoa.com/learnhub/internal/modules/teacher/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
)

type TeacherService interface {
	List(ctx context.Context, viewer *entity.Account, filter dto.TeacherFilter) (*commonDto.Paginated[entity.Teacher], error)
	Get(ctx context.Context, viewer *entity.Account, id uuid.UUID) (*entity.Teacher, error)
	Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateTeacherRequest) (*entity.Teacher, error)
	Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error
}

type teacherService struct {
	repo     repository.TeacherRepository
	notifier notification.ModerationNotifier
}

func NewTeacherService(repo repository.TeacherRepository, notifier notification.ModerationNotifier) TeacherService {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &teacherService{repo: repo, notifier: notifier}
}

func isAdmin(a *entity.Account) bool {
	return a != nil && a.Role == entity.RoleAdmin
}

func isOwner(a *entity.Account, t *entity.Teacher) bool {
	return a != nil && a.ID == t.AccountID
}

func (s *teacherService) List(ctx context.Context, viewer *entity.Account, filter dto.TeacherFilter) (*commonDto.Paginated[entity.Teacher], error) {
	limit, offset := filter.Normalize()
	repoFilter := repository.TeacherFilter{
		Status:         entity.StatusApproved,
		Specialization: strings.TrimSpace(filter.Specialization),
		Search:         strings.TrimSpace(filter.Search),
		Limit:          limit,
		Offset:         offset,
	}
	if isAdmin(viewer) {
		repoFilter.Status = entity.Status(filter.Status)
	}

	teachers, total, err := s.repo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	page := commonDto.NewPaginated(teachers, total, filter.PageQuery)
	return &page, nil
}

func (s *teacherService) find(ctx context.Context, id uuid.UUID) (*entity.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Teacher not found")
		}
		return nil, err
	}
	return teacher, nil
}

// Get hides unapproved teachers from anyone but admins and the teacher.
func (s *teacherService) Get(ctx context.Context, viewer *entity.Account, id uuid.UUID) (*entity.Teacher, error) {
	teacher, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !teacher.IsApproved() && !isAdmin(viewer) && !isOwner(viewer, teacher) {
		return nil, apperror.NotFound("Teacher not found")
	}
	return teacher, nil
}

func (s *teacherService) Update(ctx context.Context, actor *entity.Account, id uuid.UUID, req dto.UpdateTeacherRequest) (*entity.Teacher, error) {
	teacher, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(actor) && !isOwner(actor, teacher) {
		return nil, apperror.Forbidden("Access denied")
	}

	if req.FirstName != nil {
		teacher.FirstName = sanitize.Text(*req.FirstName)
	}
	if req.LastName != nil {
		teacher.LastName = sanitize.Text(*req.LastName)
	}
	if req.PhoneNumber != nil {
		teacher.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Bio != nil {
		teacher.Bio = sanitize.Text(*req.Bio)
	}
	if req.Specialization != nil {
		teacher.Specialization = sanitize.Strings(req.Specialization)
	}
	if req.Qualifications != nil {
		teacher.Qualifications = req.Qualifications
	}
	if req.Experience != nil {
		teacher.Experience = *req.Experience
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *teacherService) Delete(ctx context.Context, actor *entity.Account, id uuid.UUID) error {
	teacher, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWithAccount(ctx, teacher); err != nil {
		return err
	}

	change := approval.Change{From: teacher.Status}
	if err := s.notifier.Record(ctx, notification.NewEvent(actor, entity.SubjectTeacher, teacher.ID, notification.ActionDeleted, change)); err != nil {
		log.Printf("[Teacher] failed to record deletion of %s: %v", teacher.ID, err)
	}
	return nil
}
