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
	"anoa.com/learnhub/internal/modules/admin/dto"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	teacherRepo "anoa.com/learnhub/internal/modules/teacher/repository"
	transactionRepo "anoa.com/learnhub/internal/modules/transaction/repository"
	transactionService "anoa.com/learnhub/internal/modules/transaction/service"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/sanitize"
)

type AdminService interface {
	ModerateStudent(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Student, error)
	ModerateTeacher(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Teacher, error)
	ModerateTransaction(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Transaction, error)
	Pending(ctx context.Context) (*dto.PendingQueue, error)
	ListUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[entity.PublicAccount], error)
	SetActive(ctx context.Context, actor *entity.Account, id uuid.UUID, active bool) (*entity.PublicAccount, error)
}

// Repositories groups the stores the admin console reads from.
type Repositories struct {
	Accounts     userRepo.AccountRepository
	Students     studentRepo.StudentRepository
	Teachers     teacherRepo.TeacherRepository
	Courses      courseRepo.CourseRepository
	Transactions transactionRepo.TransactionRepository
}

type adminService struct {
	repos        Repositories
	transactions transactionService.TransactionService
	machine      *approval.Machine
	notifier     notification.ModerationNotifier
}

func NewAdminService(
	repos Repositories,
	transactions transactionService.TransactionService,
	machine *approval.Machine,
	notifier notification.ModerationNotifier,
) AdminService {
	if machine == nil {
		machine = approval.NewProfileMachine()
	}
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &adminService{repos: repos, transactions: transactions, machine: machine, notifier: notifier}
}

// moderateProfile applies action to profile and persists it through save.
func (s *adminService) moderateProfile(
	ctx context.Context,
	actor *entity.Account,
	profile entity.Profile,
	action approval.Action,
	reason string,
	save func(context.Context, uuid.UUID, entity.Moderation) error,
) error {
	change, err := s.machine.Apply(profile.GetModeration(), action, sanitize.Text(reason))
	if err != nil {
		return err
	}
	if !change.Changed() {
		return nil
	}

	_, id := profile.ModerationSubject()
	if err := save(ctx, id, *profile.GetModeration()); err != nil {
		return err
	}
	if err := s.notifier.RecordChange(ctx, actor, profile, change); err != nil {
		log.Printf("[Admin] failed to record %s of %s: %v", action, id, err)
	}
	return nil
}

func (s *adminService) ModerateStudent(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Student, error) {
	student, err := s.repos.Students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}
	if err := s.moderateProfile(ctx, actor, student, action, reason, s.repos.Students.UpdateModeration); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *adminService) ModerateTeacher(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Teacher, error) {
	teacher, err := s.repos.Teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Teacher not found")
		}
		return nil, err
	}
	if err := s.moderateProfile(ctx, actor, teacher, action, reason, s.repos.Teachers.UpdateModeration); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *adminService) ModerateTransaction(ctx context.Context, actor *entity.Account, id uuid.UUID, action approval.Action, reason string) (*entity.Transaction, error) {
	return s.transactions.Moderate(ctx, actor, id, action, reason)
}

func (s *adminService) Pending(ctx context.Context) (*dto.PendingQueue, error) {
	var (
		queue dto.PendingQueue
		err   error
	)
	limit := commonDto.MaxLimit

	if queue.Students, queue.Counts.Students, err = s.repos.Students.FindAll(ctx, studentRepo.StudentFilter{
		Status: entity.StatusPending, Limit: limit,
	}); err != nil {
		return nil, err
	}
	if queue.Teachers, queue.Counts.Teachers, err = s.repos.Teachers.FindAll(ctx, teacherRepo.TeacherFilter{
		Status: entity.StatusPending, Limit: limit,
	}); err != nil {
		return nil, err
	}
	if queue.Courses, queue.Counts.Courses, err = s.repos.Courses.FindAll(ctx, courseRepo.CourseFilter{
		Status: entity.StatusPending, Limit: limit,
	}); err != nil {
		return nil, err
	}
	if queue.Transactions, queue.Counts.Transactions, err = s.repos.Transactions.FindAll(ctx, transactionRepo.TransactionFilter{
		Status: entity.StatusPending, Limit: limit,
	}); err != nil {
		return nil, err
	}

	if queue.Students == nil {
		queue.Students = []entity.Student{}
	}
	if queue.Teachers == nil {
		queue.Teachers = []entity.Teacher{}
	}
	if queue.Courses == nil {
		queue.Courses = []entity.Course{}
	}
	if queue.Transactions == nil {
		queue.Transactions = []entity.Transaction{}
	}
	return &queue, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[entity.PublicAccount], error) {
	limit, offset := filter.Normalize()
	accounts, total, err := s.repos.Accounts.FindAll(ctx, userRepo.AccountFilter{
		Role:     entity.Role(filter.Role),
		IsActive: filter.IsActive,
		Search:   strings.TrimSpace(filter.Search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	users := make([]entity.PublicAccount, 0, len(accounts))
	for i := range accounts {
		users = append(users, accounts[i].PublicWithStatus())
	}
	page := commonDto.NewPaginated(users, total, filter.PageQuery)
	return &page, nil
}

// SetActive toggles login for an account. Admins cannot lock themselves out.
func (s *adminService) SetActive(ctx context.Context, actor *entity.Account, id uuid.UUID, active bool) (*entity.PublicAccount, error) {
	if !active && actor != nil && actor.ID == id {
		return nil, apperror.BadRequest("You cannot deactivate your own account")
	}

	account, err := s.repos.Accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	if account.IsActive != active {
		if err := s.repos.Accounts.UpdateActive(ctx, id, active); err != nil {
			return nil, err
		}
		account.IsActive = active

		action := notification.ActionDisabled
		if active {
			action = notification.ActionActivated
		}
		event := notification.NewEvent(actor, entity.SubjectAccount, account.ID, action, approval.Change{})
		if err := s.notifier.Record(ctx, event); err != nil {
			log.Printf("[Admin] failed to record %s of %s: %v", action, account.ID, err)
		}
	}

	public := account.PublicWithStatus()
	return &public, nil
}
