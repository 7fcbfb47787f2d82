package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	teacherRepo "anoa.com/learnhub/internal/modules/teacher/repository"
	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/password"
	"anoa.com/learnhub/pkg/ratelimiter"
	"anoa.com/learnhub/pkg/sanitize"
	"anoa.com/learnhub/pkg/token"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgDeactivated        = "Your account has been deactivated"
	msgPendingApproval    = "Your account is pending admin approval"
	msgEmailTaken         = "Email already registered"
)

type TokenIssuer interface {
	Issue(claims token.Claims) (string, time.Time, error)
}

type AuthService interface {
	RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (*dto.RegistrationResponse, error)
	RegisterTeacher(ctx context.Context, req dto.RegisterTeacherRequest) (*dto.RegistrationResponse, error)
	RegisterReview(ctx context.Context, req dto.RegisterReviewRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, account *entity.Account) (*dto.MeResponse, error)
	ChangePassword(ctx context.Context, account *entity.Account, req dto.ChangePasswordRequest) error
	// FindProfile returns the moderated profile for account, or nil for roles
	// that have none or when it does not exist.
	FindProfile(ctx context.Context, account *entity.Account) (entity.Profile, error)
}

type authService struct {
	accounts repository.AccountRepository
	students studentRepo.StudentRepository
	teachers teacherRepo.TeacherRepository
	hasher   password.Hasher
	tokens   TokenIssuer
	limiter  *ratelimiter.Limiter
	notifier notification.ModerationNotifier

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	accounts repository.AccountRepository,
	students studentRepo.StudentRepository,
	teachers teacherRepo.TeacherRepository,
	hasher password.Hasher,
	tokens TokenIssuer,
	limiter *ratelimiter.Limiter,
	notifier notification.ModerationNotifier,
) AuthService {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &authService{
		accounts: accounts,
		students: students,
		teachers: teachers,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		notifier: notifier,
	}
}

func (s *authService) RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (*dto.RegistrationResponse, error) {
	student := &entity.Student{
		FirstName:   sanitize.Text(req.FirstName),
		LastName:    sanitize.Text(req.LastName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}
	student.Address = datatypes.NewJSONType(req.Address)
	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			return nil, apperror.Invalid("dateOfBirth", "dateOfBirth must be a date formatted as 2006-01-02")
		}
		student.DateOfBirth = &dob
	}

	return s.registerModerated(ctx, req.Email, req.Password, entity.RoleStudent, student)
}

func (s *authService) RegisterTeacher(ctx context.Context, req dto.RegisterTeacherRequest) (*dto.RegistrationResponse, error) {
	teacher := &entity.Teacher{
		FirstName:      sanitize.Text(req.FirstName),
		LastName:       sanitize.Text(req.LastName),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		Bio:            sanitize.Text(req.Bio),
		Specialization: sanitize.Strings(req.Specialization),
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
	}
	if teacher.Qualifications == nil {
		teacher.Qualifications = []entity.Qualification{}
	}

	return s.registerModerated(ctx, req.Email, req.Password, entity.RoleTeacher, teacher)
}

// registerModerated creates the account and its pending profile together.
func (s *authService) registerModerated(ctx context.Context, email, secret string, role entity.Role, profile entity.Profile) (*dto.RegistrationResponse, error) {
	account, err := s.newAccount(ctx, email, secret, role)
	if err != nil {
		return nil, err
	}

	profile.GetModeration().Status = entity.StatusPending
	if err := s.accounts.Create(ctx, account, profile); err != nil {
		return nil, s.mapCreateError(err)
	}

	kind, id := profile.ModerationSubject()
	change := approval.Change{To: profile.GetModeration().Status}
	if err := s.notifier.Record(ctx, notification.NewEvent(nil, kind, id, notification.ActionSubmitted, change)); err != nil {
		log.Printf("[Auth] failed to record registration of %s: %v", account.ID, err)
	}

	return &dto.RegistrationResponse{
		User:    account.Public(),
		Profile: profile,
	}, nil
}

func (s *authService) RegisterReview(ctx context.Context, req dto.RegisterReviewRequest) (*dto.AuthResponse, error) {
	account, err := s.newAccount(ctx, req.Email, req.Password, entity.RoleReview)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account, nil); err != nil {
		return nil, s.mapCreateError(err)
	}

	return s.issue(account)
}

func (s *authService) newAccount(ctx context.Context, email, secret string, role entity.Role) (*entity.Account, error) {
	email = entity.NormalizeEmail(email)

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(http.StatusBadRequest, msgEmailTaken, apperror.ErrConflict)
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, hashError("password", err)
	}

	return entity.NewAccount(email, role, hash), nil
}

// mapCreateError turns the unique index violation of a concurrent
// registration into the same answer as the pre-check.
func (s *authService) mapCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.New(http.StatusBadRequest, msgEmailTaken, apperror.ErrConflict)
	}
	return fmt.Errorf("create account: %w", err)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := entity.NormalizeEmail(req.Email)
	attempt := throttleKey(email, req.ClientIP)

	allowed, retry, err := s.limiter.Allowed(ctx, attempt)
	if err != nil {
		log.Printf("[Auth] rate limiter unavailable: %v", err)
	} else if !allowed {
		return nil, apperror.New(http.StatusTooManyRequests,
			fmt.Sprintf("Too many login attempts. Try again in %s", retry.Round(time.Second)),
			apperror.ErrRateLimitExceeded)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// keep response time close to the wrong-password path
		s.hasher.Verify(req.Password, s.dummy())
		s.recordFailure(ctx, attempt)
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		s.recordFailure(ctx, attempt)
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if !account.IsActive {
		return nil, apperror.Forbidden(msgDeactivated)
	}

	if account.Role.Moderated() {
		profile, err := s.FindProfile(ctx, account)
		if err != nil {
			return nil, err
		}
		var m *entity.Moderation
		if profile != nil {
			m = profile.GetModeration()
		}
		if !approval.CanLogin(account.Role, m) {
			return nil, apperror.Forbidden(msgPendingApproval)
		}
	}

	if err := s.limiter.Reset(ctx, attempt); err != nil {
		log.Printf("[Auth] failed to reset login attempts: %v", err)
	}

	return s.issue(account)
}

func (s *authService) recordFailure(ctx context.Context, attempt string) {
	if err := s.limiter.Hit(ctx, attempt); err != nil {
		log.Printf("[Auth] failed to record login attempt: %v", err)
	}
}

// throttleKey scopes failed logins to one email from one client.
func throttleKey(email, clientIP string) string {
	if clientIP == "" {
		return email
	}
	return email + "|" + clientIP
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *authService) issue(account *entity.Account) (*dto.AuthResponse, error) {
	tok, expiresAt, err := s.tokens.Issue(token.Claims{
		Subject: account.ID.String(),
		Role:    account.Role.String(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		User:      account.Public(),
		Token:     tok,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) Me(ctx context.Context, account *entity.Account) (*dto.MeResponse, error) {
	profile, err := s.FindProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{
		User:    account.PublicWithStatus(),
		Profile: profile,
	}, nil
}

func (s *authService) FindProfile(ctx context.Context, account *entity.Account) (entity.Profile, error) {
	var (
		profile entity.Profile
		err     error
	)
	switch account.Role {
	case entity.RoleStudent:
		var st *entity.Student
		st, err = s.students.FindByAccountID(ctx, account.ID)
		if err == nil {
			profile = st
		}
	case entity.RoleTeacher:
		var t *entity.Teacher
		t, err = s.teachers.FindByAccountID(ctx, account.ID)
		if err == nil {
			profile = t
		}
	default:
		return nil, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return profile, err
}

func (s *authService) ChangePassword(ctx context.Context, account *entity.Account, req dto.ChangePasswordRequest) error {
	current, err := s.accounts.FindByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("User not found")
		}
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, current.PasswordHash) {
		return apperror.Invalid("currentPassword", "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return hashError("newPassword", err)
	}
	return s.accounts.UpdatePasswordHash(ctx, account.ID, hash)
}

func hashError(field string, err error) error {
	switch {
	case errors.Is(err, password.ErrEmptySecret):
		return apperror.Invalid(field, field+" is required")
	case errors.Is(err, password.ErrAlreadyHashed):
		return apperror.Invalid(field, field+" is invalid")
	case errors.Is(err, password.ErrTooLong):
		return apperror.Invalid(field, fmt.Sprintf("%s must be at most %d bytes", field, password.MaxBytes))
	}
	return fmt.Errorf("hash password: %w", err)
}
