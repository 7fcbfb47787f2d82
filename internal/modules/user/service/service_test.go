package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/password"
	"anoa.com/learnhub/pkg/ratelimiter"
	"anoa.com/learnhub/pkg/token"
)

type harness struct {
	db     *testutil.DB
	svc    AuthService
	codec  *token.Codec
	hasher password.Hasher
}

func newHarness(t *testing.T, maxAttempts int) *harness {
	t.Helper()
	codec, err := token.NewCodec("secret", time.Hour, token.WithRoles(entity.RoleNames()...))
	require.NoError(t, err)

	db := testutil.NewDB()
	hasher := password.NewBcryptHasher(password.MinCost)
	limiter := ratelimiter.New(testutil.NewCounter(), "login", maxAttempts, time.Minute)

	return &harness{
		db:     db,
		codec:  codec,
		hasher: hasher,
		svc:    NewAuthService(db.Accounts(), db.Students(), db.Teachers(), hasher, codec, limiter, notification.Discard{}),
	}
}

func (h *harness) seedAccount(t *testing.T, email string, role entity.Role, secret string) *entity.Account {
	t.Helper()
	hash, err := h.hasher.Hash(secret)
	require.NoError(t, err)
	return h.db.SeedAccount(entity.NewAccount(email, role, hash))
}

func statusOf(err error) int {
	return apperror.MapErrorToStatus(err)
}

func messageOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

func TestRegisterTeacherCreatesPendingProfile(t *testing.T) {
	h := newHarness(t, 5)

	res, err := h.svc.RegisterTeacher(context.Background(), dto.RegisterTeacherRequest{
		Email:          "  T@X.com ",
		Password:       "secret1",
		FirstName:      "<b>Ada</b>",
		Specialization: []string{"Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t@x.com", res.User.Email)
	assert.Equal(t, entity.RoleTeacher, res.User.Role)

	teacher, ok := res.Profile.(*entity.Teacher)
	require.True(t, ok)
	assert.Equal(t, entity.StatusPending, teacher.Status)
	assert.Equal(t, "Ada", teacher.FirstName)
	assert.Equal(t, res.User.ID, teacher.AccountID)

	stored, err := h.db.Accounts().FindByEmail(context.Background(), "t@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, h.hasher.Verify("secret1", stored.PasswordHash))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t, 5)
	h.seedAccount(t, "dup@x.com", entity.RoleReview, "secret1")

	_, err := h.svc.RegisterStudent(context.Background(), dto.RegisterStudentRequest{
		Email:    "DUP@x.com",
		Password: "secret1",
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "Email already registered", messageOf(err))
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

// racingAccounts behaves as if another request inserted the same email
// between the existence check and the insert.
type racingAccounts struct {
	repository.AccountRepository
}

func (racingAccounts) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func (racingAccounts) Create(context.Context, *entity.Account, entity.Profile) error {
	return gorm.ErrDuplicatedKey
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	db := testutil.NewDB()
	limiter := ratelimiter.New(testutil.NewCounter(), "login", 5, time.Minute)
	svc := NewAuthService(racingAccounts{}, db.Students(), db.Teachers(), password.NewBcryptHasher(password.MinCost), nil, limiter, nil)

	_, err := svc.RegisterReview(context.Background(), dto.RegisterReviewRequest{Email: "race@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "Email already registered", messageOf(err))

	_, err = svc.RegisterTeacher(context.Background(), dto.RegisterTeacherRequest{Email: "race@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestConcurrentRegistrationHasOneWinner(t *testing.T) {
	h := newHarness(t, 5)
	const n = 8

	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.svc.RegisterStudent(context.Background(), dto.RegisterStudentRequest{
				Email:    "same@x.com",
				Password: "secret1",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrConflict)
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	}
	assert.Equal(t, 1, won)

	_, total, err := h.db.Accounts().FindAll(context.Background(), repository.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, students, err := h.db.Students().FindAll(context.Background(), studentRepo.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), students)
}

func TestRegisterRejectsPasswordOver72Bytes(t *testing.T) {
	h := newHarness(t, 5)
	euros := strings.Repeat("€", 25)

	_, err := h.svc.RegisterReview(context.Background(), dto.RegisterReviewRequest{Email: "e@x.com", Password: euros})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Fields[0].Field)

	exists, err := h.db.Accounts().ExistsByEmail(context.Background(), "e@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegisterStudentRejectsBadDate(t *testing.T) {
	h := newHarness(t, 5)

	_, err := h.svc.RegisterStudent(context.Background(), dto.RegisterStudentRequest{
		Email:       "s@x.com",
		Password:    "secret1",
		DateOfBirth: "31/12/2000",
	})

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestTeacherApprovalScenario(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	res, err := h.svc.RegisterTeacher(ctx, dto.RegisterTeacherRequest{Email: "t@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.svc.Login(ctx, dto.LoginRequest{Email: "t@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Equal(t, "Your account is pending admin approval", messageOf(err))

	teacher := res.Profile.(*entity.Teacher)
	now := time.Now()
	require.NoError(t, h.db.Teachers().UpdateModeration(ctx, teacher.ID, entity.Moderation{
		Status: entity.StatusApproved, VerifiedAt: &now,
	}))

	auth, err := h.svc.Login(ctx, dto.LoginRequest{Email: "t@x.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := h.codec.Verify(auth.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.Subject)
	assert.Equal(t, "teacher", claims.Role)
}

func TestRejectedStudentCannotLogin(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	res, err := h.svc.RegisterStudent(ctx, dto.RegisterStudentRequest{Email: "s@x.com", Password: "secret1"})
	require.NoError(t, err)
	reason := "Incomplete"
	require.NoError(t, h.db.Students().UpdateModeration(ctx, res.Profile.(*entity.Student).ID, entity.Moderation{
		Status: entity.StatusRejected, Reason: &reason,
	}))

	_, err = h.svc.Login(ctx, dto.LoginRequest{Email: "s@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestModeratedAccountWithoutProfileCannotLogin(t *testing.T) {
	h := newHarness(t, 5)
	h.seedAccount(t, "orphan@x.com", entity.RoleStudent, "secret1")

	_, err := h.svc.Login(context.Background(), dto.LoginRequest{Email: "orphan@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Equal(t, "Your account is pending admin approval", messageOf(err))
}

func TestAdminLogsInWithoutProfile(t *testing.T) {
	h := newHarness(t, 5)
	admin := h.seedAccount(t, "admin@x.com", entity.RoleAdmin, "adminpass")

	auth, err := h.svc.Login(context.Background(), dto.LoginRequest{Email: "ADMIN@x.com", Password: "adminpass"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, auth.User.ID)
	assert.NotEmpty(t, auth.Token)
}

func TestLoginIsEnumerationResistant(t *testing.T) {
	h := newHarness(t, 10)
	h.seedAccount(t, "known@x.com", entity.RoleAdmin, "rightpass")

	_, unknownErr := h.svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@x.com", Password: "whatever"})
	_, wrongErr := h.svc.Login(context.Background(), dto.LoginRequest{Email: "known@x.com", Password: "wrongpass"})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, http.StatusUnauthorized, statusOf(unknownErr))
	assert.Equal(t, statusOf(unknownErr), statusOf(wrongErr))
	assert.Equal(t, "Invalid email or password", messageOf(unknownErr))
	assert.Equal(t, messageOf(unknownErr), messageOf(wrongErr))
}

func TestDeactivatedAccountIsForbidden(t *testing.T) {
	h := newHarness(t, 5)
	acc := h.seedAccount(t, "off@x.com", entity.RoleReview, "secret1")
	require.NoError(t, h.db.Accounts().UpdateActive(context.Background(), acc.ID, false))

	_, err := h.svc.Login(context.Background(), dto.LoginRequest{Email: "off@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Equal(t, "Your account has been deactivated", messageOf(err))
}

func TestLoginThrottlesRepeatedFailures(t *testing.T) {
	h := newHarness(t, 2)
	h.seedAccount(t, "a@x.com", entity.RoleReview, "secret1")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := h.svc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "bad"})
		require.Equal(t, http.StatusUnauthorized, statusOf(err))
	}

	_, err := h.svc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusTooManyRequests, statusOf(err))
}

func TestLoginThrottleIsScopedToClient(t *testing.T) {
	h := newHarness(t, 2)
	h.seedAccount(t, "admin@x.com", entity.RoleAdmin, "secret1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.svc.Login(ctx, dto.LoginRequest{Email: "admin@x.com", Password: "bad", ClientIP: "203.0.113.9"})
		require.Error(t, err)
	}
	_, err := h.svc.Login(ctx, dto.LoginRequest{Email: "admin@x.com", Password: "secret1", ClientIP: "203.0.113.9"})
	assert.Equal(t, http.StatusTooManyRequests, statusOf(err))

	auth, err := h.svc.Login(ctx, dto.LoginRequest{Email: "admin@x.com", Password: "secret1", ClientIP: "198.51.100.4"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
}

func TestReviewRegistrationThenMe(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	res, err := h.svc.RegisterReview(ctx, dto.RegisterReviewRequest{Email: "r@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := h.codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "review", claims.Role)

	account, err := h.db.Accounts().FindByID(ctx, uuid.MustParse(claims.Subject))
	require.NoError(t, err)

	me, err := h.svc.Me(ctx, account)
	require.NoError(t, err)
	assert.Nil(t, me.Profile)
	assert.Equal(t, "r@x.com", me.User.Email)
	require.NotNil(t, me.User.IsActive)
	assert.True(t, *me.User.IsActive)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	acc := h.seedAccount(t, "c@x.com", entity.RoleReview, "oldpass")

	err := h.svc.ChangePassword(ctx, acc, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	require.NoError(t, h.svc.ChangePassword(ctx, acc, dto.ChangePasswordRequest{CurrentPassword: "oldpass", NewPassword: "newpass"}))

	_, err = h.svc.Login(ctx, dto.LoginRequest{Email: "c@x.com", Password: "oldpass"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, err = h.svc.Login(ctx, dto.LoginRequest{Email: "c@x.com", Password: "newpass"})
	assert.NoError(t, err)
}

func TestChangePasswordRejectsOver72Bytes(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	acc := h.seedAccount(t, "c@x.com", entity.RoleReview, "oldpass")

	err := h.svc.ChangePassword(ctx, acc, dto.ChangePasswordRequest{CurrentPassword: "oldpass", NewPassword: strings.Repeat("€", 25)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.svc.Login(ctx, dto.LoginRequest{Email: "c@x.com", Password: "oldpass"})
	assert.NoError(t, err)
}

func TestOrphanSweeper(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	old := entity.NewAccount("orphan@x.com", entity.RoleTeacher, "h")
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	h.db.SeedAccount(old)

	fresh := entity.NewAccount("fresh@x.com", entity.RoleTeacher, "h")
	h.db.SeedAccount(fresh)

	admin := entity.NewAccount("admin@x.com", entity.RoleAdmin, "h")
	admin.CreatedAt = time.Now().Add(-2 * time.Hour)
	h.db.SeedAccount(admin)

	sweeper := NewOrphanSweeper(h.db.Accounts(), time.Hour, "@every 1h")
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists, _ := h.db.Accounts().ExistsByEmail(ctx, "orphan@x.com")
	assert.False(t, exists, "email is free again")

	_, err = h.svc.RegisterTeacher(ctx, dto.RegisterTeacherRequest{Email: "orphan@x.com", Password: "secret1"})
	assert.NoError(t, err)
}
