package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/review/dto"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
)

type fixture struct {
	db     *testutil.DB
	svc    ReviewService
	course *entity.Course
}

func newFixture() *fixture {
	db := testutil.NewDB()
	course := db.SeedCourse(&entity.Course{Title: "Go", Moderation: entity.Moderation{Status: entity.StatusApproved}})
	return &fixture{
		db:     db,
		svc:    NewReviewService(db.Reviews(), db.Students(), db.Courses()),
		course: course,
	}
}

func (f *fixture) student(email string, status entity.Status) *entity.Account {
	acc := f.db.SeedAccount(entity.NewAccount(email, entity.RoleStudent, "hash"))
	f.db.SeedStudent(&entity.Student{AccountID: acc.ID, Moderation: entity.Moderation{Status: status}})
	return acc
}

func TestCreateReviewIsAutoApprovedAndUnique(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	acc := f.student("s@x.com", entity.StatusApproved)

	req := dto.CreateReviewRequest{CourseID: f.course.ID.String(), Rating: 5, Comment: "<b>Great</b>"}
	review, err := f.svc.Create(ctx, acc, req)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, review.Status)
	assert.NotNil(t, review.VerifiedAt)
	assert.Equal(t, "Great", review.Comment)

	_, err = f.svc.Create(ctx, acc, req)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateReviewGating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := dto.CreateReviewRequest{CourseID: f.course.ID.String(), Rating: 4}

	pending := f.student("p@x.com", entity.StatusPending)
	_, err := f.svc.Create(ctx, pending, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	teacher := f.db.SeedAccount(entity.NewAccount("t@x.com", entity.RoleTeacher, "hash"))
	_, err = f.svc.Create(ctx, teacher, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	hidden := f.db.SeedCourse(&entity.Course{Title: "Hidden", Moderation: entity.Moderation{Status: entity.StatusPending}})
	approved := f.student("a@x.com", entity.StatusApproved)
	_, err = f.svc.Create(ctx, approved, dto.CreateReviewRequest{CourseID: hidden.ID.String(), Rating: 3})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateAndDeleteReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.student("s@x.com", entity.StatusApproved)
	other := f.student("o@x.com", entity.StatusApproved)
	admin := f.db.SeedAccount(entity.NewAccount("admin@x.com", entity.RoleAdmin, "hash"))

	review, err := f.svc.Create(ctx, owner, dto.CreateReviewRequest{CourseID: f.course.ID.String(), Rating: 2})
	require.NoError(t, err)

	rating := 4
	_, err = f.svc.Update(ctx, other, review.ID, dto.UpdateReviewRequest{Rating: &rating})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.svc.Update(ctx, owner, review.ID, dto.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	page, err := f.svc.List(ctx, dto.ReviewFilter{CourseID: f.course.ID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 4, page.Items[0].Rating)

	require.NoError(t, f.svc.Delete(ctx, admin, review.ID))
	_, err = f.svc.Get(ctx, review.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
