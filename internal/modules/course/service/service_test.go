package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/dto"
	"anoa.com/learnhub/internal/testutil"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/search"
)

type fakeIndex struct {
	docs map[string]search.CourseHit
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]search.CourseHit{}}
}

func (f *fakeIndex) IndexCourse(c *entity.Course) error {
	if !c.IsApproved() {
		return f.DeleteCourse(c.ID.String())
	}
	f.docs[c.ID.String()] = search.NewCourseHit(c)
	return nil
}

func (f *fakeIndex) DeleteCourse(id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) SearchCourses(string, search.Filter) ([]search.CourseHit, int64, error) {
	hits := make([]search.CourseHit, 0, len(f.docs))
	for _, h := range f.docs {
		hits = append(hits, h)
	}
	return hits, int64(len(hits)), nil
}

type fixture struct {
	db    *testutil.DB
	index *fakeIndex
	svc   CourseService
	admin *entity.Account
}

func newFixture() *fixture {
	db := testutil.NewDB()
	index := newFakeIndex()
	return &fixture{
		db:    db,
		index: index,
		svc:   NewCourseService(db.Courses(), db.Teachers(), nil, index, nil, nil),
		admin: db.SeedAccount(entity.NewAccount("admin@x.com", entity.RoleAdmin, "hash")),
	}
}

func (f *fixture) teacher(email string, status entity.Status) (*entity.Account, *entity.Teacher) {
	acc := f.db.SeedAccount(entity.NewAccount(email, entity.RoleTeacher, "hash"))
	t := f.db.SeedTeacher(&entity.Teacher{AccountID: acc.ID, Moderation: entity.Moderation{Status: status}})
	return acc, t
}

func TestCreateRequiresApprovedTeacher(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := dto.CreateCourseRequest{Title: "Go 101", Description: "Basics", Price: 10}

	pendingAcc, _ := f.teacher("p@x.com", entity.StatusPending)
	_, err := f.svc.Create(ctx, pendingAcc, req)
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))

	student := f.db.SeedAccount(entity.NewAccount("s@x.com", entity.RoleStudent, "hash"))
	_, err = f.svc.Create(ctx, student, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	acc, teacher := f.teacher("t@x.com", entity.StatusApproved)
	course, err := f.svc.Create(ctx, acc, req)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, course.TeacherID)
	assert.Equal(t, entity.StatusPending, course.Status)
	assert.Equal(t, entity.LevelBeginner, course.Level)
}

func TestCourseVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ownerAcc, owner := f.teacher("o@x.com", entity.StatusApproved)
	otherAcc, _ := f.teacher("x@x.com", entity.StatusApproved)

	approved := f.db.SeedCourse(&entity.Course{Title: "A", TeacherID: owner.ID, Moderation: entity.Moderation{Status: entity.StatusApproved}})
	pending := f.db.SeedCourse(&entity.Course{Title: "B", TeacherID: owner.ID, Moderation: entity.Moderation{Status: entity.StatusPending}})

	page, err := f.svc.List(ctx, nil, dto.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, approved.ID, page.Items[0].ID)

	page, err = f.svc.List(ctx, ownerAcc, dto.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(ctx, f.admin, dto.CourseFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = f.svc.Get(ctx, nil, pending.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.svc.Get(ctx, otherAcc, pending.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.svc.Get(ctx, ownerAcc, pending.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, nil, approved.ID)
	assert.NoError(t, err)
}

func TestModerateSyncsSearchIndex(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, owner := f.teacher("o@x.com", entity.StatusApproved)
	course := f.db.SeedCourse(&entity.Course{Title: "Go", TeacherID: owner.ID, Moderation: entity.Moderation{Status: entity.StatusPending}})

	got, err := f.svc.Moderate(ctx, f.admin, course.ID, approval.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Contains(t, f.index.docs, course.ID.String())

	res, err := f.svc.Search(ctx, dto.SearchCourseRequest{Query: "go"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	got, err = f.svc.Moderate(ctx, f.admin, course.ID, approval.ActionReject, "Outdated")
	require.NoError(t, err)
	assert.Equal(t, "Outdated", *got.Reason)
	assert.NotContains(t, f.index.docs, course.ID.String())

	_, err = f.svc.Moderate(ctx, f.admin, course.ID, approval.ActionSuspend, "")
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ownerAcc, owner := f.teacher("o@x.com", entity.StatusApproved)
	otherAcc, _ := f.teacher("x@x.com", entity.StatusApproved)
	course := f.db.SeedCourse(&entity.Course{Title: "Go", TeacherID: owner.ID, Moderation: entity.Moderation{Status: entity.StatusApproved}})

	title := "Other"
	_, err := f.svc.Update(ctx, otherAcc, course.ID, dto.UpdateCourseRequest{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	title = "Go, revised"
	updated, err := f.svc.Update(ctx, ownerAcc, course.ID, dto.UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Go, revised", updated.Title)
	assert.Equal(t, entity.StatusApproved, updated.Status)
	assert.Equal(t, "Go, revised", f.index.docs[course.ID.String()].Title)

	assert.ErrorIs(t, f.svc.Delete(ctx, otherAcc, course.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.admin, course.ID))
	assert.NotContains(t, f.index.docs, course.ID.String())

	_, err = f.svc.Get(ctx, f.admin, course.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

type linkRecorder struct {
	courseID uuid.UUID
	ids      []uuid.UUID
}

func (l *linkRecorder) AttachToCourse(_ context.Context, _ *entity.Account, courseID uuid.UUID, ids []uuid.UUID) error {
	l.courseID = courseID
	l.ids = ids
	return nil
}

func TestCreateLinksAttachments(t *testing.T) {
	f := newFixture()
	links := &linkRecorder{}
	f.svc = NewCourseService(f.db.Courses(), f.db.Teachers(), links, f.index, nil, nil)

	acc, _ := f.teacher("t@x.com", entity.StatusApproved)
	asset := uuid.New()
	course, err := f.svc.Create(context.Background(), acc, dto.CreateCourseRequest{
		Title:         "Go",
		Description:   "Basics",
		AttachmentIDs: []uuid.UUID{asset},
	})
	require.NoError(t, err)
	assert.Equal(t, course.ID, links.courseID)
	assert.Equal(t, []uuid.UUID{asset}, links.ids)
}
